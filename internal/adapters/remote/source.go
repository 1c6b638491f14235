package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/samirrijal/eiremap/internal/core/domain"
)

// maxDocumentSize bounds a single remote document.
const maxDocumentSize = 16 << 20

// Source implements ports.PlaceSource over plain HTTPS GETs.
type Source struct {
	client        *fasthttp.Client
	placesURL     string
	placeTypesURL string
	timeout       time.Duration
}

// NewSource creates a Source. A zero timeout means only ctx bounds a fetch.
func NewSource(placesURL, placeTypesURL string, timeout time.Duration) *Source {
	return &Source{
		client: &fasthttp.Client{
			Name:                "eiremap",
			MaxResponseBodySize: maxDocumentSize,
		},
		placesURL:     placesURL,
		placeTypesURL: placeTypesURL,
		timeout:       timeout,
	}
}

// FetchPlaces downloads and parses the places document.
func (s *Source) FetchPlaces(ctx context.Context) ([]domain.Place, error) {
	body, err := s.get(ctx, s.placesURL)
	if err != nil {
		return nil, err
	}
	return DecodePlaces(body)
}

// FetchCategories downloads and parses the place types document.
func (s *Source) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	body, err := s.get(ctx, s.placeTypesURL)
	if err != nil {
		return nil, err
	}
	return DecodeCategories(body)
}

func (s *Source) get(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("GET %s: %v: %w", url, err, domain.ErrNetwork)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	var err error
	if deadline, ok := s.deadline(ctx); ok {
		err = s.client.DoDeadline(req, resp, deadline)
	} else {
		err = s.client.Do(req, resp)
	}
	if err != nil {
		return nil, fmt.Errorf("GET %s: %v: %w", url, err, domain.ErrNetwork)
	}

	if code := resp.StatusCode(); code < 200 || code > 299 {
		return nil, fmt.Errorf("GET %s: HTTP %d: %w", url, code, domain.ErrNetwork)
	}

	// resp is recycled on return.
	return append([]byte(nil), resp.Body()...), nil
}

// deadline picks the earlier of the configured timeout and the ctx deadline.
func (s *Source) deadline(ctx context.Context) (time.Time, bool) {
	d, ok := ctx.Deadline()
	if s.timeout > 0 {
		t := time.Now().Add(s.timeout)
		if !ok || t.Before(d) {
			return t, true
		}
	}
	return d, ok
}
