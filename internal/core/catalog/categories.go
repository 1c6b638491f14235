package catalog

import "github.com/samirrijal/eiremap/internal/core/domain"

// pinColours maps category ids 1..15 to map pin colours.
var pinColours = map[int]string{
	1:  "red",
	2:  "blue",
	3:  "green",
	4:  "yellow",
	5:  "purple",
	6:  "orange",
	7:  "pink",
	8:  "brown",
	9:  "black",
	10: "maroon",
	11: "white",
	12: "cyan",
	13: "magenta",
	14: "lime",
	15: "teal",
}

// DefaultPinColour is used for custom markers and unknown categories.
const DefaultPinColour = "grey"

// PinColour returns the pin colour for a category id.
func PinColour(categoryID int) string {
	if c, ok := pinColours[categoryID]; ok {
		return c
	}
	return DefaultPinColour
}

// CategoryIndex looks up category names by id, preserving document order
// for the dropdown.
type CategoryIndex struct {
	cats []domain.Category
	byID map[int]int
}

// NewCategoryIndex indexes cats. The first occurrence of an id wins.
func NewCategoryIndex(cats []domain.Category) *CategoryIndex {
	idx := &CategoryIndex{byID: make(map[int]int, len(cats))}
	for _, c := range cats {
		if _, dup := idx.byID[c.ID]; dup {
			continue
		}
		idx.byID[c.ID] = len(idx.cats)
		idx.cats = append(idx.cats, c)
	}
	return idx
}

// NameFor returns the name of a category, or false when the id is unknown.
func (c *CategoryIndex) NameFor(id int) (string, bool) {
	i, ok := c.byID[id]
	if !ok {
		return "", false
	}
	return c.cats[i].Name, true
}

// AllNames returns category names in document order.
func (c *CategoryIndex) AllNames() []string {
	names := make([]string, len(c.cats))
	for i, cat := range c.cats {
		names[i] = cat.Name
	}
	return names
}

// At returns the category shown at dropdown row i.
func (c *CategoryIndex) At(i int) (domain.Category, bool) {
	if i < 0 || i >= len(c.cats) {
		return domain.Category{}, false
	}
	return c.cats[i], true
}

// All returns a copy of the categories in document order.
func (c *CategoryIndex) All() []domain.Category {
	out := make([]domain.Category, len(c.cats))
	copy(out, c.cats)
	return out
}

// Len returns the number of categories.
func (c *CategoryIndex) Len() int { return len(c.cats) }
