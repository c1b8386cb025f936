package derive

import "github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/domain"

type LayoutKind string

const (
	LayoutSectioned   LayoutKind = "section"
	LayoutDefaultGrid LayoutKind = "grid"
)

// LayoutItem is one block of the storefront page. Section is set for
// sectioned items and Grid for the trailing default grid.
type LayoutItem struct {
	Kind     LayoutKind           `json:"kind"`
	Section  *domain.Section      `json:"section,omitempty"`
	Grid     *domain.GridSettings `json:"grid,omitempty"`
	Products []domain.Product     `json:"products"`
}

// Layout slices filtered from the front: each section takes up to
// ProductCount products in order, including sections that end up empty.
// Whatever remains goes into a single default grid item; no grid is
// emitted when nothing remains.
func Layout(filtered []domain.Product, sections []domain.Section, grid domain.GridSettings) []LayoutItem {
	items := make([]LayoutItem, 0, len(sections)+1)
	rest := filtered
	for i := range sections {
		n := max(sections[i].ProductCount, 0)
		n = min(n, len(rest))
		sec := sections[i]
		items = append(items, LayoutItem{
			Kind:     LayoutSectioned,
			Section:  &sec,
			Products: copyProducts(rest[:n]),
		})
		rest = rest[n:]
	}
	if len(rest) > 0 {
		g := grid
		items = append(items, LayoutItem{
			Kind:     LayoutDefaultGrid,
			Grid:     &g,
			Products: copyProducts(rest),
		})
	}
	return items
}

func copyProducts(src []domain.Product) []domain.Product {
	out := make([]domain.Product, len(src))
	copy(out, src)
	return out
}
