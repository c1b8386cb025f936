// Package cart holds a shopper's cart lines. Lines are keyed by product
// and variant color; the price of a line is frozen when it is first added.
package cart

import (
	"strconv"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/domain"
)

type Ledger struct {
	mu    sync.Mutex
	lines []domain.CartLine
}

func New() *Ledger {
	return &Ledger{}
}

// LineID is "<productID>-<color>" for a variant line and "<productID>" otherwise.
func LineID(productID int64, variant *domain.Variant) string {
	id := strconv.FormatInt(productID, 10)
	if variant != nil {
		return id + "-" + variant.Color
	}
	return id
}

// Add puts one unit of product into the cart at price. An existing line
// gains one unit and keeps its original price.
func (l *Ledger) Add(product domain.Product, variant *domain.Variant, price float64) domain.CartLine {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := LineID(product.ID, variant)
	for i := range l.lines {
		if l.lines[i].CartID == id {
			l.lines[i].Quantity++
			return cloneLine(l.lines[i])
		}
	}

	line := domain.CartLine{
		CartID:    id,
		ProductID: product.ID,
		Name:      product.Name,
		Category:  product.Category,
		Image:     product.Image,
		Price:     price,
		Quantity:  1,
	}
	if variant != nil {
		v := *variant
		v.Sizes = append([]string(nil), variant.Sizes...)
		line.Variant = &v
		if v.Image != "" {
			line.Image = v.Image
		}
	}
	l.lines = append(l.lines, line)
	return cloneLine(line)
}

// Remove drops the whole line. It reports whether a line was removed.
func (l *Ledger) Remove(cartID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.lines {
		if l.lines[i].CartID == cartID {
			l.lines = append(l.lines[:i], l.lines[i+1:]...)
			return true
		}
	}
	return false
}

func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = nil
}

func (l *Ledger) Lines() []domain.CartLine {
	l.mu.Lock()
	defer l.mu.Unlock()
	return cloneLines(l.lines)
}

// Count is the total number of units across lines.
func (l *Ledger) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, line := range l.lines {
		n += line.Quantity
	}
	return n
}

func (l *Ledger) Subtotal() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return subtotal(l.lines)
}

func (l *Ledger) Summary() domain.CartSummary {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, line := range l.lines {
		n += line.Quantity
	}
	return domain.CartSummary{Lines: cloneLines(l.lines), Count: n, Subtotal: subtotal(l.lines)}
}

// Snapshot returns the lines for persistence.
func (l *Ledger) Snapshot() []domain.CartLine {
	return l.Lines()
}

// Restore replaces the cart with lines. Lines with a quantity below one are
// dropped and repeated cart ids merge into the first occurrence.
func (l *Ledger) Restore(lines []domain.CartLine) {
	merged := make([]domain.CartLine, 0, len(lines))
	index := make(map[string]int, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 || line.CartID == "" {
			continue
		}
		if i, ok := index[line.CartID]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[line.CartID] = len(merged)
		merged = append(merged, cloneLine(line))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = merged
}

func subtotal(lines []domain.CartLine) float64 {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(decimal.NewFromFloat(line.Price).Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	out, _ := total.Float64()
	return out
}

func cloneLines(src []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, len(src))
	for i, line := range src {
		out[i] = cloneLine(line)
	}
	return out
}

func cloneLine(line domain.CartLine) domain.CartLine {
	if line.Variant != nil {
		v := *line.Variant
		v.Sizes = append([]string(nil), line.Variant.Sizes...)
		line.Variant = &v
	}
	return line
}
