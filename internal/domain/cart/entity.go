// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"sort"
	"strings"
	"time"
)

var (
	ErrInvalidCart = errors.New("cart: invalid")
	ErrInvalidLine = errors.New("cart: invalid line")

	// ErrUserNotFound is returned by Repository implementations when the
	// owning user document does not exist (writes require an existing user).
	ErrUserNotFound = errors.New("cart: user not found")
)

// Line represents "one line item" in a cart.
//
// Price and Name are advisory copies taken at add-to-cart time; the
// authoritative unit price is always re-resolved from the catalog when the
// cart is priced for checkout.
type Line struct {
	ProductID string `json:"productId" firestore:"productId"`
	Name      string `json:"name" firestore:"name"`
	Price     int    `json:"price" firestore:"price"`
	Qty       int    `json:"qty" firestore:"qty"`

	AddedAt   time.Time `json:"addedAt" firestore:"addedAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// Cart represents a user's cart.
//   - stored on the user document's "cart" field (docId = userId)
//   - Lines: uniqueness is defined by productId
//
// Writes are last-write-wins at line granularity; callers needing strict
// ordering for the same (userId, productId) must serialize externally.
type Cart struct {
	// UserID is the Firestore docId of the owning user.
	UserID string `json:"userId" firestore:"userId"`

	Lines []Line `json:"lines" firestore:"lines"`

	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// New creates a cart. lines can be nil (treated as empty).
func New(userID string, lines []Line, now time.Time) (*Cart, error) {
	uid := strings.TrimSpace(userID)

	c := &Cart{
		UserID:    uid,
		Lines:     cloneLines(lines),
		UpdatedAt: now.UTC(),
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// SetLine sets the absolute quantity for a productId (not an increment).
// If qty <= 0, the line is removed. AddedAt is stamped on first insert and
// preserved afterwards; UpdatedAt is stamped on every mutation.
func (c *Cart) SetLine(productID, name string, price, qty int, now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}

	pid := strings.TrimSpace(productID)
	if pid == "" {
		return ErrInvalidLine
	}

	now = now.UTC()
	idx := findLineIndex(c.Lines, pid)

	if qty <= 0 {
		if idx >= 0 {
			c.Lines = removeIndex(c.Lines, idx)
		}
		c.touch(now)
		return c.validate()
	}

	if idx >= 0 {
		added := c.Lines[idx].AddedAt
		c.Lines[idx] = Line{
			ProductID: pid,
			Name:      strings.TrimSpace(name),
			Price:     price,
			Qty:       qty,
			AddedAt:   added,
			UpdatedAt: now,
		}
	} else {
		c.Lines = append(c.Lines, Line{
			ProductID: pid,
			Name:      strings.TrimSpace(name),
			Price:     price,
			Qty:       qty,
			AddedAt:   now,
			UpdatedAt: now,
		})
	}

	c.touch(now)
	return c.validate()
}

// Remove removes a productId from the cart. Removing an absent line is a no-op.
func (c *Cart) Remove(productID string, now time.Time) error {
	return c.SetLine(productID, "", 0, 0, now)
}

// Clear empties the cart. Idempotent.
func (c *Cart) Clear(now time.Time) {
	if c == nil {
		return
	}
	c.Lines = []Line{}
	c.touch(now.UTC())
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Lines) == 0
}

func (c *Cart) touch(now time.Time) {
	c.UpdatedAt = now
}

func (c *Cart) validate() error {
	if c == nil {
		return ErrInvalidCart
	}
	if strings.TrimSpace(c.UserID) == "" {
		return ErrInvalidCart
	}

	if len(c.Lines) == 0 {
		return nil
	}

	c.Lines = normalizeAndSort(c.Lines)

	for _, l := range c.Lines {
		if strings.TrimSpace(l.ProductID) == "" || l.Qty <= 0 {
			return ErrInvalidLine
		}
	}
	return nil
}

// ----------------------------
// Helpers
// ----------------------------

func findLineIndex(lines []Line, pid string) int {
	for i := range lines {
		if lines[i].ProductID == pid {
			return i
		}
	}
	return -1
}

func removeIndex(lines []Line, idx int) []Line {
	if idx < 0 || idx >= len(lines) {
		return lines
	}
	// preserve order
	return append(lines[:idx], lines[idx+1:]...)
}

func normalizeAndSort(src []Line) []Line {
	out := make([]Line, 0, len(src))
	seen := map[string]int{}

	for _, l := range src {
		pid := strings.TrimSpace(l.ProductID)
		if pid == "" || l.Qty <= 0 {
			continue
		}
		l.ProductID = pid
		l.Name = strings.TrimSpace(l.Name)

		if i, ok := seen[pid]; ok {
			// duplicate productId: last write wins
			out[i] = l
			continue
		}
		seen[pid] = len(out)
		out = append(out, l)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

func cloneLines(src []Line) []Line {
	if len(src) == 0 {
		return []Line{}
	}
	cp := make([]Line, len(src))
	copy(cp, src)
	return normalizeAndSort(cp)
}
