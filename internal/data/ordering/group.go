package ordering

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Item is one member of a group as seen by density checks.
type Item struct {
	ID        uuid.UUID
	Order     int
	CreatedAt time.Time
}

// IsDense reports whether items hold exactly the orders 1..len(items).
func IsDense(items []Item) bool {
	seen := make([]bool, len(items)+1)
	for _, it := range items {
		if it.Order < 1 || it.Order > len(items) || seen[it.Order] {
			return false
		}
		seen[it.Order] = true
	}
	return true
}

// Renumber returns the assignments that make items dense, keeping their
// current relative order and breaking ties by creation time then id. Items
// already at their target are omitted.
func Renumber(items []Item) map[uuid.UUID]int {
	sorted := append([]Item(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
	out := make(map[uuid.UUID]int)
	for i, it := range sorted {
		if it.Order != i+1 {
			out[it.ID] = i + 1
		}
	}
	return out
}

// Apply executes plan's shifts against items in place.
func Apply(group uuid.UUID, items []Item, plan Plan) {
	for _, s := range plan.Shifts {
		for i := range items {
			if s.Contains(group, items[i].ID, items[i].Order) {
				items[i].Order += s.Delta
			}
		}
	}
}
