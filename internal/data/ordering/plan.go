package ordering

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrOutOfRange is returned when a requested position is outside [1, N].
	ErrOutOfRange = errors.New("order out of range")
	// ErrInvariant is returned when stored orders contradict the group size.
	ErrInvariant = errors.New("order invariant violated")
)

// Shift moves every record of Group whose order lies in [From, To] by Delta.
// To == 0 means no upper bound. Exclude, when set, is never shifted.
type Shift struct {
	Group   uuid.UUID
	From    int
	To      int
	Delta   int
	Exclude uuid.UUID
}

// Contains reports whether a record at order o in group g is shifted.
func (s Shift) Contains(g, id uuid.UUID, o int) bool {
	if g != s.Group || o < s.From || (s.To != 0 && o > s.To) {
		return false
	}
	return s.Exclude == uuid.Nil || id != s.Exclude
}

func (s Shift) String() string {
	upper := "inf"
	if s.To != 0 {
		upper = fmt.Sprint(s.To)
	}
	return fmt.Sprintf("group=%s [%d,%s] %+d", s.Group, s.From, upper, s.Delta)
}

// Plan is the outcome of planning one mutation.
type Plan struct {
	Shifts []Shift
	// Target is the order the primary record holds afterwards. It is 0 for
	// deletes.
	Target int
}

// Empty reports whether the plan shifts nothing.
func (p Plan) Empty() bool { return len(p.Shifts) == 0 }

// PlanInsert places a new record into a group of n. A nil desired appends
// at n+1; other values are clamped into [1, n+1]. Every record at or after
// the target moves down by one.
func PlanInsert(group uuid.UUID, n int, desired *int) Plan {
	if n < 0 {
		n = 0
	}
	d := n + 1
	if desired != nil {
		d = clamp(*desired, 1, n+1)
	}
	p := Plan{Target: d}
	if d <= n {
		p.Shifts = []Shift{{Group: group, From: d, Delta: +1}}
	}
	return p
}

// PlanMove repositions record id from old to new within a group of n.
// Moving down closes the gap at (old, new]; moving up opens room at
// [new, old). The moved record is never part of a shift.
func PlanMove(group, id uuid.UUID, n, old, new int) (Plan, error) {
	if new < 1 || new > n {
		return Plan{}, fmt.Errorf("%w: %d not in [1, %d]", ErrOutOfRange, new, n)
	}
	if old < 1 || old > n {
		return Plan{}, fmt.Errorf("%w: stored order %d not in [1, %d]", ErrInvariant, old, n)
	}
	p := Plan{Target: new}
	switch {
	case new > old:
		p.Shifts = []Shift{{Group: group, From: old + 1, To: new, Delta: -1, Exclude: id}}
	case new < old:
		p.Shifts = []Shift{{Group: group, From: new, To: old - 1, Delta: +1, Exclude: id}}
	}
	return p, nil
}

// PlanDelete removes record id at order r from a group of n and closes the
// gap it leaves.
func PlanDelete(group, id uuid.UUID, n, r int) (Plan, error) {
	if r < 1 || r > n {
		return Plan{}, fmt.Errorf("%w: stored order %d not in [1, %d]", ErrInvariant, r, n)
	}
	p := Plan{}
	if r < n {
		p.Shifts = []Shift{{Group: group, From: r + 1, Delta: -1, Exclude: id}}
	}
	return p, nil
}

// PlanTransfer moves record id out of group from (size fromN, order old)
// into group to (size toN, not counting the record). Entering the new group
// follows insert rules: desired is clamped and nil appends.
func PlanTransfer(from, to, id uuid.UUID, fromN, old, toN int, desired *int) (Plan, error) {
	out, err := PlanDelete(from, id, fromN, old)
	if err != nil {
		return Plan{}, err
	}
	in := PlanInsert(to, toN, desired)
	return Plan{Shifts: append(out.Shifts, in.Shifts...), Target: in.Target}, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
