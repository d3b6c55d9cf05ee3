package aggregates

import (
	"github.com/google/uuid"
)

var OrderedGroupAggregateContract = Contract{
	Name:             "Learning.OrderedGroupAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Keeps sibling order values dense and 1-based across insert, move and delete.",
}

// OrderOp names the mutation that changed a group's ordering.
type OrderOp string

const (
	OrderOpInsert OrderOp = "insert"
	OrderOpMove   OrderOp = "move"
	OrderOpDelete OrderOp = "delete"
)

// OrderChange describes one committed ordering mutation. Resource is the
// ordered resource name ("lesson", "module").
type OrderChange struct {
	Resource string    `json:"resource"`
	Op       OrderOp   `json:"op"`
	RecordID uuid.UUID `json:"record_id"`
	GroupID  uuid.UUID `json:"group_id"`
	// FromGroupID is set on cross-group moves.
	FromGroupID *uuid.UUID `json:"from_group_id,omitempty"`
	Order       int        `json:"order"`
	Shifted     int64      `json:"shifted"`
}

// Groups returns every group touched by the change.
func (c OrderChange) Groups() []uuid.UUID {
	if c.FromGroupID == nil || *c.FromGroupID == c.GroupID {
		return []uuid.UUID{c.GroupID}
	}
	return []uuid.UUID{*c.FromGroupID, c.GroupID}
}
