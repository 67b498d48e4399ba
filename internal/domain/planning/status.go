package planning

import (
	"fmt"

	"github.com/mrpcore/backend/internal/domain/shared"
)

// Status represents the lifecycle status of a purchase order
type Status string

const (
	StatusDraft           Status = "draft"
	StatusSubmitted       Status = "submitted"
	StatusPendingApproval Status = "pending_approval"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
	StatusConfirmed       Status = "confirmed"
	StatusReceiving       Status = "receiving"
	StatusClosed          Status = "closed"
	StatusCancelled       Status = "cancelled"
)

// statusTransitions is the legal edge set of the purchase order state graph.
// closed and cancelled are terminal and have no outgoing edges.
var statusTransitions = map[Status][]Status{
	StatusDraft:           {StatusSubmitted, StatusPendingApproval, StatusCancelled},
	StatusSubmitted:       {StatusConfirmed, StatusPendingApproval, StatusCancelled},
	StatusPendingApproval: {StatusApproved, StatusRejected},
	StatusApproved:        {StatusConfirmed, StatusCancelled},
	StatusRejected:        {StatusDraft},
	StatusConfirmed:       {StatusReceiving, StatusCancelled},
	StatusReceiving:       {StatusClosed, StatusCancelled},
	StatusClosed:          {},
	StatusCancelled:       {},
}

// IsValid checks if the status is a known Status value
func (s Status) IsValid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true for statuses that accept no further transitions
func (s Status) IsTerminal() bool {
	return s == StatusClosed || s == StatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range statusTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// ValidateTransition checks that from -> to is a legal edge of the state
// graph. approvalRequired is the gate decision for the order at hand: a
// submission that requires approval may not take the draft -> submitted
// shortcut, it must route through pending_approval. The approval gate
// decides which edge a submission takes; this validator only confirms the
// chosen edge is legal for that decision.
func ValidateTransition(from, to Status, approvalRequired bool) error {
	if !from.IsValid() || !to.IsValid() {
		return invalidTransition(from, to)
	}
	if approvalRequired && from == StatusDraft && to == StatusSubmitted {
		return invalidTransition(from, to)
	}
	if !from.CanTransitionTo(to) {
		return invalidTransition(from, to)
	}
	return nil
}

func invalidTransition(from, to Status) *shared.DomainError {
	return shared.NewDomainError("INVALID_TRANSITION",
		fmt.Sprintf("Invalid status transition: %s -> %s", from, to))
}

// BulkAction is a status action applied to a batch of purchase orders
type BulkAction string

const (
	BulkActionApprove BulkAction = "approve"
	BulkActionReject  BulkAction = "reject"
	BulkActionCancel  BulkAction = "cancel"
	BulkActionConfirm BulkAction = "confirm"
)

// bulkActionSources is a narrower allow-list than the full state graph,
// applied per order id in bulk updates. Bulk reject targets cancelled, not
// rejected: the batch workflow discards orders rather than sending them back
// for re-editing, and the two outcomes are kept distinct on purpose.
var bulkActionSources = map[BulkAction][]Status{
	BulkActionApprove: {StatusPendingApproval, StatusSubmitted},
	BulkActionReject:  {StatusPendingApproval, StatusSubmitted},
	BulkActionCancel:  {StatusDraft, StatusSubmitted, StatusPendingApproval, StatusApproved, StatusConfirmed},
	BulkActionConfirm: {StatusApproved},
}

// bulkActionTargets maps each bulk action to its resulting status
var bulkActionTargets = map[BulkAction]Status{
	BulkActionApprove: StatusApproved,
	BulkActionReject:  StatusCancelled,
	BulkActionCancel:  StatusCancelled,
	BulkActionConfirm: StatusConfirmed,
}

// IsValid checks if the action is a known BulkAction
func (a BulkAction) IsValid() bool {
	_, ok := bulkActionTargets[a]
	return ok
}

// AllowsSource returns true if the action may be applied to an order
// currently in the given status
func (a BulkAction) AllowsSource(s Status) bool {
	for _, allowed := range bulkActionSources[a] {
		if allowed == s {
			return true
		}
	}
	return false
}

// TargetStatus returns the status an order moves to under this action
func (a BulkAction) TargetStatus() Status {
	return bulkActionTargets[a]
}
