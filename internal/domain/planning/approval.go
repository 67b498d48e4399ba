package planning

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mrpcore/backend/internal/domain/shared"
)

// Role is an organization member role recognized by the approval workflow
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RolePlanner    Role = "planner"
	RolePurchasing Role = "purchasing"
	RoleViewer     Role = "viewer"
	// RoleUnknown is assigned when a stored role string matches no known
	// role. Unknown roles never pass the approver check.
	RoleUnknown Role = ""
)

var knownRoles = map[Role]struct{}{
	RoleAdmin:      {},
	RoleManager:    {},
	RolePlanner:    {},
	RolePurchasing: {},
	RoleViewer:     {},
}

// ParseRole normalizes a stored role string. Matching is case-insensitive;
// anything unrecognized maps to RoleUnknown.
func ParseRole(s string) Role {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := knownRoles[r]; ok {
		return r
	}
	return RoleUnknown
}

// DefaultApprovalRoles is used when an organization has not configured
// which roles may approve purchase orders
var DefaultApprovalRoles = []Role{RoleAdmin, RoleManager}

// PlanningSettings holds the per-organization purchase order workflow
// configuration
type PlanningSettings struct {
	RequireApproval   bool
	ApprovalThreshold *decimal.Decimal
	ApprovalRoles     []Role
}

// CheckApprovalRequired decides whether an order with the given total must
// route through the approval workflow. With approval disabled nothing
// requires approval. With approval enabled and no threshold configured,
// every order requires approval. The threshold is inclusive: a total equal
// to it requires approval.
func CheckApprovalRequired(total decimal.Decimal, settings *PlanningSettings) bool {
	if settings == nil || !settings.RequireApproval {
		return false
	}
	if settings.ApprovalThreshold == nil {
		return true
	}
	return total.GreaterThanOrEqual(*settings.ApprovalThreshold)
}

// ApproverRoles returns the configured approver roles, falling back to the
// defaults when none are configured
func (s *PlanningSettings) ApproverRoles() []Role {
	if s == nil || len(s.ApprovalRoles) == 0 {
		return DefaultApprovalRoles
	}
	return s.ApprovalRoles
}

// RoleCanApprove reports whether the given role is in the approver set.
// RoleUnknown is always denied.
func (s *PlanningSettings) RoleCanApprove(role Role) bool {
	if role == RoleUnknown {
		return false
	}
	for _, r := range s.ApproverRoles() {
		if r == role {
			return true
		}
	}
	return false
}

const (
	minRejectionReasonLen = 10
	maxRejectionReasonLen = 1000
	maxApprovalNotesLen   = 1000
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
)

// NormalizeRejectionReason validates and sanitizes a rejection reason.
// The reason is trimmed, required to be 10-1000 characters after trimming,
// and HTML-escaped before it is stored or embedded in notifications.
// Length is checked before escaping so entity expansion cannot push a valid
// reason over the limit.
func NormalizeRejectionReason(reason string) (string, error) {
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return "", shared.NewDomainError("REASON_REQUIRED", "Rejection reason is required")
	}
	if len(trimmed) < minRejectionReasonLen {
		return "", shared.NewDomainError("REASON_TOO_SHORT", "Rejection reason must be at least 10 characters")
	}
	if len(trimmed) > maxRejectionReasonLen {
		return "", shared.NewDomainError("REASON_TOO_LONG", "Rejection reason must be at most 1000 characters")
	}
	return htmlEscaper.Replace(trimmed), nil
}

// NormalizeApprovalNotes trims optional approval notes and caps their length
func NormalizeApprovalNotes(notes string) (string, error) {
	trimmed := strings.TrimSpace(notes)
	if len(trimmed) > maxApprovalNotesLen {
		return "", shared.NewDomainError("NOTES_TOO_LONG", "Approval notes must be at most 1000 characters")
	}
	return htmlEscaper.Replace(trimmed), nil
}
