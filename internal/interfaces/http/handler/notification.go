package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mrpcore/backend/internal/domain/shared"
	"github.com/mrpcore/backend/internal/infrastructure/notify"
)

// NotificationInbox is the read side of the approval notification inbox
type NotificationInbox interface {
	ListUnread(ctx context.Context, orgID, recipientID uuid.UUID, filter shared.Filter) (shared.Paginated[notify.NotificationModel], error)
	MarkRead(ctx context.Context, orgID, recipientID, notificationID uuid.UUID) error
}

// NotificationHandler serves the member notification inbox
type NotificationHandler struct {
	BaseHandler
	inbox NotificationInbox
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(inbox NotificationInbox) *NotificationHandler {
	return &NotificationHandler{inbox: inbox}
}

// ListUnread returns the caller's unread notifications, newest first
// GET /api/v1/notifications
func (h *NotificationHandler) ListUnread(c *gin.Context) {
	orgID, userID, ok := identity(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	filter, err := listFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.inbox.ListUnread(c.Request.Context(), orgID, userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// MarkRead marks one of the caller's notifications as read
// POST /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	orgID, userID, ok := identity(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	notificationID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid notification id")
		return
	}

	if err := h.inbox.MarkRead(c.Request.Context(), orgID, userID, notificationID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"id": notificationID, "read": true})
}
