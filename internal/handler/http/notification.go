package http

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-engine-go/internal/handler/http/response"
)

// NotificationHandler defines the notification handler interface
type NotificationHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	MarkAsRead(w http.ResponseWriter, r *http.Request)
}

type notificationHandlerImpl struct {
	notifService notification.Notifier
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifService notification.Notifier) NotificationHandler {
	return &notificationHandlerImpl{notifService: notifService}
}

// List returns the authenticated employee's inbox, optionally narrowed by ?type=
func (h *notificationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	req := notification.InboxRequest{
		RecipientID: actor.EmployeeID,
		UnreadOnly:  getBoolQueryParam(r, "unread_only", false),
		Page:        getIntQueryParam(r, "page", 1),
		PageSize:    getIntQueryParam(r, "page_size", 20),
	}
	if kind := getOptionalQueryParam(r, "type"); kind != nil {
		req.Type = notification.NotificationType(*kind)
	}

	result, err := h.notifService.Inbox(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// MarkAsRead marks specified notifications as read
func (h *notificationHandlerImpl) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req notification.MarkAsReadRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	if err := h.notifService.MarkRead(r.Context(), actor.EmployeeID, req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Notifications marked as read", nil)
}
