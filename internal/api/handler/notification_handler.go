package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/civichub/society-api/internal/core/ports"
)

// NotificationHandler serves the caller's notification inbox.
type NotificationHandler struct {
	service ports.NotificationService
}

func NewNotificationHandler(service ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// List handles GET /notifications.
//
// @Summary      List the caller's notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  notificationListResponse
// @Failure      401  {object}  errorResponse
// @Router       /notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	list, err := h.service.ListFor(ctx, caller.SubjectID)
	if err != nil {
		return err
	}
	unread, err := h.service.UnreadCount(ctx, caller.SubjectID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, notificationListResponse{
		Unread:        unread,
		Notifications: toNotificationList(list),
	})
}

// MarkRead handles PATCH /notifications/:id/read.
//
// @Summary      Mark one notification as read
// @Tags         notifications
// @Security     BearerAuth
// @Param        id   path  string  true  "Notification ID"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /notifications/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}

	if err := h.service.MarkRead(c.Request().Context(), caller.SubjectID, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead handles POST /notifications/read-all.
//
// @Summary      Mark every notification as read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  markAllReadResponse
// @Failure      401  {object}  errorResponse
// @Router       /notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}

	updated, err := h.service.MarkAllRead(c.Request().Context(), caller.SubjectID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, markAllReadResponse{Updated: updated})
}
