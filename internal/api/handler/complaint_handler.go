package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/civichub/society-api/internal/core/ports"
)

// ComplaintHandler handles HTTP requests for the complaint lifecycle.
type ComplaintHandler struct {
	service ports.ComplaintService
}

func NewComplaintHandler(service ports.ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{service: service}
}

// Submit handles POST /complaints.
//
// @Summary      Submit a complaint
// @Tags         complaints
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string                  false  "Replays the earlier response for a repeated key"
// @Param        body             body      submitComplaintRequest  true   "Complaint"
// @Success      201              {object}  submitComplaintResponse
// @Success      200              {object}  submitComplaintResponse  "Idempotent replay"
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      403              {object}  errorResponse
// @Failure      500              {object}  errorResponse
// @Router       /complaints [post]
func (h *ComplaintHandler) Submit(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}

	var req submitComplaintRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.service.Submit(c.Request().Context(), caller, ports.SubmitComplaintInput{
		Issue:          req.Issue,
		IdempotencyKey: c.Request().Header.Get("Idempotency-Key"),
	})
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	return c.JSON(status, submitComplaintResponse{
		Message:   "Complaint submitted",
		Complaint: toComplaintResponse(result.Complaint),
	})
}

// ListOwn handles GET /complaints/my.
//
// @Summary      List the caller's complaints
// @Tags         complaints
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   complaintResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /complaints/my [get]
func (h *ComplaintHandler) ListOwn(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}

	list, err := h.service.ListOwn(c.Request().Context(), caller.SubjectID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toComplaintList(list))
}

// ListAll handles GET /complaints/all.
//
// @Summary      List every complaint with its owner
// @Tags         complaints
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   complaintResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /complaints/all [get]
func (h *ComplaintHandler) ListAll(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}

	views, err := h.service.ListAll(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toComplaintViewList(views))
}

// UpdateStatus handles PUT /complaints/:id/status.
//
// @Summary      Move a complaint to a new status
// @Tags         complaints
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Complaint ID"
// @Param        body  body      updateStatusRequest  true  "New status"
// @Success      200   {object}  updateStatusResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /complaints/{id}/status [put]
func (h *ComplaintHandler) UpdateStatus(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	updated, err := h.service.UpdateStatus(c.Request().Context(), caller, c.Param("id"), req.Status)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, updateStatusResponse{
		Message:   "Complaint status updated",
		Complaint: toComplaintResponse(updated),
	})
}
