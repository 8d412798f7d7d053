package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-seat-reservation/internal/appeal"
	"github.com/iliyamo/library-seat-reservation/internal/middleware"
	"github.com/iliyamo/library-seat-reservation/internal/model"
)

// AppealHandler serves the violation dispute workflow.
type AppealHandler struct {
	Workflow *appeal.Workflow
}

// NewAppealHandler constructs the handler.
func NewAppealHandler(wf *appeal.Workflow) *AppealHandler {
	if wf == nil {
		panic("nil workflow passed to NewAppealHandler")
	}
	return &AppealHandler{Workflow: wf}
}

var appealTypes = map[model.AppealType]bool{
	model.AppealPhoneDead:     true,
	model.AppealQRCodeDamaged: true,
	model.AppealGPSError:      true,
	model.AppealSystemError:   true,
	model.AppealOther:         true,
}

// Submit handles POST /v1/appeals: the owner of a violation reservation
// files a dispute with a typed cause and optional evidence links.
func (h *AppealHandler) Submit(c echo.Context) error {
	var body struct {
		ReservationID uuid.UUID        `json:"reservation_id"`
		Type          model.AppealType `json:"type"`
		Reason        string           `json:"reason"`
		Evidence      []string         `json:"evidence,omitempty"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.ReservationID == uuid.Nil || body.Reason == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservation_id and reason are required"})
	}
	if !appealTypes[body.Type] {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown appeal type"})
	}

	actor := middleware.ActorFromContext(c)
	ap, err := h.Workflow.Submit(actor, body.ReservationID, body.Type, body.Reason, body.Evidence)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, ap)
}

// Mine handles GET /v1/appeals: the caller's appeals, newest first.
func (h *AppealHandler) Mine(c echo.Context) error {
	actor := middleware.ActorFromContext(c)
	return c.JSON(http.StatusOK, h.Workflow.ByUser(actor.UserID))
}

// Pending handles GET /v1/admin/appeals: the unresolved review queue.
func (h *AppealHandler) Pending(c echo.Context) error {
	actor := middleware.ActorFromContext(c)
	pending, err := h.Workflow.Pending(actor)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, pending)
}

// Review handles POST /v1/admin/appeals/:id/review with an approve or
// reject decision and a reply shown to the appellant.
func (h *AppealHandler) Review(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid appeal id"})
	}
	var body struct {
		Decision model.AppealStatus `json:"decision"`
		Reply    string             `json:"reply"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Decision != model.AppealApproved && body.Decision != model.AppealRejected {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "decision must be approved or rejected"})
	}

	actor := middleware.ActorFromContext(c)
	if err := h.Workflow.Review(actor, id, body.Decision, body.Reply); err != nil {
		return fail(c, err)
	}
	ap, err := h.Workflow.Get(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, ap)
}
