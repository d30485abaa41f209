package booking

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/scheduler-api/internal/model"
	bookingService "github.com/jwalitptl/scheduler-api/internal/service/booking"
	apperrors "github.com/jwalitptl/scheduler-api/pkg/errors"
	"github.com/jwalitptl/scheduler-api/pkg/httputil"
)

type Handler struct {
	service bookingService.BookingServicer
}

func NewHandler(service bookingService.BookingServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/appointments", h.MakeAppointment)
	r.PUT("/doctors/:id/appointments/:slotId/reject", h.RejectAppointment)
}

// MakeAppointment allocates the doctor's first free slot to the patient.
func (h *Handler) MakeAppointment(c *gin.Context) {
	var req model.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidInput(err.Error(), err))
		return
	}

	resp, err := h.service.Allocate(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, resp)
}

// RejectAppointment releases a previously allocated slot back to available.
func (h *Handler) RejectAppointment(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidInput("invalid doctor ID", err))
		return
	}

	slotID, err := uuid.Parse(c.Param("slotId"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidInput("invalid slot ID", err))
		return
	}

	if err := h.service.Release(c.Request.Context(), doctorID, slotID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"message": "appointment rejected"})
}
