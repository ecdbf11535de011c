package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/schedmate/internal/dashboard"
	"github.com/BruksfildServices01/schedmate/internal/httperr"
	"github.com/BruksfildServices01/schedmate/internal/httpresp"
	"github.com/BruksfildServices01/schedmate/internal/middleware"
)

type BookingHandler struct{}

func NewBookingHandler() *BookingHandler {
	return &BookingHandler{}
}

type todayResponse struct {
	Date     string                  `json:"date"`
	Bookings []dashboard.BookingLine `json:"bookings"`
}

// ListToday returns today's bookings in the configured timezone.
func (h *BookingHandler) ListToday(c *gin.Context) {
	ctrl := middleware.Controller(c)
	_ = ctrl.Bookings.List(c.Request.Context())

	today := dashboard.RenderToday(ctrl.State())
	date := today.Date
	if date == "" {
		date = ctrl.Bookings.Today()
	}

	httpresp.OK(c, todayResponse{Date: date, Bookings: today.Bookings})
}

func (h *BookingHandler) Create(c *gin.Context) {
	var req dashboard.BookingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}
	req.ID = 0

	rec, err := middleware.Controller(c).Bookings.Save(c.Request.Context(), req)
	if err != nil {
		writeMutationError(c, err)
		return
	}

	httpresp.Created(c, rec)
}

func (h *BookingHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dashboard.BookingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}
	req.ID = id

	rec, err := middleware.Controller(c).Bookings.Save(c.Request.Context(), req)
	if err != nil {
		writeMutationError(c, err)
		return
	}

	httpresp.OK(c, rec)
}
