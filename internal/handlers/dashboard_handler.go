package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/schedmate/internal/dashboard"
	"github.com/BruksfildServices01/schedmate/internal/httperr"
	"github.com/BruksfildServices01/schedmate/internal/httpresp"
	"github.com/BruksfildServices01/schedmate/internal/middleware"
)

type DashboardHandler struct{}

func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

type dashboardResponse struct {
	dashboard.Page
	Preferences   Preferences `json:"preferences"`
	WriteFragment string      `json:"write_fragment,omitempty"`
}

// Get renders the session's dashboard after a full load: the view comes
// from ?fragment= (empty means Today) and the data is fetched again.
func (h *DashboardHandler) Get(c *gin.Context) {
	ctrl := middleware.Controller(c)
	httpresp.OK(c, dashboardResponse{
		Page:        ctrl.Render(),
		Preferences: ReadPreferences(c),
	})
}

// Event applies one UI event and returns the new page plus the fragment
// the browser has to write, if any.
func (h *DashboardHandler) Event(c *gin.Context) {
	var ev dashboard.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid event.")
		return
	}

	ctrl := middleware.Controller(c)
	write, err := ctrl.Dispatch(c.Request.Context(), ev)
	if err != nil {
		if errors.Is(err, dashboard.ErrUnknownEvent) {
			httperr.BadRequest(c, "unknown_event", "Unknown event type.")
			return
		}
		writeMutationError(c, err)
		return
	}

	httpresp.OK(c, dashboardResponse{
		Page:          ctrl.Render(),
		Preferences:   ReadPreferences(c),
		WriteFragment: write,
	})
}
