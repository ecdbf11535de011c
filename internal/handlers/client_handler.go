package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/schedmate/internal/dashboard"
	"github.com/BruksfildServices01/schedmate/internal/httperr"
	"github.com/BruksfildServices01/schedmate/internal/httpresp"
	"github.com/BruksfildServices01/schedmate/internal/middleware"
)

type ClientHandler struct{}

func NewClientHandler() *ClientHandler {
	return &ClientHandler{}
}

// ======================================================
// LIST CLIENTS
// ======================================================

// List reloads the client list and returns it newest first. A failed
// reload answers with the last list the session saw.
func (h *ClientHandler) List(c *gin.Context) {
	ctrl := middleware.Controller(c)
	_ = ctrl.Clients.List(c.Request.Context())

	rows := dashboard.RenderClients(ctrl.State()).Rows

	query := strings.ToLower(strings.TrimSpace(c.Query("query")))
	if query != "" {
		filtered := rows[:0:0]
		for _, r := range rows {
			if strings.Contains(strings.ToLower(r.Name), query) ||
				strings.Contains(strings.ToLower(r.Email), query) ||
				strings.Contains(r.Phone, query) {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}

	httpresp.List(c, rows)
}

// ======================================================
// CREATE / UPDATE
// ======================================================

func (h *ClientHandler) Create(c *gin.Context) {
	var req dashboard.ClientInput
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}
	req.ID = 0

	rec, err := middleware.Controller(c).Clients.Save(c.Request.Context(), req)
	if err != nil {
		writeMutationError(c, err)
		return
	}

	httpresp.Created(c, rec)
}

func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dashboard.ClientInput
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}
	req.ID = id

	rec, err := middleware.Controller(c).Clients.Save(c.Request.Context(), req)
	if err != nil {
		writeMutationError(c, err)
		return
	}

	httpresp.OK(c, rec)
}

// ======================================================
// DELETE
// ======================================================

// Delete needs ?confirm=true; without it nothing is removed.
func (h *ClientHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	confirmed, _ := strconv.ParseBool(c.Query("confirm"))
	if err := middleware.Controller(c).Clients.Delete(c.Request.Context(), id, confirmed); err != nil {
		writeMutationError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		httperr.BadRequest(c, "invalid_id", "Invalid id.")
		return 0, false
	}
	return uint(id), true
}
