package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"slack-workspace-hub/services"

	"github.com/gin-gonic/gin"
)

type WorkspaceHandler struct {
	workspaces *services.WorkspaceService
}

func NewWorkspaceHandler(workspaces *services.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaces: workspaces}
}

// POST /api/workspaces
func (h *WorkspaceHandler) Register(c *gin.Context) {
	var req struct {
		Token       string `json:"token" binding:"required"`
		OwnerUserID string `json:"owner_user_id"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	ws, err := h.workspaces.Register(c.Request.Context(), services.RegisterInput{
		Token:       req.Token,
		OwnerUserID: req.OwnerUserID,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ws)
}

// GET /api/workspaces/:id
func (h *WorkspaceHandler) Get(c *gin.Context) {
	ws, err := h.workspaces.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ws)
}

// GET /api/workspaces?owner_user_id=U123&include_inactive=true
func (h *WorkspaceHandler) List(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"
	workspaces, err := h.workspaces.List(c.Query("owner_user_id"), includeInactive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workspaces": workspaces})
}

// DELETE /api/workspaces/:id
func (h *WorkspaceHandler) Deactivate(c *gin.Context) {
	if err := h.workspaces.Deactivate(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "workspace deactivated"})
}

// GET /api/workspaces/:id/channels?types=public_channel,private_channel&limit=50
func (h *WorkspaceHandler) ListChannels(c *gin.Context) {
	var kinds []string
	if types := c.Query("types"); types != "" {
		kinds = strings.Split(types, ",")
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	channels, err := h.workspaces.ListChannels(c.Request.Context(), c.Param("id"), kinds, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"channels": channels})
}
