package handlers

import (
	"net/http"
	"strconv"

	"slack-workspace-hub/services"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	mentions *services.MentionService
	ledger   *services.LedgerService
}

func NewMessageHandler(mentions *services.MentionService, ledger *services.LedgerService) *MessageHandler {
	return &MessageHandler{mentions: mentions, ledger: ledger}
}

// GET /api/workspaces/:id/mentions?channel_id=C123&days_back=7&limit=20
func (h *MessageHandler) FindMentions(c *gin.Context) {
	daysBack, err := strconv.Atoi(c.DefaultQuery("days_back", "7"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days_back must be a number"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a number"})
		return
	}

	hits, err := h.mentions.FindMentions(c.Request.Context(), c.Param("id"), c.Query("channel_id"), daysBack, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mentions": hits})
}

// POST /api/workspaces/:id/messages
func (h *MessageHandler) Post(c *gin.Context) {
	var req struct {
		ChannelID string `json:"channel_id" binding:"required"`
		Text      string `json:"text" binding:"required"`
		ThreadTS  string `json:"thread_ts"`
		UserID    string `json:"user_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "channel_id and text are required"})
		return
	}

	record, err := h.ledger.PostAndRecord(c.Request.Context(), services.PostInput{
		WorkspaceID: c.Param("id"),
		ChannelID:   req.ChannelID,
		Text:        req.Text,
		ThreadTS:    req.ThreadTS,
		UserID:      req.UserID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// GET /api/messages?workspace_id=...&channel_id=...&limit=20&offset=0
func (h *MessageHandler) ListPosted(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	records, err := h.ledger.ListPosted(services.LedgerFilter{
		WorkspaceID: c.Query("workspace_id"),
		ChannelID:   c.Query("channel_id"),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": records})
}
