package handlers

import (
	"errors"
	"net/http"

	"slack-workspace-hub/services"

	"github.com/gin-gonic/gin"
)

// サービス層のエラー種別をHTTPステータスに対応させる
func respondError(c *gin.Context, err error) {
	var consistencyErr *services.ConsistencyError
	var deliveryErr *services.DeliveryError
	var upstreamErr *services.UpstreamError

	switch {
	case errors.Is(err, services.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredential):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrWorkspaceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &consistencyErr):
		// 送信自体は成功している。呼び出し側が再送しないよう明示して返す
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":        consistencyErr.Error(),
			"message_sent": true,
			"slack_ts":     consistencyErr.SlackTS,
		})
	case errors.As(err, &deliveryErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": deliveryErr.Error(), "slack_error": deliveryErr.Code})
	case errors.As(err, &upstreamErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": upstreamErr.Error()})
	case errors.Is(err, services.ErrIntegrity):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
