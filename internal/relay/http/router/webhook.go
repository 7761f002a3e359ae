package router

import (
	"adarelay.com/internal/relay/handler"
	"github.com/gin-gonic/gin"
)

func Webhook(r *gin.Engine, h *handler.Webhook) {
	wh := r.Group("/webhook")
	{
		wh.POST("/create-draft-order", h.CreateDraftOrder)
		wh.POST("/payment", h.Payment)
		wh.GET("/health", h.Health)
	}
}
