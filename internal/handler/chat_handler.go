// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shop-chat-go/internal/service"
	"shop-chat-go/pkg/log"
)

// chatMessageRequest 是 POST /chat/message 的请求体。
// message 为必填且不超过 2000 字符，sessionId 可选且必须是 UUID。
type chatMessageRequest struct {
	Message   string `json:"message" binding:"required,max=2000"`
	SessionID string `json:"sessionId" binding:"omitempty,uuid"`
}

// ChatHandler 负责处理聊天消息请求。
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler 创建一个新的 ChatHandler。
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// PostMessage 处理一条用户消息并返回 AI 回复。
// 校验失败返回 400 且不产生任何副作用；其余错误统一返回 500，细节只记日志不外泄。
func (h *ChatHandler) PostMessage(c *gin.Context) {
	var req chatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input."})
		return
	}

	var sessionID *uuid.UUID
	if req.SessionID != "" {
		id, err := uuid.Parse(req.SessionID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input."})
			return
		}
		sessionID = &id
	}

	reply, conversationID, err := h.chatService.HandleMessage(c.Request.Context(), req.Message, sessionID)
	if err != nil {
		log.Errorf("处理聊天消息失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reply":     reply,
		"sessionId": conversationID.String(),
	})
}
