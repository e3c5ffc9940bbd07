package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler 处理存活探测请求。
type HealthHandler struct {
	port string
}

// NewHealthHandler 创建一个新的 HealthHandler。
func NewHealthHandler(port string) *HealthHandler {
	return &HealthHandler{port: port}
}

// Check 返回包含监听端口的 JSON 字符串，不读写任何持久化状态。
func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, fmt.Sprintf("Running on PORT %s", h.port))
}
