// Package model 包含了应用的数据模型定义。
package model

import (
	"time"

	"github.com/google/uuid"
)

// Conversation 代表一个对话会话，在首条消息到来且调用方未携带会话 ID 时惰性创建。
// 本服务只创建和读取会话，不做更新和删除。
type Conversation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Conversation) TableName() string {
	return "conversations"
}
