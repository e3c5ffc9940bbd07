package model

import (
	"time"

	"github.com/google/uuid"
)

// Sender 标识消息的发送方。
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Message 代表对话中的一条消息，创建后不再修改。
// 会话内的顺序以创建时间升序为准。
type Message struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID uuid.UUID     `gorm:"type:uuid;index;not null" json:"conversationId"`
	Conversation   *Conversation `gorm:"foreignKey:ConversationID" json:"-"`
	Sender         Sender        `gorm:"type:varchar(8);not null" json:"sender"`
	Text           string        `gorm:"type:text;not null" json:"text"`
	CreatedAt      time.Time     `gorm:"autoCreateTime" json:"createdAt"`
}

func (Message) TableName() string {
	return "messages"
}
