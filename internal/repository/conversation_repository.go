// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"shop-chat-go/internal/model"
)

// ConversationRepository 定义了会话与消息的持久化操作接口。
type ConversationRepository interface {
	CreateConversation(ctx context.Context) (*model.Conversation, error)
	AppendMessage(ctx context.Context, conversationID uuid.UUID, sender model.Sender, text string) error
	RecentHistory(ctx context.Context, conversationID uuid.UUID, limit int) ([]model.Message, error)
}

// conversationRepository 是 ConversationRepository 接口的 GORM 实现。
type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository 创建一个新的 ConversationRepository 实例。
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// CreateConversation 插入一条新的会话记录并返回。
func (r *conversationRepository) CreateConversation(ctx context.Context) (*model.Conversation, error) {
	convo := &model.Conversation{ID: uuid.New()}
	if err := r.db.WithContext(ctx).Create(convo).Error; err != nil {
		return nil, err
	}
	return convo, nil
}

// AppendMessage 向指定会话追加一条消息。
// conversationID 不存在时由外键约束报错并向上传播。
func (r *conversationRepository) AppendMessage(ctx context.Context, conversationID uuid.UUID, sender model.Sender, text string) error {
	msg := &model.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Sender:         sender,
		Text:           text,
	}
	return r.db.WithContext(ctx).Create(msg).Error
}

// RecentHistory 返回会话最近的 limit 条消息，按创建时间升序排列（窗口内最旧的在前）。
// 未知会话或空会话返回空切片，不报错。
func (r *conversationRepository) RecentHistory(ctx context.Context, conversationID uuid.UUID, limit int) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// 查询按时间倒序取窗口，这里翻转为升序
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
