package service

import (
	"context"

	"github.com/google/uuid"

	"shop-chat-go/internal/model"
	"shop-chat-go/internal/repository"
	"shop-chat-go/pkg/log"
)

// historyWindowSize 是提供给 LLM 的上下文窗口大小（会话最近 N 条消息）。
const historyWindowSize = 10

// llmFallbackText 是 LLM 调用失败时落库并返回的固定降级回复。
const llmFallbackText = "Sorry, I'm having trouble responding right now. Please try again in a moment."

// ChatService 定义了聊天操作的接口。
type ChatService interface {
	// HandleMessage 处理一轮对话：必要时创建会话，落库用户消息，取上下文窗口，
	// 生成回复（失败则降级为固定文案），落库 AI 消息，返回回复与会话 ID。
	HandleMessage(ctx context.Context, message string, sessionID *uuid.UUID) (string, uuid.UUID, error)
}

type chatService struct {
	replyGenerator   ReplyGenerator
	conversationRepo repository.ConversationRepository
}

// NewChatService 创建一个新的 ChatService 实例。
func NewChatService(replyGenerator ReplyGenerator, conversationRepo repository.ConversationRepository) ChatService {
	return &chatService{
		replyGenerator:   replyGenerator,
		conversationRepo: conversationRepo,
	}
}

// HandleMessage 按固定顺序驱动一次请求的五个 I/O 步骤，步骤间严格串行。
func (s *chatService) HandleMessage(ctx context.Context, message string, sessionID *uuid.UUID) (string, uuid.UUID, error) {
	// 1. 解析会话：未携带 sessionID 时创建新会话；携带时不校验其存在性，
	//    无效 ID 会在追加消息时因外键约束失败并向上传播
	var conversationID uuid.UUID
	if sessionID == nil {
		convo, err := s.conversationRepo.CreateConversation(ctx)
		if err != nil {
			return "", uuid.Nil, err
		}
		conversationID = convo.ID
	} else {
		conversationID = *sessionID
	}

	// 2. 落库用户消息
	if err := s.conversationRepo.AppendMessage(ctx, conversationID, model.SenderUser, message); err != nil {
		return "", uuid.Nil, err
	}

	// 3. 取上下文窗口，包含刚落库的这条用户消息
	history, err := s.conversationRepo.RecentHistory(ctx, conversationID, historyWindowSize)
	if err != nil {
		return "", uuid.Nil, err
	}

	// 4. 生成回复；任何生成失败都无条件降级为固定文案，不向调用方暴露错误
	reply, err := s.replyGenerator.GenerateReply(ctx, history, message)
	if err != nil {
		log.Errorf("生成回复失败，使用降级文案: %v", err)
		reply = llmFallbackText
	}

	// 5. 落库 AI 消息（真实回复或降级文案）。与第 2 步不在同一事务中，
	//    两次写入之间进程崩溃会留下没有应答的用户消息
	if err := s.conversationRepo.AppendMessage(ctx, conversationID, model.SenderAI, reply); err != nil {
		return "", uuid.Nil, err
	}

	return reply, conversationID, nil
}
