package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-chat-go/internal/model"
	"shop-chat-go/pkg/llm"
	"shop-chat-go/pkg/log"
)

func TestMain(m *testing.M) {
	log.Init("error", "console")
	os.Exit(m.Run())
}

// fakeConversationRepo 是 repository.ConversationRepository 的内存替身。
type fakeConversationRepo struct {
	nextConversationID uuid.UUID
	history            []model.Message

	createErr    error
	appendErr    error
	appendErrFor model.Sender
	historyErr   error

	createdCount int
	appended     []model.Message
	historyLimit int
}

func (f *fakeConversationRepo) CreateConversation(ctx context.Context) (*model.Conversation, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.createdCount++
	return &model.Conversation{ID: f.nextConversationID, CreatedAt: time.Now()}, nil
}

func (f *fakeConversationRepo) AppendMessage(ctx context.Context, conversationID uuid.UUID, sender model.Sender, text string) error {
	if f.appendErr != nil && sender == f.appendErrFor {
		return f.appendErr
	}
	f.appended = append(f.appended, model.Message{ConversationID: conversationID, Sender: sender, Text: text})
	return nil
}

func (f *fakeConversationRepo) RecentHistory(ctx context.Context, conversationID uuid.UUID, limit int) ([]model.Message, error) {
	f.historyLimit = limit
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.history, nil
}

// fakeReplyGenerator 是 ReplyGenerator 的替身，记录收到的入参。
type fakeReplyGenerator struct {
	reply string
	err   error

	called         bool
	gotHistory     []model.Message
	gotUserMessage string
}

func (f *fakeReplyGenerator) GenerateReply(ctx context.Context, history []model.Message, userMessage string) (string, error) {
	f.called = true
	f.gotHistory = history
	f.gotUserMessage = userMessage
	return f.reply, f.err
}

func TestHandleMessageNewConversation(t *testing.T) {
	repo := &fakeConversationRepo{nextConversationID: uuid.New()}
	gen := &fakeReplyGenerator{reply: "It ships in 2-3 business days."}
	svc := NewChatService(gen, repo)

	reply, conversationID, err := svc.HandleMessage(context.Background(), "Where is my order?", nil)
	require.NoError(t, err)

	assert.Equal(t, "It ships in 2-3 business days.", reply)
	assert.Equal(t, repo.nextConversationID, conversationID)
	assert.Equal(t, 1, repo.createdCount)

	// 一轮请求恰好追加一条 user 消息和一条 ai 消息，顺序固定
	require.Len(t, repo.appended, 2)
	assert.Equal(t, model.SenderUser, repo.appended[0].Sender)
	assert.Equal(t, "Where is my order?", repo.appended[0].Text)
	assert.Equal(t, model.SenderAI, repo.appended[1].Sender)
	assert.Equal(t, "It ships in 2-3 business days.", repo.appended[1].Text)
	assert.Equal(t, conversationID, repo.appended[0].ConversationID)
	assert.Equal(t, conversationID, repo.appended[1].ConversationID)
}

func TestHandleMessageExistingConversation(t *testing.T) {
	repo := &fakeConversationRepo{}
	gen := &fakeReplyGenerator{reply: "You're welcome!"}
	svc := NewChatService(gen, repo)

	existing := uuid.New()
	reply, conversationID, err := svc.HandleMessage(context.Background(), "thanks", &existing)
	require.NoError(t, err)

	assert.Equal(t, "You're welcome!", reply)
	// 调用方携带的会话 ID 原样使用，不新建会话
	assert.Equal(t, existing, conversationID)
	assert.Equal(t, 0, repo.createdCount)
	require.Len(t, repo.appended, 2)
	assert.Equal(t, existing, repo.appended[0].ConversationID)
}

func TestHandleMessageHistoryWindow(t *testing.T) {
	history := []model.Message{
		{Sender: model.SenderUser, Text: "hi"},
		{Sender: model.SenderAI, Text: "hello"},
		{Sender: model.SenderUser, Text: "thanks"},
	}
	repo := &fakeConversationRepo{nextConversationID: uuid.New(), history: history}
	gen := &fakeReplyGenerator{reply: "ok"}
	svc := NewChatService(gen, repo)

	_, _, err := svc.HandleMessage(context.Background(), "thanks", nil)
	require.NoError(t, err)

	// 上下文窗口固定取最近 10 条，生成器同时收到窗口和原始消息
	assert.Equal(t, 10, repo.historyLimit)
	assert.Equal(t, history, gen.gotHistory)
	assert.Equal(t, "thanks", gen.gotUserMessage)
}

func TestHandleMessageFallbackOnLLMFailure(t *testing.T) {
	repo := &fakeConversationRepo{nextConversationID: uuid.New()}
	gen := &fakeReplyGenerator{err: fmt.Errorf("%w: rate limited", llm.ErrLLMFailed)}
	svc := NewChatService(gen, repo)

	reply, _, err := svc.HandleMessage(context.Background(), "Where is my order?", nil)
	require.NoError(t, err)

	// 降级文案既返回给调用方，也作为 ai 消息落库
	assert.Equal(t, llmFallbackText, reply)
	require.Len(t, repo.appended, 2)
	assert.Equal(t, model.SenderAI, repo.appended[1].Sender)
	assert.Equal(t, llmFallbackText, repo.appended[1].Text)
}

func TestHandleMessageCreateConversationError(t *testing.T) {
	repo := &fakeConversationRepo{createErr: errors.New("connection refused")}
	gen := &fakeReplyGenerator{reply: "ok"}
	svc := NewChatService(gen, repo)

	_, _, err := svc.HandleMessage(context.Background(), "hi", nil)
	assert.Error(t, err)
	assert.Empty(t, repo.appended)
	assert.False(t, gen.called)
}

func TestHandleMessageUserAppendError(t *testing.T) {
	repo := &fakeConversationRepo{
		nextConversationID: uuid.New(),
		appendErr:          errors.New("foreign key violation"),
		appendErrFor:       model.SenderUser,
	}
	gen := &fakeReplyGenerator{reply: "ok"}
	svc := NewChatService(gen, repo)

	_, _, err := svc.HandleMessage(context.Background(), "hi", nil)
	assert.Error(t, err)
	// 用户消息落库失败即中断，不会调用 LLM
	assert.False(t, gen.called)
	assert.Empty(t, repo.appended)
}

func TestHandleMessageAIAppendError(t *testing.T) {
	repo := &fakeConversationRepo{
		nextConversationID: uuid.New(),
		appendErr:          errors.New("connection reset"),
		appendErrFor:       model.SenderAI,
	}
	gen := &fakeReplyGenerator{reply: "ok"}
	svc := NewChatService(gen, repo)

	_, _, err := svc.HandleMessage(context.Background(), "hi", nil)
	assert.Error(t, err)
	// 用户消息已落库，ai 消息写入失败向上传播，没有补偿回滚
	require.Len(t, repo.appended, 1)
	assert.Equal(t, model.SenderUser, repo.appended[0].Sender)
}

func TestHandleMessageHistoryError(t *testing.T) {
	repo := &fakeConversationRepo{
		nextConversationID: uuid.New(),
		historyErr:         errors.New("connection reset"),
	}
	gen := &fakeReplyGenerator{reply: "ok"}
	svc := NewChatService(gen, repo)

	_, _, err := svc.HandleMessage(context.Background(), "hi", nil)
	assert.Error(t, err)
	assert.False(t, gen.called)
}
