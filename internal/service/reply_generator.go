// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"

	"shop-chat-go/internal/config"
	"shop-chat-go/internal/model"
	"shop-chat-go/pkg/llm"
)

// defaultSystemPrompt 是配置未提供系统提示词时的兜底提示词。
const defaultSystemPrompt = `You are a helpful support agent for a small e-commerce store.

Policies:
- Shipping: Ships in 2-3 business days. Delivery: India 3-5 days, international 7-14 days.
- Returns: 7-day return window for unused items. Refunds in 5 business days.
- Support hours: Mon–Fri, 9am–6pm IST.

Answer clearly and concisely.`

// emptyCompletionText 是供应商正常返回但没有内容时的占位回复（按成功处理，不算失败）。
const emptyCompletionText = "Sorry, I couldn't generate a response."

// ReplyGenerator 定义了根据对话历史生成回复的接口。
type ReplyGenerator interface {
	// GenerateReply 基于历史与最新用户消息调用 LLM 生成回复。
	// 供应商侧失败时返回 llm.ErrLLMFailed，自身不做重试，降级策略由调用方决定。
	GenerateReply(ctx context.Context, history []model.Message, userMessage string) (string, error)
}

type replyGenerator struct {
	llmClient llm.Client
}

// NewReplyGenerator 创建一个新的 ReplyGenerator 实例。
func NewReplyGenerator(llmClient llm.Client) ReplyGenerator {
	return &replyGenerator{llmClient: llmClient}
}

// GenerateReply 构建 prompt 并调用 LLM 客户端。
func (g *replyGenerator) GenerateReply(ctx context.Context, history []model.Message, userMessage string) (string, error) {
	messages := g.composeMessages(history, userMessage)

	text, err := g.llmClient.ChatMessages(ctx, messages, g.buildGenerationParams())
	if err != nil {
		return "", err
	}
	if text == "" {
		return emptyCompletionText, nil
	}
	return text, nil
}

// composeMessages 按 system -> 历史 -> 最新用户消息 的顺序构建消息列表。
// 历史中 sender 为 "user" 的映射到 user 角色，其余（即 "ai"）映射到 assistant 角色。
func (g *replyGenerator) composeMessages(history []model.Message, userMessage string) []llm.Message {
	msgs := make([]llm.Message, 0, len(history)+2)
	msgs = append(msgs, llm.Message{Role: "system", Content: g.systemPrompt()})
	for _, m := range history {
		role := "assistant"
		if m.Sender == model.SenderUser {
			role = "user"
		}
		msgs = append(msgs, llm.Message{Role: role, Content: m.Text})
	}
	msgs = append(msgs, llm.Message{Role: "user", Content: userMessage})
	return msgs
}

func (g *replyGenerator) systemPrompt() string {
	if p := config.Conf.LLM.Prompt.System; p != "" {
		return p
	}
	return defaultSystemPrompt
}

// buildGenerationParams 从全局配置注入生成参数（若非零值）。
func (g *replyGenerator) buildGenerationParams() *llm.GenerationParams {
	var gp llm.GenerationParams
	if config.Conf.LLM.Generation.Temperature != 0 {
		t := config.Conf.LLM.Generation.Temperature
		gp.Temperature = &t
	}
	if config.Conf.LLM.Generation.MaxTokens != 0 {
		m := config.Conf.LLM.Generation.MaxTokens
		gp.MaxTokens = &m
	}
	if gp.Temperature == nil && gp.MaxTokens == nil {
		return nil
	}
	return &gp
}
