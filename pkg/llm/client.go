// Package llm provides a client for the OpenAI-compatible chat completion endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"blog-helper-go/internal/config"
	"blog-helper-go/pkg/log"
)

// Client 是补全网关的抽象：发送一条 prompt，返回第一条 choice 的文本。
// 网关本身不做重试，超时与重试通过 WithTimeout / WithRetry 组合。
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ClientFunc 让普通函数满足 Client 接口。
type ClientFunc func(ctx context.Context, prompt string) (string, error)

// Complete 调用 f 本身。
func (f ClientFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

type openAIClient struct {
	cfg    config.LLMConfig
	client *http.Client
}

// NewClient 根据配置创建网关客户端。cfg 按值保存，构造之后不再读取全局配置。
func NewClient(cfg config.LLMConfig) Client {
	httpClient := &http.Client{}
	if cfg.TimeoutSeconds > 0 {
		httpClient.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &openAIClient{
		cfg:    cfg,
		client: httpClient,
	}
}

// Message 表示一条角色消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UserMessage 构造一条 role 为 user 的消息。
func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

type chatRequest struct {
	Model               string    `json:"model"`
	Messages            []Message `json:"messages"`
	Temperature         *float64  `json:"temperature,omitempty"`
	MaxCompletionTokens *int      `json:"max_completion_tokens,omitempty"`
}

// ChatResponse 对应补全接口的响应体，核心流程只读取 choices[0].message.content。
type ChatResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice 是模型返回的一个候选答案。
type Choice struct {
	Message      Message `json:"message"`
	Index        int     `json:"index"`
	FinishReason string  `json:"finish_reason"`
}

// Usage 记录本次调用的 token 消耗。
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func (c *openAIClient) buildRequest(prompt string) chatRequest {
	reqBody := chatRequest{
		Model:    c.cfg.Model,
		Messages: []Message{UserMessage(prompt)},
	}
	// 从配置注入生成参数，temperature 只要配置了就发送，包括 0
	if c.cfg.Generation.Temperature != nil {
		t := *c.cfg.Generation.Temperature
		reqBody.Temperature = &t
	}
	if c.cfg.Generation.MaxCompletionTokens != 0 {
		m := c.cfg.Generation.MaxCompletionTokens
		reqBody.MaxCompletionTokens = &m
	}
	return reqBody
}

// Complete 调用 /chat/completions 并返回第一条 choice 的内容。
func (c *openAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	reqBytes, err := json.Marshal(c.buildRequest(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		log.Errorf("[LLMClient] 调用补全接口失败, model: %s, error: %v", c.cfg.Model, err)
		return "", classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Errorf("[LLMClient] 补全接口返回非 200 状态码: %s, body: %s", resp.Status, string(bodyBytes))
		return "", statusError(resp.StatusCode, string(bodyBytes))
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		log.Errorf("[LLMClient] 解析补全接口响应失败, error: %v", err)
		return "", &Error{Kind: KindServer, StatusCode: resp.StatusCode, Message: "补全接口响应无法解析", Err: err}
	}
	if len(chatResp.Choices) == 0 {
		log.Warnf("[LLMClient] 补全接口返回了空的 choices, id: %s", chatResp.ID)
		return "", &Error{Kind: KindServer, StatusCode: resp.StatusCode, Message: "补全接口未返回任何 choice", Err: ErrEmptyCompletion}
	}

	log.Infow("[LLMClient] 补全成功",
		"id", chatResp.ID,
		"finishReason", chatResp.Choices[0].FinishReason,
		"totalTokens", chatResp.Usage.TotalTokens,
	)
	return chatResp.Choices[0].Message.Content, nil
}

// classifyTransportError 把网络层错误归类：超时归为 KindTimeout，调用方主动取消原样返回，其余视为上游不可用。
func classifyTransportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("chat request canceled: %w", err)
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return NewTimeoutError(err)
	}
	return &Error{Kind: KindServer, Message: "补全接口不可用", Err: err}
}
