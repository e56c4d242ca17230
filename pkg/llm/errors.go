package llm

import (
	"errors"
	"fmt"
)

// Kind 区分网关失败的类别。
type Kind int

const (
	KindClient Kind = iota + 1 // 4xx
	KindServer                 // 5xx 或上游不可用
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindClient:
		return "client"
	case KindServer:
		return "server"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// 供 errors.Is 匹配的哨兵错误，与 *Error 的 Kind 一一对应。
var (
	ErrClient  = errors.New("llm: client error")
	ErrServer  = errors.New("llm: server error")
	ErrTimeout = errors.New("llm: timeout")

	// ErrEmptyCompletion 表示响应中没有任何 choice。
	ErrEmptyCompletion = errors.New("llm: empty completion")
)

// Error 是网关返回的带标签错误。
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("llm %s error (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("llm %s error: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("llm %s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is 让 errors.Is(err, ErrClient/ErrServer/ErrTimeout) 按 Kind 匹配。
func (e *Error) Is(target error) bool {
	switch target {
	case ErrClient:
		return e.Kind == KindClient
	case ErrServer:
		return e.Kind == KindServer
	case ErrTimeout:
		return e.Kind == KindTimeout
	}
	return false
}

// NewTimeoutError 包装一次超时。
func NewTimeoutError(cause error) *Error {
	return &Error{Kind: KindTimeout, Message: "补全接口调用超时", Err: cause}
}

func statusError(status int, body string) *Error {
	switch {
	case status >= 400 && status < 500:
		return &Error{Kind: KindClient, StatusCode: status, Message: "补全接口客户端错误: " + body}
	default:
		return &Error{Kind: KindServer, StatusCode: status, Message: "补全接口服务端错误: " + body}
	}
}
