package service

import (
	"errors"
	"fmt"

	"blog-helper-go/internal/repository"
)

var (
	ErrPostNotFound       = errors.New("post not found")
	ErrMemberNotFound     = errors.New("member not found")
	ErrEmailDuplicate     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")

	// ErrVersionConflict 表示同一帖子的并发改进，调用方可以重新读取后再试。
	ErrVersionConflict = repository.ErrVersionConflict
)

// KeywordAnalysisError 表示关键词分析失败，Err 是网关错误或解析错误。
type KeywordAnalysisError struct {
	Keyword string
	Err     error
}

func (e *KeywordAnalysisError) Error() string {
	return fmt.Sprintf("keyword analysis failed for %q: %v", e.Keyword, e.Err)
}

func (e *KeywordAnalysisError) Unwrap() error { return e.Err }

// PostGenerationError 表示草稿生成失败，Err 是网关错误或解析错误。
type PostGenerationError struct {
	Keyword string
	Err     error
}

func (e *PostGenerationError) Error() string {
	return fmt.Sprintf("post generation failed for %q: %v", e.Keyword, e.Err)
}

func (e *PostGenerationError) Unwrap() error { return e.Err }

func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
