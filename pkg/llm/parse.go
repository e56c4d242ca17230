package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ParseError 表示补全结果不是目标结构的合法 JSON，保留原始文本便于排查。
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse completion as JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Validator 由需要额外字段校验的目标结构实现。
type Validator interface {
	Validate() error
}

// ParseJSON 把 raw 严格解码为 T：不允许未知字段，不允许 JSON 之后的多余内容（例如 markdown 代码块的结尾）。
func ParseJSON[T any](raw string) (T, error) {
	var out T
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		var zero T
		return zero, &ParseError{Raw: raw, Err: err}
	}

	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		var zero T
		return zero, &ParseError{Raw: raw, Err: errors.New("unexpected content after JSON value")}
	}

	if v, ok := any(&out).(Validator); ok {
		if err := v.Validate(); err != nil {
			var zero T
			return zero, &ParseError{Raw: raw, Err: err}
		}
	}
	return out, nil
}
