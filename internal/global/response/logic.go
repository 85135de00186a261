package response

import (
	"errors"
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

const (
	// ErrorContextKey gin.Context 中保存 *Error 的键
	ErrorContextKey = "error"
	// ResponseContextKey gin.Context 中保存响应体的键
	ResponseContextKey = "response_body"
)

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// Error 业务错误码。Message 面向前端，Origin 只在 debug 模式返回
type Error struct {
	Code    int32  `json:"code"`
	Message string `json:"msg"`
	Origin  string `json:"origin"`
	cause   error
}

func newError(code int32, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

func (e *Error) Error() string {
	return fmt.Sprintf("code:%d, msg:%s", e.Code, e.Message)
}

func (e *Error) GetCode() int32 {
	return e.Code
}

func (e *Error) Unwrap() error {
	return e.cause
}

// StackTrace 供 Sentry 提取原始错误的堆栈
func (e *Error) StackTrace() pkgerrors.StackTrace {
	var st stackTracer
	if errors.As(e.cause, &st) {
		return st.StackTrace()
	}
	return nil
}

// Is 错误码相同即视为同一错误
func (e *Error) Is(target error) bool {
	var t *Error
	return errors.As(target, &t) && e.Code == t.Code
}

// WithOrigin 附带原始错误，没有堆栈的错误会补上调用处的堆栈
func (e *Error) WithOrigin(err error) *Error {
	if err == nil {
		return e
	}
	if _, ok := err.(stackTracer); !ok {
		err = pkgerrors.WithStack(err)
	}
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Origin:  fmt.Sprintf("%+v", err),
		cause:   err,
	}
}

// WithTips 在消息后追加提示，release 模式也可见
func (e *Error) WithTips(tips ...string) *Error {
	var parts []string
	for _, t := range tips {
		if t = strings.TrimSpace(t); t != "" {
			parts = append(parts, t)
		}
	}
	if len(parts) == 0 {
		return e
	}
	return &Error{
		Code:    e.Code,
		Message: e.Message + "：" + strings.Join(parts, "；"),
		Origin:  e.Origin,
		cause:   e.cause,
	}
}
