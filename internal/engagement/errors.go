package engagement

import (
	"errors"
	"fmt"
)

// Kind 对外可区分的错误类别
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindInvalidTransition Kind = "invalid_transition"
	KindInvalidState      Kind = "invalid_state"
	KindConflict          Kind = "conflict"
	KindValidation        Kind = "validation"
)

// Error 业务错误，From/To 只在状态迁移相关错误中填写
type Error struct {
	Kind    Kind
	Message string
	From    string
	To      string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is 按 Kind 比较，便于 errors.Is(err, engagement.ErrConflict)
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

var (
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
	ErrInvalidState      = &Error{Kind: KindInvalidState}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrValidation        = &Error{Kind: KindValidation}
)

// KindOf 返回错误类别，非业务错误返回空串
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func InvalidState(format string, args ...any) error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// InvalidTransition entity 为展示用名称，如 "项目"、"投标"
func InvalidTransition[S ~string](entity string, from, to S) error {
	return &Error{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("%s状态不能从 %s 变更为 %s", entity, from, to),
		From:    string(from),
		To:      string(to),
	}
}
