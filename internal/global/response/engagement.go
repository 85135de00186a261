package response

import (
	"errors"

	"freelance-marketplace/internal/engagement"
)

var engagementCodes = map[engagement.Kind]*Error{
	engagement.KindNotFound:          ErrNotFound,
	engagement.KindInvalidTransition: ErrInvalidTransition,
	engagement.KindInvalidState:      ErrInvalidState,
	engagement.KindConflict:          ErrConflict,
	engagement.KindValidation:        ErrValidation,
}

// FromEngagement 把业务错误转换为对应错误码，业务提示放在 msg 中；其余错误视为服务器内部错误
func FromEngagement(err error) *Error {
	var e *engagement.Error
	if !errors.As(err, &e) {
		return ErrServerInternal.WithOrigin(err)
	}
	base, ok := engagementCodes[e.Kind]
	if !ok {
		return ErrServerInternal.WithOrigin(err)
	}
	if e.Message == "" {
		return base
	}
	return base.WithTips(e.Message)
}
