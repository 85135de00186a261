package response

// 错误码规则：前三位对应 HTTP 语义，后两位区分具体原因
var (
	ErrInvalidRequest    = newError(40000, "请求参数错误")
	ErrValidation        = newError(40001, "数据校验失败")
	ErrTokenInvalid      = newError(40100, "Token 无效")
	ErrUnauthorized      = newError(40101, "未授权")
	ErrInvalidPassword   = newError(40102, "密码错误")
	ErrForbidden         = newError(40300, "无权限")
	ErrNotFound          = newError(40400, "资源不存在")
	ErrAlreadyExists     = newError(40900, "资源已存在")
	ErrConflict          = newError(40901, "操作冲突，请重试")
	ErrInvalidTransition = newError(42200, "非法的状态迁移")
	ErrInvalidState      = newError(42201, "当前状态不允许该操作")
	ErrServerInternal    = newError(50000, "服务器内部错误")
	ErrDatabase          = newError(50001, "数据库错误")
	ErrStorage           = newError(50002, "对象存储错误")
)

// IsServerError 5xx 类错误码
func (e *Error) IsServerError() bool {
	return e.Code >= 50000
}
