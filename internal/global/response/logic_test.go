package response

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	t.Run("should append non-empty tips", func(t *testing.T) {
		got := ErrConflict.WithTips("项目 3 正在处理其他请求", " ")
		assert.Equal(t, "操作冲突，请重试：项目 3 正在处理其他请求", got.Message)
		assert.Same(t, ErrConflict, ErrConflict.WithTips())
	})

	t.Run("should match by code regardless of tips", func(t *testing.T) {
		assert.ErrorIs(t, ErrNotFound.WithTips("投标不存在"), ErrNotFound)
		assert.NotErrorIs(t, ErrNotFound, ErrConflict)
	})

	t.Run("should keep the cause and a stack", func(t *testing.T) {
		cause := errors.New("dial tcp: connection refused")
		got := ErrDatabase.WithOrigin(cause)
		assert.ErrorIs(t, got, cause)
		assert.NotEmpty(t, got.StackTrace())
		assert.Contains(t, got.Origin, "connection refused")
		assert.Same(t, ErrDatabase, ErrDatabase.WithOrigin(nil))
	})

	t.Run("should keep the origin when adding tips", func(t *testing.T) {
		got := ErrStorage.WithOrigin(errors.New("bucket missing")).WithTips("稍后重试")
		assert.Contains(t, got.Origin, "bucket missing")
		assert.NotNil(t, got.Unwrap())
	})
}
