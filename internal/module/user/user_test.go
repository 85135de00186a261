package user

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"freelance-marketplace/internal/global/jwt"
	"freelance-marketplace/internal/global/response"
	"freelance-marketplace/internal/model"
	"freelance-marketplace/test"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	test.Setup()
	test.SQLite(t)
	log = slog.New(slog.NewTextHandler(io.Discard, nil))
	r := gin.New()
	(&ModuleUser{}).InitRouter(r.Group("/api"))
	return r
}

func TestRegisterAndLogin(t *testing.T) {
	r := newRouter(t)
	register := func(email, role string) response.ResponseBody {
		return test.Serve(t, r, test.Request{
			Method: http.MethodPost,
			Path:   "/api/user/register",
			Body: gin.H{
				"email":      email,
				"password":   "correct-horse",
				"role":       role,
				"first_name": "三",
				"last_name":  "张",
			},
		})
	}

	t.Run("should register and hand out a token for the new role", func(t *testing.T) {
		resp := register("Zhang@Example.com", "client")
		test.NoError(t, resp)
		var got LoginResp
		test.DecodeData(t, resp, &got)
		assert.Equal(t, "zhang@example.com", got.User.Email)

		claims, ok := jwt.ParseToken(got.Token)
		require.True(t, ok)
		assert.Equal(t, model.RoleClient, claims.Role)
		assert.Equal(t, got.User.ID, claims.UserID)
	})

	t.Run("should refuse a taken email", func(t *testing.T) {
		test.ErrorCode(t, response.ErrAlreadyExists, register("zhang@example.com", "freelancer"))
	})

	t.Run("should not allow self-registered admins", func(t *testing.T) {
		test.ErrorCode(t, response.ErrInvalidRequest, register("root@example.com", "admin"))
	})

	t.Run("should log in case-insensitively", func(t *testing.T) {
		resp := test.Serve(t, r, test.Request{
			Method: http.MethodPost,
			Path:   "/api/user/login",
			Body:   gin.H{"email": "ZHANG@example.com", "password": "correct-horse"},
		})
		test.NoError(t, resp)
		var got LoginResp
		test.DecodeData(t, resp, &got)

		me := test.Serve(t, r, test.Request{Method: http.MethodGet, Path: "/api/user/me", Token: got.Token})
		test.NoError(t, me)
		var user model.User
		test.DecodeData(t, me, &user)
		assert.Equal(t, got.User.ID, user.ID)
	})

	t.Run("should reject a wrong password", func(t *testing.T) {
		resp := test.Serve(t, r, test.Request{
			Method: http.MethodPost,
			Path:   "/api/user/login",
			Body:   gin.H{"email": "zhang@example.com", "password": "wrong-horse"},
		})
		test.ErrorEqual(t, response.ErrInvalidPassword, resp)
	})
}
