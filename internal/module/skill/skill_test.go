package skill

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"freelance-marketplace/internal/global/response"
	"freelance-marketplace/internal/model"
	"freelance-marketplace/test"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkill(t *testing.T) {
	test.Setup()
	db := test.SQLite(t)
	log = slog.New(slog.NewTextHandler(io.Discard, nil))
	r := gin.New()
	(&ModuleSkill{}).InitRouter(r.Group("/api"))
	admin := test.Token(1, model.RoleAdmin)

	category := model.Category{Name: "后端", IsActive: true}
	require.NoError(t, db.Create(&category).Error)
	require.NoError(t, db.Create(&model.Skill{Name: "Rust", Popularity: 3}).Error)

	t.Run("should create a skill under a category", func(t *testing.T) {
		resp := test.Serve(t, r, test.Request{
			Method: http.MethodPost,
			Path:   "/api/skill",
			Token:  admin,
			Body:   gin.H{"name": "Go", "category_id": category.ID},
		})
		test.NoError(t, resp)
	})

	t.Run("should refuse an unknown category", func(t *testing.T) {
		resp := test.Serve(t, r, test.Request{
			Method: http.MethodPost,
			Path:   "/api/skill",
			Token:  admin,
			Body:   gin.H{"name": "Java", "category_id": 404},
		})
		test.ErrorCode(t, response.ErrNotFound, resp)
	})

	t.Run("should list by popularity and filter by name", func(t *testing.T) {
		resp := test.Serve(t, r, test.Request{Method: http.MethodGet, Path: "/api/skill"})
		test.NoError(t, resp)
		var skills []model.Skill
		test.DecodeData(t, resp, &skills)
		require.Len(t, skills, 2)
		assert.Equal(t, "Rust", skills[0].Name)

		resp = test.Serve(t, r, test.Request{Method: http.MethodGet, Path: "/api/skill?search=G"})
		test.NoError(t, resp)
		test.DecodeData(t, resp, &skills)
		require.Len(t, skills, 1)
		assert.Equal(t, "Go", skills[0].Name)
	})

	t.Run("should forbid non-admin writes", func(t *testing.T) {
		resp := test.Serve(t, r, test.Request{
			Method: http.MethodPost,
			Path:   "/api/skill",
			Token:  test.Token(5, model.RoleFreelancer),
			Body:   gin.H{"name": "PHP"},
		})
		test.ErrorEqual(t, response.ErrForbidden, resp)
	})
}
