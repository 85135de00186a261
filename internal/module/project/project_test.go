package project

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"freelance-marketplace/config"
	"freelance-marketplace/internal/engagement"
	"freelance-marketplace/internal/engagement/enginetest"
	"freelance-marketplace/internal/global/attachment"
	"freelance-marketplace/internal/global/lock"
	"freelance-marketplace/internal/global/response"
	"freelance-marketplace/internal/model"
	"freelance-marketplace/test"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	clientID = 100
	otherID  = 101
	adminID  = 1
)

type env struct {
	router   *gin.Engine
	store    *enginetest.Store
	category uint
}

func newEnv(t *testing.T) *env {
	t.Helper()
	test.Setup()
	log = slog.New(slog.NewTextHandler(io.Discard, nil))
	store := enginetest.NewStore()
	svc = engagement.NewService(store, lock.NewLocalLocker(lock.Options{Wait: 2 * time.Second}), engagement.WithLogger(log))
	bucket = attachment.NewBucket(config.S3{
		Endpoint:        "http://minio.local:9000",
		Bucket:          "attachments",
		AccessKey:       "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		UsePathStyle:    true,
	})

	r := gin.New()
	(&ModuleProject{}).InitRouter(r.Group("/api"))
	return &env{router: r, store: store, category: store.AddCategory()}
}

func (e *env) create(t *testing.T, token string) model.Project {
	t.Helper()
	resp := test.Serve(t, e.router, test.Request{
		Method: http.MethodPost,
		Path:   "/api/project",
		Token:  token,
		Body: gin.H{
			"title":       "官网改版",
			"description": "重做公司官网首页",
			"category_id": e.category,
			"budget":      5000,
		},
	})
	test.NoError(t, resp)
	var p model.Project
	test.DecodeData(t, resp, &p)
	return p
}

func (e *env) setStatus(t *testing.T, id uint, status string, token string) response.ResponseBody {
	t.Helper()
	return test.Serve(t, e.router, test.Request{
		Method: http.MethodPatch,
		Path:   "/api/project/" + itoa(id) + "/status",
		Token:  token,
		Body:   gin.H{"status": status},
	})
}

func TestCreateProject(t *testing.T) {
	e := newEnv(t)
	client := test.Token(clientID, model.RoleClient)

	t.Run("should create a draft owned by the caller", func(t *testing.T) {
		p := e.create(t, client)
		assert.Equal(t, model.ProjectStatusDraft, p.Status)
		assert.Equal(t, uint(clientID), p.ClientID)
	})

	t.Run("should forbid freelancers", func(t *testing.T) {
		resp := test.Serve(t, e.router, test.Request{
			Method: http.MethodPost,
			Path:   "/api/project",
			Token:  test.Token(7, model.RoleFreelancer),
			Body:   gin.H{"title": "x", "description": "y", "category_id": e.category, "budget": 1},
		})
		test.ErrorEqual(t, response.ErrForbidden, resp)
	})

	t.Run("should require a token", func(t *testing.T) {
		resp := test.Serve(t, e.router, test.Request{Method: http.MethodPost, Path: "/api/project", Body: gin.H{}})
		test.ErrorEqual(t, response.ErrTokenInvalid, resp)
	})

	t.Run("should reject a non-positive budget", func(t *testing.T) {
		resp := test.Serve(t, e.router, test.Request{
			Method: http.MethodPost,
			Path:   "/api/project",
			Token:  client,
			Body:   gin.H{"title": "x", "description": "y", "category_id": e.category, "budget": -1},
		})
		test.ErrorCode(t, response.ErrInvalidRequest, resp)
	})

	t.Run("should report an unknown category as not found", func(t *testing.T) {
		resp := test.Serve(t, e.router, test.Request{
			Method: http.MethodPost,
			Path:   "/api/project",
			Token:  client,
			Body:   gin.H{"title": "x", "description": "y", "category_id": 999, "budget": 10},
		})
		test.ErrorCode(t, response.ErrNotFound, resp)
	})
}

func TestChangeProjectStatus(t *testing.T) {
	e := newEnv(t)
	client := test.Token(clientID, model.RoleClient)

	t.Run("should publish a draft", func(t *testing.T) {
		p := e.create(t, client)
		resp := e.setStatus(t, p.ID, "open", client)
		test.NoError(t, resp)
		var got model.Project
		test.DecodeData(t, resp, &got)
		assert.Equal(t, model.ProjectStatusOpen, got.Status)
	})

	t.Run("should refuse illegal transitions", func(t *testing.T) {
		p := e.create(t, client)
		resp := e.setStatus(t, p.ID, "completed", client)
		test.ErrorCode(t, response.ErrInvalidTransition, resp)
	})

	t.Run("should reject unknown statuses at binding", func(t *testing.T) {
		p := e.create(t, client)
		resp := e.setStatus(t, p.ID, "archived", client)
		test.ErrorCode(t, response.ErrInvalidRequest, resp)
	})

	t.Run("should forbid other clients", func(t *testing.T) {
		p := e.create(t, client)
		resp := e.setStatus(t, p.ID, "open", test.Token(otherID, model.RoleClient))
		test.ErrorEqual(t, response.ErrForbidden, resp)
	})

	t.Run("should let admins act on any project", func(t *testing.T) {
		p := e.create(t, client)
		resp := e.setStatus(t, p.ID, "cancelled", test.Token(adminID, model.RoleAdmin))
		test.NoError(t, resp)
	})

	t.Run("should reject a malformed id", func(t *testing.T) {
		resp := e.setStatus(t, 0, "open", client)
		test.ErrorCode(t, response.ErrInvalidRequest, resp)
	})
}

func TestUpdateAndDeleteProject(t *testing.T) {
	e := newEnv(t)
	client := test.Token(clientID, model.RoleClient)
	admin := test.Token(adminID, model.RoleAdmin)

	t.Run("should update only the given fields", func(t *testing.T) {
		p := e.create(t, client)
		resp := test.Serve(t, e.router, test.Request{
			Method: http.MethodPut,
			Path:   "/api/project/" + itoa(p.ID),
			Token:  client,
			Body:   gin.H{"budget": 8000},
		})
		test.NoError(t, resp)
		var got model.Project
		test.DecodeData(t, resp, &got)
		assert.Equal(t, 8000.0, got.Budget)
		assert.Equal(t, p.Title, got.Title)
	})

	t.Run("should hide deleted projects until an admin restores them", func(t *testing.T) {
		p := e.create(t, client)
		path := "/api/project/" + itoa(p.ID)

		test.NoError(t, test.Serve(t, e.router, test.Request{Method: http.MethodDelete, Path: path, Token: client}))
		test.ErrorCode(t, response.ErrNotFound, test.Serve(t, e.router, test.Request{Method: http.MethodGet, Path: path}))

		resp := test.Serve(t, e.router, test.Request{Method: http.MethodPut, Path: path + "/restore", Token: client})
		test.ErrorEqual(t, response.ErrForbidden, resp)

		resp = test.Serve(t, e.router, test.Request{Method: http.MethodPut, Path: path + "/restore", Token: admin})
		test.NoError(t, resp)
		test.NoError(t, test.Serve(t, e.router, test.Request{Method: http.MethodGet, Path: path}))
	})
}

func TestListProjects(t *testing.T) {
	e := newEnv(t)
	client := test.Token(clientID, model.RoleClient)
	other := test.Token(otherID, model.RoleClient)
	for range 3 {
		e.create(t, client)
	}
	published := e.create(t, other)
	test.NoError(t, e.setStatus(t, published.ID, "open", other))

	list := func(t *testing.T, path string) engagement.PageResult[model.Project] {
		t.Helper()
		resp := test.Serve(t, e.router, test.Request{Method: http.MethodGet, Path: path})
		test.NoError(t, resp)
		var res engagement.PageResult[model.Project]
		test.DecodeData(t, resp, &res)
		return res
	}

	t.Run("should page through all projects", func(t *testing.T) {
		res := list(t, "/api/project?limit=2&page=2")
		assert.Equal(t, int64(4), res.Total)
		assert.Len(t, res.Items, 2)
		assert.Equal(t, 2, res.Page)
	})

	t.Run("should filter by status", func(t *testing.T) {
		res := list(t, "/api/project?status=open")
		require.Len(t, res.Items, 1)
		assert.Equal(t, published.ID, res.Items[0].ID)
	})

	t.Run("should list a client's projects", func(t *testing.T) {
		res := list(t, "/api/project/client/"+itoa(clientID))
		assert.Equal(t, int64(3), res.Total)
	})

	t.Run("should reject unknown sort keys", func(t *testing.T) {
		resp := test.Serve(t, e.router, test.Request{Method: http.MethodGet, Path: "/api/project?sort_by=password"})
		test.ErrorCode(t, response.ErrValidation, resp)
	})

	t.Run("should reject unknown statuses", func(t *testing.T) {
		resp := test.Serve(t, e.router, test.Request{Method: http.MethodGet, Path: "/api/project?status=archived"})
		test.ErrorCode(t, response.ErrInvalidRequest, resp)
	})
}

func TestPresignAttachment(t *testing.T) {
	e := newEnv(t)

	t.Run("should return a signed put url", func(t *testing.T) {
		resp := test.Serve(t, e.router, test.Request{
			Method: http.MethodPost,
			Path:   "/api/project/attachment/presign",
			Token:  test.Token(7, model.RoleFreelancer),
			Body:   gin.H{"owner": "proposal", "filename": "cv.pdf", "content_type": "application/pdf"},
		})
		test.NoError(t, resp)
		var up attachment.Upload
		test.DecodeData(t, resp, &up)
		assert.Equal(t, http.MethodPut, up.Method)
		assert.True(t, strings.HasPrefix(up.FileKey, "proposal/7/"), up.FileKey)
		assert.Contains(t, up.UploadURL, "X-Amz-Signature=")
	})

	t.Run("should reject unknown owners", func(t *testing.T) {
		resp := test.Serve(t, e.router, test.Request{
			Method: http.MethodPost,
			Path:   "/api/project/attachment/presign",
			Token:  test.Token(7, model.RoleFreelancer),
			Body:   gin.H{"owner": "user", "filename": "cv.pdf"},
		})
		test.ErrorCode(t, response.ErrInvalidRequest, resp)
	})
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
