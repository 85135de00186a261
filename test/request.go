package test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"freelance-marketplace/internal/global/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// DoRequest 直接调用单个 handler，request 序列化为 JSON 请求体
func DoRequest(t *testing.T, handlerFunc gin.HandlerFunc, request any) (resp response.ResponseBody) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	requestBytes, err := json.Marshal(request)
	require.NoError(t, err)
	c.Request = httptest.NewRequest(http.MethodPost, "/test", bytes.NewReader(requestBytes))
	c.Request.Header.Set("Content-Type", "application/json")
	handlerFunc(c)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return
}

// Request 经过完整路由（含中间件）的请求
type Request struct {
	Method string
	Path   string
	Body   any
	Token  string
}

// Serve 返回解码后的响应体；Data 以 json.RawMessage 保留，用 DecodeData 解析
func Serve(t *testing.T, r http.Handler, req Request) (resp response.ResponseBody) {
	t.Helper()
	w := Raw(t, r, req)
	var raw struct {
		response.ResponseBody
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&raw))
	resp = raw.ResponseBody
	if len(raw.Data) > 0 {
		resp.Data = raw.Data
	}
	return
}

// Raw 返回原始响应，用于非 JSON 的接口
func Raw(t *testing.T, r http.Handler, req Request) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	httpReq := httptest.NewRequest(req.Method, req.Path, body)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httpReq)
	return w
}

// DecodeData 把 Serve 返回的 Data 解析到 v
func DecodeData(t *testing.T, resp response.ResponseBody, v any) {
	t.Helper()
	raw, ok := resp.Data.(json.RawMessage)
	require.True(t, ok, "响应没有 data 字段: %+v", resp)
	require.NoError(t, json.Unmarshal(raw, v))
}
