package ping

import (
	"net/http"
	"testing"

	"freelance-marketplace/internal/global/metrics"
	"freelance-marketplace/test"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestPing(t *testing.T) {
	test.Setup()
	r := gin.New()
	(&ModulePing{}).InitRouter(r.Group("/api"))

	t.Run("should answer pong", func(t *testing.T) {
		resp := test.Serve(t, r, test.Request{Method: http.MethodGet, Path: "/api/ping"})
		test.NoError(t, resp)
		var body struct {
			Message string `json:"message"`
			Version string `json:"version"`
		}
		test.DecodeData(t, resp, &body)
		assert.Equal(t, "pong", body.Message)
		assert.Equal(t, version, body.Version)
	})

	t.Run("should expose engagement metrics", func(t *testing.T) {
		metrics.CascadeRejected.Add(2)
		w := test.Raw(t, r, test.Request{Method: http.MethodGet, Path: "/api/metrics"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "engagement_cascade_rejected_total")
	})
}
