package middleware

import (
	"net/http"
	"slices"

	"freelance-marketplace/config"

	"github.com/rs/cors"
)

// Cors 包在 gin 引擎外层，预检请求不进入路由；导出接口需要暴露 Content-Disposition
func Cors(c config.Cors) *cors.Cors {
	opts := cors.Options{
		AllowedOrigins: c.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{"Content-Disposition", RequestIDHeader},
		AllowCredentials: c.AllowCredentials && !slices.Contains(c.AllowedOrigins, "*"),
		MaxAge:           c.MaxAgeSec,
	}
	if len(c.AllowedOrigins) == 0 {
		// rs/cors 把空白名单当作放行所有来源
		opts.AllowOriginFunc = func(string) bool { return false }
	}
	return cors.New(opts)
}
