package router

import (
	"html/template"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/postsmith/internal/handler"
	"github.com/postsmith/web"
)

const sessionName = "postsmith_session"

// Options 描述路由层的可配置项。
type Options struct {
	SessionSecret  string
	CORSOrigins    []string
	MaxUploadBytes int64
	Registry       *prometheus.Registry
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, opts Options) *gin.Engine {
	r := gin.Default()

	if opts.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = opts.MaxUploadBytes
	}

	// 配置会话中间件
	secret := strings.TrimSpace(opts.SessionSecret)
	if secret == "" {
		secret = "postsmith-dev-secret"
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 30 * 24 * 60 * 60, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(sessionName, store))
	// 预检请求不会命中具体路由，CORS 需要挂在引擎上
	r.Use(corsMiddleware(opts.CORSOrigins))

	// 加载内嵌模板并添加自定义函数
	r.SetHTMLTemplate(template.Must(template.New("").Funcs(templateFuncs()).ParseFS(web.Templates, "template/*.html")))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	if opts.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))
	}

	pages := r.Group("")
	pages.Use(api.LocaleMiddleware())
	{
		pages.GET("/", api.ShowGenerator)
		pages.POST("/", api.Generate)
		pages.GET("/download", api.Download)
		pages.POST("/download", api.Download)
	}

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/generate", api.GenerateJSON)
		apiGroup.GET("/runs", api.ListRuns)
	}

	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"title": titleCase,
	}
}

// titleCase 将首字母大写，用于下拉框展示平台、目标与语气名称。
func titleCase(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
