package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// initRouter 初始化所有路由
func (s *Service) initRouter() {
	log.Debug().Msg("http: initializing router")
	s.router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// 根路径和任意路径都是定位入口，路径本身兜底作为文件名来源，
	// 所以挂在 NoRoute 上而不是逐个注册
	s.router.NoRoute(s.handleRedirect)
}
