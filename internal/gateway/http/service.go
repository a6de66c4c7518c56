package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/yuzhii/p115gate/internal/conf"
	"github.com/yuzhii/p115gate/internal/p115"
)

// Service 对外的 HTTP 服务：接收定位请求，返回 302 跳转
type Service struct {
	conf   *conf.Config
	agent  *p115.Client
	router *gin.Engine
	server *http.Server
}

// NewService 创建 HTTP 服务
func NewService(cfg *conf.Config, agent *p115.Client) *Service {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Service{
		conf:   cfg,
		agent:  agent,
		router: gin.New(),
	}
	s.router.Use(gin.Recovery(), requestLogger(), corsMiddleware(cfg.CORSOrigins))
	s.initRouter()
	return s
}

// Serve 启动并阻塞运行，正常关闭时返回 nil
func (s *Service) Serve() error {
	s.server = &http.Server{
		Addr:    s.conf.Addr,
		Handler: s.router,
	}
	log.Debug().Str("addr", s.conf.Addr).Msg("http: listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop 优雅关闭，等待在途请求结束
func (s *Service) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router 暴露底层路由（测试用）
func (s *Service) Router() http.Handler {
	return s.router
}
