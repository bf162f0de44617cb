package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Routes 对外暴露的路由（用于启动摘要）
var Routes = []string{
	"GET  /exec/:method/:arg?",
	"GET  /get/:field/:arg?",
	"POST /transfer/:to/:amount",
	"GET  /metrics",
}

// shutdownGrace 关闭时等待在途请求的时间
const shutdownGrace = 30 * time.Second

// NewRouter 创建并注册所有路由
func NewRouter(h *Handler, metrics *Metrics, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		RequestID(),
		AccessLog(log),
		metrics.Middleware(),
		cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{http.MethodGet, http.MethodPost},
			AllowHeaders:    []string{"Content-Type", requestIDHeader},
			ExposeHeaders:   []string{requestIDHeader},
		}),
	)

	r.GET("/exec/:method", h.Exec)
	r.GET("/exec/:method/:arg", h.Exec)
	r.GET("/get/:field", h.Get)
	r.GET("/get/:field/:arg", h.Get)
	r.POST("/transfer/:to/:amount", h.Transfer)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))

	return r
}

// Server HTTP服务，监听端口在进程生命周期内只打开一次
type Server struct {
	srv *http.Server
	log *zap.Logger
}

// NewServer 创建HTTP服务
func NewServer(addr string, handler http.Handler, log *zap.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:    addr,
			Handler: handler,
		},
		log: log,
	}
}

// Run 启动监听，ctx 取消后优雅关闭
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
