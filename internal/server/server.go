package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "fable/docs"
	"fable/internal/config"
	"fable/internal/handler"
	authHandler "fable/internal/handler/auth"
	storyHandler "fable/internal/handler/story"
	"fable/internal/pkg/jwt"
	"fable/internal/server/middleware"
	storysvc "fable/internal/service/story"
)

// Server HTTP 服务器
type Server struct {
	cfg     *config.Config
	engine  *gin.Engine
	svc     *storysvc.Service
	cleanup func()
}

// New 创建服务器实例
func New(cfg *config.Config) (*Server, error) {
	// 设置 Gin 模式
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// 组装故事服务（外部依赖缺失时降级运行）
	svc, cleanup, err := storysvc.Bootstrap(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	srv := &Server{
		cfg:     cfg,
		engine:  engine,
		svc:     svc,
		cleanup: cleanup,
	}

	srv.setupRoutes()

	return srv, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// 全局中间件
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS())

	// 健康检查
	healthHandler := handler.NewHealthHandler()
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	// Swagger 文档
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1
	v1 := s.engine.Group("/api/v1")

	// 认证接口（公开）
	// JWT 密钥和访问密钥哈希都配置时启用认证，否则全部接口公开访问
	protected := v1
	if s.cfg.Auth.JWTSecret != "" && s.cfg.Auth.AccessKeyHash != "" {
		jwtUtil := jwt.NewJWT(s.cfg.Auth.JWTSecret, s.cfg.Auth.TokenExpiry)
		authHdl := authHandler.NewHandler(&s.cfg.Auth, jwtUtil)
		v1.POST("/auth/token", authHdl.Token)

		protected = v1.Group("")
		protected.Use(middleware.Auth(jwtUtil))
	} else {
		log.Warn().Msg("auth not configured, API endpoints are open")
	}

	// 故事接口
	storyHdl := storyHandler.NewHandler(s.svc)
	protected.POST("/stories", storyHdl.CreateStory)
	protected.GET("/stories/:id", storyHdl.GetStory)
	protected.POST("/stories/:id/images", storyHdl.GenerateImages)
	protected.POST("/stories/:id/audio", storyHdl.GenerateAudio)
	protected.POST("/stories/:id/video", storyHdl.GenerateVideo)
	protected.GET("/stories/:id/render-status", storyHdl.RenderStatus)
	protected.POST("/stories/generate", storyHdl.GenerateAll)
	protected.GET("/videos", storyHdl.ListVideos)
}

// Run 启动服务器
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		if s.cleanup != nil {
			s.cleanup()
		}

		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// Engine 获取 Gin 引擎 (用于测试)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
