package auth

import (
	"fable/internal/config"
	"fable/internal/pkg/jwt"
)

// Handler 认证处理器
// 基于访问密钥换发 JWT，面向脚本和自动化客户端
type Handler struct {
	cfg     *config.AuthConfig
	jwtUtil *jwt.JWT
}

// NewHandler 创建认证处理器
func NewHandler(cfg *config.AuthConfig, jwtUtil *jwt.JWT) *Handler {
	return &Handler{
		cfg:     cfg,
		jwtUtil: jwtUtil,
	}
}
