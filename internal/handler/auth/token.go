package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fable/internal/pkg/id"
	"fable/internal/pkg/password"
)

// TokenRequest 换发令牌请求
type TokenRequest struct {
	AccessKey string `json:"access_key" binding:"required"` // 访问密钥（必填）
}

// TokenResponseData 换发令牌响应数据
type TokenResponseData struct {
	Token     string `json:"token"`      // JWT 令牌
	ExpiresIn int64  `json:"expires_in"` // 有效期（秒）
}

// Token 用访问密钥换发 JWT
// @Summary      换发令牌
// @Description  校验访问密钥，签发用于访问受保护接口的 JWT 令牌。
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request  body      TokenRequest  true  "换发令牌请求"
// @Success      200      {object}  map[string]interface{}  "成功响应"
// @Failure      400      {object}  ErrorResponse  "请求参数错误"
// @Failure      401      {object}  ErrorResponse  "访问密钥错误"
// @Router       /api/v1/auth/token [post]
func (h *Handler) Token(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	if !password.Verify(req.AccessKey, h.cfg.AccessKeyHash) {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    40103,
			Message: "访问密钥错误",
		})
		return
	}

	token, err := h.jwtUtil.GenerateToken(id.New())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    50001,
			Message: "令牌签发失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "令牌签发成功",
		"data": TokenResponseData{
			Token:     token,
			ExpiresIn: int64(h.jwtUtil.GetExpiration().Seconds()),
		},
	})
}
