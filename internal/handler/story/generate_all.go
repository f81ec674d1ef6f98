package story

import (
	"net/http"

	"github.com/gin-gonic/gin"

	storysvc "fable/internal/service/story"
)

// GenerateAll 一键生成完整视频
// @Summary      一键生成
// @Description  从故事概念出发依次执行故事、插图、音频、视频四个阶段，返回最终渲染结果。
// @Tags         故事管理
// @Accept       json
// @Produce      json
// @Param        request  body      CreateStoryRequest  true  "创建故事请求"
// @Success      200      {object}  map[string]interface{}  "成功响应"
// @Failure      400      {object}  ErrorResponse  "请求参数错误"
// @Failure      500      {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/stories/generate [post]
func (h *Handler) GenerateAll(c *gin.Context) {
	var req CreateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	result, err := h.storyService.GenerateAll(c.Request.Context(), storysvc.CreateStoryRequest{
		Concept:          req.Concept,
		NumChapters:      req.NumChapters,
		TokensPerChapter: req.TokensPerChapter,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    50001,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "视频生成完成",
		"data":    result,
	})
}
