package story

import (
	"net/http"

	"github.com/gin-gonic/gin"

	storysvc "fable/internal/service/story"
)

// CreateStoryRequest 创建故事请求
type CreateStoryRequest struct {
	Concept          string `json:"concept" binding:"required"` // 故事概念（必填）
	NumChapters      int    `json:"num_chapters"`               // 章节数（可选，默认取配置）
	TokensPerChapter int    `json:"tokens_per_chapter"`         // 每章字数预算（可选）
}

// CreateStory 根据概念生成故事
// @Summary      创建故事
// @Description  根据故事概念逐章生成完整故事文本，返回故事内容。这是视频生成流程的第一步。
// @Tags         故事管理
// @Accept       json
// @Produce      json
// @Param        request  body      CreateStoryRequest  true  "创建故事请求"
// @Success      201      {object}  map[string]interface{}  "成功响应"
// @Failure      400      {object}  ErrorResponse  "请求参数错误"
// @Failure      500      {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/stories [post]
func (h *Handler) CreateStory(c *gin.Context) {
	var req CreateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	st, err := h.storyService.CreateStory(c.Request.Context(), storysvc.CreateStoryRequest{
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

	c.JSON(http.StatusCreated, gin.H{
		"code":    0,
		"message": "故事创建成功",
		"data":    toStoryInfo(st),
	})
}
