package story

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	storysvc "fable/internal/service/story"
)

// GenerateImages 为故事生成插图
// @Summary      生成插图
// @Description  为故事的每个章节提取场景并生成插图，单图失败不会中断整体流程。
// @Tags         故事管理
// @Produce      json
// @Param        id  path      string  true  "故事ID"
// @Success      200  {object}  map[string]interface{}  "成功响应"
// @Failure      404  {object}  ErrorResponse  "故事不存在"
// @Failure      500  {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/stories/{id}/images [post]
func (h *Handler) GenerateImages(c *gin.Context) {
	storyID := c.Param("id")

	data, err := h.storyService.GenerateImages(c.Request.Context(), storyID)
	if err != nil {
		if errors.Is(err, storysvc.ErrStoryNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Code:    40401,
				Message: "故事不存在",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    50001,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "插图生成完成",
		"data":    data,
	})
}
