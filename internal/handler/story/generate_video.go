package story

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	storysvc "fable/internal/service/story"
)

// GenerateVideo 渲染故事视频
// @Summary      渲染视频
// @Description  把章节插图按旁白时间轴渲染为章节视频并合并全片，单章失败会被跳过并继续其余章节。
// @Tags         故事管理
// @Produce      json
// @Param        id  path      string  true  "故事ID"
// @Success      200  {object}  map[string]interface{}  "成功响应"
// @Failure      404  {object}  ErrorResponse  "故事不存在"
// @Failure      500  {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/stories/{id}/video [post]
func (h *Handler) GenerateVideo(c *gin.Context) {
	storyID := c.Param("id")

	result, err := h.storyService.GenerateVideo(c.Request.Context(), storyID)
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
		"message": "视频渲染完成",
		"data":    result,
	})
}
