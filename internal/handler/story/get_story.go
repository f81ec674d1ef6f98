package story

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	storysvc "fable/internal/service/story"
)

// GetStory 查询故事
// @Summary      查询故事
// @Description  根据故事ID查询故事标题和章节内容。
// @Tags         故事管理
// @Produce      json
// @Param        id  path      string  true  "故事ID"
// @Success      200  {object}  map[string]interface{}  "成功响应"
// @Failure      404  {object}  ErrorResponse  "故事不存在"
// @Failure      500  {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/stories/{id} [get]
func (h *Handler) GetStory(c *gin.Context) {
	storyID := c.Param("id")

	st, err := h.storyService.GetStory(c.Request.Context(), storyID)
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
		"message": "查询成功",
		"data":    toStoryInfo(st),
	})
}
