package story

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RenderStatus 查询渲染进度
// @Summary      查询渲染进度
// @Description  查询故事当前所处的生成阶段及各章节的渲染状态，数据来自 Redis 缓存。
// @Tags         故事管理
// @Produce      json
// @Param        id  path      string  true  "故事ID"
// @Success      200  {object}  map[string]interface{}  "成功响应"
// @Failure      404  {object}  ErrorResponse  "进度不存在或已过期"
// @Router       /api/v1/stories/{id}/render-status [get]
func (h *Handler) RenderStatus(c *gin.Context) {
	storyID := c.Param("id")

	status, err := h.storyService.RenderStatus(c.Request.Context(), storyID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    40402,
			Message: "渲染进度不存在或已过期",
			Detail:  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "查询成功",
		"data":    status,
	})
}
