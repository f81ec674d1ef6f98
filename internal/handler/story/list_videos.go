package story

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ListVideos 列出视频记录
// @Summary      视频记录列表
// @Description  按创建时间倒序列出历史渲染的视频记录，支持分页。
// @Tags         视频管理
// @Produce      json
// @Param        limit   query     int  false  "每页数量（默认20，最大100）"
// @Param        offset  query     int  false  "偏移量"
// @Success      200     {object}  map[string]interface{}  "成功响应"
// @Failure      500     {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/videos [get]
func (h *Handler) ListVideos(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
	offset, _ := strconv.ParseInt(c.DefaultQuery("offset", "0"), 10, 64)

	records, err := h.storyService.ListVideos(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    50001,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "查询成功",
		"data": gin.H{
			"total": len(records),
			"items": toVideoRecordInfoList(records),
		},
	})
}
