package story

import (
	"time"

	"fable/internal/model/story"
	httputil "fable/internal/pkg/http"
)

// ErrorResponse 错误响应类型别名（使用共用的 http.ErrorResponse）
type ErrorResponse = httputil.ErrorResponse

// ChapterInfo 章节信息 DTO
type ChapterInfo struct {
	Num     int    `json:"num"`     // 章节号
	Title   string `json:"title"`   // 章节标题
	Content string `json:"content"` // 章节正文
}

// StoryInfo 故事信息 DTO
type StoryInfo struct {
	ID          string        `json:"id"`                    // 故事ID
	Concept     string        `json:"concept,omitempty"`     // 故事概念
	Title       string        `json:"title"`                 // 故事标题
	NumChapters int           `json:"num_chapters"`          // 章节数
	Chapters    []ChapterInfo `json:"chapters"`              // 章节列表
	CreatedAt   string        `json:"created_at,omitempty"`  // 创建时间
}

// toStoryInfo 将 Story 实体转换为 StoryInfo DTO
func toStoryInfo(st *story.Story) StoryInfo {
	info := StoryInfo{
		ID:          st.ID,
		Concept:     st.Concept,
		Title:       st.Title,
		NumChapters: len(st.Chapters),
		Chapters:    make([]ChapterInfo, len(st.Chapters)),
	}
	for i, ch := range st.Chapters {
		info.Chapters[i] = ChapterInfo{
			Num:     ch.Num,
			Title:   ch.Title,
			Content: ch.Content,
		}
	}
	if !st.CreatedAt.IsZero() {
		info.CreatedAt = st.CreatedAt.Format(time.RFC3339)
	}
	return info
}

// VideoRecordInfo 视频记录 DTO
type VideoRecordInfo struct {
	ID            string               `json:"id"`                   // 记录ID
	StoryID       string               `json:"story_id"`             // 故事ID
	Title         string               `json:"title"`                // 故事标题
	FullVideo     string               `json:"full_video,omitempty"` // 全片路径
	Downloaded    bool                 `json:"downloaded"`           // 全片是否已下载
	ChapterVideos []story.ChapterVideo `json:"chapter_videos"`       // 章节视频
	CreatedAt     string               `json:"created_at"`           // 创建时间
}

// toVideoRecordInfo 将 VideoRecord 实体转换为 VideoRecordInfo DTO
func toVideoRecordInfo(record *story.VideoRecord) VideoRecordInfo {
	return VideoRecordInfo{
		ID:            record.ID,
		StoryID:       record.StoryID,
		Title:         record.Title,
		FullVideo:     record.FullVideo,
		Downloaded:    record.Downloaded,
		ChapterVideos: record.ChapterVideos,
		CreatedAt:     record.CreatedAt.Format(time.RFC3339),
	}
}

// toVideoRecordInfoList 将 VideoRecord 列表转换为 DTO 列表
func toVideoRecordInfoList(records []*story.VideoRecord) []VideoRecordInfo {
	list := make([]VideoRecordInfo, len(records))
	for i, record := range records {
		list[i] = toVideoRecordInfo(record)
	}
	return list
}
