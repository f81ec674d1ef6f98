package story

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RenderState 章节渲染状态机
// Pending -> AudioAttached -> AllocationComputed -> Rendered
// 任一阶段失败进入对应的 Skipped 终态，不影响其他章节
type RenderState string

const (
	RenderStatePending            RenderState = "pending"
	RenderStateAudioAttached      RenderState = "audio_attached"
	RenderStateAllocationComputed RenderState = "allocation_computed"
	RenderStateRendered           RenderState = "rendered"
	RenderStateSkippedNoMedia     RenderState = "skipped_no_media"
	RenderStateSkippedRenderError RenderState = "skipped_render_error"
)

// Terminal 是否为终态
func (s RenderState) Terminal() bool {
	switch s {
	case RenderStateRendered, RenderStateSkippedNoMedia, RenderStateSkippedRenderError:
		return true
	}
	return false
}

// ChapterVideo 一个章节的成片
type ChapterVideo struct {
	ChapterNum int    `bson:"chapter_num" json:"chapter_num"`
	Title      string `bson:"title" json:"title"`
	VideoPath  string `bson:"video_path" json:"video_path"`
	Downloaded bool   `bson:"downloaded" json:"downloaded"` // 是否已被用户下载
}

// ChapterRender 一个章节的渲染结果（含跳过原因）
type ChapterRender struct {
	ChapterNum int         `json:"chapter_num"`
	State      RenderState `json:"state"`
	Error      string      `json:"error,omitempty"` // 跳过时的原因
}

// VideoResult 整个故事的视频生成结果
// 也是 video_data.json 侧车文件的内容
type VideoResult struct {
	StoryID       string          `json:"story_id"`
	FullVideo     string          `json:"full_video,omitempty"` // 全片路径（无可用章节视频时为空）
	ChapterVideos []ChapterVideo  `json:"chapter_videos"`       // 成功渲染的章节，按 chapter_num 升序
	Renders       []ChapterRender `json:"renders"`              // 每个章节的终态（含跳过的）
}

// VideoRecord 视频记录实体（持久化一次完整渲染的结果）
type VideoRecord struct {
	ID            string         `bson:"id" json:"id"` // 记录ID（UUID）
	StoryID       string         `bson:"story_id" json:"story_id"`
	Title         string         `bson:"title" json:"title"`                             // 故事标题
	SeriesName    string         `bson:"series_name,omitempty" json:"series_name,omitempty"` // 系列名（可选）
	FullVideo     string         `bson:"full_video,omitempty" json:"full_video,omitempty"`
	Downloaded    bool           `bson:"downloaded" json:"downloaded"` // 全片是否已下载
	ChapterVideos []ChapterVideo `bson:"chapter_videos" json:"chapter_videos"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `bson:"deleted_at,omitempty" json:"deleted_at,omitempty"`
}

// Collection 返回集合名称
func (v *VideoRecord) Collection() string { return "video_records" }

// EnsureIndexes 创建和维护索引
func (v *VideoRecord) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(v.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "story_id", Value: 1}},
			Options: options.Index().SetName("idx_story_id"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_created_at"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
