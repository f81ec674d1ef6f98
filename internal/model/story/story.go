package story

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fable/internal/pkg/storytools"
)

// Chapter 故事章节
type Chapter struct {
	Num     int    `bson:"num" json:"num"`         // 章节号（从1开始）
	Title   string `bson:"title" json:"title"`     // 章节标题
	Content string `bson:"content" json:"content"` // 章节正文
}

// Story 故事实体（主表）
// 章节内嵌存储，故事上下文在第一章生成后提取一次，之后不再修改
type Story struct {
	ID string `bson:"id" json:"id"` // 故事ID（UUID）

	Concept string `bson:"concept" json:"concept"` // 生成故事的概念/主题
	Title   string `bson:"title" json:"title"`     // 故事标题

	Chapters []Chapter `bson:"chapters" json:"chapters"` // 章节（按 num 升序）

	Context storytools.StoryContext `bson:"context" json:"context"` // 故事上下文（角色/设定/风格）

	NumChapters      int `bson:"num_chapters" json:"num_chapters"`             // 请求的章节数
	TokensPerChapter int `bson:"tokens_per_chapter" json:"tokens_per_chapter"` // 每章 token 预算

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `bson:"deleted_at,omitempty" json:"deleted_at,omitempty"`
}

// Collection 返回集合名称
func (s *Story) Collection() string { return "stories" }

// EnsureIndexes 创建和维护索引
func (s *Story) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(s.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetName("idx_id").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_created_at"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
