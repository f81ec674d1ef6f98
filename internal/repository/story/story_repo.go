package story

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fable/internal/model/story"
)

// StoryRepository 故事仓库接口
type StoryRepository interface {
	Create(ctx context.Context, s *story.Story) error
	FindByID(ctx context.Context, id string) (*story.Story, error)
	List(ctx context.Context, limit, offset int64) ([]*story.Story, error)
	UpdateContext(ctx context.Context, id string, storyCtx any) error
	Delete(ctx context.Context, id string) error
}

// StoryRepo 故事仓库实现
type StoryRepo struct {
	coll *mongo.Collection
}

// NewStoryRepo 创建故事仓库
func NewStoryRepo(db *mongo.Database) *StoryRepo {
	var s story.Story
	return &StoryRepo{coll: db.Collection(s.Collection())}
}

// Create 创建故事
func (r *StoryRepo) Create(ctx context.Context, s *story.Story) error {
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, s)
	return err
}

// FindByID 根据ID查询故事
func (r *StoryRepo) FindByID(ctx context.Context, id string) (*story.Story, error) {
	var s story.Story
	if err := r.coll.FindOne(ctx, bson.M{"id": id, "deleted_at": nil}).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// List 按创建时间倒序列出故事
func (r *StoryRepo) List(ctx context.Context, limit, offset int64) ([]*story.Story, error) {
	filter := bson.M{"deleted_at": nil}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetLimit(limit).
		SetSkip(offset)
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stories []*story.Story
	if err := cursor.All(ctx, &stories); err != nil {
		return nil, err
	}
	return stories, nil
}

// UpdateContext 更新故事上下文（提取成功后写入一次）
func (r *StoryRepo) UpdateContext(ctx context.Context, id string, storyCtx any) error {
	_, err := r.coll.UpdateOne(
		ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{
			"context":    storyCtx,
			"updated_at": time.Now(),
		}},
	)
	return err
}

// Delete 软删除故事
func (r *StoryRepo) Delete(ctx context.Context, id string) error {
	_, err := r.coll.UpdateOne(
		ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{
			"deleted_at": time.Now(),
			"updated_at": time.Now(),
		}},
	)
	return err
}
