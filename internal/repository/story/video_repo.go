package story

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fable/internal/model/story"
)

// VideoRecordRepository 视频记录仓库接口
type VideoRecordRepository interface {
	Create(ctx context.Context, v *story.VideoRecord) error
	FindByID(ctx context.Context, id string) (*story.VideoRecord, error)
	FindByStoryID(ctx context.Context, storyID string) ([]*story.VideoRecord, error)
	List(ctx context.Context, limit, offset int64) ([]*story.VideoRecord, error)
	MarkDownloaded(ctx context.Context, id string, chapterNum int) error
	Delete(ctx context.Context, id string) error
}

// VideoRecordRepo 视频记录仓库实现
type VideoRecordRepo struct {
	coll *mongo.Collection
}

// NewVideoRecordRepo 创建视频记录仓库
func NewVideoRecordRepo(db *mongo.Database) *VideoRecordRepo {
	var v story.VideoRecord
	return &VideoRecordRepo{coll: db.Collection(v.Collection())}
}

// Create 创建视频记录
func (r *VideoRecordRepo) Create(ctx context.Context, v *story.VideoRecord) error {
	now := time.Now()
	v.CreatedAt = now
	v.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, v)
	return err
}

// FindByID 根据ID查询视频记录
func (r *VideoRecordRepo) FindByID(ctx context.Context, id string) (*story.VideoRecord, error) {
	var v story.VideoRecord
	if err := r.coll.FindOne(ctx, bson.M{"id": id, "deleted_at": nil}).Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

// FindByStoryID 根据故事ID查询视频记录（按创建时间倒序）
func (r *VideoRecordRepo) FindByStoryID(ctx context.Context, storyID string) ([]*story.VideoRecord, error) {
	filter := bson.M{"story_id": storyID, "deleted_at": nil}
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*story.VideoRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// List 按创建时间倒序列出视频记录
func (r *VideoRecordRepo) List(ctx context.Context, limit, offset int64) ([]*story.VideoRecord, error) {
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

	var records []*story.VideoRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// MarkDownloaded 标记下载状态
// chapterNum 为 0 时标记全片，否则标记对应章节
func (r *VideoRecordRepo) MarkDownloaded(ctx context.Context, id string, chapterNum int) error {
	filter := bson.M{"id": id}
	var update bson.M
	if chapterNum == 0 {
		update = bson.M{"$set": bson.M{
			"downloaded": true,
			"updated_at": time.Now(),
		}}
	} else {
		filter["chapter_videos.chapter_num"] = chapterNum
		update = bson.M{"$set": bson.M{
			"chapter_videos.$.downloaded": true,
			"updated_at":                  time.Now(),
		}}
	}
	_, err := r.coll.UpdateOne(ctx, filter, update)
	return err
}

// Delete 软删除视频记录
func (r *VideoRecordRepo) Delete(ctx context.Context, id string) error {
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
