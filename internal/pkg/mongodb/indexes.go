package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"fable/internal/model/story"
)

// EnsureIndexes 创建所有模型的索引
// 应用启动时调用一次，模型通过 Model 接口声明自己的索引
func EnsureIndexes(db *mongo.Database) error {
	ctx := context.Background()

	models := []Model{
		&story.Story{},
		&story.VideoRecord{},
	}

	return EnsureAllIndexes(ctx, db, models...)
}
