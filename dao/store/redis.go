package store

import (
	"strconv"
	"time"

	"aiimagemaker/models"

	"github.com/go-redis/redis"
	"go.uber.org/zap"
)

// ActivityStore 将最近的生成记录镜像到 Redis，供最近动态类查询快速读取
// 只是尽力而为：写失败不影响主流程，MySQL 仍是唯一可信来源
type ActivityStore struct {
	client *redis.Client
}

// Init 初始化Redis连接
func Init(addr string) (*ActivityStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if _, err := client.Ping().Result(); err != nil {
		return nil, err
	}
	return &ActivityStore{client: client}, nil
}

func generationKey(userID, imageID int64) string {
	return "user:" + strconv.FormatInt(userID, 10) + ":image:" + strconv.FormatInt(imageID, 10)
}

// RecordGeneration 保存成功后镜像一条生成记录，保留24小时
func (a *ActivityStore) RecordGeneration(imageID int64, req *models.GenerationRequest, imagePath, modelUsed string) {
	key := generationKey(req.UserID, imageID)
	fields := map[string]interface{}{
		"prompt":     req.Prompt,
		"image_path": imagePath,
		"model_used": modelUsed,
		"width":      req.Width,
		"height":     req.Height,
		"steps":      req.Steps,
	}
	// HMSet 和 Expire 放在同一个 pipeline 里
	pipe := a.client.Pipeline()
	pipe.HMSet(key, fields)
	pipe.Expire(key, 24*time.Hour)
	if _, err := pipe.Exec(); err != nil {
		zap.L().Warn("failed to mirror generation to redis",
			zap.Int64("image_id", imageID),
			zap.Error(err))
	}
}

// Forget 删除记录时同步清掉镜像
func (a *ActivityStore) Forget(userID, imageID int64) {
	if err := a.client.Del(generationKey(userID, imageID)).Err(); err != nil {
		zap.L().Warn("failed to remove generation mirror from redis",
			zap.Int64("image_id", imageID),
			zap.Error(err))
	}
}
