package mysql

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"aiimagemaker/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ImageStore 生成记录存储的最小接口
type ImageStore interface {
	Save(req *models.GenerationRequest, imagePath, modelUsed string) (int64, error)
	Delete(imageID int64) (bool, error)
	GetByUser(userID int64, limit int) ([]models.HistoryItem, error)
	GetAll(limit int) ([]models.GalleryItem, error)
	GetByID(imageID int64) (*models.GenerationRecord, error)
}

// GenerationStore 基于 MySQL ImageGenerations 表的存储实现
type GenerationStore struct {
	db       *sqlx.DB
	imageDir string
}

func NewGenerationStore(db *sqlx.DB, imageDir string) *GenerationStore {
	return &GenerationStore{db: db, imageDir: imageDir}
}

// Save 插入一条生成记录，新分配的 ImageID 随插入同一次往返返回
func (s *GenerationStore) Save(req *models.GenerationRequest, imagePath, modelUsed string) (int64, error) {
	query := `INSERT INTO ImageGenerations (UserID, Prompt, NegativePrompt, ImagePath, ModelUsed, Width, Height, Steps) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := s.db.Exec(query, req.UserID, req.Prompt, req.NegativePrompt, imagePath, modelUsed, req.Width, req.Height, req.Steps)
	if err != nil {
		return 0, fmt.Errorf("failed to insert generation: %w", err)
	}
	imageID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}
	return imageID, nil
}

// Delete 删除记录并尽力删除对应图片文件，记录不存在返回 false
// 以数据库为准：文件删除失败只记日志，不回滚已完成的行删除
func (s *GenerationStore) Delete(imageID int64) (bool, error) {
	var imagePath string
	err := s.db.Get(&imagePath, "SELECT ImagePath FROM ImageGenerations WHERE ImageID = ?", imageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to query generation: %w", err)
	}

	result, err := s.db.Exec("DELETE FROM ImageGenerations WHERE ImageID = ?", imageID)
	if err != nil {
		return false, fmt.Errorf("failed to delete generation: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows == 0 {
		// 并发删除时后到者视作未找到
		return false, nil
	}

	if err := os.Remove(filepath.Join(s.imageDir, imagePath)); err != nil && !os.IsNotExist(err) {
		zap.L().Warn("failed to remove image file",
			zap.Int64("image_id", imageID),
			zap.String("image_path", imagePath),
			zap.Error(err))
	}
	return true, nil
}

// GetByUser 按生成时间倒序返回某用户最近的记录，最多 limit 条
func (s *GenerationStore) GetByUser(userID int64, limit int) ([]models.HistoryItem, error) {
	query := `SELECT ImageID, Prompt, ImagePath, GeneratedAt, ModelUsed FROM ImageGenerations WHERE UserID = ? ORDER BY GeneratedAt DESC LIMIT ?`
	items := make([]models.HistoryItem, 0)
	if err := s.db.Select(&items, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	return items, nil
}

// GetAll 按生成时间倒序返回全部用户的记录并关联用户名，无对应用户的行被排除
func (s *GenerationStore) GetAll(limit int) ([]models.GalleryItem, error) {
	query := `SELECT ig.ImageID, ig.Prompt, ig.ImagePath, ig.GeneratedAt, u.Username
		FROM ImageGenerations ig
		INNER JOIN Users u ON ig.UserID = u.UserID
		ORDER BY ig.GeneratedAt DESC LIMIT ?`
	items := make([]models.GalleryItem, 0)
	if err := s.db.Select(&items, query, limit); err != nil {
		return nil, fmt.Errorf("failed to query generations: %w", err)
	}
	return items, nil
}

// GetByID 按 ImageID 点查，记录不存在返回 (nil, nil)
func (s *GenerationStore) GetByID(imageID int64) (*models.GenerationRecord, error) {
	record := &models.GenerationRecord{}
	query := `SELECT ImageID, UserID, Prompt, NegativePrompt, ImagePath, ModelUsed, Width, Height, Steps, GeneratedAt FROM ImageGenerations WHERE ImageID = ?`
	err := s.db.Get(record, query, imageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query generation: %w", err)
	}
	return record, nil
}
