package models

import "time"

// GenerationRequest 图片生成请求，prompt 必填，其余字段缺省由 ApplyDefaults 补齐
type GenerationRequest struct {
	Prompt         string `json:"prompt" binding:"required"`
	NegativePrompt string `json:"negative_prompt"`
	Width          int    `json:"width" binding:"omitempty,gt=0"`
	Height         int    `json:"height" binding:"omitempty,gt=0"`
	Steps          int    `json:"steps" binding:"omitempty,gt=0"`
	UserID         int64  `json:"user_id" binding:"omitempty,gt=0"`
}

// ApplyDefaults 填充缺省参数：512x512、50 步、用户 1
func (r *GenerationRequest) ApplyDefaults() {
	if r.Width == 0 {
		r.Width = 512
	}
	if r.Height == 0 {
		r.Height = 512
	}
	if r.Steps == 0 {
		r.Steps = 50
	}
	if r.UserID == 0 {
		r.UserID = 1
	}
}

// GenerationResponse 是返回给用户的响应部分
type GenerationResponse struct {
	ImageID     int64  `json:"image_id"`
	ImagePath   string `json:"image_path"`
	Prompt      string `json:"prompt"`
	GeneratedAt string `json:"generated_at"`
}

// GenerationRecord ImageGenerations 表的一行
type GenerationRecord struct {
	ImageID        int64     `db:"ImageID" json:"image_id"`
	UserID         int64     `db:"UserID" json:"user_id"`
	Prompt         string    `db:"Prompt" json:"prompt"`
	NegativePrompt string    `db:"NegativePrompt" json:"negative_prompt"`
	ImagePath      string    `db:"ImagePath" json:"image_path"`
	ModelUsed      string    `db:"ModelUsed" json:"model_used"`
	Width          int       `db:"Width" json:"width"`
	Height         int       `db:"Height" json:"height"`
	Steps          int       `db:"Steps" json:"steps"`
	GeneratedAt    time.Time `db:"GeneratedAt" json:"generated_at"`
}

// HistoryItem /history 返回的单条记录
type HistoryItem struct {
	ImageID     int64     `db:"ImageID" json:"image_id"`
	Prompt      string    `db:"Prompt" json:"prompt"`
	ImagePath   string    `db:"ImagePath" json:"image_path"`
	GeneratedAt time.Time `db:"GeneratedAt" json:"generated_at"`
	ModelUsed   string    `db:"ModelUsed" json:"model_used"`
}

// GalleryItem /all-generations 返回的单条记录，带用户名
type GalleryItem struct {
	ImageID     int64     `db:"ImageID" json:"image_id"`
	Prompt      string    `db:"Prompt" json:"prompt"`
	ImagePath   string    `db:"ImagePath" json:"image_path"`
	GeneratedAt time.Time `db:"GeneratedAt" json:"generated_at"`
	Username    string    `db:"Username" json:"username"`
}
