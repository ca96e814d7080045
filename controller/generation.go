package controller

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"aiimagemaker/dao/mysql"
	"aiimagemaker/dao/store"
	"aiimagemaker/generator"
	"aiimagemaker/models"
	"aiimagemaker/pkg/queue"
	"aiimagemaker/util"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	// 外部模型有 token 上限，PDF 提取文本超出部分截断
	maxPromptChars = 1000
	// 响应里展示的提示词预览长度
	promptPreviewChars = 100
)

// Handler 聚合生成流程的全部依赖，activity 和 events 可为 nil
type Handler struct {
	store     mysql.ImageStore
	generator generator.TextToImage
	activity  *store.ActivityStore
	events    queue.EventPublisher
	uploadDir string

	extractText func([]byte) (string, error)
}

func NewHandler(s mysql.ImageStore, g generator.TextToImage, activity *store.ActivityStore, events queue.EventPublisher, uploadDir string) *Handler {
	return &Handler{
		store:       s,
		generator:   g,
		activity:    activity,
		events:      events,
		uploadDir:   uploadDir,
		extractText: util.ExtractText,
	}
}

// Index 健康检查
func (h *Handler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "AI Image Maker API is running"})
}

// Generate 文本提示词生成图片
// @Summary 生成图片
// @Description 根据文本提示词调用生图模型，落库后返回图片地址
// @Tags Generation
// @Accept json
// @Produce json
// @Param request body models.GenerationRequest true "生成请求（prompt 必填）"
// @Success 200 {object} models.GenerationResponse "生成成功"
// @Failure 400 {object} map[string]string "请求参数错误"
// @Failure 500 {object} map[string]string "生成或存储失败"
// @Router /generate [post]
func (h *Handler) Generate(c *gin.Context) {
	var req models.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zap.L().Error("generate with invalid param", zap.Error(err))
		if errs, ok := err.(validator.ValidationErrors); ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": errs.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	req.ApplyDefaults()
	h.generateAndRespond(c, &req, req.Prompt)
}

// GenerateFromPDF 上传PDF剧本，提取文本作为提示词生成图片
func (h *Handler) GenerateFromPDF(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if !strings.HasSuffix(fileHeader.Filename, ".pdf") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only PDF files are allowed"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	text, err := h.extractText(content)
	if err != nil {
		zap.L().Error("pdf extraction failed", zap.String("filename", fileHeader.Filename), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No text found in PDF"})
		return
	}
	prompt := text
	if len(prompt) > maxPromptChars {
		prompt = prompt[:maxPromptChars]
	}

	// 原始PDF存档备查
	archiveName := fmt.Sprintf("script_%s_%s", time.Now().Format("20060102_150405"), filepath.Base(fileHeader.Filename))
	if err := os.WriteFile(filepath.Join(h.uploadDir, archiveName), content, 0644); err != nil {
		zap.L().Error("failed to archive uploaded pdf", zap.String("filename", archiveName), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	req := models.GenerationRequest{
		Prompt:         prompt,
		NegativePrompt: c.DefaultPostForm("negative_prompt", ""),
		Width:          formInt(c, "width", 512),
		Height:         formInt(c, "height", 512),
		Steps:          formInt(c, "steps", 50),
		UserID:         formInt64(c, "user_id", 1),
	}

	preview := prompt
	if len(preview) > promptPreviewChars {
		preview = preview[:promptPreviewChars]
	}
	display := fmt.Sprintf("[From PDF: %s] %s...", fileHeader.Filename, preview)
	h.generateAndRespond(c, &req, display)
}

// generateAndRespond 调模型、落库、回包，displayPrompt 只用于响应展示
func (h *Handler) generateAndRespond(c *gin.Context, req *models.GenerationRequest, displayPrompt string) {
	filename, err := h.generator.Generate(c.Request.Context(), req)
	if err != nil {
		zap.L().Error("image generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	imageID, err := h.store.Save(req, filename, h.generator.ModelID())
	if err != nil {
		zap.L().Error("failed to save generation", zap.Int64("user_id", req.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if h.activity != nil {
		h.activity.RecordGeneration(imageID, req, filename, h.generator.ModelID())
	}
	h.publish(queue.Event{
		Type:      queue.EventGenerationCreated,
		ImageID:   imageID,
		UserID:    req.UserID,
		Prompt:    req.Prompt,
		ImagePath: filename,
		ModelUsed: h.generator.ModelID(),
		CreatedAt: time.Now().Unix(),
	})

	c.JSON(http.StatusOK, models.GenerationResponse{
		ImageID:     imageID,
		ImagePath:   "/images/" + filename,
		Prompt:      displayPrompt,
		GeneratedAt: time.Now().Format(time.RFC3339),
	})
}

// Delete 删除生成记录及其图片文件
func (h *Handler) Delete(c *gin.Context) {
	imageID, err := strconv.ParseInt(c.Param("image_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image_id"})
		return
	}

	// 先点查一次拿到归属用户，供镜像清理和事件使用
	record, err := h.store.GetByID(imageID)
	if err != nil {
		zap.L().Error("failed to query generation", zap.Int64("image_id", imageID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	deleted, err := h.store.Delete(imageID)
	if err != nil {
		zap.L().Error("failed to delete generation", zap.Int64("image_id", imageID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		return
	}

	if record != nil {
		if h.activity != nil {
			h.activity.Forget(record.UserID, imageID)
		}
		h.publish(queue.Event{
			Type:      queue.EventGenerationDeleted,
			ImageID:   imageID,
			UserID:    record.UserID,
			ImagePath: record.ImagePath,
			CreatedAt: time.Now().Unix(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"message": "Image deleted successfully", "image_id": imageID})
}

// History 某用户最近的生成记录
func (h *Handler) History(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}
	limit := queryInt(c, "limit", 10)

	items, err := h.store.GetByUser(userID, limit)
	if err != nil {
		zap.L().Error("failed to query history", zap.Int64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	for i := range items {
		items[i].ImagePath = "/images/" + items[i].ImagePath
	}
	c.JSON(http.StatusOK, items)
}

// AllGenerations 全部用户最近的生成记录，带用户名
func (h *Handler) AllGenerations(c *gin.Context) {
	limit := queryInt(c, "limit", 20)

	items, err := h.store.GetAll(limit)
	if err != nil {
		zap.L().Error("failed to query all generations", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	for i := range items {
		items[i].ImagePath = "/images/" + items[i].ImagePath
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) publish(e queue.Event) {
	if h.events == nil {
		return
	}
	if err := h.events.Publish(e); err != nil {
		zap.L().Warn("failed to publish event", zap.String("type", e.Type), zap.Error(err))
	}
}

func formInt(c *gin.Context, key string, def int) int {
	v := c.PostForm(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func formInt64(c *gin.Context, key string, def int64) int64 {
	v := c.PostForm(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func queryInt(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(def)))
	if err != nil || n < 0 {
		return def
	}
	return n
}
