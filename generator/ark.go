package generator

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"aiimagemaker/models"
	"aiimagemaker/util"

	"github.com/google/uuid"
	"github.com/volcengine/volcengine-go-sdk/service/arkruntime"
	arkmodel "github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"
	"github.com/volcengine/volcengine-go-sdk/volcengine"
	"go.uber.org/zap"
)

// TextToImage 对外部预训练生图模型的最小抽象
type TextToImage interface {
	Generate(ctx context.Context, req *models.GenerationRequest) (string, error)
	ModelID() string
}

// ArkGenerator 调用方舟 GenerateImages 生成图片并下载到本地目录
type ArkGenerator struct {
	client    *arkruntime.Client
	model     string
	outputDir string
	timeout   time.Duration
}

func NewArkGenerator(apiKey, model, outputDir string, timeout time.Duration) *ArkGenerator {
	return &ArkGenerator{
		client:    arkruntime.NewClientWithApiKey(apiKey),
		model:     model,
		outputDir: outputDir,
		timeout:   timeout,
	}
}

func (g *ArkGenerator) ModelID() string {
	return g.model
}

// Generate 同步生成一张图片，返回本地文件名（不含目录）
// 生成和下载都受请求 context 加超时约束
func (g *ArkGenerator) Generate(ctx context.Context, req *models.GenerationRequest) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	generateReq := arkmodel.GenerateImagesRequest{
		Model:          g.model,
		Prompt:         req.Prompt,
		Size:           volcengine.String(fmt.Sprintf("%dx%d", req.Width, req.Height)),
		ResponseFormat: volcengine.String(arkmodel.GenerateImagesResponseFormatURL),
		Watermark:      volcengine.Bool(false),
	}
	resp, err := g.client.GenerateImages(ctx, generateReq)
	if err != nil {
		return "", fmt.Errorf("image generation failed: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("image generation failed: %s - %s", resp.Error.Code, resp.Error.Message)
	}
	if len(resp.Data) == 0 || resp.Data[0].Url == nil {
		return "", fmt.Errorf("image generation returned no image")
	}

	filename := fmt.Sprintf("img_%s_%s.png", time.Now().Format("20060102_150405"), uuid.New().String()[:8])
	if err := util.DownloadImage(ctx, *resp.Data[0].Url, filepath.Join(g.outputDir, filename)); err != nil {
		return "", fmt.Errorf("failed to download generated image: %w", err)
	}

	zap.L().Info("image generated",
		zap.String("filename", filename),
		zap.String("model", g.model))
	return filename, nil
}
