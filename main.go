package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"aiimagemaker/controller"
	"aiimagemaker/dao/mysql"
	"aiimagemaker/dao/store"
	"aiimagemaker/generator"
	"aiimagemaker/pkg/queue"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	imageDir  = "generated_images"
	uploadDir = "uploaded_scripts"
)

func init() {
	// 如果环境变量未设置，则设置默认值
	setDefault("MYSQL_DSN", "root:123456@tcp(localhost:3306)/AIImageMaker?parseTime=true&loc=Local")
	setDefault("REDIS_ADDR", "localhost:6379")
	setDefault("ARK_MODEL", "doubao-seedream-3-0-t2i-250415")
	setDefault("LISTEN_ADDR", ":8000")
	setDefault("GEN_TIMEOUT_SECONDS", "300")
}

func setDefault(key, value string) {
	if os.Getenv(key) == "" {
		os.Setenv(key, value)
	}
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	for _, dir := range []string{imageDir, uploadDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}

	db, err := mysql.Init(os.Getenv("MYSQL_DSN"))
	if err != nil {
		log.Fatalf("Failed to init MySQL: %v", err)
	}
	defer db.Close()

	activity, err := store.Init(os.Getenv("REDIS_ADDR"))
	if err != nil {
		log.Fatalf("Failed to init Redis: %v", err)
	}

	// RABBITMQ_URL 为空则不发审计事件
	var events queue.EventPublisher
	if uri := os.Getenv("RABBITMQ_URL"); uri != "" {
		rabbitMQ, err := queue.NewRabbitMQ(uri)
		if err != nil {
			log.Fatalf("Failed to init RabbitMQ: %v", err)
		}
		defer rabbitMQ.Close()
		events = rabbitMQ
	}

	timeoutSec, _ := strconv.Atoi(os.Getenv("GEN_TIMEOUT_SECONDS"))
	gen := generator.NewArkGenerator(
		os.Getenv("ARK_API_KEY"),
		os.Getenv("ARK_MODEL"),
		imageDir,
		time.Duration(timeoutSec)*time.Second,
	)

	genStore := mysql.NewGenerationStore(db, imageDir)
	h := controller.NewHandler(genStore, gen, activity, events, uploadDir)

	r := gin.Default()
	r.Static("/images", "./"+imageDir)

	r.GET("/", h.Index)
	r.POST("/generate", h.Generate)
	r.POST("/generate-from-pdf", h.GenerateFromPDF)
	r.DELETE("/delete/:image_id", h.Delete)
	r.GET("/history/:user_id", h.History)
	r.GET("/all-generations", h.AllGenerations)

	if err := r.Run(os.Getenv("LISTEN_ADDR")); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
