// Package main 是应用程序的入口点。
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blog-helper-go/internal/config"
	"blog-helper-go/internal/handler"
	"blog-helper-go/internal/middleware"
	"blog-helper-go/internal/pipeline"
	"blog-helper-go/internal/repository"
	"blog-helper-go/internal/service"
	"blog-helper-go/pkg/database"
	"blog-helper-go/pkg/es"
	"blog-helper-go/pkg/kafka"
	"blog-helper-go/pkg/llm"
	"blog-helper-go/pkg/log"
	"blog-helper-go/pkg/storage"
	"blog-helper-go/pkg/token"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "./configs/config.yaml", "配置文件路径")
	flag.Parse()

	// 1. 初始化配置
	config.Init(*configPath)
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库、Redis 和外部存储
	db := database.InitMySQL(cfg.Database.MySQL.DSN, cfg.Database.MySQL.AutoMigrate)
	defer database.Close()
	rdb := database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	archive, err := storage.NewMinioStore(cfg.MinIO)
	if err != nil {
		log.Fatal("MinIO 初始化失败", err)
	}
	if err := archive.EnsureBucket(startupCtx); err != nil {
		log.Fatal("MinIO 存储桶初始化失败", err)
	}
	postIndex, err := es.NewPostIndex(cfg.Elasticsearch)
	if err != nil {
		log.Fatal("es 初始化失败", err)
	}
	if err := postIndex.EnsureIndex(startupCtx); err != nil {
		log.Fatal("es 索引初始化失败", err)
	}
	cancelStartup()

	producer := kafka.NewProducer(cfg.Kafka)

	// 4. 初始化 Repository
	memberRepo := repository.NewMemberRepository(db)
	keywordRepo := repository.NewKeywordRepository(db)
	postRepo := repository.NewPostRepository(db)
	tokenRepo := repository.NewTokenRepository(rdb)
	attemptRepo := repository.NewTaskAttemptRepository(rdb)

	// 5. 初始化 Service (依赖注入)
	llmClient := llm.NewClient(cfg.LLM)
	llmClient = llm.WithTimeout(llmClient, time.Duration(cfg.LLM.TimeoutSeconds)*time.Second)
	llmClient = llm.WithRetry(llmClient, cfg.LLM.Retry.MaxAttempts, time.Duration(cfg.LLM.Retry.DelayMs)*time.Millisecond)

	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ExpirationMinutes)
	memberService := service.NewMemberService(memberRepo)
	authService := service.NewAuthService(memberRepo, tokenRepo, jwtManager)
	keywordService := service.NewKeywordService(llmClient, keywordRepo, producer)
	postService := service.NewPostService(
		llmClient,
		keywordService,
		postRepo,
		memberRepo,
		postIndex,
		archive,
		time.Duration(cfg.Post.AnalysisTimeoutSeconds)*time.Second,
	)
	improveService := service.NewPostImproveService(llmClient, postRepo, postIndex)

	// 6. 启动后台 Kafka 消费者
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	consumerDone := make(chan struct{})
	consumer := kafka.NewConsumer(cfg.Kafka, pipeline.NewProcessor(keywordService), attemptRepo)
	go func() {
		defer close(consumerDone)
		consumer.Run(consumerCtx)
	}()

	// 7. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	handler.RegisterRoutes(r, handler.Handlers{
		Member:  handler.NewMemberHandler(memberService),
		Auth:    handler.NewAuthHandler(authService),
		Keyword: handler.NewKeywordHandler(keywordService),
		Post:    handler.NewPostHandler(postService, improveService),
	}, middleware.AuthMiddleware(authService, memberService))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("HTTP 服务器关闭失败: %v", err)
	}

	stopConsumer()
	select {
	case <-consumerDone:
	case <-ctx.Done():
		log.Warnf("等待 Kafka 消费者退出超时")
	}
	if err := producer.Close(); err != nil {
		log.Errorf("关闭 Kafka 生产者失败: %v", err)
	}
	log.Info("服务已优雅关闭")
}
