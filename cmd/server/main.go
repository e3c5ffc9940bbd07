// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"shop-chat-go/internal/config"
	"shop-chat-go/internal/handler"
	"shop-chat-go/internal/middleware"
	"shop-chat-go/internal/model"
	"shop-chat-go/internal/repository"
	"shop-chat-go/internal/service"
	"shop-chat-go/pkg/database"
	"shop-chat-go/pkg/llm"
	"shop-chat-go/pkg/log"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库并迁移表结构
	database.InitPostgres(cfg.Database.Postgres.DSN)
	if err := database.DB.AutoMigrate(&model.Conversation{}, &model.Message{}); err != nil {
		log.Fatal("数据库迁移失败", err)
	}

	// 4. 初始化 Repository 和 Service (依赖注入)
	conversationRepo := repository.NewConversationRepository(database.DB)
	llmClient := llm.NewClient(cfg.LLM)
	replyGenerator := service.NewReplyGenerator(llmClient)
	chatService := service.NewChatService(replyGenerator, conversationRepo)

	// 5. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	// 添加我们自定义的日志中间件、Gin 的 Recovery 中间件和 CORS
	r.Use(middleware.RequestLogger(), gin.Recovery(), cors.Default())

	// 6. 注册路由
	r.GET("/", handler.NewHealthHandler(cfg.Server.Port).Check)
	chat := r.Group("/chat")
	{
		chat.POST("/message", handler.NewChatHandler(chatService).PostMessage)
	}

	// 启动 HTTP 服务器并实现优雅停机
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

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 关闭 HTTP 服务器
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	log.Info("服务已优雅关闭")
}
