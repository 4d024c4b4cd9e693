package main

import (
	"log"

	"github.com/singnet/snet-marketplace-service-sub002/internal/assets"
	"github.com/singnet/snet-marketplace-service-sub002/internal/chain"
	"github.com/singnet/snet-marketplace-service-sub002/internal/config"
	"github.com/singnet/snet-marketplace-service-sub002/internal/event"
	"github.com/singnet/snet-marketplace-service-sub002/internal/logger"
	"github.com/singnet/snet-marketplace-service-sub002/internal/logic"
	"github.com/singnet/snet-marketplace-service-sub002/internal/metadata"
	"github.com/singnet/snet-marketplace-service-sub002/internal/repository"
	"github.com/singnet/snet-marketplace-service-sub002/internal/router"
	"github.com/singnet/snet-marketplace-service-sub002/internal/task"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	initLogger(cfg)
	defer logger.Sync()

	// 初始化数据库
	db, err := repository.Init(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 初始化链管理器
	chainManager, err := chain.NewManager(cfg.Chain)
	if err != nil {
		log.Fatalf("Failed to initialize chain manager: %v", err)
	}
	defer chainManager.Close()

	// 元数据与资源存储
	metadataStore := metadata.NewIpfsClient(cfg.Ipfs)
	blobStore := assets.NewFileStore(cfg.Storage)
	migrator := assets.NewMigrator(metadataStore, blobStore)

	// 事件消费与推送
	mpeAddress := cfg.Chain.Contracts[config.MpeContract].Address
	orgProcessor := event.NewOrgProcessor(metadataStore, migrator)
	serviceProcessor := event.NewServiceProcessor(metadataStore, migrator, mpeAddress)
	channelProcessor := event.NewChannelProcessor(chainManager)
	reconciler := event.NewReconciler(db, orgProcessor, serviceProcessor, channelProcessor, cfg.Task.ReconcileLimit)
	dispatcher := event.NewDispatcher(logic.NewEventStore(db), logic.NewSubscriptionLogic(db), cfg.Task.ReconcileLimit)

	// 启动定时任务
	taskManager := task.Start(db, chainManager, cfg, reconciler, dispatcher)
	defer taskManager.Stop()

	// 初始化路由并启动服务器
	r := router.Setup(db, chainManager, cfg)
	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// initLogger 根据配置初始化全局日志
func initLogger(cfg *config.Config) {
	level := logger.ParseLogLevel(cfg.Log.Level)

	var l *logger.Logger
	var err error
	if cfg.Log.Output == "file" {
		l, err = logger.NewWithFileRotation(level, cfg.Log.File)
	} else {
		l, err = logger.New(level)
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	logger.SetDefaultLogger(l)
}
