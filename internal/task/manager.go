package task

import (
	"github.com/go-co-op/gocron/v2"
	"github.com/singnet/snet-marketplace-service-sub002/internal/chain"
	"github.com/singnet/snet-marketplace-service-sub002/internal/config"
	"github.com/singnet/snet-marketplace-service-sub002/internal/event"
	"github.com/singnet/snet-marketplace-service-sub002/internal/logger"
	"github.com/singnet/snet-marketplace-service-sub002/internal/model"
	"gorm.io/gorm"
)

// contractFamilies 合约配置键到事件族的映射
var contractFamilies = map[string]model.EventFamily{
	config.RegistryContract: model.EventFamilyRegistry,
	config.MpeContract:      model.EventFamilyMpe,
}

// Job 可调度任务
type Job interface {
	GetName() string
	GetSchedule() gocron.JobDefinition
	Execute()
}

// Manager 任务管理器
type Manager struct {
	scheduler    gocron.Scheduler
	db           *gorm.DB
	chainManager *chain.Manager
	config       *config.Config
	reconciler   *event.Reconciler
	dispatcher   *event.Dispatcher
}

// NewManager 创建新的任务管理器
func NewManager(db *gorm.DB, chainManager *chain.Manager, cfg *config.Config,
	reconciler *event.Reconciler, dispatcher *event.Dispatcher) *Manager {
	s, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatal("Failed to create scheduler: %v", err)
	}

	return &Manager{
		scheduler:    s,
		db:           db,
		chainManager: chainManager,
		config:       cfg,
		reconciler:   reconciler,
		dispatcher:   dispatcher,
	}
}

// Start 启动任务管理器
func Start(db *gorm.DB, chainManager *chain.Manager, cfg *config.Config,
	reconciler *event.Reconciler, dispatcher *event.Dispatcher) *Manager {
	manager := NewManager(db, chainManager, cfg, reconciler, dispatcher)

	// 注册所有任务
	manager.RegisterJobs()

	// 启动调度器
	manager.scheduler.Start()

	logger.Info("Task manager started successfully")
	return manager
}

// RegisterJobs 注册所有任务
func (m *Manager) RegisterJobs() {
	// 每个启用的合约注册一个采集任务
	for contractName, family := range contractFamilies {
		contract, err := m.chainManager.GetContract(contractName)
		if err != nil {
			logger.Warn("Skipping ingest job for %s: %v", contractName, err)
			continue
		}
		source := NewChainLogSource(m.chainManager, contract)
		ingestor := NewIngestor(m.db, source, family)
		m.register(NewIngestJob(ingestor, family, m.config))
	}

	m.register(NewReconcileJob(m.reconciler, m.config))
	m.register(NewDispatchJob(m.dispatcher, m.config))
}

// register 注册单个任务，同名任务不会并发重入
func (m *Manager) register(job Job) {
	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Error("Failed to register job %s: %v", job.GetName(), err)
		return
	}
	logger.Info("Registered job %s", job.GetName())
}

// Stop 停止任务管理器
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Task manager stopped")
}
