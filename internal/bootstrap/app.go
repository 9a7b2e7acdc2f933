package bootstrap

import (
	"context"
	"fmt"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"nlustudio/internal/config"
	"nlustudio/internal/mlbackend"
	"nlustudio/internal/model"
	mysqlClient "nlustudio/internal/platform/mysql"
	rabbitmqClient "nlustudio/internal/platform/rabbitmq"
	redisClient "nlustudio/internal/platform/redis"
	"nlustudio/internal/repository"
	"nlustudio/internal/worker"
)

type App struct {
	Config      *config.Config
	MySQL       *gorm.DB
	Redis       *redis.Client
	MQConn      *amqp.Connection
	Backend     *mlbackend.Client
	EpochWorker *worker.EpochPersistWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(
		&model.User{},
		&model.Session{},
		&model.Workspace{},
		&model.Dataset{},
		&model.MLModel{},
		&model.TrainingHistory{},
		&model.NLUModel{},
		&model.Annotation{},
		&model.ChatSession{},
		&model.ChatMessage{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.Storage.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir failed: %w", err)
	}

	historyRepo := repository.NewTrainingHistoryRepository(mysqlDB)
	epochWorker := worker.NewEpochPersistWorker(mqConn, historyRepo, cfg.RabbitMQ.EpochPersistQueue)
	if err := epochWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start epoch worker failed: %w", err)
	}

	backend := mlbackend.NewClient(cfg.MLBackend.BaseURL, time.Duration(cfg.MLBackend.TimeoutSeconds)*time.Second)

	return &App{
		Config:      cfg,
		MySQL:       mysqlDB,
		Redis:       redisCli,
		MQConn:      mqConn,
		Backend:     backend,
		EpochWorker: epochWorker,
		StartedAt:   time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.EpochWorker != nil {
		a.EpochWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
