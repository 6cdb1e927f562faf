// Package theoryaccess собирает основное приложение: хранилище,
// кеш сессий, оракула урегулирования, публикатора уведомлений и
// HTTP-сервер с маршрутами.
package theoryaccess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"github.com/streadway/amqp"

	"github.com/mwalimuclement/theory-access/internal/cache"
	"github.com/mwalimuclement/theory-access/internal/config"
	"github.com/mwalimuclement/theory-access/internal/http/handlers/health"
	"github.com/mwalimuclement/theory-access/internal/lib/jwt"
	"github.com/mwalimuclement/theory-access/internal/lib/password"
	"github.com/mwalimuclement/theory-access/internal/lib/sl"
	"github.com/mwalimuclement/theory-access/internal/migrations"
	"github.com/mwalimuclement/theory-access/internal/models"
	"github.com/mwalimuclement/theory-access/internal/rabbitmq"
	accessservice "github.com/mwalimuclement/theory-access/internal/services/access"
	"github.com/mwalimuclement/theory-access/internal/services/notifier"
	paymentservice "github.com/mwalimuclement/theory-access/internal/services/payment"
	testservice "github.com/mwalimuclement/theory-access/internal/services/testsession"
	"github.com/mwalimuclement/theory-access/internal/sessions"
	"github.com/mwalimuclement/theory-access/internal/settlement"
	"github.com/mwalimuclement/theory-access/internal/storage"
	"github.com/mwalimuclement/theory-access/internal/storage/memstore"
	"github.com/mwalimuclement/theory-access/internal/storage/repository"
)

// App экземпляр приложения со всеми его зависимостями.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	rabbit *amqp.Connection
}

// New собирает приложение по конфигурации. Хранилище выбирается по
// cfg.StorageDriver: postgres с миграциями или память процесса.
// RabbitMQ необязателен: без строки подключения коды доступа не
// рассылаются, остальной жизненный цикл платежа работает как обычно.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	var store storage.Store
	var db *repository.Storage

	switch cfg.StorageDriver {
	case "memory":
		store = memstore.New()
	case "postgres":
		var err error
		db, err = repository.New(cfg.StorageConnectionString)
		if err != nil {
			return nil, err
		}
		if err = migrations.Run(db.DB, "./migrations"); err != nil {
			return nil, err
		}
		store = db
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.StorageDriver)
	}

	if err := bootstrapAdmin(ctx, cfg, store); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}
	sessionStore := sessions.New(cacheRedis)

	var rabbitConn *amqp.Connection
	var publisher paymentservice.Publisher
	if cfg.RabbitConnectionString != "" {
		rabbitConn, err = rabbitmq.Connect(cfg.RabbitConnectionString, 5, 3*time.Second)
		if err != nil {
			return nil, err
		}
		ch, err := rabbitmq.SetupChannel(rabbitConn)
		if err != nil {
			rabbitConn.Close()
			return nil, err
		}
		publisher = notifier.NewPublisher(ch)
	} else {
		logger.Warn("rabbitmq is not configured, access code notifications are disabled")
	}

	oracle := settlement.NewSimulated(cfg.MinDelay, cfg.MaxDelay, cfg.SuccessRate)
	tokens := jwt.NewMaker(cfg.JWTSecretKey)

	paymentSvc := paymentservice.New(store, oracle, publisher, logger)
	accessSvc := accessservice.New(store, sessionStore, tokens, cfg.TokenTTL, logger)
	testSvc := testservice.New(store, logger)

	var dbReady health.Checker
	if db != nil {
		dbReady = db
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, paymentSvc, accessSvc, testSvc, tokens, sessionStore, dbReady)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		rabbit: rabbitConn,
	}, nil
}

// Run запускает HTTP-сервер и ждёт либо ошибки, либо отмены контекста,
// после чего гасит сервер с таймаутом.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if a.rabbit != nil {
			if cerr := a.rabbit.Close(); cerr != nil {
				a.logger.Error("failed to close rabbitmq connection", sl.Err(cerr))
			}
		}
		if a.db != nil {
			a.db.DB.Close()
		}
		return err
	}
}

// bootstrapAdmin заводит административную учётную запись из
// конфигурации. Пустые учётные данные пропускаются, повторный запуск
// с тем же именем пользователя ничего не меняет.
func bootstrapAdmin(ctx context.Context, cfg *config.Config, store storage.Store) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}
	hash, err := password.GetHash(cfg.AdminPassword)
	if err != nil {
		return err
	}
	return store.CreateAdmin(ctx, &models.Admin{
		ID:           uuid.NewString(),
		Username:     cfg.AdminUsername,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	})
}
