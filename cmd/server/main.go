package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lowerzedo/ims-api/config"
	"github.com/lowerzedo/ims-api/internal/database"
	"github.com/lowerzedo/ims-api/internal/repositories/activitylog"
	"github.com/lowerzedo/ims-api/internal/repositories/address"
	"github.com/lowerzedo/ims-api/internal/repositories/assignment"
	"github.com/lowerzedo/ims-api/internal/repositories/certificate"
	"github.com/lowerzedo/ims-api/internal/repositories/client"
	"github.com/lowerzedo/ims-api/internal/repositories/driver"
	"github.com/lowerzedo/ims-api/internal/repositories/endorsement"
	"github.com/lowerzedo/ims-api/internal/repositories/lookup"
	"github.com/lowerzedo/ims-api/internal/repositories/losspayee"
	"github.com/lowerzedo/ims-api/internal/repositories/policy"
	"github.com/lowerzedo/ims-api/internal/repositories/provider"
	"github.com/lowerzedo/ims-api/internal/repositories/vehicle"
	"github.com/lowerzedo/ims-api/pkg/documents"
	"github.com/lowerzedo/ims-api/pkg/events"
	"github.com/lowerzedo/ims-api/pkg/kafka"
	"github.com/lowerzedo/ims-api/pkg/middleware"
	"github.com/lowerzedo/ims-api/pkg/routes/activity"
	"github.com/lowerzedo/ims-api/pkg/routes/addresses"
	"github.com/lowerzedo/ims-api/pkg/routes/assignments"
	"github.com/lowerzedo/ims-api/pkg/routes/certificates"
	"github.com/lowerzedo/ims-api/pkg/routes/clients"
	"github.com/lowerzedo/ims-api/pkg/routes/drivers"
	"github.com/lowerzedo/ims-api/pkg/routes/endorsements"
	"github.com/lowerzedo/ims-api/pkg/routes/health"
	"github.com/lowerzedo/ims-api/pkg/routes/lookups"
	"github.com/lowerzedo/ims-api/pkg/routes/losspayees"
	"github.com/lowerzedo/ims-api/pkg/routes/policies"
	"github.com/lowerzedo/ims-api/pkg/routes/providers"
	"github.com/lowerzedo/ims-api/pkg/routes/vehicles"
	"github.com/lowerzedo/ims-api/pkg/startup"
	"github.com/lowerzedo/ims-api/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	var shutdownTracing func(context.Context) error
	if cfg.TracingEnabled {
		shutdownTracing = tracing.Init(cfg.AppName)
	}

	ctx := context.Background()

	var (
		db       *database.Instance
		producer *kafka.Producer
		server   *echo.Echo
	)

	boot := startup.New(logger, cfg.StartupMaxRetries)

	boot.AddDependency(startup.NewDependency("database", nil,
		func(ctx context.Context) error {
			db, err = database.Connect(ctx, database.Settings{
				URL:             cfg.DatabaseURL,
				MaxOpenConns:    cfg.DatabaseMaxOpenConns,
				MaxIdleConns:    cfg.DatabaseMaxIdleConns,
				ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
			}, logger)
			return err
		},
		func(ctx context.Context) error {
			return db.Close()
		}))

	boot.AddDependency(startup.NewDependency("migrations", []string{"database"},
		func(ctx context.Context) error {
			return database.NewMigrationService(cfg.DatabaseMigrationFolderPath, logger).
				Migrate(db, cfg.DatabaseName)
		}, nil))

	httpDependsOn := []string{"migrations"}
	if cfg.KafkaEnabled {
		httpDependsOn = append(httpDependsOn, "kafka")
		boot.AddDependency(startup.NewDependency("kafka", nil,
			func(ctx context.Context) error {
				producer = kafka.NewProducer(kafka.ProducerConfig{
					Brokers:      cfg.KafkaBrokers,
					Topic:        cfg.KafkaTopic,
					BatchSize:    cfg.KafkaBatchSize,
					BatchTimeout: cfg.KafkaBatchTimeout,
					RequiredAcks: cfg.KafkaRequiredAcks,
					Compression:  cfg.KafkaCompression,
				}, logger)
				return nil
			},
			func(ctx context.Context) error {
				return producer.Close()
			}))
	}

	boot.AddDependency(startup.NewDependency("http", httpDependsOn,
		func(ctx context.Context) error {
			server = buildServer(cfg, logger, db, producer)
			go func() {
				srv := &http.Server{
					Addr:         ":" + cfg.Port,
					ReadTimeout:  cfg.HTTPReadTimeout,
					WriteTimeout: cfg.HTTPWriteTimeout,
					IdleTimeout:  cfg.HTTPIdleTimeout,
				}
				if err := server.StartServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal("http server failed", zap.Error(err))
				}
			}()
			logger.Info("http server listening", zap.String("port", cfg.Port))
			return nil
		},
		func(ctx context.Context) error {
			return server.Shutdown(ctx)
		}))

	if err := boot.Start(ctx); err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("shutting down", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := boot.Stop(shutdownCtx); err != nil {
		logger.Error("shutdown did not complete cleanly", zap.Error(err))
	}
	if shutdownTracing != nil {
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error("failed to shut down tracer", zap.Error(err))
		}
	}
}

// buildServer wires the echo instance: middleware, repositories, and every
// route group. All groups except lookups and health require an authenticated
// actor.
func buildServer(cfg *config.Config, logger *zap.Logger, db *database.Instance, producer *kafka.Producer) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	if cfg.TracingEnabled {
		e.Use(otelecho.Middleware(cfg.AppName))
	}
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))
	e.HTTPErrorHandler = middleware.Error(logger)

	store := documents.NewStore(cfg.DocumentStoragePath)
	emitter := events.NewEmitter(producer, logger)

	lookupRepo := lookup.NewRepository(db, logger)
	addressRepo := address.NewRepository(db, logger)
	clientRepo := client.NewRepository(db, logger)
	lossPayeeRepo := losspayee.NewRepository(db, logger)
	vehicleRepo := vehicle.NewRepository(db, logger)
	driverRepo := driver.NewRepository(db, logger)
	policyVehicleRepo := assignment.NewVehicleRepository(db, logger)
	policyDriverRepo := assignment.NewDriverRepository(db, logger)
	agentRepo := provider.NewAgentRepository(db, logger)
	productRepo := provider.NewProductRepository(db, logger)
	referralRepo := provider.NewReferralRepository(db, logger)
	policyRepo := policy.NewRepository(db, logger)
	endorsementRepo := endorsement.NewRepository(db, logger)
	holderRepo := certificate.NewHolderRepository(db, logger)
	masterRepo := certificate.NewMasterRepository(db, logger)
	certificateRepo := certificate.NewRepository(db, store, logger)
	activityRepo := activitylog.NewRepository(db, logger)
	recorder := activitylog.NewRecorder(activityRepo, emitter, logger)

	health.NewHandler(db).Register(e)

	api := e.Group("/api/v1")
	lookups.NewHandler(lookupRepo).Register(api.Group("/lookups"))

	actor := middleware.RequireActor()
	addresses.NewHandler(addressRepo).Register(api.Group("/addresses", actor))
	clients.NewHandler(clientRepo, recorder).Register(api.Group("/clients", actor))
	losspayees.NewHandler(lossPayeeRepo).Register(api.Group("/loss-payees", actor))
	vehicles.NewHandler(vehicleRepo, recorder).Register(api.Group("/vehicles", actor))
	drivers.NewHandler(driverRepo, recorder).Register(api.Group("/drivers", actor))
	assignments.NewVehicleHandler(policyVehicleRepo, recorder).Register(api.Group("/policy-vehicles", actor))
	assignments.NewDriverHandler(policyDriverRepo, recorder).Register(api.Group("/policy-drivers", actor))
	providers.NewAgentHandler(agentRepo).Register(api.Group("/general-agents", actor))
	providers.NewProductHandler(productRepo).Register(api.Group("/carrier-products", actor))
	providers.NewReferralHandler(referralRepo).Register(api.Group("/referral-companies", actor))
	policies.NewHandler(policyRepo, recorder).Register(api.Group("/policies", actor))

	endorsementHandler := endorsements.NewHandler(endorsementRepo, policyRepo, recorder)
	endorsementHandler.Register(api.Group("/endorsements", actor))
	endorsementHandler.RegisterChanges(api.Group("/endorsement-changes", actor))

	certificates.NewHolderHandler(holderRepo).Register(api.Group("/certificate-holders", actor))
	certificates.NewMasterHandler(masterRepo).Register(api.Group("/master-certificates", actor))
	certificates.NewHandler(certificateRepo, recorder).Register(api.Group("/certificates", actor))
	activity.NewHandler(activityRepo, recorder).Register(api.Group("/activity-logs", actor))

	return e
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
