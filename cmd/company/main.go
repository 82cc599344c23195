package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gartstein/fleet/internal/company/auth"
	"github.com/gartstein/fleet/internal/company/config"
	"github.com/gartstein/fleet/internal/company/controller"
	"github.com/gartstein/fleet/internal/company/db"
	"github.com/gartstein/fleet/internal/company/events"
	"github.com/gartstein/fleet/internal/company/handlers"
	"github.com/gartstein/fleet/internal/company/logging"
	"github.com/gartstein/fleet/internal/company/metrics"
	"github.com/gartstein/fleet/internal/company/models"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config (defaults to $FLEET_CONFIG or "+config.DefaultPath+")")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// No logger yet.
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Environment, zap.String("service", "company"))
	if err != nil {
		zap.NewExample().Fatal("failed to build logger", zap.Error(err))
	}
	defer func() {
		_ = logger.Sync()
	}()
	logger.Info("Configuration loaded", cfg.LogFields()...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := connectDatabase(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer repo.Close()

	seeded, err := repo.SeedZones(ctx, seedZones(cfg.Zones))
	if err != nil {
		logger.Fatal("failed to seed zones", zap.Error(err))
	}
	logger.Info("Zones seeded", zap.Int("created", seeded), zap.Int("configured", len(cfg.Zones)))

	var producer controller.EventProducer = discardProducer{logger: logger.Named("events")}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaProducer, err := events.NewProducer(cfg.KafkaBrokers, logger, cfg.Topic)
		if err != nil {
			logger.Fatal("failed to initialize Kafka producer", zap.Error(err))
		}
		defer kafkaProducer.Close()
		producer = kafkaProducer
	} else {
		logger.Warn("No Kafka brokers configured, company events are discarded")
	}

	if cfg.AuditGroup != "" {
		auditLogger := logger.Named("audit")
		consumer := events.NewConsumer(cfg.KafkaBrokers, cfg.AuditGroup, cfg.Topic, logger)
		consumer.RegisterHandler(events.AuditLog(auditLogger))
		consumerCtx, cancelConsumer := context.WithCancel(ctx)
		consumer.Start(consumerCtx)
		defer consumer.Close()
		defer cancelConsumer()
		logger.Info("Event audit consumer started", zap.String("group", cfg.AuditGroup))
	}

	companySvc := controller.NewCompanyService(repo, producer, logger)
	companyHandler := handlers.NewCompanyHandler(companySvc, logger)

	m := metrics.New(cfg.MetricsNamespace)
	authInterceptor := auth.NewAuthInterceptor(cfg.JWTSecret)
	server := handlers.NewServer(cfg.GRPCPort, cfg.HTTPPort, logger,
		grpc.ChainUnaryInterceptor(m.UnaryServerInterceptor(), authInterceptor.Unary()),
	)
	server.RegisterGRPCHandler(companyHandler)
	if err := server.RegisterHTTPGateway(companyHandler, cfg.JWTSecret, m); err != nil {
		logger.Fatal("Failed to register HTTP gateway", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Server failed", zap.Error(err))
		}
	case <-ctx.Done():
	}

	server.Stop()
	logger.Info("Servers stopped properly")
}

// connectDatabase opens the repository, retrying with exponential backoff
// until cfg.DBConnectTimeout elapses.
func connectDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*db.Repository, error) {
	dbConf := &db.Config{
		Driver:          cfg.DBDriver,
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		User:            cfg.DBUser,
		Password:        cfg.DBPassword,
		DBName:          cfg.DBName,
		SSLMode:         cfg.DBSSLMode,
		SQLitePath:      cfg.DBPath,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		LogLevel:        gormlogger.Silent,
	}
	if logging.ParseLevel(cfg.LogLevel) == zap.DebugLevel {
		dbConf.LogLevel = gormlogger.Info
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = cfg.DBConnectTimeout

	var repo *db.Repository
	err := backoff.RetryNotify(func() error {
		r, err := db.NewRepository(dbConf)
		if err != nil {
			return err
		}
		repo = r
		return nil
	}, backoff.WithContext(b, ctx), func(err error, next time.Duration) {
		logger.Warn("Database not ready, retrying", zap.Error(err), zap.Duration("next_attempt", next))
	})
	return repo, err
}

func seedZones(zones []config.Zone) []models.Zone {
	out := make([]models.Zone, 0, len(zones))
	for _, z := range zones {
		out = append(out, models.Zone{ID: z.ID, Name: z.Name, IsCommunity: z.IsCommunity})
	}
	return out
}

// discardProducer stands in for Kafka when no brokers are configured.
type discardProducer struct {
	logger *zap.Logger
}

func (p discardProducer) Produce(eventType events.EventType, company *models.Company) {
	p.logger.Debug("Discarding event",
		zap.String("type", string(eventType)),
		zap.Int32("company_id", company.ID),
	)
}
