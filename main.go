package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-server/api"
	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/config"
	"github.com/carson-networks/ledger-server/internal/digest"
	"github.com/carson-networks/ledger-server/internal/events"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/operator"
	"github.com/carson-networks/ledger-server/internal/service"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/migrations"
)

func main() {
	_ = godotenv.Load()

	envConfig, err := config.ProcessEnvironmentVariables()
	if err != nil {
		logrus.WithError(err).Fatal("config.ProcessEnvironmentVariables")
		return
	}

	logger := logging.SetupLogging(envConfig.Log.Level)
	logger.WithField("backend", envConfig.Store.Backend).Info("ledger-server starting")

	if envConfig.Store.Backend == config.BackendPostgres && envConfig.Store.MigrateOnStart {
		result, err := migrations.Up(envConfig.PostgresDSN())
		if err != nil {
			logger.WithError(err).Fatal("migrations.Up")
			return
		}
		logger.WithFields(logrus.Fields{
			"preMigrationVersion":  result.PreMigrationVersion,
			"postMigrationVersion": result.PostMigrationVersion,
		}).Info("Migration status")
	}

	dbStorage, err := storage.NewStorage(envConfig)
	if err != nil {
		logger.WithError(err).Fatal("storage.NewStorage")
		return
	}
	defer dbStorage.Close()

	delegator := operator.NewOperatorDelegator(dbStorage, envConfig.Operator.Workers)
	delegator.Start()
	defer delegator.Stop()

	var publisher events.Publisher = events.NoopPublisher{}
	if envConfig.AMQP.URL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(envConfig.AMQP.URL, envConfig.AMQP.Exchange)
		if err != nil {
			logger.WithError(err).Fatal("events.NewAMQPPublisher")
			return
		}
		publisher = amqpPublisher
	}
	defer publisher.Close()

	issuer := auth.NewIssuer(envConfig.Auth.JWTSecret, envConfig.Auth.TokenTTL)
	svc := service.NewService(dbStorage, delegator, publisher, issuer, service.Options{
		Calendar:     ledger.NewCalendar(envConfig.Report.Location, envConfig.Report.Weekday),
		PageSize:     envConfig.Report.PageSize,
		StoreTimeout: envConfig.Report.StoreTimeout,
	})

	if envConfig.Digest.Schedule != "" {
		scheduler := digest.NewScheduler(svc.Account, svc.Report, publisher, logger)
		if err := scheduler.Start(envConfig.Digest.Schedule); err != nil {
			logger.WithError(err).Fatal("digest.Start")
			return
		}
		defer scheduler.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpRest := api.Rest{
		Logger:  logger,
		Port:    envConfig.HTTP.Port,
		Service: svc,
		Issuer:  issuer,
		Store:   dbStorage,
	}
	if err := httpRest.Serve(ctx); err != nil {
		logger.WithError(err).Error("HttpServer.Serve")
	}
	logger.Info("ledger-server stopped")
}
