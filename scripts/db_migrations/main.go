package main

import (
	"github.com/sirupsen/logrus"

	server_config "github.com/carson-networks/ledger-server/internal/config"
	"github.com/carson-networks/ledger-server/internal/storage/migrations"
)

func main() {
	env, err := server_config.ProcessEnvironmentVariables()
	if err != nil {
		logrus.WithError(err).Fatal("ProcessEnvironmentVariables")
		return
	}

	logrus.WithFields(logrus.Fields{
		"address": env.Postgres.Address,
		"db":      env.Postgres.DB,
	}).Info("Running migrations")

	result, err := migrations.Up(env.PostgresDSN())
	if err != nil {
		logrus.WithError(err).Fatal("migrations.Up")
		return
	}

	logrus.WithFields(logrus.Fields{
		"preMigrationVersion":  result.PreMigrationVersion,
		"postMigrationVersion": result.PostMigrationVersion,
	}).Info("Migration status")
}
