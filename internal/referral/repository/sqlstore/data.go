package sqlstore

import (
	"fmt"

	"go-referral/internal/conf"
	"go-referral/internal/database"

	"go.uber.org/zap"
)

// NewData opens the configured database and migrates it to the latest schema.
func NewData(c *conf.Data, logger *zap.Logger) (*database.DB, func(), error) {
	db, err := database.Open(c.Database.Driver, c.Database.Source)
	if err != nil {
		return nil, nil, err
	}
	if err := database.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to migrate %s database: %w", db.Driver(), err)
	}

	logger.Info("database ready", zap.String("driver", db.Driver()))

	cleanup := func() {
		logger.Info("closing the data resources")
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", zap.Error(err))
		}
	}
	return db, cleanup, nil
}
