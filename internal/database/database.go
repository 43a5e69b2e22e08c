package database

import (
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pathakanu/jobMemo/internal/logger"
	"github.com/pathakanu/jobMemo/internal/model"
)

var log = logger.New("database")

// New creates a GORM database connection.
// When databaseURL is provided PostgreSQL is used, otherwise SQLite at sqlitePath is used.
func New(databaseURL, sqlitePath string) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		// Reminder cleanup on application delete is done explicitly by the store.
		DisableForeignKeyConstraintWhenMigrating: true,
	}

	if databaseURL != "" {
		db, err = gorm.Open(postgres.Open(databaseURL), gormConfig)
	} else {
		db, err = gorm.Open(sqlite.Open(sqlitePath), gormConfig)
	}
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	logBackend(db, sqlitePath)
	return db, nil
}

// Migrate creates or updates the tables and indexes used by the service.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.User{}, &model.Application{}, &model.Reminder{})
}

func logBackend(db *gorm.DB, sqlitePath string) {
	dialector := db.Dialector.Name()
	switch strings.ToLower(dialector) {
	case "postgres":
		log.Info().Msg("Connected to PostgreSQL")
	case "sqlite":
		log.Info().Str("path", sqlitePath).Msg("Using SQLite")
	default:
		log.Info().Str("dialector", dialector).Msg("Connected")
	}
}
