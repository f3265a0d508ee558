package db

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"totestore/internal/config"
	"totestore/internal/models"
)

// MustOpen открывает соединение с БД по настройкам из .env и мигрирует схему
func MustOpen(cfg config.Config, log zerolog.Logger) *gorm.DB {
	dsn := cfg.DBDSN
	if cfg.DBDriver == "sqlite" {
		dsn = cfg.SQLitePath + "?_foreign_keys=on"
	}
	if dsn == "" {
		log.Fatal().Msg("DB_DSN is empty (check your .env)")
	}

	db, err := Open(cfg.DBDriver, dsn, cfg.LogLevel == "debug")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	if err := Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	log.Info().Str("driver", cfg.DBDriver).Msg("database ready")
	return db
}

// Open подключается к postgres или sqlite
func Open(driver, dsn string, debug bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	level := logger.Silent
	if debug {
		level = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
		// нарушение unique приходит как gorm.ErrDuplicatedKey на обоих драйверах
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	return db, nil
}

// Migrate создаёт или обновляет все таблицы
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.AuthToken{}, &models.Product{}, &models.ProductImage{})
}

// OpenMemory — sqlite в памяти со схемой, для тестов. Одно соединение:
// у каждого соединения :memory: своя база.
func OpenMemory() (*gorm.DB, error) {
	db, err := Open("sqlite", ":memory:?_foreign_keys=on", false)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}
