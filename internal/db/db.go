package db

import (
	"log"
	"strings"

	"github.com/fitmind/fitmind/internal/chat"
	"github.com/fitmind/fitmind/internal/models"
	"github.com/fitmind/fitmind/internal/profile"
	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialector picks the gorm driver from the DSN shape:
// postgres:// URLs, MySQL "user:pass@tcp(host)/db" DSNs, anything else is a SQLite path.
func Dialector(dsn string) gorm.Dialector {
	dsn = strings.TrimSpace(dsn)
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgres.Open(dsn)
	case strings.Contains(dsn, "@tcp("), strings.Contains(dsn, "@unix("):
		return mysql.Open(dsn)
	default:
		return gormsqlite.Open(dsn)
	}
}

func Connect(dsn string) *gorm.DB {
	gdb, err := gorm.Open(Dialector(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	return gdb
}

func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&profile.Profile{},
		&chat.Session{},
		&chat.Message{},
		&chat.Job{},
		&chat.LogEntry{},
	)
}
