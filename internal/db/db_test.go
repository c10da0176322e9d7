package db

import (
	"testing"

	"gorm.io/gorm"
)

func TestDialector(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@localhost:5432/fitmind":                  "postgres",
		"postgresql://u:p@localhost:5432/fitmind":                "postgres",
		"app:apppass@tcp(127.0.0.1:3306)/fitmind?parseTime=true": "mysql",
		"fitmind.db":                                             "sqlite",
		"file::memory:?cache=shared":                             "sqlite",
	}
	for dsn, want := range cases {
		if got := Dialector(dsn).Name(); got != want {
			t.Fatalf("Dialector(%q) = %s, want %s", dsn, got, want)
		}
	}
}

func TestMigrate_SQLite(t *testing.T) {
	gdb, err := gorm.Open(Dialector("file:migrate_test?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for _, table := range []string{"users", "profiles", "chat_sessions", "chat_messages", "chat_jobs", "chat_logs"} {
		if !gdb.Migrator().HasTable(table) {
			t.Fatalf("expected table %s", table)
		}
	}
}
