package repo

import (
	"strings"

	"GopherDrive/internal/model"

	"gorm.io/driver/postgres"
	sqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// InitDB открывает подключение по DSN и выполняет миграции.
// Postgres выбирается по виду DSN; всё остальное трактуется как путь
// к SQLite-базе (удобно для локального запуска без внешней БД).
func InitDB(dsn string) (*gorm.DB, error) {
	var dial gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.Contains(dsn, "host=") {
		dial = postgres.Open(dsn)
	} else {
		if dsn == "" {
			dsn = "gopherdrive.db"
		}
		dial = sqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	}

	db, err := gorm.Open(dial, &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// AutoMigrate прогоняет миграции всех моделей. Вынесено отдельно,
// чтобы тесты могли мигрировать in-memory базу тем же кодом.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.UserStorage{},
		&model.Group{},
		&model.UserGroup{},
		&model.File{},
		&model.GroupFile{},
		&model.UserFile{},
	)
}
