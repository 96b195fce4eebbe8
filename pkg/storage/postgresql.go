package storage

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dhis2-sre/im-calendar/pkg/config"
	"github.com/dhis2-sre/im-calendar/pkg/model"
	slogGorm "github.com/orandin/slog-gorm"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewDatabase(logger *slog.Logger, c config.Postgresql) (*gorm.DB, error) {
	host := c.Host
	port := c.Port
	username := c.Username
	password := c.Password
	name := c.DatabaseName

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC", host, username, password, name, port)

	db, err := gorm.Open(postgres.Open(dsn), NewGormConfig(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	if err := db.Use(otelgorm.NewPlugin()); err != nil {
		return nil, fmt.Errorf("failed to setup tracing of database: %v", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// NewGormConfig returns the gorm configuration shared by every dialect. Errors are translated so
// repositories can check for gorm.ErrDuplicatedKey and timestamps are created in UTC.
func NewGormConfig(logger *slog.Logger) *gorm.Config {
	return &gorm.Config{
		Logger: slogGorm.New(
			slogGorm.WithHandler(logger.Handler()),
		),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Migrate creates or updates the tables of all entities.
func Migrate(db *gorm.DB) error {
	err := db.SetupJoinTable(&model.Event{}, "Categories", &model.EventCategoryLink{})
	if err != nil {
		return fmt.Errorf("failed to setup event category link: %v", err)
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.CategoryParticipant{},
		&model.Event{},
		&model.EventCategoryLink{},
		&model.EventParticipant{},
		&model.Notification{},
		&model.ChatMessage{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %v", err)
	}

	return nil
}
