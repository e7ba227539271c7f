package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dentavia/dentavia/internal/config"
	"github.com/dentavia/dentavia/internal/domain"
	"github.com/dentavia/dentavia/internal/domain/appointment"
	"github.com/dentavia/dentavia/internal/domain/message"
	"github.com/dentavia/dentavia/internal/domain/notification"
	"github.com/dentavia/dentavia/internal/domain/prescription"
)

func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:      gormlogger.Default.LogMode(gormlogger.Silent),
		PrepareStmt: true,
		// TranslateError maps driver errors onto gorm sentinels; the
		// appointment repository relies on gorm.ErrDuplicatedKey to detect
		// same-day uniqueness violations.
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: false,
	}), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	start := time.Now()

	schemas := []string{"clinic", "auth", "audit"}
	for _, schema := range schemas {
		if err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)).Error; err != nil {
			return fmt.Errorf("creating schema %s: %w", schema, err)
		}
	}

	models := []any{
		&domain.User{},
		&domain.AuditLog{},
		&appointment.Appointment{},
		&appointment.Intervention{},
		&appointment.Document{},
		&notification.Notification{},
		&prescription.Prescription{},
		&message.Message{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("creating indexes: %w", err)
	}

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []struct {
		name  string
		query string
	}{
		// At most one active appointment per patient per calendar day. This
		// is the authoritative guard behind the same-day conflict rule;
		// concurrent bookings that slip past the service pre-check fail here.
		{
			name:  "uniq_appointments_patient_day_active",
			query: `CREATE UNIQUE INDEX IF NOT EXISTS uniq_appointments_patient_day_active ON clinic.appointments (patient_id, ((scheduled_at AT TIME ZONE 'UTC')::date)) WHERE status IN ('PENDING', 'ACCEPTED') AND deleted_at IS NULL`,
		},
		{
			name:  "idx_appointments_doctor_schedule",
			query: `CREATE INDEX IF NOT EXISTS idx_appointments_doctor_schedule ON clinic.appointments (doctor_id, scheduled_at) WHERE deleted_at IS NULL`,
		},
		{
			name:  "idx_notifications_user_unread",
			query: `CREATE INDEX IF NOT EXISTS idx_notifications_user_unread ON clinic.notifications (user_id, created_at DESC) WHERE read = false`,
		},
		{
			name:  "idx_messages_recipient_unread",
			query: `CREATE INDEX IF NOT EXISTS idx_messages_recipient_unread ON clinic.messages (recipient_id, sent_at DESC) WHERE read = false`,
		},
		{
			name:  "idx_users_assigned_doctor",
			query: `CREATE INDEX IF NOT EXISTS idx_users_assigned_doctor ON auth.users (assigned_doctor_id, delegation_status) WHERE deleted_at IS NULL`,
		},
	}

	for _, idx := range indexes {
		if err := db.Exec(idx.query).Error; err != nil {
			return fmt.Errorf("creating index %s: %w", idx.name, err)
		}
	}

	return nil
}
