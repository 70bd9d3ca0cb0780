package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lumora-health/visionflow/internal/config"
	"github.com/lumora-health/visionflow/internal/domain"
	"github.com/lumora-health/visionflow/internal/domain/appointment"
	"github.com/lumora-health/visionflow/internal/domain/patient"
	"github.com/lumora-health/visionflow/internal/domain/resource"
)

func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		PrepareStmt:                              true,
		DisableForeignKeyConstraintWhenMigrating: false,
		DisableAutomaticPing:                     false,
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: false,
	}), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// Configure connection pool
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

	schemas := []string{"clinical", "audit"} // logical namespace
	for _, schema := range schemas {
		if err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)).Error; err != nil {
			return fmt.Errorf("creating schema %s: %w", schema, err)
		}
	}

	models := []any{
		&domain.AuditLog{},
		&patient.Patient{},
		&resource.Provider{},
		&resource.Room{},
		&resource.Equipment{},
		&appointment.Appointment{},
		&appointment.EquipmentBooking{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	if err := createIndexes(db, log); err != nil {
		return fmt.Errorf("creating indexes: %w", err)
	}

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

func createIndexes(db *gorm.DB, log *zap.Logger) error {
	indexes := []struct {
		name  string
		query string
	}{
		{
			name:  "idx_appointments_provider_schedule",
			query: `CREATE INDEX IF NOT EXISTS idx_appointments_provider_schedule ON clinical.appointments (provider_id, starts_at, ends_at) WHERE deleted_at IS NULL AND status NOT IN ('cancelled', 'no_show')`,
		},
		{
			name:  "idx_appointments_room_schedule",
			query: `CREATE INDEX IF NOT EXISTS idx_appointments_room_schedule ON clinical.appointments (room_id, starts_at, ends_at) WHERE deleted_at IS NULL AND room_id IS NOT NULL AND status NOT IN ('cancelled', 'no_show')`,
		},
		{
			name:  "idx_appointment_equipment_lookup",
			query: `CREATE INDEX IF NOT EXISTS idx_appointment_equipment_lookup ON clinical.appointment_equipment (equipment_id, appointment_id)`,
		},
		// The validation engine only reasons over a snapshot; this constraint
		// is the write-time control that stops two callers from validating the
		// same gap and both booking it.
		{
			name: "appointments_provider_no_overlap",
			query: `DO $$ BEGIN
				ALTER TABLE clinical.appointments ADD CONSTRAINT appointments_provider_no_overlap
					EXCLUDE USING gist (
						provider_id WITH =,
						tsrange(starts_at, ends_at) WITH &&
					) WHERE (deleted_at IS NULL AND status NOT IN ('cancelled', 'no_show'));
			EXCEPTION WHEN duplicate_table OR duplicate_object THEN NULL; END $$`,
		},
	}

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS btree_gist").Error; err != nil {
		return fmt.Errorf("installing btree_gist: %w", err)
	}

	for _, idx := range indexes {
		if err := db.Exec(idx.query).Error; err != nil {
			log.Warn("failed to create index", zap.String("index", idx.name), zap.Error(err))
		}
	}

	return nil
}
