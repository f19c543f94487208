package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sangkips/ecs-receipts/internal/config"
	"github.com/sangkips/ecs-receipts/internal/domain/entity"
	applog "github.com/sangkips/ecs-receipts/pkg/logger"
	"github.com/sangkips/ecs-receipts/pkg/utils"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects with the configured driver.
func Open(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	switch cfg.Driver {
	case "sqlite":
		return NewSQLiteDB(cfg.Path, debug)
	case "", "postgres":
		return NewPostgresDB(cfg, debug)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func gormConfig(debug bool) *gorm.Config {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}
	return &gorm.Config{Logger: logger.New(applog.GormWriter{}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logLevel,
		IgnoreRecordNotFoundError: true,
	})}
}

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), gormConfig(debug))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Info().Str("host", cfg.Host).Str("db", cfg.Name).Msg("connected to PostgreSQL")
	return db, nil
}

// NewSQLiteDB opens a file database, or an in-memory one for ":memory:".
func NewSQLiteDB(path string, debug bool) (*gorm.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), gormConfig(debug))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// sqlite allows a single writer
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	log.Info().Str("path", path).Msg("opened SQLite database")
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	log.Info().Msg("running database migrations")

	err := db.AutoMigrate(
		&entity.Permission{},
		&entity.Role{},
		&entity.User{},
		&entity.Investor{},
		&entity.Receipt{},
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// SeedDefaultData creates permissions, the admin and employee roles, and the
// configured admin account when it does not exist yet.
func SeedDefaultData(db *gorm.DB, admin config.AdminConfig) error {
	names := []string{
		entity.PermCreateReceipts, entity.PermViewReceipts, entity.PermManageReceipts,
		entity.PermManageUsers, entity.PermViewStats, entity.PermManageInvestors,
	}
	for _, name := range names {
		perm := entity.Permission{Name: name, GuardName: "web"}
		if err := db.Where(entity.Permission{Name: name}).FirstOrCreate(&perm).Error; err != nil {
			return fmt.Errorf("seed permission %s: %w", name, err)
		}
	}

	var all []entity.Permission
	if err := db.Find(&all).Error; err != nil {
		return err
	}
	pick := func(wanted ...string) []entity.Permission {
		var out []entity.Permission
		for _, p := range all {
			for _, w := range wanted {
				if p.Name == w {
					out = append(out, p)
				}
			}
		}
		return out
	}

	roles := map[string][]entity.Permission{
		entity.RoleAdmin:    all,
		entity.RoleEmployee: pick(entity.PermCreateReceipts, entity.PermViewReceipts, entity.PermViewStats, entity.PermManageInvestors),
	}
	for name, perms := range roles {
		var role entity.Role
		err := db.Where("name = ?", name).First(&role).Error
		if err == nil {
			continue
		}
		role = entity.Role{Name: name, GuardName: "web", Permissions: perms}
		if err := db.Create(&role).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", name, err)
		}
	}

	if admin.EmpCode == "" || admin.Password == "" {
		return nil
	}
	var existing entity.User
	if err := db.Where("emp_code = ?", admin.EmpCode).First(&existing).Error; err == nil {
		log.Debug().Str("emp_code", admin.EmpCode).Msg("admin user already exists")
		return nil
	}

	hashed, err := utils.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	var adminRole entity.Role
	if err := db.Where("name = ?", entity.RoleAdmin).First(&adminRole).Error; err != nil {
		return fmt.Errorf("load admin role: %w", err)
	}
	user := entity.User{
		EmpCode:  admin.EmpCode,
		Name:     admin.Name,
		Email:    admin.Email,
		Branch:   admin.Branch,
		Password: hashed,
		Active:   true,
		Roles:    []entity.Role{adminRole},
	}
	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	log.Info().Str("emp_code", admin.EmpCode).Msg("admin user created")
	return nil
}
