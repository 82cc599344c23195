package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	entities "github.com/gartstein/fleet/internal/company/db/models"
	"github.com/gartstein/fleet/internal/company/descriptor"
	e "github.com/gartstein/fleet/internal/company/errors"
	"github.com/gartstein/fleet/internal/company/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Supported values of Config.Driver.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Repository stores companies, zones, users and vehicles through GORM.
type Repository struct {
	db *gorm.DB
}

// Config selects the driver and connection settings for NewRepository.
type Config struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	// DSN overrides the connection parameters above when set.
	DSN string
	// SQLitePath is the database file used by the sqlite driver.
	SQLitePath string

	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// schemaModels lists the migrated entities, parents first.
var schemaModels = []interface{}{
	&entities.Zone{},
	&entities.Company{},
	&entities.User{},
	&entities.Vehicle{},
}

// NewRepository connects to the configured database, applies the pool
// settings and migrates the schema.
func NewRepository(cfg *Config) (*Repository, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	logLevel := cfg.LogLevel
	if logLevel == 0 {
		logLevel = logger.Silent
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.AutoMigrate(schemaModels...); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Repository{db: db}, nil
}

func dialectorFor(cfg *Config) (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverPostgres, "":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
				cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
		}
		return postgres.Open(dsn), nil
	case DriverSQLite:
		path := cfg.DSN
		if path == "" {
			path = cfg.SQLitePath
		}
		if path == "" {
			return nil, fmt.Errorf("%w: sqlite path required", e.ErrInvalidInput)
		}
		return sqlite.Open(sqliteDSN(path)), nil
	default:
		return nil, fmt.Errorf("%w: unsupported driver %q", e.ErrInvalidInput, cfg.Driver)
	}
}

// sqliteDSN turns on foreign key enforcement, which SQLite leaves off per connection.
func sqliteDSN(path string) string {
	if strings.Contains(path, "_foreign_keys") || strings.Contains(path, "_fk=") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on"
}

// CreateCompany inserts company and stores the assigned id back into it.
func (r *Repository) CreateCompany(ctx context.Context, company *models.Company) error {
	row := toCompanyEntity(company)
	if err := r.insert(ctx, row, company.ID != 0); err != nil {
		return err
	}
	company.ID = row.ID
	return nil
}

type tabler interface {
	TableName() string
}

// insert creates row without touching its associations. Rows carrying their
// own id also move the id sequence past it, in the same transaction.
func (r *Repository) insert(ctx context.Context, row tabler, explicitID bool) error {
	if !explicitID {
		return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(row).Error)
	}
	return translateError(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(row).Error; err != nil {
			return err
		}
		return syncIDSequence(tx, row.TableName())
	}))
}

// syncIDSequence sets the Postgres id sequence of table to its largest id.
// Explicit ids do not advance the sequence, so the next generated id would
// otherwise collide with them. Other drivers derive new ids from the table.
func syncIDSequence(tx *gorm.DB, table string) error {
	if tx.Dialector.Name() != DriverPostgres {
		return nil
	}
	quoted := tx.Statement.Quote(table)
	return tx.Exec(
		"SELECT setval(pg_get_serial_sequence(?, 'id'), (SELECT MAX(id) FROM "+quoted+"))",
		quoted,
	).Error
}

func (r *Repository) GetCompany(ctx context.Context, id int32) (*models.Company, error) {
	var company entities.Company
	result := r.db.WithContext(ctx).First(&company, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return fromCompanyEntity(&company), nil
}

func (r *Repository) UpdateCompany(ctx context.Context, update *models.CompanyUpdate) error {
	result := r.db.WithContext(ctx).Model(&entities.Company{}).
		Where("id = ?", update.ID).
		Updates(companyUpdateColumns(update))

	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteCompany(ctx context.Context, id int32) error {
	result := r.db.WithContext(ctx).Delete(&entities.Company{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

func (r *Repository) CompanyExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&entities.Company{}).
		Where("email = ?", email).
		Limit(1).
		Count(&count)
	return count > 0, result.Error
}

// Describe returns the descriptor of a migrated table, named as in the database.
func (r *Repository) Describe(table string) (*descriptor.Entity, error) {
	for _, m := range schemaModels {
		ent, err := descriptor.Describe(m, r.db.NamingStrategy)
		if err != nil {
			return nil, err
		}
		if ent.Table == table {
			return ent, nil
		}
	}
	return nil, fmt.Errorf("%w: table %q", e.ErrNotFound, table)
}

func (r *Repository) WithTransaction(ctx context.Context, fn func(repo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func (r *Repository) Exec(ctx context.Context, query string, params ...interface{}) error {
	result := r.db.WithContext(ctx).Exec(query, params...)
	if result.Error != nil {
		return translateError(result.Error)
	}
	return nil
}

func (r *Repository) Close() error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
