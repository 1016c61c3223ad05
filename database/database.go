package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	// registers the "pgx" database/sql driver used by RawDB
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	SchemaName = "agro"

	dateFormat     = "%04d-%02d-%02d"
	dateLayout     = "2006-01-02"
	connectRetries = 3
)

type ctxKey string

const CTXKeyDBConfig ctxKey = "DBConfig"

var namingStrategy = schema.NamingStrategy{TablePrefix: SchemaName + "."}

type HeadColumns struct {
	ID uint `gorm:"primarykey"`
}

type TailColumns struct {
	CreatedAt time.Time      `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

type Date struct {
	Year  int
	Month int
	Day   int
}

func NewDateFromString(value string) (Date, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", value, err)
	}

	return NewDateFromTime(t), nil
}

func NewDateFromTime(t time.Time) Date {
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// @see sql.Scanner
func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case time.Time:
		*d = NewDateFromTime(v)
		return nil
	case string:
		date, err := NewDateFromString(v)
		if err != nil {
			return err
		}
		*d = date
		return nil
	case []byte:
		return d.Scan(string(v))
	default:
		return fmt.Errorf("failed to scan date value: %v", value)
	}
}

// @see driver.Valuer
func (d Date) Value() (driver.Value, error) {
	return d.Format(), nil
}

func (d Date) Format() string {
	return fmt.Sprintf(dateFormat, d.Year, d.Month, d.Day)
}

// GormDataType makes AutoMigrate create a DATE column.
func (Date) GormDataType() string {
	return "date"
}

type Price struct {
	HeadColumns

	Date         Date            `gorm:"not null;uniqueIndex:idx_prices_date"`
	MaizeARS     decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	WheatARS     decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	SoyARS       decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	ExchangeRate decimal.Decimal `gorm:"type:numeric(14,4);not null"`
	MaizeUSD     decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	WheatUSD     decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	SoyUSD       decimal.Decimal `gorm:"type:numeric(14,2);not null"`

	TailColumns
}

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (c Config) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.DBName,
		sslMode,
	)
}

type RawDB struct {
	db     *sql.DB
	config Config
}

func NewRawDB(config Config) *RawDB {
	return &RawDB{db: nil, config: config}
}

func (r *RawDB) Connect() error {
	db, err := sql.Open("pgx", r.config.DSN())
	if err != nil {
		return err
	}

	r.db = db

	return nil
}

// Init creates the application schema if it does not exist yet and reports
// whether it did.
func (r *RawDB) Init() (bool, error) {
	initialized, err := r.checkInitialized()
	if err != nil {
		return false, fmt.Errorf("failed to check if database is initialized: %w", err)
	} else if initialized {
		return false, nil
	}

	if _, err := r.db.Exec(fmt.Sprintf(`CREATE SCHEMA %s`, SchemaName)); err != nil {
		return false, fmt.Errorf("failed to create schema %s: %w", SchemaName, err)
	}

	return true, nil
}

func (r *RawDB) checkInitialized() (bool, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM information_schema.schemata WHERE schema_name = $1", SchemaName).Scan(&count)
	if err != nil {
		return false, err
	}

	return count != 0, nil
}

func (r *RawDB) Shutdown() error {
	if r.db == nil {
		return nil
	}

	return r.db.Close()
}

func (r *RawDB) DB() *sql.DB {
	return r.db
}

type DB interface {
	Transaction(fc func(tx DB) error, opts ...*sql.TxOptions) error
	Close() error
	gorm() *gorm.DB
}

type postgresDB struct {
	gormDB *gorm.DB
}

func (db *postgresDB) Transaction(fc func(tx DB) error, opts ...*sql.TxOptions) error {
	return db.gormDB.Transaction(func(tx *gorm.DB) error {
		return fc(&postgresDB{gormDB: tx})
	}, opts...)
}

func (db *postgresDB) Close() error {
	sqlDB, err := db.gormDB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

func (db *postgresDB) gorm() *gorm.DB {
	return db.gormDB
}

// Connect opens the gorm connection, retrying with exponential backoff while
// the server is unreachable.
func Connect(ctx context.Context, config Config) (DB, error) {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), connectRetries),
		ctx,
	)

	gormDB, err := backoff.RetryWithData(func() (*gorm.DB, error) {
		return gorm.Open(postgres.Open(config.DSN()), &gorm.Config{
			NamingStrategy: namingStrategy,
			Logger:         logger.Default.LogMode(logger.Silent),
		})
	}, policy)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &postgresDB{gormDB: gormDB}, nil
}

func updateColumns(model interface{}, ignoreColumns ...string) ([]string, error) {
	s, err := schema.Parse(model, &sync.Map{}, namingStrategy)
	if err != nil {
		return nil, err
	}

	ignored := map[string]bool{}
	for _, column := range ignoreColumns {
		ignored[column] = true
	}

	columns := []string{}
	for _, field := range s.Fields {
		if field.DBName == "" || ignored[field.DBName] {
			continue
		}

		columns = append(columns, field.DBName)
	}

	return columns, nil
}

func UpsertToPrices(db DB, records []Price) error {
	if len(records) == 0 {
		return nil
	}

	columns, err := updateColumns(&Price{}, "id", "created_at")
	if err != nil {
		return fmt.Errorf("failed to parse price schema: %w", err)
	}

	result := db.gorm().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(&records)

	return result.Error
}
