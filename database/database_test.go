package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

func TestDateScan(t *testing.T) {
	params := []interface{}{
		"2023-01-02",
		[]byte("2023-01-02"),
		time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
	}

	for _, param := range params {
		actual := Date{}
		err := actual.Scan(param)

		assert.Nil(t, err)
		assert.Equal(t, Date{Year: 2023, Month: 1, Day: 2}, actual)
	}
}

func TestDateScan_Invalid(t *testing.T) {
	actual := Date{}

	assert.Error(t, actual.Scan(42))
	assert.Error(t, actual.Scan("02/01/2023"))
}

func TestNewDateFromString(t *testing.T) {
	date, err := NewDateFromString("2023-01-02")

	assert.Nil(t, err)
	assert.Equal(t, Date{Year: 2023, Month: 1, Day: 2}, date)

	for _, value := range []string{"2023-01-02xyz", "2023-1-2", "2023-02-30", ""} {
		_, err := NewDateFromString(value)
		assert.Error(t, err, value)
	}
}

func TestDateValue(t *testing.T) {
	date := Date{Year: 2023, Month: 1, Day: 2}

	actual, err := date.Value()

	assert.Nil(t, err)
	assert.Equal(t, "2023-01-02", actual)
}

func TestConfigDSN(t *testing.T) {
	config := Config{Host: "localhost", Port: 5432, User: "agro", Password: "secret", DBName: "agro"}

	assert.Equal(t, "host=localhost port=5432 user=agro password=secret dbname=agro sslmode=disable", config.DSN())

	config.SSLMode = "require"
	assert.Equal(t, "host=localhost port=5432 user=agro password=secret dbname=agro sslmode=require", config.DSN())
}

func Test_updateColumns(t *testing.T) {
	columns, err := updateColumns(&Price{}, "id", "created_at")

	assert.Nil(t, err)
	assert.Equal(t, []string{
		"date",
		"maize_ars",
		"wheat_ars",
		"soy_ars",
		"exchange_rate",
		"maize_usd",
		"wheat_usd",
		"soy_usd",
		"updated_at",
		"deleted_at",
	}, columns)
}

type DBTestSuite struct {
	suite.Suite

	config Config
	db     DB
}

func loadTestDBConfig() (Config, bool) {
	if curDir, err := os.Getwd(); err == nil {
		_ = godotenv.Load(filepath.Join(curDir, "..", ".env"))
	}

	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		return Config{}, false
	}

	port, err := strconv.Atoi(os.Getenv("TEST_DB_PORT"))
	if err != nil {
		port = 5432
	}

	return Config{
		Host:     host,
		Port:     port,
		User:     os.Getenv("TEST_DB_USER"),
		Password: os.Getenv("TEST_DB_PASSWORD"),
		DBName:   "agro-test",
	}, true
}

func (s *DBTestSuite) SetupSuite() {
	db, err := Connect(context.Background(), s.config)
	s.Require().Nil(err)

	s.db = db

	result := s.db.gorm().Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", SchemaName))
	s.Require().Nil(result.Error)
}

func (s *DBTestSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *DBTestSuite) SetupTest() {
	s.Require().Nil(s.db.gorm().AutoMigrate(&Price{}))
}

func (s *DBTestSuite) TearDownTest() {
	s.Require().Nil(s.db.gorm().Migrator().DropTable(&Price{}))
}

func (s *DBTestSuite) AssertPartialEqual(expected any, actual any, diffOpts ...cmp.Option) bool {
	if cmp.Equal(expected, actual, diffOpts...) {
		return true
	}

	diff := cmp.Diff(expected, actual, diffOpts...)
	return s.Fail(
		fmt.Sprintf(
			"Not equal: \n"+"expected: %v\n"+"actual  : %v%v",
			expected,
			actual,
			diff,
		),
	)
}

func Test_DBTestSuite(t *testing.T) {
	config, ok := loadTestDBConfig()
	if !ok {
		t.Skip("TEST_DB_HOST is not set")
	}

	suite.Run(t, &DBTestSuite{config: config})
}

func (s *DBTestSuite) Test_UpsertToPrices() {
	prices := []Price{
		{
			Date:         Date{Year: 2018, Month: 7, Day: 2},
			MaizeARS:     decimal.NewFromFloat(3100),
			WheatARS:     decimal.NewFromFloat(4200.5),
			SoyARS:       decimal.NewFromFloat(7500),
			ExchangeRate: decimal.NewFromFloat(27.5),
			MaizeUSD:     decimal.NewFromFloat(112.73),
			WheatUSD:     decimal.NewFromFloat(152.75),
			SoyUSD:       decimal.NewFromFloat(272.73),
		},
	}

	err := UpsertToPrices(s.db, prices)
	s.Nil(err)

	updated := prices[0]
	updated.HeadColumns = HeadColumns{}
	updated.ExchangeRate = decimal.NewFromFloat(28)
	err = UpsertToPrices(s.db, []Price{updated})
	s.Nil(err)

	var actualPrices []Price
	result := s.db.gorm().Order("date").Find(&actualPrices)
	s.Nil(result.Error)

	s.Equal(1, len(actualPrices))
	diffOpts := []cmp.Option{
		cmpopts.IgnoreFields(Price{}, "HeadColumns", "TailColumns"),
		cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }),
	}
	s.AssertPartialEqual(updated, actualPrices[0], diffOpts...)
}

func (s *DBTestSuite) Test_Transaction_Rollback() {
	err := s.db.Transaction(func(tx DB) error {
		if err := UpsertToPrices(tx, []Price{{Date: Date{Year: 2018, Month: 7, Day: 2}}}); err != nil {
			return err
		}

		return fmt.Errorf("abort")
	})
	s.EqualError(err, "abort")

	var count int64
	s.Nil(s.db.gorm().Model(&Price{}).Count(&count).Error)
	s.Equal(int64(0), count)
}

func (s *DBTestSuite) Test_RawDB_Init_Existing() {
	raw := NewRawDB(s.config)
	s.Require().Nil(raw.Connect())
	defer raw.Shutdown()

	created, err := raw.Init()

	s.Nil(err)
	s.False(created)
}
