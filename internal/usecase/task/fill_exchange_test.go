package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jbaris/grain-price-analyzer/internal/api/bna"
	"github.com/jbaris/grain-price-analyzer/internal/dataset"
)

type quoteFetcherMock struct {
	mock.Mock
}

func (m *quoteFetcherMock) GetHistoricalQuotes(ctx context.Context, date time.Time) ([]bna.Quote, error) {
	result := m.Called(ctx, date)

	quotes, _ := result.Get(0).([]bna.Quote)

	return quotes, result.Error(1)
}

func onDay(day string) interface{} {
	return mock.MatchedBy(func(date time.Time) bool {
		return date.Format(dataset.DateLayout) == day
	})
}

func localDate(day string) time.Time {
	date, err := time.ParseInLocation(dataset.DateLayout, day, time.Local)
	if err != nil {
		panic(err)
	}

	return date
}

func writeFile(t *testing.T, dir string, name string, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	return path
}

func newFillExchangeUseCase(quotes QuoteFetcher, now string) *FillExchangeTaskUseCase {
	uc := NewFillExchangeTaskUseCase(quotes, discardLogger())
	uc.now = func() time.Time {
		return localDate(now).Add(15 * time.Hour)
	}

	return uc
}

func TestFillExchange(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "dolar_exchange.json",
		`{"data": [["2026-10-12", 1370.1], ["2026-10-13", 1375.456]], "count": 2}`)
	dest := filepath.Join(dir, "dolar_exchange_complete.json")

	quotes := new(quoteFetcherMock)
	quotes.On("GetHistoricalQuotes", mock.Anything, onDay("2026-10-14")).Return([]bna.Quote{
		{Date: localDate("2026-10-13"), Value: decimal.RequireFromString("1380.0")},
		{Date: localDate("2026-10-14"), Value: decimal.RequireFromString("1390.3")},
	}, nil)
	quotes.On("GetHistoricalQuotes", mock.Anything, onDay("2026-10-15")).Return(nil, errors.New("timeout"))
	quotes.On("GetHistoricalQuotes", mock.Anything, onDay("2026-10-16")).Return([]bna.Quote{}, nil)

	uc := newFillExchangeUseCase(quotes, "2026-10-16")

	resp, err := uc.FillExchange(context.Background(), &FillExchangeRequest{SrcPath: src, DestPath: dest})

	require.NoError(t, err)
	quotes.AssertExpectations(t)
	assert.Equal(t, 3, resp.Days)
	assert.Equal(t, 2, resp.Fetched)
	assert.Equal(t, 1, resp.Fallbacks)
	assert.Equal(t, 4, resp.Records)
	assert.Equal(t, localDate("2026-10-14"), *resp.From)
	assert.Equal(t, localDate("2026-10-16"), *resp.To)

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t,
		`{"data":[["2026-10-12",1370.1],["2026-10-13",1380],["2026-10-14",1390.3],["2026-10-15",1375.46]]}`,
		string(content),
	)
}

func TestFillExchange_UpToDate(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "dolar_exchange.json",
		`{"data": [["2026-10-14", 1390], ["2026-10-15", null], ["2026-10-16", 1400.123]]}`)
	dest := filepath.Join(dir, "dolar_exchange_complete.json")

	quotes := new(quoteFetcherMock)
	uc := newFillExchangeUseCase(quotes, "2026-10-16")

	resp, err := uc.FillExchange(context.Background(), &FillExchangeRequest{SrcPath: src, DestPath: dest})

	require.NoError(t, err)
	quotes.AssertNotCalled(t, "GetHistoricalQuotes", mock.Anything, mock.Anything)
	assert.Equal(t, 0, resp.Days)
	assert.Nil(t, resp.From)

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, `{"data":[["2026-10-14",1390],["2026-10-16",1400.12]]}`, string(content))
}

func TestFillExchange_EmptySeries(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "dolar_exchange.json", `{"data": []}`)

	uc := newFillExchangeUseCase(new(quoteFetcherMock), "2026-10-16")

	_, err := uc.FillExchange(context.Background(), &FillExchangeRequest{SrcPath: src, DestPath: filepath.Join(dir, "out.json")})

	assert.ErrorIs(t, err, dataset.ErrEmptySeries)
	assert.NoFileExists(t, filepath.Join(dir, "out.json"))
}

func TestFillExchange_Cancelled(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "dolar_exchange.json", `{"data": [["2026-10-10", 1350]]}`)
	dest := filepath.Join(dir, "out.json")

	quotes := new(quoteFetcherMock)
	quotes.On("GetHistoricalQuotes", mock.Anything, mock.Anything).Return(nil, context.Canceled).Maybe()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	uc := newFillExchangeUseCase(quotes, "2026-10-16")

	_, err := uc.FillExchange(ctx, &FillExchangeRequest{SrcPath: src, DestPath: dest, Concurrency: 2})

	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, dest)
}

func Test_missingDays(t *testing.T) {
	tests := []struct {
		name string
		last string
		now  time.Time
		want []string
	}{
		{name: "two days behind", last: "2026-10-14", now: localDate("2026-10-16").Add(13 * time.Hour), want: []string{"2026-10-15", "2026-10-16"}},
		{name: "yesterday", last: "2026-10-15", now: localDate("2026-10-16"), want: []string{"2026-10-16"}},
		{name: "today", last: "2026-10-16", now: localDate("2026-10-16").Add(23 * time.Hour), want: []string{}},
		{name: "future", last: "2026-10-20", now: localDate("2026-10-16"), want: []string{}},
		{name: "month boundary", last: "2026-09-29", now: localDate("2026-10-01"), want: []string{"2026-09-30", "2026-10-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days := missingDays(localDate(tt.last), tt.now)

			actual := []string{}
			for _, day := range days {
				actual = append(actual, day.Format(dataset.DateLayout))
			}
			assert.Equal(t, tt.want, actual)
		})
	}
}
