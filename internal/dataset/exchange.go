package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

var ErrEmptySeries = errors.New("exchange series has no records")

// RoundFloat rounds value the way "%.Nf" formats a float64: on the binary
// approximation, with exact ties going to the even digit.
func RoundFloat(value decimal.Decimal, places int) decimal.Decimal {
	f, _ := value.Float64()

	rounded, err := decimal.NewFromString(strconv.FormatFloat(f, 'f', places, 64))
	if err != nil {
		return value.Round(int32(places))
	}

	return rounded
}

// ExchangeRate is one observation of the series, encoded as [date, value].
type ExchangeRate struct {
	Date  string
	Value decimal.Decimal
}

func (r ExchangeRate) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{r.Date, json.Number(r.Value.String())})
}

type ExchangeSeries struct {
	Data []ExchangeRate
}

type exchangeSeriesDocument struct {
	Data [][]json.RawMessage `json:"data"`
}

// UnmarshalJSON reads the "data" member of a series payload. Observations
// with a null value are dropped.
func (s *ExchangeSeries) UnmarshalJSON(data []byte) error {
	var doc exchangeSeriesDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	s.Data = make([]ExchangeRate, 0, len(doc.Data))
	for i, record := range doc.Data {
		if len(record) < 2 {
			return fmt.Errorf("record %d: expected [date, value], got %d elements", i, len(record))
		}

		var date string
		if err := json.Unmarshal(record[0], &date); err != nil {
			return fmt.Errorf("record %d: invalid date: %w", i, err)
		}

		if bytes.Equal(bytes.TrimSpace(record[1]), []byte("null")) {
			continue
		}

		var value decimal.Decimal
		if err := value.UnmarshalJSON(record[1]); err != nil {
			return fmt.Errorf("record %d: invalid value: %w", i, err)
		}

		s.Data = append(s.Data, ExchangeRate{Date: date, Value: value})
	}

	return nil
}

func (s ExchangeSeries) MarshalJSON() ([]byte, error) {
	data := s.Data
	if data == nil {
		data = []ExchangeRate{}
	}

	return json.Marshal(struct {
		Data []ExchangeRate `json:"data"`
	}{Data: data})
}

func (s *ExchangeSeries) Last() (ExchangeRate, error) {
	if len(s.Data) == 0 {
		return ExchangeRate{}, ErrEmptySeries
	}

	return s.Data[len(s.Data)-1], nil
}

func (s *ExchangeSeries) SortByDate() {
	sort.SliceStable(s.Data, func(i, j int) bool {
		return s.Data[i].Date < s.Data[j].Date
	})
}

// RateIndex answers "rate on or before date" lookups.
type RateIndex struct {
	dates []string
	rates map[string]decimal.Decimal
}

func NewRateIndex(series ExchangeSeries) *RateIndex {
	index := &RateIndex{rates: map[string]decimal.Decimal{}}
	for _, record := range series.Data {
		if _, ok := index.rates[record.Date]; !ok {
			index.dates = append(index.dates, record.Date)
		}
		index.rates[record.Date] = record.Value
	}
	sort.Strings(index.dates)

	return index
}

// Find returns the rate for date or, failing that, for the closest earlier date.
func (idx *RateIndex) Find(date string) (decimal.Decimal, bool) {
	if rate, ok := idx.rates[date]; ok {
		return rate, true
	}

	i := sort.SearchStrings(idx.dates, date)
	if i == 0 {
		return decimal.Decimal{}, false
	}

	return idx.rates[idx.dates[i-1]], true
}

func LoadExchangeSeries(path string) (ExchangeSeries, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return ExchangeSeries{}, fmt.Errorf("failed to read exchange series: %w", err)
	}

	var series ExchangeSeries
	if err := json.Unmarshal(content, &series); err != nil {
		return ExchangeSeries{}, fmt.Errorf("failed to decode exchange series %s: %w", path, err)
	}

	return series, nil
}

func SaveExchangeSeries(path string, series ExchangeSeries) error {
	content, err := json.Marshal(series)
	if err != nil {
		return fmt.Errorf("failed to encode exchange series: %w", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write exchange series: %w", err)
	}

	return nil
}
