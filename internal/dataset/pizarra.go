package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
)

const (
	Maize = "maiz"
	Wheat = "trigo"
	Soy   = "soja"
)

var Cereals = []string{Maize, Wheat, Soy}

// PriceValue is a board quote as published, either a JSON string or number.
type PriceValue string

func (v *PriceValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = PriceValue(s)
		return nil
	}

	*v = PriceValue(data)

	return nil
}

func (v PriceValue) Decimal() (decimal.Decimal, error) {
	if v == "" {
		return decimal.Zero, nil
	}

	return decimal.NewFromString(string(v))
}

type BoardQuote struct {
	Price     PriceValue `json:"precio"`
	Estimated PriceValue `json:"estimativo"`
}

// Value returns the settled price, or the estimate when no price was
// settled that day. Unparsable prices report an error.
func (q BoardQuote) Value() (decimal.Decimal, error) {
	price, err := q.Price.Decimal()
	if err != nil {
		return decimal.Zero, err
	}

	if !price.IsZero() {
		return price, nil
	}

	return q.Estimated.Decimal()
}

// Pizarra maps date -> product -> raw quote object.
type Pizarra struct {
	Boards map[string]map[string]json.RawMessage `json:"pizarra"`
}

// CerealPrices returns the positive prices of the requested cereals for date.
func (p *Pizarra) CerealPrices(date string, cereals []string) map[string]decimal.Decimal {
	prices := map[string]decimal.Decimal{}

	board, ok := p.Boards[date]
	if !ok {
		return prices
	}

	for _, cereal := range cereals {
		raw, ok := board[cereal]
		if !ok {
			continue
		}

		var quote BoardQuote
		if err := json.Unmarshal(raw, &quote); err != nil {
			continue
		}

		value, err := quote.Value()
		if err != nil || !value.IsPositive() {
			continue
		}

		prices[cereal] = value
	}

	return prices
}

func LoadPizarra(path string) (Pizarra, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Pizarra{}, fmt.Errorf("failed to read pizarra: %w", err)
	}

	var pizarra Pizarra
	if err := json.Unmarshal(content, &pizarra); err != nil {
		return Pizarra{}, fmt.Errorf("failed to decode pizarra %s: %w", path, err)
	}

	return pizarra, nil
}
