package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
)

const DateColumn = "fecha"

var PriceColumns = []string{
	DateColumn,
	"maiz_ars",
	"trigo_ars",
	"soja_ars",
	"tipo_cambio_usd",
	"maiz_usd",
	"trigo_usd",
	"soja_usd",
}

type PriceRow struct {
	Date         string
	MaizeARS     decimal.Decimal
	WheatARS     decimal.Decimal
	SoyARS       decimal.Decimal
	ExchangeRate decimal.Decimal
	MaizeUSD     decimal.Decimal
	WheatUSD     decimal.Decimal
	SoyUSD       decimal.Decimal
}

func (r PriceRow) Record() []string {
	return []string{
		r.Date,
		r.MaizeARS.String(),
		r.WheatARS.String(),
		r.SoyARS.String(),
		r.ExchangeRate.String(),
		r.MaizeUSD.String(),
		r.WheatUSD.String(),
		r.SoyUSD.String(),
	}
}

func parsePriceRow(header []string, record []string) (PriceRow, error) {
	values := map[string]string{}
	for i, column := range header {
		if i < len(record) {
			values[column] = record[i]
		}
	}

	row := PriceRow{Date: values[DateColumn]}
	if row.Date == "" {
		return PriceRow{}, errors.New("missing date")
	}

	fields := []struct {
		column string
		dest   *decimal.Decimal
	}{
		{"maiz_ars", &row.MaizeARS},
		{"trigo_ars", &row.WheatARS},
		{"soja_ars", &row.SoyARS},
		{"tipo_cambio_usd", &row.ExchangeRate},
		{"maiz_usd", &row.MaizeUSD},
		{"trigo_usd", &row.WheatUSD},
		{"soja_usd", &row.SoyUSD},
	}
	for _, field := range fields {
		value, err := decimal.NewFromString(values[field.column])
		if err != nil {
			return PriceRow{}, fmt.Errorf("column %s: %w", field.column, err)
		}
		*field.dest = value
	}

	return row, nil
}

// Table is a CSV file kept in memory with its header.
type Table struct {
	Header  []string
	Records [][]string
}

func ReadTable(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Table{}, errors.New("csv has no header")
		}
		return Table{}, err
	}

	records, err := reader.ReadAll()
	if err != nil {
		return Table{}, err
	}

	return Table{Header: header, Records: records}, nil
}

func WriteTable(w io.Writer, table Table) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(table.Header); err != nil {
		return err
	}

	if err := writer.WriteAll(table.Records); err != nil {
		return err
	}

	return writer.Error()
}

func LoadTable(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("failed to open csv: %w", err)
	}
	defer f.Close()

	table, err := ReadTable(f)
	if err != nil {
		return Table{}, fmt.Errorf("failed to read csv %s: %w", path, err)
	}

	return table, nil
}

func SaveTable(path string, table Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv: %w", err)
	}
	defer f.Close()

	if err := WriteTable(f, table); err != nil {
		return fmt.Errorf("failed to write csv %s: %w", path, err)
	}

	return f.Close()
}

func NewPriceTable(rows []PriceRow) Table {
	table := Table{Header: PriceColumns, Records: make([][]string, 0, len(rows))}
	for _, row := range rows {
		table.Records = append(table.Records, row.Record())
	}

	return table
}

// PriceRows decodes every record of a prices table.
func (t Table) PriceRows() ([]PriceRow, error) {
	rows := make([]PriceRow, 0, len(t.Records))
	for i, record := range t.Records {
		row, err := parsePriceRow(t.Header, record)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}
