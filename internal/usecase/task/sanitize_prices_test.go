package usecase

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbaris/grain-price-analyzer/internal/dataset"
)

func Test_percentageDifference(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		previous float64
		want     float64
	}{
		{name: "increase", current: 150, previous: 100, want: 50},
		{name: "decrease", current: 25, previous: 100, want: 75},
		{name: "from zero", current: 1, previous: 0, want: math.Inf(1)},
		{name: "both zero", current: 0, previous: 0, want: 0},
		{name: "negative previous", current: -50, previous: -100, want: 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, percentageDifference(tt.current, tt.previous))
		})
	}
}

func TestSanitizeTable(t *testing.T) {
	table := dataset.Table{
		Header: []string{"fecha", "maiz_ars", "soja_ars"},
		Records: [][]string{
			{"2018-07-02", "100", "200"},
			{"2018-07-03", "400", "210"}, // isolated spike, next rows go back
			{"2018-07-04", "105", "205"}, // far from the spike but confirmed by the next row
			{"2018-07-05", "106", "400"}, // sustained jump
			{"2018-07-06", "107", "410"},
			{"2018-07-07", "n/a", "415"}, // non numeric cells are ignored
			{"2018-07-08", "108", "0"},   // drop to zero at the end, no rows to confirm it
		},
	}

	kept, discarded := SanitizeTable(table, 50)

	assert.Equal(t, table.Header, kept.Header)
	assert.Equal(t, [][]string{
		{"2018-07-02", "100", "200"},
		{"2018-07-04", "105", "205"},
		{"2018-07-05", "106", "400"},
		{"2018-07-06", "107", "410"},
		{"2018-07-07", "n/a", "415"},
	}, kept.Records)

	require.Len(t, discarded, 2)

	assert.Equal(t, 3, discarded[0].Line)
	assert.Equal(t, []Outlier{{Column: "maiz_ars", Previous: 100, Current: 400, Change: 300}}, discarded[0].Outliers)

	assert.Equal(t, 8, discarded[1].Line)
	assert.Equal(t, "soja_ars", discarded[1].Outliers[0].Column)
	assert.Equal(t, "soja_ars: 415 -> 0 (100.0% change, isolated)", discarded[1].Outliers[0].String())
}

func TestSanitizeTable_ComparesWithPreviousInputRow(t *testing.T) {
	table := dataset.Table{
		Header: []string{"fecha", "maiz_ars"},
		Records: [][]string{
			{"2018-07-02", "100"},
			{"2018-07-03", "1000"},
			{"2018-07-04", "101"},
		},
	}

	kept, discarded := SanitizeTable(table, 50)

	assert.Equal(t, [][]string{{"2018-07-02", "100"}}, kept.Records)
	require.Len(t, discarded, 2)
	// the discarded spike is still the reference for the following row
	assert.Equal(t, float64(1000), discarded[1].Outliers[0].Previous)
}

func TestSanitizeTable_NaNCells(t *testing.T) {
	table := dataset.Table{
		Header: []string{"fecha", "maiz_ars"},
		Records: [][]string{
			{"2018-07-02", "100"},
			{"2018-07-03", "NaN"},
			{"2018-07-04", "101"},
		},
	}

	kept, discarded := SanitizeTable(table, 50)

	assert.Equal(t, table.Records, kept.Records)
	assert.Empty(t, discarded)
}

func TestSanitizeTable_KeepsFirstRow(t *testing.T) {
	table := dataset.Table{
		Header: []string{"fecha", "maiz_ars"},
		Records: [][]string{
			{"2018-07-02", "1000"},
			{"2018-07-03", "100"},
			{"2018-07-04", "100"},
		},
	}

	kept, discarded := SanitizeTable(table, 50)

	assert.Len(t, kept.Records, 3)
	assert.Empty(t, discarded)
}

func TestSanitizePrices(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "prices.csv",
		"fecha,maiz_ars,trigo_ars\n"+
			"2018-07-02,100,200\n"+
			"2018-07-03,1000,201\n"+
			"2018-07-04,101,202\n"+
			"2018-07-05,102,203\n")
	dest := filepath.Join(dir, "prices_sanitized.csv")

	uc := NewSanitizePricesTaskUseCase(discardLogger())

	resp, err := uc.SanitizePrices(context.Background(), &SanitizePricesRequest{SrcPath: src, DestPath: dest})

	require.NoError(t, err)
	assert.Equal(t, &SanitizePricesResponse{Total: 4, Kept: 3, Discarded: 1}, resp)

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "fecha,maiz_ars,trigo_ars\n2018-07-02,100,200\n2018-07-04,101,202\n2018-07-05,102,203\n", string(content))
}

func TestSanitizePrices_Threshold(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "prices.csv",
		"fecha,maiz_ars\n"+
			"2018-07-02,100\n"+
			"2018-07-03,170\n"+
			"2018-07-04,100\n")
	dest := filepath.Join(dir, "prices_sanitized.csv")

	uc := NewSanitizePricesTaskUseCase(discardLogger())

	resp, err := uc.SanitizePrices(context.Background(), &SanitizePricesRequest{SrcPath: src, DestPath: dest, Threshold: 80})

	require.NoError(t, err)
	assert.Equal(t, 0, resp.Discarded)
}

func TestSanitizePrices_MissingInput(t *testing.T) {
	uc := NewSanitizePricesTaskUseCase(discardLogger())

	_, err := uc.SanitizePrices(context.Background(), &SanitizePricesRequest{
		SrcPath:  filepath.Join(t.TempDir(), "missing.csv"),
		DestPath: filepath.Join(t.TempDir(), "out.csv"),
	})

	assert.Error(t, err)
}
