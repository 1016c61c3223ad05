package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/jbaris/grain-price-analyzer/internal/dataset"
)

const (
	DefaultOutlierThreshold = 50.0

	outlierLookahead = 2
)

type SanitizePricesTaskUseCase struct {
	logger *slog.Logger
}

func NewSanitizePricesTaskUseCase(logger *slog.Logger) *SanitizePricesTaskUseCase {
	return &SanitizePricesTaskUseCase{logger: logger}
}

type Outlier struct {
	Column   string
	Previous float64
	Current  float64
	Change   float64
}

func (o Outlier) String() string {
	return fmt.Sprintf("%s: %v -> %v (%.1f%% change, isolated)", o.Column, o.Previous, o.Current, o.Change)
}

type DiscardedRow struct {
	// Line is the 1-based line in the CSV file, header included.
	Line     int
	Record   []string
	Outliers []Outlier
}

func (uc *SanitizePricesTaskUseCase) SanitizePrices(_ context.Context, req *SanitizePricesRequest) (*SanitizePricesResponse, error) {
	table, err := dataset.LoadTable(req.SrcPath)
	if err != nil {
		return nil, err
	}

	threshold := req.Threshold
	if threshold <= 0 {
		threshold = DefaultOutlierThreshold
	}

	kept, discarded := SanitizeTable(table, threshold)

	dateIndex := slices.Index(table.Header, dataset.DateColumn)
	for _, row := range discarded {
		date := ""
		if dateIndex >= 0 && dateIndex < len(row.Record) {
			date = row.Record[dateIndex]
		}

		details := make([]string, 0, len(row.Outliers))
		for _, outlier := range row.Outliers {
			details = append(details, outlier.String())
		}

		uc.logger.Warn("discarding isolated outlier",
			"line", row.Line,
			"date", date,
			"outliers", strings.Join(details, "; "),
			"row", strings.Join(row.Record, ","),
		)
	}

	if err := dataset.SaveTable(req.DestPath, kept); err != nil {
		return nil, err
	}

	resp := &SanitizePricesResponse{
		Total:     len(table.Records),
		Kept:      len(kept.Records),
		Discarded: len(discarded),
	}

	uc.logger.Info("sanitization complete", "total", resp.Total, "kept", resp.Kept, "discarded", resp.Discarded, "dest", req.DestPath)

	return resp, nil
}

// SanitizeTable drops rows where a numeric column jumps more than threshold
// percent from the previous input row and the next rows do not confirm the
// jump. The first row is always kept.
func SanitizeTable(table dataset.Table, threshold float64) (dataset.Table, []DiscardedRow) {
	numericColumns := []int{}
	for i, column := range table.Header {
		if column != dataset.DateColumn {
			numericColumns = append(numericColumns, i)
		}
	}

	kept := dataset.Table{Header: table.Header, Records: [][]string{}}
	discarded := []DiscardedRow{}

	for i, record := range table.Records {
		if i == 0 {
			kept.Records = append(kept.Records, record)
			continue
		}

		outliers := []Outlier{}
		for _, column := range numericColumns {
			outlier, ok := isolatedOutlier(table.Records, i, column, threshold)
			if ok {
				outlier.Column = table.Header[column]
				outliers = append(outliers, outlier)
			}
		}

		if len(outliers) > 0 {
			discarded = append(discarded, DiscardedRow{Line: i + 2, Record: record, Outliers: outliers})
			continue
		}

		kept.Records = append(kept.Records, record)
	}

	return kept, discarded
}

func isolatedOutlier(records [][]string, i int, column int, threshold float64) (Outlier, bool) {
	current, ok := cellValue(records[i], column)
	if !ok {
		return Outlier{}, false
	}

	previous, ok := cellValue(records[i-1], column)
	if !ok {
		return Outlier{}, false
	}

	// NaN cells never count as a jump
	change := percentageDifference(current, previous)
	if !(change > threshold) {
		return Outlier{}, false
	}

	for j := 1; j <= outlierLookahead && i+j < len(records); j++ {
		next, ok := cellValue(records[i+j], column)
		if !ok {
			continue
		}

		// the next value sits closer to the new level than to the old one
		if math.Abs(current-next) <= math.Abs(previous-next) {
			return Outlier{}, false
		}
	}

	return Outlier{Previous: previous, Current: current, Change: change}, true
}

func percentageDifference(current float64, previous float64) float64 {
	if previous == 0 {
		if current != 0 {
			return math.Inf(1)
		}
		return 0
	}

	return math.Abs((current-previous)/previous) * 100
}

func cellValue(record []string, column int) (float64, bool) {
	if column >= len(record) {
		return 0, false
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(record[column]), 64)
	if err != nil {
		return 0, false
	}

	return value, true
}
