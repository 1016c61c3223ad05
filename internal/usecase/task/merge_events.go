package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jbaris/grain-price-analyzer/internal/dataset"
)

const DefaultEventsFromYear = 2018

type MergeEventsTaskUseCase struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewMergeEventsTaskUseCase(logger *slog.Logger) *MergeEventsTaskUseCase {
	return &MergeEventsTaskUseCase{
		logger: logger,
		now:    time.Now,
	}
}

// MergeEvents writes special events as is plus every regular (day-month)
// event repeated for each year up to the current one. Regular events
// overwrite special events on the same date.
func (uc *MergeEventsTaskUseCase) MergeEvents(_ context.Context, req *MergeEventsRequest) (*MergeEventsResponse, error) {
	regular, err := dataset.LoadEvents(req.RegularPath)
	if err != nil {
		return nil, err
	}

	special, err := dataset.LoadEvents(req.SpecialPath)
	if err != nil {
		return nil, err
	}

	fromYear := req.FromYear
	if fromYear == 0 {
		fromYear = DefaultEventsFromYear
	}
	toYear := uc.now().Year()

	merged, err := MergeEventSets(regular, special, fromYear, toYear)
	if err != nil {
		return nil, err
	}

	if err := dataset.SaveEvents(req.DestPath, merged); err != nil {
		return nil, err
	}

	resp := &MergeEventsResponse{
		Total:    len(merged),
		FromYear: fromYear,
		ToYear:   toYear,
	}

	uc.logger.Info("events merged", "total", resp.Total, "from_year", fromYear, "to_year", toYear, "dest", req.DestPath)

	return resp, nil
}

func MergeEventSets(regular dataset.Events, special dataset.Events, fromYear int, toYear int) (dataset.Events, error) {
	merged := make(dataset.Events, len(special)+len(regular)*max(toYear-fromYear+1, 0))
	for date, event := range special {
		merged[date] = event
	}

	for key, event := range regular {
		day, month, err := dataset.ParseDayMonth(key)
		if err != nil {
			return nil, err
		}

		for year := fromYear; year <= toYear; year++ {
			merged[fmt.Sprintf("%04d-%02d-%02d", year, month, day)] = event
		}
	}

	return merged, nil
}
