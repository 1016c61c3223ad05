package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jbaris/grain-price-analyzer/internal/api/bna"
	"github.com/jbaris/grain-price-analyzer/internal/dataset"
)

const DefaultFillConcurrency = 4

type QuoteFetcher interface {
	GetHistoricalQuotes(ctx context.Context, date time.Time) ([]bna.Quote, error)
}

type FillExchangeTaskUseCase struct {
	quotes QuoteFetcher
	logger *slog.Logger
	now    func() time.Time
}

func NewFillExchangeTaskUseCase(quotes QuoteFetcher, logger *slog.Logger) *FillExchangeTaskUseCase {
	return &FillExchangeTaskUseCase{quotes: quotes, logger: logger, now: time.Now}
}

type dayQuotes struct {
	quotes   []bna.Quote
	fallback bool
}

// FillExchange extends the exchange series up to today with quotes scraped
// from the bank, falling back to the last known value for days it cannot read.
func (uc *FillExchangeTaskUseCase) FillExchange(ctx context.Context, req *FillExchangeRequest) (*FillExchangeResponse, error) {
	series, err := dataset.LoadExchangeSeries(req.SrcPath)
	if err != nil {
		return nil, err
	}

	last, err := series.Last()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req.SrcPath, err)
	}

	lastDate, err := time.ParseInLocation(dataset.DateLayout, last.Date, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date in last record: %w", err)
	}

	days := missingDays(lastDate, uc.now())
	results, err := uc.fetchDays(ctx, days, lo.Ternary(req.Concurrency > 0, req.Concurrency, DefaultFillConcurrency))
	if err != nil {
		return nil, err
	}

	resp := &FillExchangeResponse{Days: len(days)}
	if len(days) > 0 {
		resp.From = lo.ToPtr(days[0])
		resp.To = lo.ToPtr(days[len(days)-1])
	}

	seen := map[string]bool{}
	merged := dataset.ExchangeSeries{}
	add := func(date string, value decimal.Decimal) {
		if seen[date] {
			return
		}
		seen[date] = true
		merged.Data = append(merged.Data, dataset.ExchangeRate{Date: date, Value: dataset.RoundFloat(value, 2)})
	}

	for i, day := range days {
		if results[i].fallback {
			resp.Fallbacks++
			add(day.Format(dataset.DateLayout), last.Value)
			continue
		}

		resp.Fetched++
		for _, quote := range results[i].quotes {
			add(quote.Date.Format(dataset.DateLayout), quote.Value)
		}
	}

	for _, record := range series.Data {
		add(record.Date, record.Value)
	}

	merged.SortByDate()
	resp.Records = len(merged.Data)

	if err := dataset.SaveExchangeSeries(req.DestPath, merged); err != nil {
		return nil, err
	}

	uc.logger.Info("exchange series completed",
		"days", resp.Days,
		"fetched", resp.Fetched,
		"fallbacks", resp.Fallbacks,
		"records", resp.Records,
		"dest", req.DestPath,
	)

	return resp, nil
}

func (uc *FillExchangeTaskUseCase) fetchDays(ctx context.Context, days []time.Time, concurrency int) ([]dayQuotes, error) {
	results := make([]dayQuotes, len(days))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, day := range days {
		i, day := i, day
		g.Go(func() error {
			uc.logger.Debug("processing date", "date", day.Format(dataset.DateLayout), "index", i+1, "total", len(days))

			quotes, err := uc.quotes.GetHistoricalQuotes(gctx, day)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}

				uc.logger.Warn("using last known value", "date", day.Format(dataset.DateLayout), "error", err)
				results[i] = dayQuotes{fallback: true}
				return nil
			}

			results[i] = dayQuotes{quotes: quotes}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// missingDays lists the calendar days after last up to and including the
// day of now.
func missingDays(last time.Time, now time.Time) []time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, last.Location())

	days := []time.Time{}
	for day := last.AddDate(0, 0, 1); !day.After(today); day = day.AddDate(0, 0, 1) {
		days = append(days, day)
	}

	return days
}
