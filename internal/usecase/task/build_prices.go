package usecase

import (
	"context"
	"log/slog"
	"sort"

	"github.com/samber/lo"

	"github.com/jbaris/grain-price-analyzer/internal/dataset"
)

const DefaultPricesStartDate = "2018-07-01"

type BuildPricesTaskUseCase struct {
	logger *slog.Logger
}

func NewBuildPricesTaskUseCase(logger *slog.Logger) *BuildPricesTaskUseCase {
	return &BuildPricesTaskUseCase{logger: logger}
}

// BuildPrices joins board prices with the exchange series and writes one CSV
// row per day that has maize, wheat and soy prices and a known rate.
func (uc *BuildPricesTaskUseCase) BuildPrices(_ context.Context, req *BuildPricesRequest) (*BuildPricesResponse, error) {
	pizarra, err := dataset.LoadPizarra(req.PricesPath)
	if err != nil {
		return nil, err
	}

	series, err := dataset.LoadExchangeSeries(req.ExchangePath)
	if err != nil {
		return nil, err
	}
	rates := dataset.NewRateIndex(series)

	startDate := lo.Ternary(req.StartDate != "", req.StartDate, DefaultPricesStartDate)

	dates := lo.Keys(pizarra.Boards)
	sort.Strings(dates)

	resp := &BuildPricesResponse{}
	rows := []dataset.PriceRow{}
	for _, date := range dates {
		prices := pizarra.CerealPrices(date, dataset.Cereals)
		if len(prices) == 0 {
			continue
		}
		resp.Dates++

		if date < startDate {
			continue
		}

		rate, ok := rates.Find(date)
		if !ok || rate.IsZero() {
			resp.MissingRate++
			uc.logger.Warn("no exchange rate found", "date", date)
			continue
		}

		maize, hasMaize := prices[dataset.Maize]
		wheat, hasWheat := prices[dataset.Wheat]
		soy, hasSoy := prices[dataset.Soy]
		if !hasMaize || !hasWheat || !hasSoy {
			continue
		}

		rows = append(rows, dataset.PriceRow{
			Date:         date,
			MaizeARS:     maize,
			WheatARS:     wheat,
			SoyARS:       soy,
			ExchangeRate: rate,
			MaizeUSD:     maize.Div(rate).Round(2),
			WheatUSD:     wheat.Div(rate).Round(2),
			SoyUSD:       soy.Div(rate).Round(2),
		})
	}

	if err := dataset.SaveTable(req.DestPath, dataset.NewPriceTable(rows)); err != nil {
		return nil, err
	}
	resp.Written = len(rows)

	uc.logger.Info("prices built", "dates", resp.Dates, "written", resp.Written, "missing_rate", resp.MissingRate, "dest", req.DestPath)

	return resp, nil
}
