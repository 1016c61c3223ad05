package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"github.com/jbaris/grain-price-analyzer/database"
	"github.com/jbaris/grain-price-analyzer/internal/dataset"
)

const ImportChunkSize = 100

type ImportPricesTaskUseCase struct {
	db     database.DB
	upsert func(db database.DB, records []database.Price) error
	logger *slog.Logger
}

func NewImportPricesTaskUseCase(db database.DB, logger *slog.Logger) *ImportPricesTaskUseCase {
	return &ImportPricesTaskUseCase{
		db:     db,
		upsert: database.UpsertToPrices,
		logger: logger,
	}
}

// ImportPrices upserts every row of the sanitized CSV by date. All chunks
// share one transaction.
func (uc *ImportPricesTaskUseCase) ImportPrices(ctx context.Context, req *ImportPricesRequest) (*ImportPricesResponse, error) {
	table, err := dataset.LoadTable(req.SrcPath)
	if err != nil {
		return nil, err
	}

	rows, err := table.PriceRows()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", req.SrcPath, err)
	}

	prices, err := ConvertPriceRows(rows)
	if err != nil {
		return nil, err
	}

	err = uc.db.Transaction(func(tx database.DB) error {
		for i, chunk := range lo.Chunk(prices, ImportChunkSize) {
			if err := ctx.Err(); err != nil {
				return err
			}

			if err := uc.upsert(tx, chunk); err != nil {
				return fmt.Errorf("failed to upsert chunk %d: %w", i, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("prices imported", "rows", len(prices), "src", req.SrcPath)

	return &ImportPricesResponse{Imported: len(prices)}, nil
}

func ConvertPriceRows(rows []dataset.PriceRow) ([]database.Price, error) {
	prices := make([]database.Price, 0, len(rows))
	for _, row := range rows {
		date, err := database.NewDateFromString(row.Date)
		if err != nil {
			return nil, err
		}

		prices = append(prices, database.Price{
			Date:         date,
			MaizeARS:     row.MaizeARS,
			WheatARS:     row.WheatARS,
			SoyARS:       row.SoyARS,
			ExchangeRate: row.ExchangeRate,
			MaizeUSD:     row.MaizeUSD,
			WheatUSD:     row.WheatUSD,
			SoyUSD:       row.SoyUSD,
		})
	}

	return prices, nil
}
