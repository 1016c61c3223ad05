package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/jbaris/grain-price-analyzer/internal/api"
	"github.com/jbaris/grain-price-analyzer/internal/api/datosgobar"
	"github.com/jbaris/grain-price-analyzer/internal/api/ggsa"
)

const fileScheme = "file://"

var ErrUnsupportedDestination = errors.New("unsupported destination url")

type SeriesFetcher interface {
	GetSeries(ctx context.Context, request datosgobar.SeriesRequest) (*api.Response, error)
}

type PizarraFetcher interface {
	GetPizarra(ctx context.Context, request ggsa.PizarraRequest) (*api.Response, error)
}

type FetchDataTaskUseCase struct {
	seriesClient  SeriesFetcher
	pizarraClient PizarraFetcher
	stdout        io.Writer
	logger        *slog.Logger
	now           func() time.Time
}

func NewFetchDataTaskUseCase(seriesClient SeriesFetcher, pizarraClient PizarraFetcher, stdout io.Writer, logger *slog.Logger) *FetchDataTaskUseCase {
	return &FetchDataTaskUseCase{
		seriesClient:  seriesClient,
		pizarraClient: pizarraClient,
		stdout:        stdout,
		logger:        logger,
		now:           time.Now,
	}
}

func (uc *FetchDataTaskUseCase) FetchData(ctx context.Context, req *FetchDataRequest) (*FetchDataResponse, error) {
	var content []byte

	switch req.Source {
	case SourceDatosGobAr:
		switch req.DataType {
		case DataTypeSeries:
			seriesReq := datosgobar.NewSeriesRequest()
			if len(req.SeriesIDs) > 0 {
				seriesReq.IDs = req.SeriesIDs
			}
			seriesReq.StartDate = lo.FromPtrOr(req.StartDate, seriesReq.StartDate)
			seriesReq.Limit = lo.FromPtrOr(req.Limit, seriesReq.Limit)

			resp, err := uc.seriesClient.GetSeries(ctx, seriesReq)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch exchange series: %w", err)
			}
			content = resp.Body
		default:
			return nil, fmt.Errorf("unsupported type: %s.%s", req.Source, req.DataType)
		}
	case SourceGGSA:
		switch req.DataType {
		case DataTypePizarra:
			from, err := time.ParseInLocation("2006-01-02", lo.FromPtrOr(req.StartDate, ggsa.DefaultStartDate), time.Local)
			if err != nil {
				return nil, fmt.Errorf("invalid start date: %w", err)
			}

			resp, err := uc.pizarraClient.GetPizarra(ctx, ggsa.PizarraRequest{
				Board: lo.FromPtrOr(req.Board, ggsa.DefaultBoard),
				From:  from,
				To:    uc.now(),
			})
			if err != nil {
				return nil, fmt.Errorf("failed to fetch pizarra: %w", err)
			}
			content = resp.Body
		default:
			return nil, fmt.Errorf("unsupported type: %s.%s", req.Source, req.DataType)
		}
	default:
		return nil, fmt.Errorf("unsupported source: %s", req.Source)
	}

	dest, err := uc.write(req.DestURL, content)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("fetched data", "source", req.Source, "type", req.DataType, "dest", dest, "bytes", len(content))

	return &FetchDataResponse{Dest: dest, Bytes: len(content)}, nil
}

func (uc *FetchDataTaskUseCase) write(destURL string, content []byte) (string, error) {
	if destURL == "" {
		if _, err := uc.stdout.Write(content); err != nil {
			return "", fmt.Errorf("failed to write to stdout: %w", err)
		}
		return "stdout", nil
	}

	path, err := destPath(destURL)
	if err != nil {
		return "", err
	}

	// os.WriteFile truncates, a rerun leaves only the latest payload.
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write to file: %w", err)
	}

	return path, nil
}

func destPath(destURL string) (string, error) {
	if !strings.HasPrefix(destURL, fileScheme) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDestination, destURL)
	}

	path := strings.TrimPrefix(destURL, fileScheme)
	if path == "" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDestination, destURL)
	}

	return path, nil
}
