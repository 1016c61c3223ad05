package usecase

import "time"

const (
	SourceDatosGobAr = "datosgobar"
	SourceGGSA       = "ggsa"

	DataTypeSeries  = "series"
	DataTypePizarra = "pizarra"
)

type FetchDataRequest struct {
	Source   string
	DataType string
	// DestURL is a file:// URL. Empty writes the payload to stdout.
	DestURL string

	SeriesIDs []string
	Board     *string
	// StartDate is passed through as given, the series API accepts partial dates.
	StartDate *string
	Limit     *int
}

type FetchDataResponse struct {
	Dest  string
	Bytes int
}

type FillExchangeRequest struct {
	SrcPath     string
	DestPath    string
	Concurrency int
}

type FillExchangeResponse struct {
	From      *time.Time
	To        *time.Time
	Days      int
	Fetched   int
	Fallbacks int
	Records   int
}

type BuildPricesRequest struct {
	PricesPath   string
	ExchangePath string
	DestPath     string
	StartDate    string
}

type BuildPricesResponse struct {
	Dates       int
	Written     int
	MissingRate int
}

type SanitizePricesRequest struct {
	SrcPath   string
	DestPath  string
	Threshold float64
}

type SanitizePricesResponse struct {
	Total     int
	Kept      int
	Discarded int
}

type MergeEventsRequest struct {
	RegularPath string
	SpecialPath string
	DestPath    string
	FromYear    int
}

type MergeEventsResponse struct {
	Total    int
	FromYear int
	ToYear   int
}

type ImportPricesRequest struct {
	SrcPath string
}

type ImportPricesResponse struct {
	Imported int
}
