package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"os"
	"strings"
	"time"

	apperrors "datastorage/internal/errors"
	"datastorage/internal/table"
)

// QuandlClient reads dataset series from the Quandl v3 JSON API
type QuandlClient struct {
	fetcher   *Fetcher
	baseURL   string
	tokenFile string
	logger    *slog.Logger
}

// NewQuandlClient creates a client. The API token is read from tokenFile on
// every request.
func NewQuandlClient(fetcher *Fetcher, baseURL, tokenFile string, logger *slog.Logger) *QuandlClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuandlClient{
		fetcher:   fetcher,
		baseURL:   strings.TrimRight(baseURL, "/"),
		tokenFile: tokenFile,
		logger:    logger.With("component", "quandl"),
	}
}

type quandlResponse struct {
	Dataset struct {
		DatasetCode string   `json:"dataset_code"`
		ColumnNames []string `json:"column_names"`
		Data        [][]any  `json:"data"`
	} `json:"dataset"`
}

// Token returns the trimmed API token
func (c *QuandlClient) Token() (string, error) {
	data, err := os.ReadFile(c.tokenFile)
	if err != nil {
		return "", apperrors.NewFetchError("failed to read Quandl token", err).WithContext("path", c.tokenFile)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", apperrors.NewFetchError("Quandl token file is empty", nil).WithContext("path", c.tokenFile)
	}
	return token, nil
}

// Series downloads dataset code and returns a table with columns "date" and
// column, in the order the API returns them. A null value becomes NaN.
func (c *QuandlClient) Series(ctx context.Context, code, column string) (*table.Table, error) {
	token, err := c.Token()
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/datasets/%s.json?%s", c.baseURL, code, url.Values{"api_key": {token}}.Encode())
	body, err := c.fetcher.Get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	t, err := decodeSeries(body, column)
	if err != nil {
		return nil, apperrors.NewParseError("invalid Quandl response", err).
			WithContext("code", code).WithContext("column", column)
	}

	c.logger.InfoContext(ctx, "Quandl series received",
		slog.String("code", code),
		slog.String("column", column),
		slog.Int("rows", t.NumRows()))
	return t, nil
}

func decodeSeries(body []byte, column string) (*table.Table, error) {
	var resp quandlResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	names := resp.Dataset.ColumnNames
	if len(names) == 0 {
		return nil, fmt.Errorf("response has no column names")
	}
	valueIdx := -1
	for i, name := range names {
		if name == column {
			valueIdx = i
			break
		}
	}
	if valueIdx < 0 {
		return nil, fmt.Errorf("column %q not in %v", column, names)
	}

	dates := make([]time.Time, 0, len(resp.Dataset.Data))
	values := make([]float64, 0, len(resp.Dataset.Data))
	for row, rec := range resp.Dataset.Data {
		if len(rec) != len(names) {
			return nil, fmt.Errorf("row %d has %d values, want %d", row, len(rec), len(names))
		}
		s, ok := rec[0].(string)
		if !ok {
			return nil, fmt.Errorf("row %d: date is %T", row, rec[0])
		}
		d, err := time.Parse(table.DateLayout, s)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		v := math.NaN()
		switch x := rec[valueIdx].(type) {
		case nil:
		case float64:
			v = x
		default:
			return nil, fmt.Errorf("row %d: %s is %T", row, column, x)
		}
		dates = append(dates, d)
		values = append(values, v)
	}

	return table.New("",
		table.NewDate("date", dates),
		table.NewFloat(column, values),
	)
}
