package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"datastorage/internal/config"
	apperrors "datastorage/internal/errors"
	"datastorage/internal/files"
	"datastorage/internal/infrastructure"
)

// Fetcher downloads remote files. Requests are paced by a token bucket;
// a failed request is reported, never retried.
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	files     *files.Manager
	metrics   *infrastructure.ETLMetrics
	logger    *slog.Logger
}

// NewFetcher creates a Fetcher from the fetch configuration
func NewFetcher(cfg config.FetchConfig, fm *files.Manager, metrics *infrastructure.ETLMetrics, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	if fm == nil {
		fm = files.NewManager(logger)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultHTTPTimeout
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		limiter:   rate.NewLimiter(limit, burst),
		userAgent: cfg.UserAgent,
		files:     fm,
		metrics:   metrics,
		logger:    logger.With("component", "fetch"),
	}
}

// Download stores the body of url at dest verbatim, replacing any existing
// file. dest is only replaced once the whole body has been received.
func (f *Fetcher) Download(ctx context.Context, rawURL, dest string) error {
	start := time.Now()
	f.logger.InfoContext(ctx, "Downloading", slog.String("url", rawURL), slog.String("dest", dest))

	var written int64
	err := f.do(ctx, rawURL, func(body io.Reader) error {
		return f.files.WriteAtomic(dest, func(w io.Writer) error {
			n, err := io.Copy(w, body)
			written = n
			return err
		})
	})
	f.metrics.RecordFetch(ctx, host(rawURL), written, err)
	if err != nil {
		return withURL(err, rawURL).WithContext("path", dest)
	}

	f.logger.InfoContext(ctx, "Download completed",
		slog.String("url", rawURL),
		slog.String("dest", dest),
		slog.Int64("bytes", written),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// Get returns the whole body of url
func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	var data []byte
	err := f.do(ctx, rawURL, func(body io.Reader) error {
		var err error
		data, err = io.ReadAll(body)
		return err
	})
	f.metrics.RecordFetch(ctx, host(rawURL), int64(len(data)), err)
	if err != nil {
		return nil, withURL(err, rawURL)
	}
	return data, nil
}

// do issues a paced GET and hands a 2xx body to consume
func (f *Fetcher) do(ctx context.Context, rawURL string, consume func(io.Reader) error) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return apperrors.NewFetchError("rate limiter wait aborted", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return apperrors.NewFetchError("invalid request", redactError(err))
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return apperrors.NewFetchError("request failed", redactError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return apperrors.NewFetchError(fmt.Sprintf("unexpected status %s", resp.Status), nil).
			WithContext("status", resp.StatusCode)
	}

	if err := consume(resp.Body); err != nil {
		return apperrors.NewFetchError("failed to read response body", err)
	}
	return nil
}

func withURL(err error, rawURL string) *apperrors.AppError {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.NewFetchError("download failed", err)
	}
	return appErr.WithContext("url", redact(rawURL))
}

func host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "unknown"
	}
	return u.Host
}

// redactError hides tokens in the URL that net/http errors repeat
func redactError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		uerr.URL = redact(uerr.URL)
	}
	return err
}

// redact hides API tokens carried in query strings
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if q.Has("api_key") {
		q.Set("api_key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
