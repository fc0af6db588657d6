// Package clients provides the instrumented HTTP fetcher shared by the
// quote source adapters.
package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"quotesuggest/internal/adapters/http/middleware"
	"quotesuggest/internal/platform/config"
	"quotesuggest/internal/platform/logging"
)

const (
	// instrumentationName is used for OpenTelemetry tracer and meter.
	instrumentationName = "quotesuggest/internal/adapters/clients"

	// httpStatusCategoryDivisor divides status code to get category (2xx, 4xx, 5xx).
	httpStatusCategoryDivisor = 100

	// defaultTimeout is the default request timeout if not configured.
	defaultTimeout = 15 * time.Second
)

// ErrUnexpectedStatus indicates a response with a non-success status code.
var ErrUnexpectedStatus = errors.New("unexpected response status")

// Config configures a Fetcher instance.
type Config struct {
	// ServiceName identifies the upstream source for logging and tracing.
	ServiceName string

	// Timeout bounds each request. A source that cannot answer within it
	// simply contributes nothing to the aggregation; there are no retries.
	Timeout time.Duration

	// UserAgent is sent with every request. Some quote sites reject the
	// default Go user agent.
	UserAgent string

	// Transport configures the connection pool.
	Transport config.TransportConfig

	// Logger is an optional logger. If nil, a default logger is used.
	Logger *slog.Logger
}

// Fetcher is an instrumented HTTP client for the upstream quote sources.
// It provides:
//   - OpenTelemetry tracing and metrics
//   - Request/correlation ID propagation
//   - Structured logging
//
// Each request is a single attempt with a hard timeout. Sources are
// best-effort contributors, so a failed fetch is surfaced to the caller
// instead of retried.
type Fetcher struct {
	http        *http.Client
	serviceName string
	userAgent   string
	logger      *slog.Logger

	tracer trace.Tracer

	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
}

// New creates a new instrumented fetcher.
func New(cfg *Config) (*Fetcher, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	if cfg.ServiceName == "" {
		return nil, errors.New("service name is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(
		slog.String("component", "clients.Fetcher"),
		slog.String("upstream", cfg.ServiceName),
	)

	meter := otel.Meter(instrumentationName)

	requestDuration, err := meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("Duration of HTTP client requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration metric: %w", err)
	}

	requestTotal, err := meter.Int64Counter(
		"http.client.request.total",
		metric.WithDescription("Total number of HTTP client requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request counter: %w", err)
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.Transport.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.Transport.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.Transport.IdleConnTimeout,
	}

	return &Fetcher{
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		serviceName:     cfg.ServiceName,
		userAgent:       cfg.UserAgent,
		logger:          logger,
		tracer:          otel.Tracer(instrumentationName),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
	}, nil
}

// Do executes an HTTP request with tracing, metrics, and logging.
func (f *Fetcher) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	startTime := time.Now()
	logger := logging.FromContext(ctx).With(
		slog.String("upstream", f.serviceName),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
	)

	f.injectHeaders(ctx, req)

	ctx, span := f.tracer.Start(ctx, fmt.Sprintf("HTTP %s %s", req.Method, f.serviceName),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.url", req.URL.String()),
			attribute.String("peer.service", f.serviceName),
		),
	)
	defer span.End()

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := f.http.Do(req.WithContext(ctx))
	duration := time.Since(startTime)

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		f.recordMetrics(ctx, req.Method, 0, duration, "error")
		logger.Error("request failed",
			slog.Duration("duration", duration),
			slog.Any("error", err),
		)

		return nil, fmt.Errorf("fetching from %s: %w", f.serviceName, err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", resp.StatusCode))
	}

	statusCategory := fmt.Sprintf("%dxx", resp.StatusCode/httpStatusCategoryDivisor)
	f.recordMetrics(ctx, req.Method, resp.StatusCode, duration, statusCategory)

	logger.Debug("request completed",
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", duration),
	)

	return resp, nil
}

// Get performs an HTTP GET request against the given absolute URL.
func (f *Fetcher) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	return f.Do(ctx, req)
}

// GetDocument fetches the URL and parses the body as an HTML document.
// Any non-200 status is an error.
func (f *Fetcher) GetDocument(ctx context.Context, url string) (*goquery.Document, error) {
	resp, err := f.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp.Body, f.logger)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d from %s", ErrUnexpectedStatus, resp.StatusCode, f.serviceName)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", f.serviceName, err)
	}

	return doc, nil
}

// GetJSON fetches the URL and decodes the body into v.
// Any non-200 status is an error.
func (f *Fetcher) GetJSON(ctx context.Context, url string, v any) error {
	resp, err := f.Get(ctx, url)
	if err != nil {
		return err
	}
	defer closeBody(resp.Body, f.logger)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d from %s", ErrUnexpectedStatus, resp.StatusCode, f.serviceName)
	}

	err = json.NewDecoder(resp.Body).Decode(v)
	if err != nil {
		return fmt.Errorf("decoding %s response: %w", f.serviceName, err)
	}

	return nil
}

// injectHeaders adds request ID, correlation ID, and user agent to the request.
func (f *Fetcher) injectHeaders(ctx context.Context, req *http.Request) {
	if requestID := middleware.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set(middleware.HeaderRequestID, requestID)
	}

	if correlationID := middleware.CorrelationIDFromContext(ctx); correlationID != "" {
		req.Header.Set(middleware.HeaderCorrelationID, correlationID)
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
}

// recordMetrics records request metrics.
func (f *Fetcher) recordMetrics(ctx context.Context, method string, statusCode int, duration time.Duration, result string) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("peer.service", f.serviceName),
		attribute.String("result", result),
	}

	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	f.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	f.requestTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func closeBody(body io.ReadCloser, logger *slog.Logger) {
	if err := body.Close(); err != nil {
		logger.Debug("failed to close response body", slog.Any("error", err))
	}
}
