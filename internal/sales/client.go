package sales

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"resty.dev/v3"
)

// ErrRequestFailed is returned for any failed backend call: transport errors,
// non-2xx responses and 2xx responses that are not JSON alike. The status code
// is kept in the wrapped message for logging but callers should not branch on it.
var ErrRequestFailed = errors.New("backend request failed")

// Backend endpoints.
const (
	sellersPath    = "/api/vendedores"
	filterPath     = "/api/ventas/filtrar"
	addSalePath    = "/api/ventas/agregar"
	sampleDataPath = "/api/datos/cargar"
)

// Client talks JSON to the sales backend.
type Client struct {
	rest   *resty.Client
	logger *zap.Logger
}

// apiError is the body the backend sends along with a non-2xx status.
type apiError struct {
	Error string `json:"error"`
}

// ack is the acknowledgement body of the write endpoints.
type ack struct {
	Message string `json:"mensaje"`
}

type filterRequest struct {
	Start string `json:"fecha_inicio"`
	End   string `json:"fecha_fin"`
}

type addSaleRequest struct {
	SellerID int64   `json:"vendedor_id"`
	Date     string  `json:"fecha"`
	Amount   float64 `json:"monto"`
}

// NewClient creates a Client for the backend at baseURL. A zero timeout
// leaves requests unbounded.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	rest := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		rest.SetTimeout(timeout)
	}

	return &Client{
		rest:   rest,
		logger: logger,
	}
}

// Close releases the underlying HTTP resources.
func (c *Client) Close() error {
	return c.rest.Close()
}

// Sellers fetches the seller list.
func (c *Client) Sellers(ctx context.Context) ([]Seller, error) {
	var sellers []Seller
	if err := c.do(ctx, http.MethodGet, sellersPath, nil, &sellers); err != nil {
		return nil, err
	}
	return sellers, nil
}

// FilterSales fetches the sales and totals within the inclusive range.
func (c *Client) FilterSales(ctx context.Context, r DateRange) (FilterResult, error) {
	body := filterRequest{
		Start: r.Start.String(),
		End:   r.End.String(),
	}

	var result FilterResult
	if err := c.do(ctx, http.MethodPost, filterPath, body, &result); err != nil {
		return FilterResult{}, err
	}
	if result.Sales == nil {
		result.Sales = []Sale{}
	}
	return result, nil
}

// AddSale submits a new sale. The response body is only an acknowledgement.
func (c *Client) AddSale(ctx context.Context, d Draft) error {
	body := addSaleRequest{
		SellerID: d.SellerID,
		Date:     d.Date.String(),
		Amount:   d.Amount.InexactFloat64(),
	}
	return c.do(ctx, http.MethodPost, addSalePath, body, &ack{})
}

// LoadSampleData asks the backend to seed its example sellers, rules and sales.
func (c *Client) LoadSampleData(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, sampleDataPath, nil, &ack{})
}

// do sends one request and decodes a 2xx JSON body into result.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	req := c.rest.R().
		SetContext(ctx).
		SetResult(result).
		SetError(&apiError{})
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		fields := []zap.Field{
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		}
		if resp != nil && resp.StatusCode() != 0 {
			fields = append(fields, zap.Int("status", resp.StatusCode()))
		}
		c.logger.Error("backend request failed", fields...)
		return fmt.Errorf("%w: %s %s: %v", ErrRequestFailed, method, path, err)
	}

	if resp.IsError() {
		backendErr := ""
		if failure, ok := resp.Error().(*apiError); ok && failure != nil {
			backendErr = failure.Error
		}
		c.logger.Error("backend returned an error status",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode()),
			zap.String("backend_error", backendErr),
		)
		return fmt.Errorf("%w: %s %s: status %d", ErrRequestFailed, method, path, resp.StatusCode())
	}

	// A proxy or login page can answer 2xx with HTML; that is not a result.
	if contentType := resp.Header().Get("Content-Type"); !strings.Contains(contentType, "json") {
		c.logger.Error("backend returned a non-JSON body",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode()),
			zap.String("content_type", contentType),
		)
		return fmt.Errorf("%w: %s %s: unexpected content type %q", ErrRequestFailed, method, path, contentType)
	}

	c.logger.Debug("backend request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode()),
	)
	return nil
}
