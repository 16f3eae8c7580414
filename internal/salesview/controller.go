package salesview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"sales_view/internal/sales"
)

// User-facing messages.
const (
	msgDatesRequired  = "Por favor, selecciona ambas fechas"
	msgDateOrder      = "La fecha de inicio debe ser anterior a la fecha de fin"
	msgInvalidDate    = "La fecha no tiene un formato válido (AAAA-MM-DD)"
	msgMissingFields  = "Por favor, completa todos los campos"
	msgAmountPositive = "El monto debe ser mayor que cero"
	msgUnknownSeller  = "El vendedor seleccionado no existe"
	msgFilterFailed   = "Error al filtrar ventas"
	msgAddFailed      = "Error al agregar venta"
	msgSellersFailed  = "Error al cargar vendedores"
	msgSaleAdded      = "Venta agregada exitosamente"
	msgSampleLoaded   = "Datos cargados exitosamente"
	msgSampleFailed   = "Error al cargar datos de ejemplo"
	msgFoundFmt       = "Se encontraron %d ventas"
)

// SalesAPI is the backend the controller talks to. *sales.Client implements it.
type SalesAPI interface {
	Sellers(ctx context.Context) ([]sales.Seller, error)
	FilterSales(ctx context.Context, r sales.DateRange) (sales.FilterResult, error)
	AddSale(ctx context.Context, d sales.Draft) error
	LoadSampleData(ctx context.Context) error
}

// View is the page surface the controller reads inputs from and renders into.
// Implementations must be safe for use from several goroutines.
type View interface {
	DateRange() (start, end string)
	SetDateRange(start, end string)
	Draft() (sellerID, date, amount string)
	ResetDraft()
	SetSellerOptions(options []SelectOption)
	RenderSales(t Table)
	RenderSummary(s Summary)
	SetBusy(busy bool)
	Notify(kind NoticeKind, text string)
}

// Controller drives the sales page: it validates inputs, calls the backend
// and renders results. Operations may overlap; they are neither serialized
// nor cancelled, so the last response to arrive owns the table and summary.
type Controller struct {
	api     SalesAPI
	view    View
	sellers *sales.SellerDirectory
	logger  *zap.Logger
	now     func() time.Time
	busy    *busyCounter
}

// busyCounter tracks the operations holding the shared busy indicator.
type busyCounter struct {
	mu sync.Mutex
	n  int
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the clock used to pre-fill the date range.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithSellerDirectory shares a seller directory with the controller.
func WithSellerDirectory(d *sales.SellerDirectory) Option {
	return func(c *Controller) { c.sellers = d }
}

// New creates a Controller bound to a view and a backend.
func New(api SalesAPI, view View, logger *zap.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Controller{
		api:     api,
		view:    view,
		sellers: sales.NewSellerDirectory(),
		logger:  logger,
		now:     time.Now,
		busy:    &busyCounter{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Bind returns a controller that reads its inputs from v and renders into it.
// The backend, the seller directory and the busy indicator stay shared with c.
func (c *Controller) Bind(v View) *Controller {
	bound := *c
	bound.view = v
	return &bound
}

// Init pre-fills the date range with the last month and starts loading the
// sellers. The returned channel is closed once the seller load is over.
func (c *Controller) Init(ctx context.Context) <-chan struct{} {
	r := sales.DefaultDateRange(c.now())
	c.view.SetDateRange(r.Start.String(), r.End.String())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.LoadSellers(ctx)
	}()
	return done
}

// LoadSellers replaces the seller options with the backend's list. On
// failure the options are left as they were.
func (c *Controller) LoadSellers(ctx context.Context) error {
	list, err := c.api.Sellers(ctx)
	if err != nil {
		c.logger.Error("failed to load sellers", zap.Error(err))
		c.view.Notify(NoticeError, msgSellersFailed)
		return err
	}

	c.sellers.Replace(list)
	c.view.SetSellerOptions(BuildSellerOptions(list))
	c.logger.Info("sellers loaded", zap.Int("count", c.sellers.Len()))
	return nil
}

// FilterSales validates the date inputs, fetches the sales in range and
// renders them with their totals. Invalid input is reported without a request.
func (c *Controller) FilterSales(ctx context.Context) error {
	start, end := c.view.DateRange()
	r, err := sales.ParseDateRange(start, end)
	if err != nil {
		c.view.Notify(NoticeError, validationMessage(err))
		return err
	}

	c.setBusy(true)
	defer c.setBusy(false)

	result, err := c.api.FilterSales(ctx, r)
	if err != nil {
		c.logger.Error("failed to filter sales",
			zap.String("start", r.Start.String()),
			zap.String("end", r.End.String()),
			zap.Error(err),
		)
		c.view.Notify(NoticeError, msgFilterFailed)
		return err
	}

	c.view.RenderSales(BuildTable(result.Sales))
	c.view.RenderSummary(BuildSummary(result.Totals))

	if n := len(result.Sales); n > 0 {
		c.view.Notify(NoticeSuccess, fmt.Sprintf(msgFoundFmt, n))
	} else {
		c.view.Notify(NoticeInfo, NoResultsText)
	}

	c.logger.Info("sales filtered",
		zap.String("start", r.Start.String()),
		zap.String("end", r.End.String()),
		zap.Int("results_count", len(result.Sales)),
	)
	return nil
}

// AddSale validates and submits the new-sale form. On success the form is
// reset and, when both date inputs hold a value, the table is refreshed.
func (c *Controller) AddSale(ctx context.Context) error {
	sellerID, date, amount := c.view.Draft()
	draft, err := sales.ParseDraft(sellerID, date, amount)
	if err != nil {
		c.view.Notify(NoticeError, validationMessage(err))
		return err
	}
	if _, err := c.sellers.Read(draft.SellerID); err != nil {
		c.view.Notify(NoticeError, msgUnknownSeller)
		return err
	}

	c.setBusy(true)
	defer c.setBusy(false)

	if err := c.api.AddSale(ctx, draft); err != nil {
		c.logger.Error("failed to add sale",
			zap.Int64("seller_id", draft.SellerID),
			zap.String("date", draft.Date.String()),
			zap.String("amount", draft.Amount.String()),
			zap.Error(err),
		)
		c.view.Notify(NoticeError, msgAddFailed)
		return err
	}

	c.logger.Info("sale added",
		zap.Int64("seller_id", draft.SellerID),
		zap.String("date", draft.Date.String()),
		zap.String("amount", draft.Amount.String()),
	)
	c.view.Notify(NoticeSuccess, msgSaleAdded)
	c.view.ResetDraft()

	// Refresh failures are already reported by FilterSales.
	if start, end := c.view.DateRange(); start != "" && end != "" {
		_ = c.FilterSales(ctx)
	}
	return nil
}

// LoadSampleData asks the backend to seed its example data and reloads the sellers.
func (c *Controller) LoadSampleData(ctx context.Context) error {
	c.setBusy(true)
	defer c.setBusy(false)

	if err := c.api.LoadSampleData(ctx); err != nil {
		c.logger.Error("failed to load sample data", zap.Error(err))
		c.view.Notify(NoticeError, msgSampleFailed)
		return err
	}

	c.view.Notify(NoticeSuccess, msgSampleLoaded)
	return c.LoadSellers(ctx)
}

// setBusy engages the shared busy indicator. It is released only when the
// last operation holding it finishes.
func (c *Controller) setBusy(on bool) {
	c.busy.mu.Lock()
	defer c.busy.mu.Unlock()

	if on {
		c.busy.n++
		if c.busy.n == 1 {
			c.view.SetBusy(true)
		}
		return
	}

	c.busy.n--
	if c.busy.n == 0 {
		c.view.SetBusy(false)
	}
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, sales.ErrDatesRequired):
		return msgDatesRequired
	case errors.Is(err, sales.ErrDateOrder):
		return msgDateOrder
	case errors.Is(err, sales.ErrInvalidDate):
		return msgInvalidDate
	case errors.Is(err, sales.ErrAmountNotPositive):
		return msgAmountPositive
	default:
		return msgMissingFields
	}
}
