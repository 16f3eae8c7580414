// Package salestest provides an in-memory stand-in for the sales backend,
// for tests of the client, the controller and the page.
package salestest

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"

	"cloud.google.com/go/civil"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"sales_view/internal/sales"
)

var errEmptyBody = errors.New("empty request body")

// Request is a recorded call to the backend.
type Request struct {
	Method      string
	Path        string
	ContentType string
	Body        map[string]any
}

// Backend serves the backend endpoints from memory. Sales added through the
// API get no commission; tests seed commissions directly.
type Backend struct {
	*httptest.Server

	mu       sync.Mutex
	sellers  []sales.Seller
	sales    []sales.Sale
	nextID   int64
	failures map[string]int
	requests []Request
	sample   []sales.Seller
}

// NewBackend starts a fake backend with the given sellers.
func NewBackend(sellers ...sales.Seller) *Backend {
	gin.SetMode(gin.TestMode)

	b := &Backend{
		sellers:  append([]sales.Seller(nil), sellers...),
		nextID:   1,
		failures: map[string]int{},
		sample: []sales.Seller{
			{ID: 1, Name: "Juan Pérez", Email: "juan@empresa.com"},
			{ID: 2, Name: "María García", Email: "maria@empresa.com"},
			{ID: 3, Name: "Carlos López", Email: "carlos@empresa.com"},
		},
	}

	r := gin.New()
	r.Use(b.record, b.fail)
	r.GET("/api/vendedores", b.handleSellers)
	r.POST("/api/ventas/filtrar", b.handleFilter)
	r.POST("/api/ventas/agregar", b.handleAdd)
	r.POST("/api/datos/cargar", b.handleSampleData)

	b.Server = httptest.NewServer(r)
	return b
}

// AddSale seeds a sale directly, bypassing the API.
func (b *Backend) AddSale(s sales.Sale) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s.ID == 0 {
		s.ID = b.nextID
	}
	if s.ID >= b.nextID {
		b.nextID = s.ID + 1
	}
	b.sales = append(b.sales, s)
}

// FailWith makes every request to path answer with status until cleared with status 0.
func (b *Backend) FailWith(path string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if status == 0 {
		delete(b.failures, path)
		return
	}
	b.failures[path] = status
}

// Requests returns the recorded requests in arrival order.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// Count returns how many requests hit path.
func (b *Backend) Count(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, r := range b.requests {
		if r.Path == path {
			n++
		}
	}
	return n
}

func (b *Backend) record(c *gin.Context) {
	req := Request{
		Method:      c.Request.Method,
		Path:        c.Request.URL.Path,
		ContentType: c.GetHeader("Content-Type"),
	}
	if c.Request.Method == http.MethodPost && c.Request.ContentLength != 0 {
		var body map[string]any
		if raw, err := c.GetRawData(); err == nil && len(raw) > 0 {
			if json.Unmarshal(raw, &body) == nil {
				req.Body = body
			}
			c.Set("raw", raw)
		}
	}

	b.mu.Lock()
	b.requests = append(b.requests, req)
	b.mu.Unlock()
	c.Next()
}

func (b *Backend) fail(c *gin.Context) {
	b.mu.Lock()
	status, ok := b.failures[c.Request.URL.Path]
	b.mu.Unlock()
	if ok {
		c.AbortWithStatusJSON(status, gin.H{"error": "forced failure"})
		return
	}
	c.Next()
}

func (b *Backend) handleSellers(c *gin.Context) {
	b.mu.Lock()
	list := append([]sales.Seller(nil), b.sellers...)
	b.mu.Unlock()

	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	c.JSON(http.StatusOK, list)
}

func (b *Backend) handleFilter(c *gin.Context) {
	var req struct {
		Start string `json:"fecha_inicio"`
		End   string `json:"fecha_fin"`
	}
	if err := bindRaw(c, &req); err != nil || req.Start == "" || req.End == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fechas requeridas"})
		return
	}
	start, err1 := civil.ParseDate(req.Start)
	end, err2 := civil.ParseDate(req.End)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fechas inválidas"})
		return
	}

	b.mu.Lock()
	found := []sales.Sale{}
	totals := sales.Totals{TotalSales: decimal.Zero, TotalCommissions: decimal.Zero}
	for _, s := range b.sales {
		if s.Date.Before(start) || s.Date.After(end) {
			continue
		}
		found = append(found, s)
		totals.Count++
		totals.TotalSales = totals.TotalSales.Add(s.Amount)
		totals.TotalCommissions = totals.TotalCommissions.Add(s.Commission)
	}
	b.mu.Unlock()

	sort.SliceStable(found, func(i, j int) bool { return found[i].Date.After(found[j].Date) })

	// The real backend sends totals as plain JSON numbers.
	summary := gin.H{
		"cantidad":         totals.Count,
		"total_ventas":     totals.TotalSales.InexactFloat64(),
		"total_comisiones": totals.TotalCommissions.InexactFloat64(),
	}
	c.JSON(http.StatusOK, gin.H{"ventas": found, "totales": summary})
}

func (b *Backend) handleAdd(c *gin.Context) {
	var req struct {
		SellerID int64   `json:"vendedor_id"`
		Date     string  `json:"fecha"`
		Amount   float64 `json:"monto"`
	}
	if err := bindRaw(c, &req); err != nil || req.SellerID == 0 || req.Date == "" || req.Amount == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Todos los campos son requeridos"})
		return
	}
	day, err := civil.ParseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fecha inválida"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	name := ""
	for _, s := range b.sellers {
		if s.ID == req.SellerID {
			name = s.Name
		}
	}
	b.sales = append(b.sales, sales.Sale{
		ID:         b.nextID,
		SellerName: name,
		Date:       day,
		Amount:     decimal.NewFromFloat(req.Amount),
		Commission: decimal.Zero,
		RuleName:   "N/A",
	})
	b.nextID++

	c.JSON(http.StatusOK, gin.H{"mensaje": "Venta agregada exitosamente"})
}

func (b *Backend) handleSampleData(c *gin.Context) {
	b.mu.Lock()
	if len(b.sellers) == 0 {
		b.sellers = append(b.sellers, b.sample...)
	}
	b.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"mensaje": "Datos cargados exitosamente"})
}

func bindRaw(c *gin.Context, v any) error {
	raw, ok := c.Get("raw")
	if !ok {
		return errEmptyBody
	}
	return json.Unmarshal(raw.([]byte), v)
}
