package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"sales_view/internal/sales"
	"sales_view/internal/salestest"
	"sales_view/internal/salesview"
)

type testApp struct {
	*browser
	router   *gin.Engine
	sessions *Sessions
	backend  *salestest.Backend
}

// browser sends requests to the router and keeps the session cookie, as a
// real browser would.
type browser struct {
	router *gin.Engine
	cookie *http.Cookie
}

// newTestApp wires the page against an in-memory backend, the same way main does.
func newTestApp(t *testing.T, sellers ...sales.Seller) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := salestest.NewBackend(sellers...)
	t.Cleanup(backend.Close)

	logger := zaptest.NewLogger(t)
	client := sales.NewClient(backend.URL, 0, logger)
	t.Cleanup(func() { _ = client.Close() })

	sessions := NewSessions(client, time.Hour, logger)

	router := gin.New()
	InitRoutes(router, sessions, logger)

	return &testApp{
		browser:  &browser{router: router},
		router:   router,
		sessions: sessions,
		backend:  backend,
	}
}

// newBrowser returns a second visitor with no session yet.
func (a *testApp) newBrowser() *browser {
	return &browser{router: a.router}
}

func (b *browser) serve(req *http.Request) *httptest.ResponseRecorder {
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}
	w := httptest.NewRecorder()
	b.router.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookie {
			b.cookie = c
		}
	}
	return w
}

func (b *browser) postForm(t *testing.T, path string, form url.Values) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := b.serve(req)

	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/", w.Header().Get("Location"))
}

func (b *browser) render(t *testing.T) *goquery.Document {
	t.Helper()
	w := b.serve(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)

	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	return doc
}

func noticeTexts(doc *goquery.Document) []string {
	var out []string
	doc.Find(".mensaje span").Each(func(_ int, s *goquery.Selection) {
		out = append(out, s.Text())
	})
	return out
}

func seedJanuary(b *salestest.Backend) {
	b.AddSale(sales.Sale{
		ID:         1,
		SellerName: "Juan Pérez",
		Date:       civil.Date{Year: 2024, Month: time.January, Day: 15},
		Amount:     decimal.RequireFromString("50.5"),
		Commission: decimal.RequireFromString("5.05"),
		RuleName:   "Básica",
	})
	b.AddSale(sales.Sale{
		ID:         2,
		SellerName: "María García",
		Date:       civil.Date{Year: 2024, Month: time.January, Day: 20},
		Amount:     decimal.NewFromInt(100),
		Commission: decimal.NewFromInt(10),
		RuleName:   "Básica",
	})
}

func TestIndex_InitialPage(t *testing.T) {
	app := newTestApp(t,
		sales.Seller{ID: 1, Name: "Juan Pérez"},
		sales.Seller{ID: 2, Name: "María García"},
	)

	doc := app.render(t)

	for _, id := range []string{
		"fechaInicio", "fechaFin", "filtrarBtn", "ventasBody", "resumenComisiones",
		"totalVentas", "totalComisiones", "cantidadVentas", "formNuevaVenta",
		"vendedorSelect", "fechaVenta", "montoVenta",
	} {
		assert.Equal(t, 1, doc.Find("#"+id).Length(), "element %s", id)
	}

	start, _ := doc.Find("#fechaInicio").Attr("value")
	end, _ := doc.Find("#fechaFin").Attr("value")
	assert.NotEmpty(t, start)
	assert.NotEmpty(t, end)
	assert.True(t, start < end)

	options := doc.Find("#vendedorSelect option")
	require.Equal(t, 3, options.Length())
	assert.Equal(t, salesview.SellerPlaceholder, options.Eq(0).Text())
	value, _ := options.Eq(1).Attr("value")
	assert.Equal(t, "1", value)
	assert.Equal(t, "Juan Pérez", options.Eq(1).Text())

	style, _ := doc.Find("#resumenComisiones").Attr("style")
	assert.Contains(t, style, "display: none")
	assert.Equal(t, "🔍 Filtrar Ventas", doc.Find("#filtrarBtn").Text())
	_, disabled := doc.Find("#filtrarBtn").Attr("disabled")
	assert.False(t, disabled)
}

func TestFilter_EndToEnd(t *testing.T) {
	app := newTestApp(t)
	seedJanuary(app.backend)

	app.postForm(t, "/ventas/filtrar", url.Values{
		"fecha_inicio": {"2024-01-01"},
		"fecha_fin":    {"2024-01-31"},
	})
	doc := app.render(t)

	rows := doc.Find("#ventasBody tr")
	require.Equal(t, 2, rows.Length())

	var cells []string
	rows.Eq(0).Find("td").Each(func(_ int, s *goquery.Selection) {
		cells = append(cells, s.Text())
	})
	assert.Equal(t, []string{"2", "María García", "20/1/2024", "$100.00", "$10.00", "Básica"}, cells)

	assert.Equal(t, "$150.50", doc.Find("#totalVentas").Text())
	assert.Equal(t, "$15.05", doc.Find("#totalComisiones").Text())
	assert.Equal(t, "2", doc.Find("#cantidadVentas").Text())
	_, hidden := doc.Find("#resumenComisiones").Attr("style")
	assert.False(t, hidden)

	assert.Contains(t, noticeTexts(doc), "Se encontraron 2 ventas")

	start, _ := doc.Find("#fechaInicio").Attr("value")
	assert.Equal(t, "2024-01-01", start, "submitted dates stay in the inputs")
}

func TestFilter_NoResults(t *testing.T) {
	app := newTestApp(t)

	app.postForm(t, "/ventas/filtrar", url.Values{
		"fecha_inicio": {"2030-01-01"},
		"fecha_fin":    {"2030-01-31"},
	})
	doc := app.render(t)

	rows := doc.Find("#ventasBody tr")
	require.Equal(t, 1, rows.Length())
	cell := rows.Find("td")
	colspan, _ := cell.Attr("colspan")
	assert.Equal(t, "6", colspan)
	assert.Equal(t, salesview.NoResultsText, strings.TrimSpace(cell.Text()))

	assert.Equal(t, "$0.00", doc.Find("#totalVentas").Text())
	assert.Equal(t, "0", doc.Find("#cantidadVentas").Text())
}

func TestFilter_InvertedRangeSendsNoRequest(t *testing.T) {
	app := newTestApp(t)

	app.postForm(t, "/ventas/filtrar", url.Values{
		"fecha_inicio": {"2024-02-01"},
		"fecha_fin":    {"2024-01-01"},
	})
	doc := app.render(t)

	assert.Equal(t, 0, app.backend.Count("/api/ventas/filtrar"))
	assert.Equal(t, 0, doc.Find("#ventasBody tr").Length())
	assert.Contains(t, noticeTexts(doc), "La fecha de inicio debe ser anterior a la fecha de fin")
}

func TestFilter_BackendFailure(t *testing.T) {
	app := newTestApp(t)
	app.backend.FailWith("/api/ventas/filtrar", http.StatusInternalServerError)

	app.postForm(t, "/ventas/filtrar", url.Values{
		"fecha_inicio": {"2024-01-01"},
		"fecha_fin":    {"2024-01-31"},
	})
	doc := app.render(t)

	assert.Contains(t, noticeTexts(doc), "Error al filtrar ventas")
	assert.Equal(t, "🔍 Filtrar Ventas", doc.Find("#filtrarBtn").Text(), "busy indicator is released")
}

func TestFilter_EscapesBackendText(t *testing.T) {
	app := newTestApp(t)
	app.backend.AddSale(sales.Sale{
		ID:         1,
		SellerName: `<script>alert("x")</script>`,
		Date:       civil.Date{Year: 2024, Month: time.January, Day: 2},
		Amount:     decimal.NewFromInt(1),
		Commission: decimal.Zero,
		RuleName:   "<b>N/A</b>",
	})

	app.postForm(t, "/ventas/filtrar", url.Values{
		"fecha_inicio": {"2024-01-01"},
		"fecha_fin":    {"2024-01-31"},
	})
	doc := app.render(t)

	body := doc.Find("#ventasBody")
	assert.Equal(t, 0, body.Find("script").Length())
	assert.Equal(t, 0, body.Find("b").Length())
	assert.Equal(t, `<script>alert("x")</script>`, body.Find("td").Eq(1).Text())
}

func TestAddSale_RefreshesTable(t *testing.T) {
	app := newTestApp(t, sales.Seller{ID: 1, Name: "Juan Pérez"})
	seedJanuary(app.backend)

	app.postForm(t, "/ventas/filtrar", url.Values{
		"fecha_inicio": {"2024-01-01"},
		"fecha_fin":    {"2024-01-31"},
	})
	app.postForm(t, "/ventas/agregar", url.Values{
		"vendedor_id": {"1"},
		"fecha":       {"2024-01-25"},
		"monto":       {"300"},
	})
	doc := app.render(t)

	assert.Equal(t, 1, app.backend.Count("/api/ventas/agregar"))
	assert.Equal(t, 2, app.backend.Count("/api/ventas/filtrar"))
	assert.Equal(t, 3, doc.Find("#ventasBody tr").Length())
	assert.Equal(t, "3", doc.Find("#cantidadVentas").Text())
	assert.Contains(t, noticeTexts(doc), "Venta agregada exitosamente")

	amount, _ := doc.Find("#montoVenta").Attr("value")
	assert.Empty(t, amount, "form is reset")
}

func TestAddSale_ZeroAmount(t *testing.T) {
	app := newTestApp(t, sales.Seller{ID: 1, Name: "Juan Pérez"})

	app.postForm(t, "/ventas/agregar", url.Values{
		"vendedor_id": {"1"},
		"fecha":       {"2024-01-25"},
		"monto":       {"0"},
	})
	doc := app.render(t)

	assert.Equal(t, 0, app.backend.Count("/api/ventas/agregar"))
	assert.Contains(t, noticeTexts(doc), "El monto debe ser mayor que cero")

	selected, _ := doc.Find("#vendedorSelect option[selected]").Attr("value")
	assert.Equal(t, "1", selected, "rejected input stays in the form")
}

func TestLoadSampleData(t *testing.T) {
	app := newTestApp(t)

	app.postForm(t, "/datos/cargar", url.Values{})
	doc := app.render(t)

	assert.Equal(t, 4, doc.Find("#vendedorSelect option").Length())
	assert.Contains(t, noticeTexts(doc), "Datos cargados exitosamente")
}

func TestDismissNotice(t *testing.T) {
	app := newTestApp(t)
	app.postForm(t, "/ventas/filtrar", url.Values{})

	doc := app.render(t)
	require.Contains(t, noticeTexts(doc), "Por favor, selecciona ambas fechas")
	id, ok := doc.Find(".mensaje").First().Attr("data-id")
	require.True(t, ok)

	app.postForm(t, "/mensajes/"+id+"/descartar", url.Values{})

	assert.NotContains(t, noticeTexts(app.render(t)), "Por favor, selecciona ambas fechas")
}

func TestNotices_DoNotReloadThePage(t *testing.T) {
	app := newTestApp(t)
	app.postForm(t, "/ventas/filtrar", url.Values{})

	doc := app.render(t)
	require.NotEmpty(t, noticeTexts(doc))
	assert.Equal(t, 0, doc.Find(`meta[http-equiv="refresh"]`).Length())
}

func TestSessions_AreIsolated(t *testing.T) {
	app := newTestApp(t, sales.Seller{ID: 1, Name: "Juan Pérez"})
	seedJanuary(app.backend)

	app.postForm(t, "/ventas/agregar", url.Values{
		"vendedor_id": {"1"},
		"fecha":       {"2024-01-25"},
		"monto":       {"0"},
	})
	app.postForm(t, "/ventas/filtrar", url.Values{
		"fecha_inicio": {"2024-01-01"},
		"fecha_fin":    {"2024-01-31"},
	})
	require.NotNil(t, app.cookie)

	other := app.newBrowser()
	doc := other.render(t)

	require.NotNil(t, other.cookie)
	assert.NotEqual(t, app.cookie.Value, other.cookie.Value)
	assert.Equal(t, 2, app.sessions.Len())

	amount, _ := doc.Find("#montoVenta").Attr("value")
	assert.Empty(t, amount)
	selected, _ := doc.Find("#vendedorSelect option[selected]").Attr("value")
	assert.Empty(t, selected)
	assert.Equal(t, 0, doc.Find("#ventasBody tr").Length())
	assert.Empty(t, noticeTexts(doc))
	start, _ := doc.Find("#fechaInicio").Attr("value")
	assert.NotEqual(t, "2024-01-01", start)

	// The first visitor still sees its own page.
	mine := app.render(t)
	assert.Equal(t, 2, mine.Find("#ventasBody tr").Length())
	assert.Contains(t, noticeTexts(mine), "El monto debe ser mayor que cero")
}

func TestState(t *testing.T) {
	app := newTestApp(t, sales.Seller{ID: 5, Name: "Ana"})

	w := app.serve(httptest.NewRequest(http.MethodGet, "/estado", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var state PageState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Len(t, state.SellerOptions, 2)
	assert.False(t, state.Busy)
	assert.Equal(t, "🔍 Filtrar Ventas", state.FilterLabel)
}

func TestPing(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
	assert.Equal(t, 0, app.sessions.Len(), "ping does not start a session")
}
