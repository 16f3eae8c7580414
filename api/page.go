package api

import (
	"sync"

	"sales_view/internal/salesview"
)

const (
	filterLabel = "🔍 Filtrar Ventas"
	busyLabel   = "⏳ Cargando..."
)

// Page is the server-side state of the sales page. It implements
// salesview.View; the HTML template renders a snapshot of it.
type Page struct {
	mu sync.RWMutex

	start, end string

	sellerID, saleDate, amount string
	options                    []salesview.SelectOption

	table       *salesview.Table
	summary     salesview.Summary
	showSummary bool
	busy        bool

	notices *salesview.NoticeBoard
}

// PageState is an immutable copy of the page used for rendering.
type PageState struct {
	Start         string                   `json:"fecha_inicio"`
	End           string                   `json:"fecha_fin"`
	SellerID      string                   `json:"vendedor_id"`
	SaleDate      string                   `json:"fecha"`
	Amount        string                   `json:"monto"`
	SellerOptions []salesview.SelectOption `json:"vendedores"`
	Table         *salesview.Table         `json:"tabla,omitempty"`
	Summary       salesview.Summary        `json:"resumen"`
	ShowSummary   bool                     `json:"mostrar_resumen"`
	Busy          bool                     `json:"ocupado"`
	FilterLabel   string                   `json:"etiqueta_filtrar"`
	Notices       []salesview.Notice       `json:"mensajes"`
}

// NewPage creates an empty page whose notices live on board.
func NewPage(board *salesview.NoticeBoard) *Page {
	return &Page{notices: board}
}

func (p *Page) DateRange() (string, string) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.start, p.end
}

func (p *Page) SetDateRange(start, end string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.start, p.end = start, end
}

func (p *Page) Draft() (string, string, string) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sellerID, p.saleDate, p.amount
}

// SetDraft fills the new-sale form fields as submitted by the browser.
func (p *Page) SetDraft(sellerID, date, amount string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sellerID, p.saleDate, p.amount = sellerID, date, amount
}

func (p *Page) ResetDraft() {
	p.SetDraft("", "", "")
}

func (p *Page) SetSellerOptions(options []salesview.SelectOption) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.options = options
}

func (p *Page) RenderSales(t salesview.Table) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.table = &t
}

func (p *Page) RenderSummary(s salesview.Summary) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.summary = s
	p.showSummary = true
}

func (p *Page) SetBusy(busy bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.busy = busy
}

func (p *Page) Notify(kind salesview.NoticeKind, text string) {
	p.notices.Push(kind, text)
}

// DismissNotice removes a notice ahead of its expiry.
func (p *Page) DismissNotice(id string) bool {
	return p.notices.Dismiss(id)
}

// Snapshot copies the current state for rendering.
func (p *Page) Snapshot() PageState {
	p.mu.RLock()
	defer p.mu.RUnlock()

	label := filterLabel
	if p.busy {
		label = busyLabel
	}

	var table *salesview.Table
	if p.table != nil {
		t := *p.table
		table = &t
	}

	return PageState{
		Start:         p.start,
		End:           p.end,
		SellerID:      p.sellerID,
		SaleDate:      p.saleDate,
		Amount:        p.amount,
		SellerOptions: append([]salesview.SelectOption(nil), p.options...),
		Table:         table,
		Summary:       p.summary,
		ShowSummary:   p.showSummary,
		Busy:          p.busy,
		FilterLabel:   label,
		Notices:       p.notices.List(),
	}
}
