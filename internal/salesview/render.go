package salesview

import (
	"fmt"
	"strconv"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"sales_view/internal/sales"
)

// NoResultsText fills the placeholder row of an empty sales table.
const NoResultsText = "No se encontraron ventas en el rango seleccionado"

// SellerPlaceholder is the label of the empty first option of the seller select.
const SellerPlaceholder = "Seleccionar vendedor..."

// Table is the rendered body of the sales table. When Rows is empty the
// table shows a single full-width row with Placeholder.
type Table struct {
	Rows        []Row  `json:"rows"`
	Placeholder string `json:"placeholder,omitempty"`
}

// Empty reports whether the table renders the placeholder row.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// Row holds the display text of one sale, cell by cell.
type Row struct {
	ID         string `json:"id"`
	Seller     string `json:"seller"`
	Date       string `json:"date"`
	Amount     string `json:"amount"`
	Commission string `json:"commission"`
	Rule       string `json:"rule"`
}

// Cells returns the row's cells in column order.
func (r Row) Cells() []string {
	return []string{r.ID, r.Seller, r.Date, r.Amount, r.Commission, r.Rule}
}

// Summary is the display text of the totals panel.
type Summary struct {
	TotalSales       string `json:"total_sales"`
	TotalCommissions string `json:"total_commissions"`
	Count            string `json:"count"`
}

// SelectOption is one entry of the seller select.
type SelectOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// BuildTable renders a list of sales into table rows.
func BuildTable(list []sales.Sale) Table {
	if len(list) == 0 {
		return Table{Placeholder: NoResultsText}
	}

	rows := make([]Row, 0, len(list))
	for _, s := range list {
		rows = append(rows, Row{
			ID:         strconv.FormatInt(s.ID, 10),
			Seller:     s.SellerName,
			Date:       saleDate(s),
			Amount:     FormatMoney(s.Amount),
			Commission: FormatMoney(s.Commission),
			Rule:       s.RuleName,
		})
	}
	return Table{Rows: rows}
}

// BuildSummary renders the totals panel.
func BuildSummary(t sales.Totals) Summary {
	return Summary{
		TotalSales:       FormatMoney(t.TotalSales),
		TotalCommissions: FormatMoney(t.TotalCommissions),
		Count:            strconv.Itoa(t.Count),
	}
}

// BuildSellerOptions renders the seller select: the placeholder followed by
// one option per seller in the given order.
func BuildSellerOptions(sellers []sales.Seller) []SelectOption {
	options := make([]SelectOption, 0, len(sellers)+1)
	options = append(options, SelectOption{Value: "", Label: SellerPlaceholder})
	for _, s := range sellers {
		options = append(options, SelectOption{
			Value: strconv.FormatInt(s.ID, 10),
			Label: s.Name,
		})
	}
	return options
}

// FormatMoney formats an amount as dollars with exactly two decimals.
func FormatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// saleDate shows the backend's own text when its date could not be read.
func saleDate(s sales.Sale) string {
	if s.Date.IsZero() {
		return s.RawDate
	}
	return FormatDate(s.Date)
}

// FormatDate formats a date the es-ES way (day/month/year, no padding).
func FormatDate(d civil.Date) string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d/%d/%d", d.Day, int(d.Month), d.Year)
}
