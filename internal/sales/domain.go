package sales

import (
	"encoding/json"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Seller is a party that sales are attributed to. The list is owned by the backend.
type Seller struct {
	ID    int64  `json:"id"`
	Name  string `json:"nombre"`
	Email string `json:"email,omitempty"`
}

// Sale represents a commission-bearing transaction as returned by the filter endpoint.
type Sale struct {
	ID         int64           `json:"id"`
	SellerName string          `json:"vendedor_nombre"`
	Date       civil.Date      `json:"fecha"`
	Amount     decimal.Decimal `json:"monto"`
	Commission decimal.Decimal `json:"comision"`
	RuleName   string          `json:"regla_nombre"`

	// RawDate holds the backend's fecha text when it is not a calendar date.
	RawDate string `json:"-"`
}

// UnmarshalJSON reads a sale without failing on its fecha: a date followed by
// a time of day keeps its calendar day, and any other text lands in RawDate.
func (s *Sale) UnmarshalJSON(data []byte) error {
	type plain Sale
	aux := struct {
		*plain
		Date string `json:"fecha"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	s.Date, s.RawDate = parseSaleDate(aux.Date)
	return nil
}

func parseSaleDate(text string) (civil.Date, string) {
	if d, err := civil.ParseDate(text); err == nil {
		return d, ""
	}
	// "2024-01-15 10:00:00", "2024-01-15T10:00:00Z"
	if len(text) > 10 {
		if d, err := civil.ParseDate(text[:10]); err == nil {
			return d, ""
		}
	}
	return civil.Date{}, text
}

// Totals is the server-computed aggregate over a filtered set of sales.
type Totals struct {
	TotalSales       decimal.Decimal `json:"total_ventas"`
	TotalCommissions decimal.Decimal `json:"total_comisiones"`
	Count            int             `json:"cantidad"`
}

// FilterResult is the body of a successful filter response.
type FilterResult struct {
	Sales  []Sale `json:"ventas"`
	Totals Totals `json:"totales"`
}

// DateRange is an inclusive calendar range. Start is never after End.
type DateRange struct {
	Start civil.Date
	End   civil.Date
}

// Draft is a validated new sale waiting to be submitted.
type Draft struct {
	SellerID int64
	Date     civil.Date
	Amount   decimal.Decimal
}
