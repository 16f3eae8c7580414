package sales

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Validation errors. They are reported to the user and never reach the backend.
var (
	// ErrDatesRequired is returned when either end of a date range is empty.
	ErrDatesRequired = errors.New("both dates are required")

	// ErrDateOrder is returned when the start date falls after the end date.
	ErrDateOrder = errors.New("start date must not be after end date")

	// ErrInvalidDate is returned when a date is not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("invalid date")

	// ErrMissingFields is returned when a new sale is missing a field or a field is not a number.
	ErrMissingFields = errors.New("all fields are required")

	// ErrAmountNotPositive is returned for a sale amount of zero or less.
	ErrAmountNotPositive = errors.New("amount must be greater than zero")
)

// ParseDateRange validates the two raw date inputs and converts them to calendar dates.
func ParseDateRange(start, end string) (DateRange, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" || end == "" {
		return DateRange{}, ErrDatesRequired
	}

	from, err := civil.ParseDate(start)
	if err != nil {
		return DateRange{}, ErrInvalidDate
	}
	to, err := civil.ParseDate(end)
	if err != nil {
		return DateRange{}, ErrInvalidDate
	}

	if from.After(to) {
		return DateRange{}, ErrDateOrder
	}
	return DateRange{Start: from, End: to}, nil
}

// ParseDraft validates the raw new-sale inputs.
func ParseDraft(sellerID, date, amount string) (Draft, error) {
	sellerID, date, amount = strings.TrimSpace(sellerID), strings.TrimSpace(date), strings.TrimSpace(amount)
	if sellerID == "" || date == "" || amount == "" {
		return Draft{}, ErrMissingFields
	}

	id, err := strconv.ParseInt(sellerID, 10, 64)
	if err != nil {
		return Draft{}, ErrMissingFields
	}

	value, err := decimal.NewFromString(amount)
	if err != nil {
		return Draft{}, ErrMissingFields
	}
	if !value.IsPositive() {
		return Draft{}, ErrAmountNotPositive
	}

	day, err := civil.ParseDate(date)
	if err != nil {
		return Draft{}, ErrInvalidDate
	}

	return Draft{SellerID: id, Date: day, Amount: value}, nil
}

// DefaultDateRange returns the range from one month before now through now,
// both taken from the calendar of now's location. When the previous month is
// shorter the day is clamped to its last day.
func DefaultDateRange(now time.Time) DateRange {
	today := civil.DateOf(now)
	return DateRange{Start: subtractMonth(today), End: today}
}

func subtractMonth(d civil.Date) civil.Date {
	year, month := d.Year, d.Month-1
	if month < time.January {
		year, month = year-1, time.December
	}
	day := d.Day
	if last := daysIn(year, month); day > last {
		day = last
	}
	return civil.Date{Year: year, Month: month, Day: day}
}

func daysIn(year int, month time.Month) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
