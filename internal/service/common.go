package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"dealership/pkg/apperror"
)

const dateLayout = "2006-01-02"

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, apperror.NewBusinessRule("invalid %s: expected YYYY-MM-DD, got %q", field, value)
	}
	return t, nil
}

func parseOptionalDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := parseDate(field, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseAmount(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, apperror.NewBusinessRule("invalid %s: %q is not a valid amount", field, value)
	}
	return d, nil
}

func parseOptionalAmount(field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	return parseAmount(field, value)
}

func parseID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, apperror.NewBusinessRule("invalid %s: %q is not a valid UUID", field, value)
	}
	return id, nil
}

func parseInvoiceAmounts(baseAmount, vatRate string) (decimal.Decimal, decimal.Decimal, error) {
	base, err := parseAmount("base_amount", baseAmount)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if !base.IsPositive() {
		return decimal.Zero, decimal.Zero, apperror.NewBusinessRule("base_amount must be positive")
	}
	vat, err := parseAmount("vat_rate", vatRate)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if vat.IsNegative() || vat.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, decimal.Zero, apperror.NewBusinessRule("vat_rate must be between 0 and 100")
	}
	return base.Round(2), vat, nil
}

func parseDateRange(from, to string) (time.Time, time.Time, error) {
	fromDate, err := parseDate("from", from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	toDate, err := parseDate("to", to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if toDate.Before(fromDate) {
		return time.Time{}, time.Time{}, apperror.NewBusinessRule("to must not be before from")
	}
	return fromDate, toDate, nil
}

func fmtDate(t time.Time) string {
	return t.Format(dateLayout)
}

func fmtDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func fmtAmountPtr(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}

// today truncates the wall clock to a date in UTC. Due date and deadline
// comparisons all work on whole days.
func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
