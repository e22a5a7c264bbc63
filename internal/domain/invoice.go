package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	invoicePrefix     = "INV"
	invoiceDateLayout = "20060102"
	invoiceMinDigits  = 3
)

// InvoiceDay returns the inclusive bounds of the calendar day containing t in loc.
// The end bound is the last representable instant of the day.
func InvoiceDay(t time.Time, loc *time.Location) (start, end time.Time) {
	local := t.In(loc)
	start = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end = start.AddDate(0, 0, 1).Add(-time.Nanosecond)

	return start, end
}

// InvoiceDayKey encodes a day as YYYYMMDD, used to scope the per-day sequence lock.
func InvoiceDayKey(day time.Time) int32 {
	return int32(day.Year()*10000 + int(day.Month())*100 + day.Day())
}

// FormatInvoiceNumber builds INV<YYYYMMDD>-<seq>, seq padded to at least three digits.
func FormatInvoiceNumber(day time.Time, seq int64) string {
	return fmt.Sprintf("%s%s-%0*d", invoicePrefix, day.Format(invoiceDateLayout), invoiceMinDigits, seq)
}

// ParseInvoiceNumber splits an invoice number into its date part and sequence.
func ParseInvoiceNumber(invoice string) (string, int64, error) {
	head, suffix, ok := strings.Cut(invoice, "-")
	if !ok || !strings.HasPrefix(head, invoicePrefix) {
		return "", 0, fmt.Errorf("%w: %q", ErrCorruptInvoiceNumber, invoice)
	}

	date := strings.TrimPrefix(head, invoicePrefix)
	if _, err := time.Parse(invoiceDateLayout, date); err != nil {
		return "", 0, fmt.Errorf("%w: %q", ErrCorruptInvoiceNumber, invoice)
	}

	if len(suffix) < invoiceMinDigits || strings.TrimLeft(suffix, "0123456789") != "" {
		return "", 0, fmt.Errorf("%w: %q", ErrCorruptInvoiceNumber, invoice)
	}

	seq, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil || seq < 1 {
		return "", 0, fmt.Errorf("%w: %q", ErrCorruptInvoiceNumber, invoice)
	}

	return date, seq, nil
}

// NextInvoiceNumber returns the invoice number following last within day.
// An empty last starts the day's sequence at 1. A last invoice that belongs to
// another day or cannot be parsed is reported as corrupt instead of restarting
// the sequence, which could hand out a duplicate.
func NextInvoiceNumber(day time.Time, last string) (string, error) {
	if last == "" {
		return FormatInvoiceNumber(day, 1), nil
	}

	date, seq, err := ParseInvoiceNumber(last)
	if err != nil {
		return "", err
	}

	if date != day.Format(invoiceDateLayout) {
		return "", fmt.Errorf("%w: %q does not belong to %s", ErrCorruptInvoiceNumber, last, day.Format(invoiceDateLayout))
	}

	return FormatInvoiceNumber(day, seq+1), nil
}
