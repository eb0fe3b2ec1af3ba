package sales

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"
)

type fakeInvoiceChecker struct {
	collisions int
	attempts   int
	err        error
}

func (f *fakeInvoiceChecker) ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error) {
	f.attempts++
	if f.err != nil {
		return false, f.err
	}
	if f.collisions > 0 {
		f.collisions--
		return true, nil
	}
	return false, nil
}

func TestNextInvoiceNumberFormat(t *testing.T) {
	checker := &fakeInvoiceChecker{}
	now := time.Date(2025, 8, 30, 18, 30, 0, 0, time.UTC)

	got, err := nextInvoiceNumber(context.Background(), checker, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pattern := regexp.MustCompile(`^INV-\d{13}-\d{3}$`)
	if !pattern.MatchString(got) {
		t.Fatalf("invoice %q does not match INV-<epoch-ms>-<suffix>", got)
	}
}

func TestNextInvoiceNumberRetriesOnCollision(t *testing.T) {
	checker := &fakeInvoiceChecker{collisions: 2}

	got, err := nextInvoiceNumber(context.Background(), checker, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == "" {
		t.Fatal("expected an invoice number after retry")
	}
	if checker.attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", checker.attempts)
	}
}

func TestNextInvoiceNumberGivesUpAfterMaxAttempts(t *testing.T) {
	checker := &fakeInvoiceChecker{collisions: invoiceMaxAttempts}

	if _, err := nextInvoiceNumber(context.Background(), checker, time.Now()); err == nil {
		t.Fatal("expected exhaustion error")
	}
	if checker.attempts != invoiceMaxAttempts {
		t.Fatalf("expected %d attempts, got %d", invoiceMaxAttempts, checker.attempts)
	}
}

func TestNextInvoiceNumberPropagatesCheckerError(t *testing.T) {
	checker := &fakeInvoiceChecker{err: errors.New("db down")}

	if _, err := nextInvoiceNumber(context.Background(), checker, time.Now()); err == nil {
		t.Fatal("expected checker error to bubble")
	}
}
