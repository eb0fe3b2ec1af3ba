package sales

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	pkgerrors "github.com/tillpoint/tillpoint-backend/pkg/errors"
)

const invoiceMaxAttempts = 5

type invoiceChecker interface {
	ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error)
}

// nextInvoiceNumber builds an INV-<epoch-ms>-<suffix> number and retries the
// random suffix on the rare collision within the same millisecond.
func nextInvoiceNumber(ctx context.Context, checker invoiceChecker, now time.Time) (string, error) {
	for attempt := 0; attempt < invoiceMaxAttempts; attempt++ {
		suffix, err := rand.Int(rand.Reader, big.NewInt(1000))
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate invoice suffix")
		}
		candidate := fmt.Sprintf("INV-%d-%03d", now.UnixMilli(), suffix.Int64())

		exists, err := checker.ExistsByInvoiceNumber(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeInternal, "could not allocate a unique invoice number")
}
