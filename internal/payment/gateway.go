package payment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrDeclined covers everything the gateway itself rejected: a declined
	// card, an expired intent, a capture refused. Transport failures are
	// returned wrapped, not as ErrDeclined.
	ErrDeclined = errors.New("payment declined by gateway")
)

type LineItem struct {
	ProductID string
	Title     string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Intent is the gateway's handle for a not-yet-captured payment. ApprovalURL
// is where the buyer completes the payment.
type Intent struct {
	ID          string
	ApprovalURL string
}

// Gateway is the external payment provider. Both calls carry meaningful
// network latency and must be invoked with a bounded context.
type Gateway interface {
	CreateIntent(ctx context.Context, items []LineItem, total decimal.Decimal, returnURL, cancelURL string) (*Intent, error)
	ConfirmCapture(ctx context.Context, paymentID, payerID string) error
}
