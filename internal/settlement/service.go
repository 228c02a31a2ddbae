package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"matchpay/internal/events"
	"matchpay/internal/logger"
	"matchpay/internal/metrics"
	"matchpay/internal/premium"
	"matchpay/internal/vnpay"
	"matchpay/internal/wallet"

	"github.com/shopspring/decimal"
)

const paymentMethod = "VNPAY"

// Ledger is the slice of the wallet store the engine needs.
type Ledger interface {
	GetOrCreate(ctx context.Context, userID int) (*wallet.Wallet, error)
	CreatePending(ctx context.Context, walletID int, code string, amount decimal.Decimal, userID, packageID int, description string) (*wallet.LedgerEntry, error)
	GetByCode(ctx context.Context, code string) (*wallet.LedgerEntry, error)
	Settle(ctx context.Context, code string, gatewayAmount decimal.Decimal, success bool) (*wallet.LedgerEntry, error)
}

type Catalog interface {
	GetPackage(ctx context.Context, id int) (*premium.Package, error)
}

type Activator interface {
	Activate(ctx context.Context, userID, packageID int, amount decimal.Decimal, paymentMethod string) (*premium.Subscription, error)
}

type Notifier interface {
	Notify(ctx context.Context, userID int, kind, message string) error
}

type Publisher interface {
	Publish(ctx context.Context, ev events.SettlementEvent) error
}

// Deps wires the engine's collaborators. Notifier and Publisher are
// optional; everything else is required.
type Deps struct {
	Gateway        *vnpay.Config
	Ledger         Ledger
	Catalog        Catalog
	Activator      Activator
	Notifier       Notifier
	Publisher      Publisher
	OperatorUserID int
	SuccessURL     string
	FailureURL     string
}

// Engine finalizes gateway callbacks: it verifies authenticity, enforces
// idempotency, transitions ledger entries, and triggers entitlement.
type Engine struct {
	gateway    *vnpay.Config
	ledger     Ledger
	catalog    Catalog
	activator  Activator
	notifier   Notifier
	publisher  Publisher
	operatorID int
	successURL string
	failureURL string
}

func NewEngine(d Deps) *Engine {
	return &Engine{
		gateway:    d.Gateway,
		ledger:     d.Ledger,
		catalog:    d.Catalog,
		activator:  d.Activator,
		notifier:   d.Notifier,
		publisher:  d.Publisher,
		operatorID: d.OperatorUserID,
		successURL: d.SuccessURL,
		failureURL: d.FailureURL,
	}
}

type LinkRequest struct {
	UserID    int
	PackageID int
	ClientIP  string
	Locale    string
	BankCode  string
}

// CreatePaymentLink issues a signed gateway URL and the PENDING ledger
// entry it settles against. The entry is credited to the platform
// operating wallet, not the paying user's own.
func (e *Engine) CreatePaymentLink(ctx context.Context, req LinkRequest) (string, *wallet.LedgerEntry, error) {
	pkg, err := e.catalog.GetPackage(ctx, req.PackageID)
	if err != nil {
		return "", nil, err
	}

	opWallet, err := e.ledger.GetOrCreate(ctx, e.operatorID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load operating wallet: %w", err)
	}

	amount := decimal.NewFromInt(pkg.Price)
	description := fmt.Sprintf("premium purchase: %s", pkg.Name)

	entry, err := e.createEntry(ctx, opWallet.ID, amount, req.UserID, req.PackageID, description)
	if err != nil {
		return "", nil, err
	}

	url, err := vnpay.BuildPaymentURL(e.gateway, vnpay.PaymentRequest{
		TxnRef:    entry.TransactionCode,
		Amount:    amount,
		OrderInfo: description,
		Locale:    req.Locale,
		BankCode:  req.BankCode,
		ClientIP:  req.ClientIP,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return "", nil, err
	}

	metrics.RecordPaymentLink()
	return url, entry, nil
}

// createEntry retries once on an order-reference collision; the unique
// constraint on transaction_code is the authoritative collision guard.
func (e *Engine) createEntry(ctx context.Context, walletID int, amount decimal.Decimal, userID, packageID int, description string) (*wallet.LedgerEntry, error) {
	for attempt := 0; attempt < 2; attempt++ {
		code, err := vnpay.NewOrderRef(vnpay.OrderRefLength)
		if err != nil {
			return nil, err
		}

		entry, err := e.ledger.CreatePending(ctx, walletID, code, amount, userID, packageID, description)
		if errors.Is(err, wallet.ErrDuplicateCode) {
			logger.Warnf("order reference collision on %s, retrying", code)
			continue
		}
		if err != nil {
			return nil, err
		}
		return entry, nil
	}
	return nil, wallet.ErrDuplicateCode
}

type ReturnVerdict string

const (
	VerdictSuccess      ReturnVerdict = "success"
	VerdictFailure      ReturnVerdict = "false"
	VerdictBadSignature ReturnVerdict = "invalid-signature"
)

type ReturnResult struct {
	Verdict     ReturnVerdict
	RedirectURL string
}

// HandleReturn processes the browser redirect from the gateway. It is
// advisory only: browser returns can be skipped, replayed, or forged, so
// this path never mutates ledger or entitlement state. The verdict picks
// which front-end page the user lands on.
func (e *Engine) HandleReturn(ctx context.Context, params map[string]string) ReturnResult {
	if !vnpay.Verify(e.gateway.HashSecret, params, params[vnpay.FieldSecureHash]) {
		return ReturnResult{Verdict: VerdictBadSignature, RedirectURL: e.failureURL}
	}

	if params[vnpay.FieldResponseCode] != vnpay.ResponseCodeSuccess {
		return ReturnResult{Verdict: VerdictFailure, RedirectURL: e.failureURL}
	}

	amount, err := vnpay.FromGatewayAmount(params[vnpay.FieldAmount])
	if err != nil {
		return ReturnResult{Verdict: VerdictFailure, RedirectURL: e.failureURL}
	}

	entry, err := e.ledger.GetByCode(ctx, params[vnpay.FieldTxnRef])
	if err != nil {
		return ReturnResult{Verdict: VerdictFailure, RedirectURL: e.failureURL}
	}

	pkg, err := e.catalog.GetPackage(ctx, entry.PackageID)
	if err != nil {
		return ReturnResult{Verdict: VerdictFailure, RedirectURL: e.failureURL}
	}

	if amount.LessThan(decimal.NewFromInt(pkg.Price)) {
		return ReturnResult{Verdict: VerdictFailure, RedirectURL: e.failureURL}
	}

	return ReturnResult{Verdict: VerdictSuccess, RedirectURL: e.successURL}
}

// HandleIPN processes the authoritative server-to-server notification and
// always produces the acknowledgement the gateway expects; nothing
// propagates as an error to the HTTP layer.
func (e *Engine) HandleIPN(ctx context.Context, params map[string]string) (ack vnpay.Ack) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("panic in IPN handler: %v", r)
			ack = vnpay.AckUnknownError
		}
	}()

	if !vnpay.Verify(e.gateway.HashSecret, params, params[vnpay.FieldSecureHash]) {
		return vnpay.AckInvalidChecksum
	}

	code := params[vnpay.FieldTxnRef]

	amount, err := vnpay.FromGatewayAmount(params[vnpay.FieldAmount])
	if err != nil {
		return vnpay.AckInvalidAmount
	}

	success := params[vnpay.FieldResponseCode] == vnpay.ResponseCodeSuccess

	entry, err := e.ledger.Settle(ctx, code, amount, success)
	switch {
	case errors.Is(err, wallet.ErrEntryNotFound):
		// Either a forged callback or a lost PENDING row. Reported for
		// manual reconciliation, never mutated.
		logger.Errorf("IPN for unknown order %s", code)
		return vnpay.AckOrderNotFound
	case errors.Is(err, wallet.ErrAlreadyFinal):
		// Duplicate delivery. Idempotent no-op.
		return vnpay.AckAlreadyConfirmed
	case errors.Is(err, wallet.ErrAmountMismatch):
		logger.Errorf("IPN amount mismatch for order %s", code)
		return vnpay.AckInvalidAmount
	case err != nil:
		logger.Errorf("settlement failed for order %s: %v", code, err)
		return vnpay.AckUnknownError
	}

	metrics.RecordSettlement(string(entry.Status))

	if entry.Status == wallet.StatusCompleted {
		e.afterCompleted(ctx, entry)
	} else {
		e.notify(ctx, entry.UserID, "payment_failed", "Your premium payment was not completed.")
	}

	return vnpay.AckConfirmSuccess
}

// afterCompleted runs the downstream effects of a committed settlement.
// The ledger credit is already durable; a failure here is logged and
// surfaced through metrics for out-of-band reconciliation, it never rolls
// the payment back.
func (e *Engine) afterCompleted(ctx context.Context, entry *wallet.LedgerEntry) {
	if _, err := e.activator.Activate(ctx, entry.UserID, entry.PackageID, entry.Amount, paymentMethod); err != nil {
		logger.Errorf("entitlement activation failed for order %s (user %d): %v", entry.TransactionCode, entry.UserID, err)
		metrics.RecordEntitlementFailure()
	}

	if e.publisher != nil {
		ev := events.SettlementEvent{
			TransactionCode: entry.TransactionCode,
			UserID:          entry.UserID,
			PackageID:       entry.PackageID,
			Amount:          entry.Amount.String(),
			Status:          string(entry.Status),
			OccurredAt:      time.Now(),
		}
		if err := e.publisher.Publish(ctx, ev); err != nil {
			logger.Errorf("failed to publish settlement event for order %s: %v", entry.TransactionCode, err)
		}
	}

	e.notify(ctx, entry.UserID, "payment_completed", "Your premium subscription is now active.")
}

func (e *Engine) notify(ctx context.Context, userID int, kind, message string) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Notify(ctx, userID, kind, message); err != nil {
		logger.Errorf("failed to queue %s notification for user %d: %v", kind, userID, err)
	}
}
