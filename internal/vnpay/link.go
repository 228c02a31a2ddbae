package vnpay

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Version       = "2.1.0"
	commandPay    = "pay"
	currencyVND   = "VND"
	defaultLocale = "vn"
	orderTypeTopUp = "topup"

	dateFormat = "20060102150405"

	// LinkTTL is how long a payment link stays valid at the gateway.
	LinkTTL = 15 * time.Minute
)

// The gateway expects all timestamps in UTC+7 regardless of server locale.
var gatewayZone = time.FixedZone("GMT+7", 7*60*60)

// Config carries the merchant credentials and endpoints, built once from
// application config and injected into callers.
type Config struct {
	TmnCode    string
	HashSecret string
	PayURL     string
	ReturnURL  string
}

type PaymentRequest struct {
	TxnRef    string
	Amount    decimal.Decimal
	OrderInfo string
	Locale    string
	BankCode  string
	ClientIP  string
	CreatedAt time.Time

	// Optional billing details.
	BillMobile   string
	BillEmail    string
	BillFullName string
}

var (
	ErrMissingTxnRef = errors.New("payment request has no transaction reference")
	ErrNonPositive   = errors.New("payment amount must be positive")
)

// BuildPaymentURL assembles the signed redirect URL that sends the user to
// the gateway's payment page.
func BuildPaymentURL(cfg *Config, req PaymentRequest) (string, error) {
	if req.TxnRef == "" {
		return "", ErrMissingTxnRef
	}
	if !req.Amount.IsPositive() {
		return "", ErrNonPositive
	}

	locale := req.Locale
	if locale == "" {
		locale = defaultLocale
	}

	created := req.CreatedAt.In(gatewayZone)
	fields := map[string]string{
		FieldVersion:    Version,
		FieldCommand:    commandPay,
		FieldTmnCode:    cfg.TmnCode,
		FieldAmount:     ToGatewayAmount(req.Amount),
		FieldCurrCode:   currencyVND,
		FieldTxnRef:     req.TxnRef,
		FieldOrderInfo:  req.OrderInfo,
		FieldOrderType:  orderTypeTopUp,
		FieldLocale:     locale,
		FieldReturnURL:  cfg.ReturnURL,
		FieldIPAddr:     req.ClientIP,
		FieldCreateDate: created.Format(dateFormat),
		FieldExpireDate: created.Add(LinkTTL).Format(dateFormat),
		FieldBankCode:   req.BankCode,
		FieldBillMobile: req.BillMobile,
		FieldBillEmail:  req.BillEmail,
	}

	if first, last, ok := splitFullName(req.BillFullName); ok {
		fields[FieldBillFirstName] = first
		fields[FieldBillLastName] = last
	}

	query := Canonicalize(fields)
	hash := Sign(cfg.HashSecret, query)

	return cfg.PayURL + "?" + query + "&" + FieldSecureHash + "=" + hash, nil
}

func splitFullName(name string) (first, last string, ok bool) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", "", false
	}
	first = parts[0]
	last = strings.Join(parts[1:], " ")
	if last == "" {
		last = first
	}
	return first, last, true
}
