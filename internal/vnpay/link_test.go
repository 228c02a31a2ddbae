package vnpay

import (
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGatewayConfig() *Config {
	return &Config{
		TmnCode:    "MATCHPAY1",
		HashSecret: "test-hash-secret",
		PayURL:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:  "http://localhost:8080/payments/vnpay/return",
	}
}

func TestBuildPaymentURL_MandatoryFields(t *testing.T) {
	created := time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

	raw, err := BuildPaymentURL(testGatewayConfig(), PaymentRequest{
		TxnRef:    "12345678",
		Amount:    decimal.NewFromInt(100000),
		OrderInfo: "premium goi 1 thang",
		ClientIP:  "203.0.113.7",
		CreatedAt: created,
	})
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()

	assert.Equal(t, "2.1.0", q.Get(FieldVersion))
	assert.Equal(t, "pay", q.Get(FieldCommand))
	assert.Equal(t, "MATCHPAY1", q.Get(FieldTmnCode))
	assert.Equal(t, "12345678", q.Get(FieldTxnRef))
	assert.Equal(t, "10000000", q.Get(FieldAmount), "amount must be multiplied by 100")
	assert.Equal(t, "VND", q.Get(FieldCurrCode))
	assert.Equal(t, "vn", q.Get(FieldLocale), "locale defaults when absent")
	assert.Equal(t, "203.0.113.7", q.Get(FieldIPAddr))

	// 10:30 UTC is 17:30 at the gateway's fixed UTC+7 offset.
	assert.Equal(t, "20250314173000", q.Get(FieldCreateDate))
	assert.Equal(t, "20250314174500", q.Get(FieldExpireDate), "expiry is creation + 15 minutes")
}

func TestBuildPaymentURL_SignatureVerifies(t *testing.T) {
	cfg := testGatewayConfig()

	raw, err := BuildPaymentURL(cfg, PaymentRequest{
		TxnRef:       "87654321",
		Amount:       decimal.NewFromInt(250000),
		OrderInfo:    "premium goi 3 thang",
		ClientIP:     "198.51.100.4",
		CreatedAt:    time.Now(),
		BillEmail:    "user@example.com",
		BillFullName: "Nguyen Van An",
	})
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()

	fields := make(map[string]string, len(q))
	for k := range q {
		fields[k] = q.Get(k)
	}

	assert.True(t, Verify(cfg.HashSecret, fields, q.Get(FieldSecureHash)))

	assert.Equal(t, "Nguyen", q.Get(FieldBillFirstName))
	assert.Equal(t, "Van An", q.Get(FieldBillLastName))
}

func TestBuildPaymentURL_OmitsEmptyOptionalFields(t *testing.T) {
	raw, err := BuildPaymentURL(testGatewayConfig(), PaymentRequest{
		TxnRef:    "11112222",
		Amount:    decimal.NewFromInt(100000),
		OrderInfo: "premium",
		ClientIP:  "203.0.113.7",
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()

	assert.False(t, q.Has(FieldBankCode))
	assert.False(t, q.Has(FieldBillMobile))
	assert.False(t, q.Has(FieldBillFirstName))
}

func TestBuildPaymentURL_Rejections(t *testing.T) {
	cfg := testGatewayConfig()

	_, err := BuildPaymentURL(cfg, PaymentRequest{
		Amount:    decimal.NewFromInt(100000),
		CreatedAt: time.Now(),
	})
	assert.ErrorIs(t, err, ErrMissingTxnRef)

	_, err = BuildPaymentURL(cfg, PaymentRequest{
		TxnRef:    "12345678",
		Amount:    decimal.Zero,
		CreatedAt: time.Now(),
	})
	assert.ErrorIs(t, err, ErrNonPositive)
}

func TestAmountConversions(t *testing.T) {
	tests := []struct {
		app     string
		gateway string
	}{
		{"100000", "10000000"},
		{"100000.00", "10000000"},
		{"0.5", "50"},
		{"1234.567", "123456"}, // outbound truncates beyond 2 decimals
	}
	for _, tt := range tests {
		d := decimal.RequireFromString(tt.app)
		assert.Equal(t, tt.gateway, ToGatewayAmount(d), "app %s", tt.app)
	}

	back, err := FromGatewayAmount("10000000")
	require.NoError(t, err)
	assert.True(t, back.Equal(decimal.NewFromInt(100000)))

	// Round-half-up at the second decimal place.
	back, err = FromGatewayAmount("5")
	require.NoError(t, err)
	assert.Equal(t, "0.05", back.StringFixed(2))

	_, err = FromGatewayAmount("not-a-number")
	assert.Error(t, err)
}

func TestNewOrderRef(t *testing.T) {
	ref, err := NewOrderRef(OrderRefLength)
	require.NoError(t, err)
	require.Len(t, ref, OrderRefLength)
	for _, c := range ref {
		assert.True(t, c >= '0' && c <= '9', "order ref must be digits only, got %q", ref)
	}

	ref, err = NewOrderRef(0)
	require.NoError(t, err)
	assert.Len(t, ref, OrderRefLength)
}
