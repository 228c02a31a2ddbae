package vnpay

// Gateway parameter names, as dictated by the VNPAY integration contract.
const (
	FieldVersion        = "vnp_Version"
	FieldCommand        = "vnp_Command"
	FieldTmnCode        = "vnp_TmnCode"
	FieldAmount         = "vnp_Amount"
	FieldCurrCode       = "vnp_CurrCode"
	FieldTxnRef         = "vnp_TxnRef"
	FieldOrderInfo      = "vnp_OrderInfo"
	FieldOrderType      = "vnp_OrderType"
	FieldLocale         = "vnp_Locale"
	FieldReturnURL      = "vnp_ReturnUrl"
	FieldIPAddr         = "vnp_IpAddr"
	FieldCreateDate     = "vnp_CreateDate"
	FieldExpireDate     = "vnp_ExpireDate"
	FieldBankCode       = "vnp_BankCode"
	FieldBillMobile     = "vnp_Bill_Mobile"
	FieldBillEmail      = "vnp_Bill_Email"
	FieldBillFirstName  = "vnp_Bill_FirstName"
	FieldBillLastName   = "vnp_Bill_LastName"
	FieldResponseCode   = "vnp_ResponseCode"
	FieldSecureHash     = "vnp_SecureHash"
	FieldSecureHashType = "vnp_SecureHashType"
)

// ResponseCodeSuccess is the gateway's code for a successful payment,
// carried in vnp_ResponseCode on both callback paths.
const ResponseCodeSuccess = "00"

// Ack is the JSON body the gateway expects from the IPN endpoint.
type Ack struct {
	RspCode string `json:"RspCode"`
	Message string `json:"Message"`
}

// Acknowledgement codes mandated by the gateway. The values must be
// preserved verbatim for interoperability.
var (
	AckConfirmSuccess   = Ack{RspCode: "00", Message: "Confirm Success"}
	AckOrderNotFound    = Ack{RspCode: "01", Message: "Order not found"}
	AckAlreadyConfirmed = Ack{RspCode: "02", Message: "Order already confirmed"}
	AckInvalidAmount    = Ack{RspCode: "04", Message: "Invalid Amount"}
	AckInvalidChecksum  = Ack{RspCode: "97", Message: "Invalid Checksum"}
	AckUnknownError     = Ack{RspCode: "99", Message: "Unknown error"}
)
