package settlement

import (
	"net/http"

	"matchpay/internal/api"
	"matchpay/internal/auth"
	"matchpay/internal/metrics"
	"matchpay/internal/premium"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	engine *Engine
}

func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

type CreateLinkRequest struct {
	PackageID int    `json:"package_id" binding:"required"`
	Locale    string `json:"locale"`
	BankCode  string `json:"bank_code"`
}

type CreateLinkResponse struct {
	PaymentURL      string `json:"payment_url"`
	TransactionCode string `json:"transaction_code"`
	Amount          string `json:"amount"`
}

func (h *Handler) CreateLink(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.NewValidationError(err))
		return
	}

	url, entry, err := h.engine.CreatePaymentLink(c.Request.Context(), LinkRequest{
		UserID:    userID,
		PackageID: req.PackageID,
		ClientIP:  c.ClientIP(),
		Locale:    req.Locale,
		BankCode:  req.BankCode,
	})
	if err == premium.ErrPackageNotFound {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "unknown premium package"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to create payment link"})
		return
	}

	c.JSON(http.StatusOK, CreateLinkResponse{
		PaymentURL:      url,
		TransactionCode: entry.TransactionCode,
		Amount:          entry.Amount.String(),
	})
}

// Return handles the browser redirect from the gateway. Display-only: it
// 302s to a front-end page and mutates nothing.
func (h *Handler) Return(c *gin.Context) {
	result := h.engine.HandleReturn(c.Request.Context(), queryParams(c))
	c.Redirect(http.StatusFound, result.RedirectURL)
}

// IPN handles the authoritative server notification. The gateway expects a
// 200 with a code/message body on every outcome.
func (h *Handler) IPN(c *gin.Context) {
	ack := h.engine.HandleIPN(c.Request.Context(), queryParams(c))
	metrics.RecordIPNResult(ack.RspCode)
	c.JSON(http.StatusOK, ack)
}

// queryParams flattens query and form parameters into the field map the
// codec operates on. The gateway sends each field at most once.
func queryParams(c *gin.Context) map[string]string {
	_ = c.Request.ParseForm()
	params := make(map[string]string, len(c.Request.Form))
	for k, vs := range c.Request.Form {
		if len(vs) > 0 {
			params[k] = vs[0]
		}
	}
	return params
}
