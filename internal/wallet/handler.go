package wallet

import (
	"net/http"
	"strconv"

	"matchpay/internal/api"
	"matchpay/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	repo       *Repository
	operatorID int
}

func NewHandler(db *sqlx.DB, operatorID int) *Handler {
	return &Handler{
		repo:       NewRepository(db),
		operatorID: operatorID,
	}
}

func (h *Handler) GetBalance(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	w, err := h.repo.GetOrCreate(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load wallet"})
		return
	}

	c.JSON(http.StatusOK, w)
}

func (h *Handler) ListTransactions(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	w, err := h.repo.GetOrCreate(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load wallet"})
		return
	}

	entries, err := h.repo.ListEntries(c.Request.Context(), w.ID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load transactions"})
		return
	}

	c.JSON(http.StatusOK, entries)
}

// GetOperatingWallet exposes the platform wallet gateway credits settle
// into. Admin only.
func (h *Handler) GetOperatingWallet(c *gin.Context) {
	w, err := h.repo.GetOrCreate(c.Request.Context(), h.operatorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load operating wallet"})
		return
	}

	c.JSON(http.StatusOK, w)
}
