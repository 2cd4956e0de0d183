package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smilemovies/account-service/internal/dto"
	"github.com/smilemovies/account-service/internal/service"
)

// AdminHandler handles administrative account lookups and flag changes.
// All routes are guarded by RequireAdmin.
type AdminHandler struct {
	accounts service.AccountService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(accounts service.AccountService) *AdminHandler {
	return &AdminHandler{accounts: accounts}
}

// List returns all accounts
func (h *AdminHandler) List(c *gin.Context) {
	accounts, err := h.accounts.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]dto.AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		responses = append(responses, dto.NewAccountResponse(account, nil))
	}

	c.JSON(http.StatusOK, gin.H{"accounts": responses})
}

// Get returns one account by id
func (h *AdminHandler) Get(c *gin.Context) {
	account, err := h.accounts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	devices, err := h.accounts.Devices().List(c.Request.Context(), account.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAccountResponse(account, devices))
}

// GetByEmail returns one account by email
func (h *AdminHandler) GetByEmail(c *gin.Context) {
	account, err := h.accounts.GetByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAccountResponse(account, nil))
}

// UpdateStatus changes the verified/banned/admin flags of an account.
// Existing sessions keep their issuance-time claims until reissued.
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	account, err := h.accounts.UpdateStatus(c.Request.Context(), c.Param("id"), service.StatusInput{
		Verified: req.Verified,
		Banned:   req.Banned,
		Admin:    req.Admin,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAccountResponse(account, nil))
}

// Delete removes an account by id
func (h *AdminHandler) Delete(c *gin.Context) {
	if err := h.accounts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Account deleted"})
}
