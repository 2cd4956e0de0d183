package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smilemovies/account-service/internal/dto"
	"github.com/smilemovies/account-service/internal/service"
)

// DeviceHandler handles device list and trust lifecycle requests
type DeviceHandler struct {
	accounts service.AccountService
}

// NewDeviceHandler creates a new device handler
func NewDeviceHandler(accounts service.AccountService) *DeviceHandler {
	return &DeviceHandler{accounts: accounts}
}

// List returns the authenticated account's devices in insertion order
func (h *DeviceHandler) List(c *gin.Context) {
	devices, err := h.accounts.Devices().List(c.Request.Context(), accountID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"devices": devices})
}

// Add enrolls a new device in the provisional state
func (h *DeviceHandler) Add(c *gin.Context) {
	var req dto.AddDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	device, err := h.accounts.Devices().Add(c.Request.Context(), accountID(c), service.DeviceInput{
		DeviceID: req.DeviceID,
		Name:     req.DeviceName,
		Type:     req.DeviceType,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, device)
}

// Remove deletes a device from the account's list; removal is idempotent
func (h *DeviceHandler) Remove(c *gin.Context) {
	err := h.accounts.Devices().Remove(c.Request.Context(), accountID(c), c.Param("deviceId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Device deleted"})
}

// TouchLogin updates a device's last login timestamp and location snapshot
func (h *DeviceHandler) TouchLogin(c *gin.Context) {
	var req dto.TouchLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	err := h.accounts.Devices().TouchLogin(c.Request.Context(), accountID(c), service.DeviceInput{
		DeviceID: c.Param("deviceId"),
		Location: req.DeviceLocation.ToLocation(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Last login updated"})
}

// RequestActivation issues an activation token for a provisional device and
// mails a time-boxed activation link
func (h *DeviceHandler) RequestActivation(c *gin.Context) {
	account, err := h.accounts.Get(c.Request.Context(), accountID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	err = h.accounts.Devices().RequestActivation(c.Request.Context(), account, c.Param("deviceId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Activation link sent to your email"})
}

// Activate is the unauthenticated activation-link target. The token value
// plus device id proves possession of the mailed link.
func (h *DeviceHandler) Activate(c *gin.Context) {
	email := c.Query("email")
	deviceID := c.Query("deviceId")
	tokenValue := c.Query("token")

	if email == "" || deviceID == "" || tokenValue == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad request",
			Message: "Invalid activation link",
		})
		return
	}

	account, err := h.accounts.GetByEmail(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}

	err = h.accounts.Devices().Activate(c.Request.Context(), account.ID, deviceID, tokenValue)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Device successfully activated"})
}
