package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smilemovies/account-service/internal/config"
	"github.com/smilemovies/account-service/internal/dto"
	"github.com/smilemovies/account-service/internal/service"
	"go.uber.org/zap"
)

// AccountHandler handles registration, authentication and account lifecycle
// requests
type AccountHandler struct {
	accounts       service.AccountService
	rateLimiter    *service.RateLimiter
	sessionCfg     config.SessionConfig
	resendCooldown config.Duration
	logger         *zap.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(
	accounts service.AccountService,
	rateLimiter *service.RateLimiter,
	sessionCfg config.SessionConfig,
	resendCooldown config.Duration,
	logger *zap.Logger,
) *AccountHandler {
	return &AccountHandler{
		accounts:       accounts,
		rateLimiter:    rateLimiter,
		sessionCfg:     sessionCfg,
		resendCooldown: resendCooldown,
		logger:         logger,
	}
}

// Register handles account registration. The first device is enrolled
// trusted and the session cookie is set on success.
func (h *AccountHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.accounts.Register(c.Request.Context(), service.RegisterInput{
		FirstName:  req.Firstname,
		LastName:   req.Lastname,
		Email:      req.Email,
		Password:   req.Password,
		ProfilePic: req.ProfilePic,
		LoginType:  req.LoginType,
		Verified:   req.IsVerified,
		Device: service.DeviceInput{
			DeviceID: req.DeviceID,
			Name:     req.DeviceName,
			Type:     req.DeviceType,
			Location: req.DeviceLocation.ToLocation(),
		},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	setSessionCookie(c, h.sessionCfg, result.Credential)

	devices, err := h.accounts.Devices().List(c.Request.Context(), result.Account.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewAccountResponse(result.Account, devices))
}

// Login handles credential authentication
func (h *AccountHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.accounts.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Device: service.DeviceInput{
			DeviceID: req.DeviceID,
			Name:     req.DeviceName,
			Type:     req.DeviceType,
			Location: req.DeviceLocation.ToLocation(),
		},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	setSessionCookie(c, h.sessionCfg, result.Credential)

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Login successful"})
}

// Logout clears the session cookie. Credentials are self-contained and not
// revoked server-side.
func (h *AccountHandler) Logout(c *gin.Context) {
	clearSessionCookie(c, h.sessionCfg)

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Logged out successfully"})
}

// GetMe returns the authenticated account with its device list
func (h *AccountHandler) GetMe(c *gin.Context) {
	account, err := h.accounts.Get(c.Request.Context(), accountID(c))
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

// UpdateMe updates the authenticated account's profile. Changing the email
// drops the verified flag until re-verified.
func (h *AccountHandler) UpdateMe(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	account, err := h.accounts.UpdateProfile(c.Request.Context(), accountID(c), service.ProfileInput{
		FirstName: req.Firstname,
		LastName:  req.Lastname,
		Email:     req.Email,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAccountResponse(account, nil))
}

// DeleteMe removes the authenticated account
func (h *AccountHandler) DeleteMe(c *gin.Context) {
	if err := h.accounts.Delete(c.Request.Context(), accountID(c)); err != nil {
		respondError(c, err)
		return
	}

	clearSessionCookie(c, h.sessionCfg)

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Account deleted"})
}

// VerifyEmail consumes the verification token from the URL
func (h *AccountHandler) VerifyEmail(c *gin.Context) {
	if err := h.accounts.VerifyEmail(c.Request.Context(), accountID(c), c.Param("token")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Email verified"})
}

// ResendVerification reissues and mails the verification token, throttled
// per account
func (h *AccountHandler) ResendVerification(c *gin.Context) {
	id := accountID(c)

	allowed, err := h.rateLimiter.Cooldown(c.Request.Context(), "resend-verify:"+id, h.resendCooldown.Duration)
	if err != nil {
		// Redis trouble should not lock accounts out of verification
		h.logger.Warn("resend cooldown check failed", zap.Error(err))
	} else if !allowed {
		c.JSON(http.StatusTooManyRequests, dto.ErrorResponse{
			Error:   "Too Many Requests",
			Message: "Verification mail was sent recently, try again later",
		})
		return
	}

	if err := h.accounts.ResendVerification(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Verification token sent"})
}

// ForgotPassword issues a reset token and mails the reset link
func (h *AccountHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.accounts.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Reset password link sent"})
}

// ResendReset reissues the reset token, throttled per email so the
// unauthenticated endpoint cannot be used to flood an inbox.
func (h *AccountHandler) ResendReset(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	allowed, err := h.rateLimiter.Cooldown(c.Request.Context(), "resend-reset:"+req.Email, h.resendCooldown.Duration)
	if err != nil {
		h.logger.Warn("resend cooldown check failed", zap.Error(err))
	} else if !allowed {
		c.JSON(http.StatusTooManyRequests, dto.ErrorResponse{
			Error:   "Too Many Requests",
			Message: "Please wait before requesting another link",
		})
		return
	}

	if err := h.accounts.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Reset password link sent"})
}

// ResetPassword applies a new password using the emailed reset token
func (h *AccountHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	err := h.accounts.ResetPassword(c.Request.Context(), c.Param("email"), c.Param("token"), req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Password reset"})
}

// ChangePassword replaces the authenticated account's password
func (h *AccountHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	err := h.accounts.ChangePassword(c.Request.Context(), accountID(c), req.OldPassword, req.NewPassword)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Password updated"})
}
