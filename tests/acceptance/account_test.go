package acceptance

import (
	"encoding/json"
	"net/http"

	"github.com/smilemovies/account-service/internal/dto"
)

func registerRequest(email string) dto.RegisterRequest {
	return dto.RegisterRequest{
		Firstname:  "Test",
		Lastname:   "User",
		Email:      email,
		Password:   "Password123",
		LoginType:  "email",
		DeviceID:   "device-1",
		DeviceName: "Living Room TV",
		DeviceType: "tv",
	}
}

func (s *Suite) register(client *http.Client, email string) dto.AccountResponse {
	resp := s.postJSON(client, "/api/v1/auth/register", registerRequest(email))
	defer resp.Body.Close()
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var account dto.AccountResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&account))
	return account
}

func (s *Suite) TestRegister_Success() {
	client := s.newClient()

	resp := s.postJSON(client, "/api/v1/auth/register", registerRequest("test@example.com"))
	defer resp.Body.Close()

	s.Equal(http.StatusCreated, resp.StatusCode)

	var account dto.AccountResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&account))

	s.NotEmpty(account.ID)
	s.Equal("test@example.com", account.Email)
	s.False(account.Verified)
	s.Require().Len(account.Devices, 1)
	s.Equal("device-1", account.Devices[0].DeviceID)
	s.True(account.Devices[0].Trusted, "Registration device should start trusted")

	cookies := resp.Cookies()
	s.Require().NotEmpty(cookies, "Should have session cookie")
	s.Equal("authToken", cookies[0].Name)
	s.True(cookies[0].HttpOnly)

	// The verification code was mailed
	sent := s.Mailer.Sent()
	s.Require().Len(sent, 1)
	s.Equal("test@example.com", sent[0].To)
}

func (s *Suite) TestRegister_NormalizesEmail() {
	client := s.newClient()
	account := s.register(client, "MixedCase@Example.COM")
	s.Equal("mixedcase@example.com", account.Email)
}

func (s *Suite) TestRegister_DuplicateEmail() {
	client := s.newClient()
	s.register(client, "duplicate@example.com")

	resp := s.postJSON(client, "/api/v1/auth/register", registerRequest("duplicate@example.com"))
	defer resp.Body.Close()

	s.Equal(http.StatusConflict, resp.StatusCode)

	var errResp dto.ErrorResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&errResp))
	s.Equal("Conflict", errResp.Error)
}

func (s *Suite) TestRegister_MissingDevice() {
	client := s.newClient()

	req := registerRequest("nodevice@example.com")
	req.DeviceID = ""

	resp := s.postJSON(client, "/api/v1/auth/register", req)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestRegister_WeakPassword() {
	client := s.newClient()

	req := registerRequest("weak@example.com")
	req.Password = "alllowercase"

	resp := s.postJSON(client, "/api/v1/auth/register", req)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestLogin_Success() {
	s.register(s.newClient(), "login@example.com")

	// Fresh client simulates a new browser without the register cookie
	client := s.newClient()
	resp := s.postJSON(client, "/api/v1/auth/login", dto.LoginRequest{
		Email:      "login@example.com",
		Password:   "Password123",
		DeviceID:   "device-2",
		DeviceName: "Phone",
		DeviceType: "mobile",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	// The session cookie authenticates /me
	meResp := s.doJSON(client, http.MethodGet, "/api/v1/me", nil)
	defer meResp.Body.Close()
	s.Equal(http.StatusOK, meResp.StatusCode)

	var account dto.AccountResponse
	s.Require().NoError(json.NewDecoder(meResp.Body).Decode(&account))
	s.Equal("login@example.com", account.Email)
	s.NotNil(account.LastLoginAt)

	// The login device was appended provisionally
	s.Require().Len(account.Devices, 2)
	s.False(account.Devices[1].Trusted)
}

func (s *Suite) TestLogin_WrongPassword() {
	s.register(s.newClient(), "wrongpass@example.com")

	client := s.newClient()
	resp := s.postJSON(client, "/api/v1/auth/login", dto.LoginRequest{
		Email:      "wrongpass@example.com",
		Password:   "WrongPassword1",
		DeviceID:   "device-1",
		DeviceName: "Phone",
		DeviceType: "mobile",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestLogin_UnknownEmail() {
	client := s.newClient()
	resp := s.postJSON(client, "/api/v1/auth/login", dto.LoginRequest{
		Email:      "nobody@example.com",
		Password:   "Password123",
		DeviceID:   "device-1",
		DeviceName: "Phone",
		DeviceType: "mobile",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *Suite) TestGetMe_Unauthenticated() {
	resp := s.doJSON(s.newClient(), http.MethodGet, "/api/v1/me", nil)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestLogout_ClearsCookie() {
	client := s.newClient()
	s.register(client, "logout@example.com")

	resp := s.postJSON(client, "/api/v1/auth/logout", nil)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	meResp := s.doJSON(client, http.MethodGet, "/api/v1/me", nil)
	defer meResp.Body.Close()
	s.Equal(http.StatusUnauthorized, meResp.StatusCode)
}

func (s *Suite) TestVerifyEmail_Flow() {
	client := s.newClient()
	account := s.register(client, "verify@example.com")

	code := s.tokenValue(account.ID, "verify-email")
	s.Len(code, 6)

	// Wrong code does not verify
	resp := s.doJSON(client, http.MethodGet, "/api/v1/auth/verify/FFFFFF", nil)
	resp.Body.Close()
	s.Equal(http.StatusNotFound, resp.StatusCode)

	resp = s.doJSON(client, http.MethodGet, "/api/v1/auth/verify/"+code, nil)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	meResp := s.doJSON(client, http.MethodGet, "/api/v1/me", nil)
	defer meResp.Body.Close()
	var me dto.AccountResponse
	s.Require().NoError(json.NewDecoder(meResp.Body).Decode(&me))
	s.True(me.Verified)

	// Replaying the consumed code is a conflict with the verified state
	resp = s.doJSON(client, http.MethodGet, "/api/v1/auth/verify/"+code, nil)
	resp.Body.Close()
	s.Equal(http.StatusConflict, resp.StatusCode)
}

func (s *Suite) TestResendVerification_ReplacesCodeAndCoolsDown() {
	client := s.newClient()
	account := s.register(client, "resend@example.com")

	original := s.tokenValue(account.ID, "verify-email")

	resp := s.postJSON(client, "/api/v1/auth/verify/resend", nil)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	replacement := s.tokenValue(account.ID, "verify-email")
	s.NotEqual(original, replacement)

	// The old code is dead
	verifyResp := s.doJSON(client, http.MethodGet, "/api/v1/auth/verify/"+original, nil)
	verifyResp.Body.Close()
	s.Equal(http.StatusNotFound, verifyResp.StatusCode)

	// An immediate second resend hits the cooldown
	resp = s.postJSON(client, "/api/v1/auth/verify/resend", nil)
	resp.Body.Close()
	s.Equal(http.StatusTooManyRequests, resp.StatusCode)
}

func (s *Suite) TestForgotResetPassword_Flow() {
	client := s.newClient()
	account := s.register(client, "reset@example.com")

	resp := s.postJSON(client, "/api/v1/auth/forgot-password", dto.ForgotPasswordRequest{Email: "reset@example.com"})
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	token := s.tokenValue(account.ID, "reset-password")
	s.Len(token, 32)

	resp = s.postJSON(s.newClient(), "/api/v1/auth/reset-password/reset@example.com/"+token,
		dto.ResetPasswordRequest{Password: "NewPassword1"})
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	// Old password rejected, new one accepted
	loginReq := dto.LoginRequest{
		Email:      "reset@example.com",
		Password:   "Password123",
		DeviceID:   "device-1",
		DeviceName: "Living Room TV",
		DeviceType: "tv",
	}
	loginResp := s.postJSON(s.newClient(), "/api/v1/auth/login", loginReq)
	loginResp.Body.Close()
	s.Equal(http.StatusUnauthorized, loginResp.StatusCode)

	loginReq.Password = "NewPassword1"
	loginResp = s.postJSON(s.newClient(), "/api/v1/auth/login", loginReq)
	loginResp.Body.Close()
	s.Equal(http.StatusOK, loginResp.StatusCode)

	// The reset token was single use
	resp = s.postJSON(s.newClient(), "/api/v1/auth/reset-password/reset@example.com/"+token,
		dto.ResetPasswordRequest{Password: "AnotherPass1"})
	resp.Body.Close()
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *Suite) TestForgotResetPassword_Resend() {
	client := s.newClient()
	account := s.register(client, "reset-again@example.com")

	resp := s.postJSON(client, "/api/v1/auth/forgot-password", dto.ForgotPasswordRequest{Email: "reset-again@example.com"})
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
	first := s.tokenValue(account.ID, "reset-password")

	// Resend replaces the outstanding token
	resp = s.postJSON(client, "/api/v1/auth/forgot-password/resend", dto.ForgotPasswordRequest{Email: "reset-again@example.com"})
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
	second := s.tokenValue(account.ID, "reset-password")
	s.NotEqual(first, second)

	// An immediate second resend hits the cooldown
	resp = s.postJSON(client, "/api/v1/auth/forgot-password/resend", dto.ForgotPasswordRequest{Email: "reset-again@example.com"})
	resp.Body.Close()
	s.Equal(http.StatusTooManyRequests, resp.StatusCode)
}

func (s *Suite) TestChangePassword_Flow() {
	client := s.newClient()
	s.register(client, "change@example.com")

	// Wrong old password is rejected
	resp := s.postJSON(client, "/api/v1/auth/change-password", dto.ChangePasswordRequest{
		OldPassword: "WrongPass1",
		NewPassword: "NewPassword1",
	})
	resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp = s.postJSON(client, "/api/v1/auth/change-password", dto.ChangePasswordRequest{
		OldPassword: "Password123",
		NewPassword: "NewPassword1",
	})
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	loginResp := s.postJSON(s.newClient(), "/api/v1/auth/login", dto.LoginRequest{
		Email:      "change@example.com",
		Password:   "NewPassword1",
		DeviceID:   "device-1",
		DeviceName: "Living Room TV",
		DeviceType: "tv",
	})
	loginResp.Body.Close()
	s.Equal(http.StatusOK, loginResp.StatusCode)
}

func (s *Suite) TestUpdateMe_EmailChangeDropsVerification() {
	client := s.newClient()
	account := s.register(client, "profile@example.com")

	code := s.tokenValue(account.ID, "verify-email")
	verifyResp := s.doJSON(client, http.MethodGet, "/api/v1/auth/verify/"+code, nil)
	verifyResp.Body.Close()
	s.Require().Equal(http.StatusOK, verifyResp.StatusCode)

	newEmail := "changed@example.com"
	resp := s.doJSON(client, http.MethodPatch, "/api/v1/me", dto.UpdateProfileRequest{Email: &newEmail})
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	var updated dto.AccountResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&updated))
	s.Equal("changed@example.com", updated.Email)
	s.False(updated.Verified, "Email change must drop the verified flag")
}

func (s *Suite) TestDeleteMe() {
	client := s.newClient()
	s.register(client, "gone@example.com")

	resp := s.doJSON(client, http.MethodDelete, "/api/v1/me", nil)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	// Logging in with the deleted account fails
	loginResp := s.postJSON(s.newClient(), "/api/v1/auth/login", dto.LoginRequest{
		Email:      "gone@example.com",
		Password:   "Password123",
		DeviceID:   "device-1",
		DeviceName: "Living Room TV",
		DeviceType: "tv",
	})
	loginResp.Body.Close()
	s.Equal(http.StatusNotFound, loginResp.StatusCode)
}
