package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smilemovies/account-service/internal/config"
)

// setSessionCookie attaches the session credential as the authToken cookie:
// httpOnly, sameSite=lax, path=/, maxAge equal to the credential expiry
func setSessionCookie(c *gin.Context, cfg config.SessionConfig, credential string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		cfg.CookieName,
		credential,
		int(cfg.Expiry.Duration.Seconds()),
		"/",
		cfg.CookieDomain,
		cfg.CookieSecure,
		true,
	)
}

// clearSessionCookie expires the authToken cookie. Logout is a client-side
// credential discard; the credential itself stays valid until expiry.
func clearSessionCookie(c *gin.Context, cfg config.SessionConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.CookieName, "", -1, "/", cfg.CookieDomain, cfg.CookieSecure, true)
}
