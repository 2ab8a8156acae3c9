package auth

import (
	"net/http"
	"time"
)

// RefreshCookieMaxAge matches the refresh token lifetime.
const RefreshCookieMaxAge = 7 * 24 * 60 * 60

// CookieConfig holds refresh-cookie attributes derived from deployment
// configuration.
type CookieConfig struct {
	Domain string // Empty string = current host only
	Secure bool   // HTTPS only; false only in development
}

// SetRefreshTokenCookie transports the refresh token to the client. The
// cookie is httpOnly and SameSite=Lax; the access token is never placed
// in a cookie.
func SetRefreshTokenCookie(w http.ResponseWriter, refreshToken string, config CookieConfig) {
	cookie := &http.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Path:     "/",
		Domain:   config.Domain,
		Expires:  time.Now().Add(RefreshCookieMaxAge * time.Second),
		MaxAge:   RefreshCookieMaxAge,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(w, cookie)
}

// ClearRefreshTokenCookie deletes the refresh token cookie on logout.
func ClearRefreshTokenCookie(w http.ResponseWriter, config CookieConfig) {
	cookie := &http.Cookie{
		Name:     "refresh_token",
		Value:    "",
		Path:     "/",
		Domain:   config.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(w, cookie)
}

// GetRefreshTokenCookie retrieves the refresh token from the request.
func GetRefreshTokenCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie("refresh_token")
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}
