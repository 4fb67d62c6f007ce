// Package sessioncookie reads and writes the browser cookie that carries the
// session token.
package sessioncookie

import (
	"net/http"
	"strings"
	"time"
)

// Name is the browser cookie carrying the session token.
const Name = "eros_session"

// Set stores token in the session cookie until expires.
func Set(w http.ResponseWriter, token string, expires time.Time, secure bool) {
	maxAge := int(time.Until(expires).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     Name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
		Expires:  expires,
	})
}

// Clear instructs the client to drop the session cookie.
func Clear(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     Name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

// Read returns the cookie's token, or "" when the request carries none.
func Read(r *http.Request) string {
	cookie, err := r.Cookie(Name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}
