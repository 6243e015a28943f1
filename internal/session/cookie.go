package session

import (
	"net/http"
	"time"
)

// CookieName is the client-visible session cookie.
const CookieName = "demo_session"

// SetCookie writes the demo_session cookie holding the raw email. The cookie
// is deliberately readable by the UI (not HttpOnly) and is only a hint:
// privileged reads must re-validate against GetStatus, never against cookie
// presence alone.
func SetCookie(w http.ResponseWriter, email string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    email,
		Path:     "/",
		MaxAge:   int(DemoDuration / time.Second),
		HttpOnly: false,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the demo_session cookie.
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		SameSite: http.SameSiteLaxMode,
	})
}
