package session

import (
	"net/http"
)

// SetCookie binds a token to the response. The cookie is HttpOnly and
// SameSite=Strict; Secure is set outside development so the capsule never
// travels over plain HTTP in production.
func (c *Codec) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearCookie invalidates the client's copy of the session. There is no
// server-side session store, so a previously captured token stays valid
// until its natural expiry.
func (c *Codec) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ReadCookie extracts the raw token from a request, or http.ErrNoCookie.
func (c *Codec) ReadCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(c.cookieName)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}
