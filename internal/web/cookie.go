package web

import (
	"net/http"
	"time"

	"github.com/gorilla/securecookie"

	"github.com/example/bistrobook/internal/session"
)

const cookieName = "bistrobook_session"

// Cookies carries the wizard session id in a signed, encrypted cookie.
type Cookies struct {
	sc     *securecookie.SecureCookie
	maxAge time.Duration
}

func NewCookies(hashKey, blockKey []byte, maxAge time.Duration) *Cookies {
	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(int(maxAge.Seconds()))
	return &Cookies{sc: sc, maxAge: maxAge}
}

// ID returns the session id carried by r, if the cookie is present and
// authentic.
func (c *Cookies) ID(r *http.Request) (string, bool) {
	ck, err := r.Cookie(cookieName)
	if err != nil {
		return "", false
	}
	var val map[string]string
	if err := c.sc.Decode(cookieName, ck.Value, &val); err != nil {
		return "", false
	}
	id := val["sid"]
	if !session.ValidID(id) {
		return "", false
	}
	return id, true
}

func (c *Cookies) Set(w http.ResponseWriter, r *http.Request, id string) error {
	encoded, err := c.sc.Encode(cookieName, map[string]string{"sid": id})
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
		MaxAge:   int(c.maxAge.Seconds()),
	})
	return nil
}

func (c *Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
