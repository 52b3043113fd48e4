package session

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bloghub/bloghub/pkg/domain"
)

// Expired reports whether the session's access token is a JWT whose exp claim
// has passed. The signature is not verified: the client holds no key, and the
// answer only predicts that the backend would reject the token. Opaque tokens
// never expire here.
func Expired(sess domain.Session, now time.Time) bool {
	if strings.Count(sess.AccessToken, ".") != 2 {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(sess.AccessToken, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}
