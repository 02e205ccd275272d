package middleware

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// BasicAuthConfig configures the enforce-basic-auth filter.
type BasicAuthConfig struct {
	// Realm is advertised in the WWW-Authenticate challenge.
	Realm string
	// Verify checks a username/password pair.
	Verify func(username, password string) bool
}

// BasicAuth returns a filter that enforces HTTP Basic authentication.
// Its presence is controlled by configuration; it runs ahead of the
// catch-all on the wildcard path.
func BasicAuth(cfg BasicAuthConfig) gin.HandlerFunc {
	realm := cfg.Realm
	if realm == "" {
		realm = "forgekit"
	}
	challenge := `Basic realm="` + realm + `"`

	return func(c *gin.Context) {
		user, pass, ok := parseBasicAuth(c.GetHeader("Authorization"))
		if !ok || cfg.Verify == nil || !cfg.Verify(user, pass) {
			c.Header("WWW-Authenticate", challenge)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Set("auth_user", user)
		c.Next()
	}
}

// BcryptVerifier builds a Verify function over a map of username to
// bcrypt-hashed password.
func BcryptVerifier(accounts map[string]string) func(username, password string) bool {
	return func(username, password string) bool {
		hash, ok := accounts[username]
		if !ok {
			return false
		}
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	}
}

func parseBasicAuth(header string) (user, pass string, ok bool) {
	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return "", "", false
	}
	user, pass, ok = strings.Cut(string(decoded), ":")
	return user, pass, ok
}
