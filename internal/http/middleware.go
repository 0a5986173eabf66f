package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"quoter/internal/domain"
)

const (
	identityCookie = "user_id"
	identityKey    = "identity"
)

// AccessLog records one line per request for analytics. Only the method and
// path are logged; form fields and cookie values never reach the log.
func AccessLog(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger.Infof("%s %s", c.Request.Method, c.Request.URL.Path)
		c.Next()
	}
}

// Identity resolves the visitor's identity cookie before any handler runs.
// The value is trusted structurally only: any integer is accepted without
// checking that the user row exists or that this server issued the cookie,
// so whoever can set raw cookies can impersonate a user id. A missing or
// non-numeric cookie degrades silently to anonymous.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		var ident domain.Identity
		if raw, err := c.Cookie(identityCookie); err == nil {
			if id, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
				ident.UserID = &id
			}
		}
		c.Set(identityKey, ident)
		c.Next()
	}
}

func identityFrom(c *gin.Context) domain.Identity {
	if v, ok := c.Get(identityKey); ok {
		if ident, ok := v.(domain.Identity); ok {
			return ident
		}
	}
	return domain.Identity{}
}

// setIdentityCookie issues the session-scoped identity cookie. Secure,
// HttpOnly and SameSite=Lax are required attributes on every issue and
// deletion so browsers treat both consistently.
func setIdentityCookie(c *gin.Context, userID int64) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(identityCookie, strconv.FormatInt(userID, 10), 0, "/", "", true, true)
}

func clearIdentityCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(identityCookie, "", -1, "/", "", true, true)
}
