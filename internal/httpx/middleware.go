package httpx

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/oaklandbooks/bookstore-api/internal/auth"
	"github.com/oaklandbooks/bookstore-api/internal/user"
)

const principalKey = "principal"

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set("rid", rid)
		c.Writer.Header().Set("X-Request-ID", rid)
		c.Next()
	}
}

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		rid, _ := c.Get("rid")
		log.Printf("[http] rid=%v %s %s status=%d dur=%s",
			rid, c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

func logError(rid any, route string, err error) {
	log.Printf("[http] rid=%v route=%s error: %v", rid, route, err)
}

// Auth validates the bearer token and confirms the account still exists, so
// a token outlives neither its user nor its signature.
func Auth(issuer *auth.TokenIssuer, users user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			Fail(c, http.StatusUnauthorized, "Access token required")
			c.Abort()
			return
		}

		p, err := issuer.Parse(raw)
		if err != nil {
			Fail(c, http.StatusForbidden, "Invalid or expired token")
			c.Abort()
			return
		}
		if _, err := users.GetByID(c.Request.Context(), p.UserID); err != nil {
			Fail(c, http.StatusForbidden, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(principalKey, p)
		c.Next()
	}
}

// Principal returns the authenticated caller set by Auth.
func Principal(c *gin.Context) auth.Principal {
	p, _ := c.Get(principalKey)
	pr, _ := p.(auth.Principal)
	return pr
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Principal(c).IsAdmin() {
			Fail(c, http.StatusForbidden, "Admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func RequireCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if Principal(c).UserType != auth.UserTypeCustomer {
			Fail(c, http.StatusForbidden, "Customer access required")
			c.Abort()
			return
		}
		c.Next()
	}
}
