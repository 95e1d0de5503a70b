package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"buyback-pos/internal/models"
	"buyback-pos/internal/service"
	"buyback-pos/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	SessionCookie = "pos_session"

	ContextUserID   = "userID"
	ContextUsername = "username"
	ContextRole     = "role"
)

// TokenValidator checks a session token.
type TokenValidator interface {
	ValidateToken(token string) (*utils.Claims, error)
}

// AuthMiddleware accepts a Bearer header or the session cookie. API routes
// answer 401/403 as JSON; page routes redirect to the login form or to the
// operator's home screen.
func AuthMiddleware(tokens TokenValidator, allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		api := isAPI(c)

		tokenString, ok := tokenFrom(c)
		if !ok {
			deny(c, api, http.StatusUnauthorized, "Authorization required")
			return
		}

		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			if !api {
				c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
			}
			deny(c, api, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		if len(allowedRoles) > 0 {
			roleAllowed := false
			for _, role := range allowedRoles {
				if role == claims.Role {
					roleAllowed = true
					break
				}
			}
			if !roleAllowed {
				if api {
					c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
					return
				}
				c.Redirect(http.StatusSeeOther, HomeFor(claims.Role)+"?denied=1")
				c.Abort()
				return
			}
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextRole, claims.Role)
		c.Request = c.Request.WithContext(service.WithActor(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

func tokenFrom(c *gin.Context) (string, bool) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			return "", false
		}
		return tokenString, true
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie, true
	}
	return "", false
}

func deny(c *gin.Context, api bool, status int, msg string) {
	if api {
		c.AbortWithStatusJSON(status, gin.H{"error": msg})
		return
	}
	next := c.Request.URL.RequestURI()
	c.Redirect(http.StatusSeeOther, "/login?next="+url.QueryEscape(next))
	c.Abort()
}

func isAPI(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/")
}

// HomeFor is the first screen an operator lands on after login.
func HomeFor(role string) string {
	if role == models.RoleBiller {
		return "/purchase"
	}
	return "/products"
}

// Role groups used by the router.
var (
	PurchaseRoles  = []string{models.RoleBiller, models.RoleManager, models.RoleAdmin}
	CatalogRoles   = []string{models.RoleInventory, models.RoleManager, models.RoleAdmin}
	ReportingRoles = []string{models.RoleManager, models.RoleAdmin, models.RoleBiller}
	AdminRoles     = []string{models.RoleAdmin}
)
