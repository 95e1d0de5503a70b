package handler

import (
	"context"
	"net/http"
	"time"

	"buyback-pos/internal/models"
	"buyback-pos/internal/service"

	"github.com/gin-gonic/gin"
)

// Pinger is anything /healthz checks: the backend client and the database.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a plain function, such as sql.DB.PingContext.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type PublicHandler struct {
	site     models.SiteInfo
	backend  Pinger
	database Pinger
}

func NewPublicHandler(site models.SiteInfo, backend, database Pinger) *PublicHandler {
	return &PublicHandler{site: site, backend: backend, database: database}
}

func (h *PublicHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

func (h *PublicHandler) GetSiteInfo(c *gin.Context) {
	c.JSON(http.StatusOK, h.site)
}

// Health reports the backend and the operator database separately, so a
// backend outage is told apart from a local one.
func (h *PublicHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{}
	for name, p := range map[string]Pinger{"backend": h.backend, "database": h.database} {
		if p == nil {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			checks[name] = service.Message(err)
			continue
		}
		checks[name] = "ok"
	}
	c.JSON(status, gin.H{"status": http.StatusText(status), "checks": checks})
}
