// Package handler holds the gin handlers behind every staff screen. Page
// handlers render server-side templates; /api routes answer JSON.
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"buyback-pos/internal/backend"
	"buyback-pos/internal/middleware"
	"buyback-pos/internal/models"
	"buyback-pos/internal/paging"
	"buyback-pos/internal/service"
	"buyback-pos/internal/view"

	"github.com/gin-gonic/gin"
)

// Renderer wraps screen data into view.Page with the signed-in operator,
// the shop info and any flash message carried in the query string.
type Renderer struct {
	Site    models.SiteInfo
	PerPage int
	Logger  *slog.Logger
}

func NewRenderer(site models.SiteInfo, perPage int, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	if perPage <= 0 {
		perPage = paging.DefaultPerPage
	}
	return &Renderer{Site: site, PerPage: perPage, Logger: logger.With("component", "handler")}
}

func (r *Renderer) page(c *gin.Context, title, active string, data any) view.Page {
	p := view.Page{
		Title:     title,
		Active:    active,
		Path:      currentPath(c),
		Site:      r.Site,
		Flash:     c.Query("flash"),
		Error:     c.Query("error"),
		RequestID: c.GetString(middleware.ContextRequestID),
		Data:      data,
	}
	if id, ok := c.Get(middleware.ContextUserID); ok {
		uid, _ := id.(uint)
		p.User = &view.Operator{
			ID:   uid,
			Name: c.GetString(middleware.ContextUsername),
			Role: c.GetString(middleware.ContextRole),
		}
	}
	if c.Query("denied") == "1" && p.Error == "" {
		p.Error = "You do not have access to that screen."
	}
	return p
}

// currentPath is where forms on the page send the operator back to. A
// re-rendered POST keeps the page it was posted from.
func currentPath(c *gin.Context) string {
	if c.Request.Method == http.MethodPost {
		return localPath(c.PostForm("next"), c.Request.URL.Path)
	}
	return c.Request.URL.RequestURI()
}

func (r *Renderer) render(c *gin.Context, status int, name, title, active string, data any) {
	c.HTML(status, name, r.page(c, title, active, data))
}

// renderErr renders a screen with err shown inline above its content.
func (r *Renderer) renderErr(c *gin.Context, name, title, active string, data any, err error) {
	p := r.page(c, title, active, data)
	p.Error = service.Message(err)
	status := statusFor(err)
	r.log(c, status, err)
	c.HTML(status, name, p)
}

// renderInline is renderErr for screens that show the message inside an
// open modal instead of above the content.
func (r *Renderer) renderInline(c *gin.Context, name, title, active string, data any, err error) {
	status := statusFor(err)
	r.log(c, status, err)
	c.HTML(status, name, r.page(c, title, active, data))
}

// fail replaces the screen with the error page. Used when a page cannot be
// drawn at all.
func (r *Renderer) fail(c *gin.Context, active string, err error) {
	status := statusFor(err)
	r.log(c, status, err)
	p := r.page(c, "Error", active, gin.H{"Status": status, "Back": backLink(c)})
	p.Error = service.Message(err)
	c.HTML(status, "error", p)
}

func (r *Renderer) log(c *gin.Context, status int, err error) {
	attrs := []any{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", status,
		"request_id", c.GetString(middleware.ContextRequestID),
		"error", err,
	}
	if status >= http.StatusInternalServerError {
		r.Logger.Error("request failed", attrs...)
		return
	}
	r.Logger.Info("request rejected", attrs...)
}

// statusFor maps errors to the response status of a re-rendered page.
func statusFor(err error) int {
	var vErr *service.ValidationError
	var apiErr *backend.APIError
	switch {
	case errors.As(err, &vErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrStaleBill):
		return http.StatusConflict
	case errors.Is(err, backend.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, backend.ErrUnavailable):
		return http.StatusBadGateway
	case errors.As(err, &apiErr):
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// redirect sends the browser to path with a flash or error message appended.
func redirect(c *gin.Context, path, key, msg string) {
	if msg != "" {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		path += sep + key + "=" + url.QueryEscape(msg)
	}
	c.Redirect(http.StatusSeeOther, path)
}

func redirectFlash(c *gin.Context, path, msg string) { redirect(c, path, "flash", msg) }

func redirectError(c *gin.Context, path string, err error) {
	redirect(c, path, "error", service.Message(err))
}

// localPath accepts only same-site paths, so forms cannot bounce operators
// to another host.
func localPath(raw, fallback string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return fallback
	}
	return raw
}

func backLink(c *gin.Context) string {
	ref, err := url.Parse(c.GetHeader("Referer"))
	if err != nil || ref.Path == "" || ref.Host != c.Request.Host {
		return "/"
	}
	return localPath(ref.RequestURI(), "/")
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func queryID(c *gin.Context, name string) uint {
	id, _ := strconv.ParseUint(strings.TrimSpace(c.Query(name)), 10, 64)
	return uint(id)
}

func valuesID(q url.Values, name string) uint {
	id, _ := strconv.ParseUint(strings.TrimSpace(q.Get(name)), 10, 64)
	return uint(id)
}

func formID(c *gin.Context, name string) uint {
	id, _ := strconv.ParseUint(strings.TrimSpace(c.PostForm(name)), 10, 64)
	return uint(id)
}

// notFound renders the error page for a malformed id in the path.
func (r *Renderer) notFound(c *gin.Context, active string) {
	r.fail(c, active, &backend.APIError{
		Method: c.Request.Method,
		Path:   c.Request.URL.Path,
		Status: http.StatusNotFound,
		Detail: "Not found.",
	})
}

// attachment streams a backend download to the browser as a file.
func attachment(c *gin.Context, d *backend.Download) {
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(d.Filename)+"; filename=\""+asciiName(d.Filename)+"\"")
	c.Data(http.StatusOK, d.ContentType, d.Body)
}

func asciiName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// pager turns a backend page envelope into the pager partial's view.
func pager[T any](pg models.Page[T], p paging.Params) paging.View {
	return paging.NewView(p.Page, paging.Resolve(pg, p.PerPage))
}
