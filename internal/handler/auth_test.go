package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"buyback-pos/internal/middleware"
	"buyback-pos/internal/models"
	"buyback-pos/internal/repository"
	"buyback-pos/internal/utils"
	"buyback-pos/internal/view"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOperators struct {
	users    map[string]*models.User
	logins   int
	logouts  int
	newHash  string
	hashedID uint
}

func (f *fakeOperators) FindByEmployeeID(_ context.Context, employeeID string) (*models.User, error) {
	u, ok := f.users[employeeID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeOperators) FindByID(_ context.Context, id uint) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeOperators) SetPasswordHash(_ context.Context, id uint, hash string) error {
	f.hashedID, f.newHash = id, hash
	return nil
}

func (f *fakeOperators) RecordLogin(_ context.Context, userID uint, _ string) (*models.LoginHistory, error) {
	f.logins++
	return &models.LoginHistory{UserID: userID}, nil
}

func (f *fakeOperators) RecordLogout(context.Context, uint) error {
	f.logouts++
	return nil
}

func newAuthRouter(t *testing.T) (*gin.Engine, *fakeOperators, *utils.TokenIssuer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := utils.HashPassword("secret1")
	require.NoError(t, err)
	ops := &fakeOperators{users: map[string]*models.User{
		"BIL001": {ID: 7, EmployeeID: "BIL001", Username: "Nok", PasswordHash: hash, IsActive: true, Role: models.Role{Name: models.RoleBiller}},
		"INV009": {ID: 9, EmployeeID: "INV009", Username: "Off", PasswordHash: hash, IsActive: false, Role: models.Role{Name: models.RoleInventory}},
	}}

	engine, err := view.New(view.Funcs(fakeAssets{}))
	require.NoError(t, err)
	tokens := utils.NewTokenIssuer("test-secret", 1)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := gin.New()
	r.HTMLRender = engine
	h := &Handlers{Auth: NewAuthHandler(NewRenderer(models.SiteInfo{}, 20, logger), ops, tokens, false)}
	h.Register(r, tokens)
	return r, ops, tokens
}

type fakeAssets struct{}

func (fakeAssets) AssetURL(p string) string        { return p }
func (fakeAssets) ProductImageURL(p string) string { return p }

func postForm(r *gin.Engine, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginFormSetsSessionAndGoesHome(t *testing.T) {
	r, ops, tokens := newAuthRouter(t)

	w := postForm(r, "/login", url.Values{"employee_id": {"BIL001"}, "password": {"secret1"}})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/purchase", w.Header().Get("Location"))
	assert.Equal(t, 1, ops.logins)

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)
	claims, err := tokens.ValidateToken(session.Value)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, models.RoleBiller, claims.Role)
}

func TestLoginFormHonoursNext(t *testing.T) {
	r, _, _ := newAuthRouter(t)

	w := postForm(r, "/login", url.Values{"employee_id": {"BIL001"}, "password": {"secret1"}, "next": {"/receipts?page=2"}})
	assert.Equal(t, "/receipts?page=2", w.Header().Get("Location"))

	w = postForm(r, "/login", url.Values{"employee_id": {"BIL001"}, "password": {"secret1"}, "next": {"//evil.example"}})
	assert.Equal(t, "/purchase", w.Header().Get("Location"))
}

func TestLoginFormRejections(t *testing.T) {
	r, ops, _ := newAuthRouter(t)

	w := postForm(r, "/login", url.Values{"employee_id": {"BIL001"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")
	assert.Contains(t, w.Body.String(), `value="BIL001"`)

	w = postForm(r, "/login", url.Values{"employee_id": {"INV009"}, "password": {"secret1"}})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "User is inactive")

	w = postForm(r, "/login", url.Values{"employee_id": {""}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, ops.logins)
}

func TestPasswordFormChecksCurrent(t *testing.T) {
	r, ops, tokens := newAuthRouter(t)
	token, err := tokens.GenerateToken(7, "Nok", models.RoleBiller)
	require.NoError(t, err)
	session := &http.Cookie{Name: middleware.SessionCookie, Value: token}

	w := postForm(r, "/account/password", url.Values{"current": {"nope"}, "password": {"newpass1"}, "confirm": {"newpass1"}}, session)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "The current password is wrong")
	assert.Empty(t, ops.newHash)

	w = postForm(r, "/account/password", url.Values{"current": {"secret1"}, "password": {"newpass1"}, "confirm": {"other"}}, session)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Empty(t, ops.newHash)

	w = postForm(r, "/account/password", url.Values{"current": {"secret1"}, "password": {"newpass1"}, "confirm": {"newpass1"}}, session)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, uint(7), ops.hashedID)
	assert.True(t, utils.CheckPasswordHash("newpass1", ops.newHash))
}

func TestLogoutClearsSession(t *testing.T) {
	r, ops, tokens := newAuthRouter(t)
	token, err := tokens.GenerateToken(7, "Nok", models.RoleBiller)
	require.NoError(t, err)

	w := postForm(r, "/logout", url.Values{}, &http.Cookie{Name: middleware.SessionCookie, Value: token})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Equal(t, 1, ops.logouts)
	assert.Contains(t, w.Header().Get("Set-Cookie"), middleware.SessionCookie+"=;")
}
