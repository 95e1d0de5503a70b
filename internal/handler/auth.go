package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"buyback-pos/internal/middleware"
	"buyback-pos/internal/models"
	"buyback-pos/internal/repository"
	"buyback-pos/internal/utils"

	"github.com/gin-gonic/gin"
)

// OperatorAccounts is the part of the operator store that login and
// password changes use.
type OperatorAccounts interface {
	FindByEmployeeID(ctx context.Context, employeeID string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	SetPasswordHash(ctx context.Context, id uint, hash string) error
	RecordLogin(ctx context.Context, userID uint, ip string) (*models.LoginHistory, error)
	RecordLogout(ctx context.Context, userID uint) error
}

type TokenSigner interface {
	GenerateToken(userID uint, username, role string) (string, error)
}

type LoginRequest struct {
	EmployeeID string `json:"employee_id" form:"employee_id" binding:"required"`
	Password   string `json:"password" form:"password" binding:"required"`
}

type AuthHandler struct {
	*Renderer
	users        OperatorAccounts
	tokens       TokenSigner
	secureCookie bool
	cookieMaxAge int
}

func NewAuthHandler(r *Renderer, users OperatorAccounts, tokens *utils.TokenIssuer, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		Renderer:     r,
		users:        users,
		tokens:       tokens,
		secureCookie: secureCookie,
		cookieMaxAge: int(tokens.TTL().Seconds()),
	}
}

// authError is a refusal whose message is shown to the operator as is.
type authError struct {
	status int
	msg    string
}

func (e *authError) Error() string { return e.msg }

var (
	errInvalidCredentials = &authError{http.StatusUnauthorized, "Invalid credentials"}
	errInactive           = &authError{http.StatusForbidden, "User is inactive"}
	errShortPassword      = &authError{http.StatusUnprocessableEntity, "The new password needs at least 6 characters"}
	errWrongPassword      = &authError{http.StatusUnprocessableEntity, "The current password is wrong"}
)

// authMessage returns the status and text for err; anything that is not
// an authError is reported generically.
func authMessage(err error) (int, string) {
	var aErr *authError
	if errors.As(err, &aErr) {
		return aErr.status, aErr.msg
	}
	return http.StatusInternalServerError, "Something went wrong. Please try again."
}

// authenticate checks the credentials and issues a session token.
func (h *AuthHandler) authenticate(c *gin.Context, req LoginRequest) (*models.User, string, error) {
	ctx := c.Request.Context()
	user, err := h.users.FindByEmployeeID(ctx, req.EmployeeID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", errInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if !user.IsActive {
		return nil, "", errInactive
	}
	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, "", errInvalidCredentials
	}

	token, err := h.tokens.GenerateToken(user.ID, user.Username, user.Role.Name)
	if err != nil {
		return nil, "", err
	}
	if _, err := h.users.RecordLogin(ctx, user.ID, c.ClientIP()); err != nil {
		h.Logger.Warn("login history not stored", "user_id", user.ID, "error", err)
	}
	return user, token, nil
}

// Login is the JSON login kept for scripts and the admin API.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.authenticate(c, req)
	if err != nil {
		status, msg := authMessage(err)
		h.log(c, status, err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"id":       user.ID,
		"username": user.Username,
		"role":     user.Role.Name,
	})
}

type loginPage struct {
	EmployeeID string
	Next       string
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	h.render(c, http.StatusOK, "login", "Sign in", "", loginPage{Next: localPath(c.Query("next"), "")})
}

// LoginForm signs the operator in from the login page and sets the session
// cookie.
func (h *AuthHandler) LoginForm(c *gin.Context) {
	var req LoginRequest
	next := localPath(c.PostForm("next"), "")
	data := loginPage{EmployeeID: strings.TrimSpace(c.PostForm("employee_id")), Next: next}

	if err := c.ShouldBind(&req); err != nil {
		p := h.page(c, "Sign in", "", data)
		p.Error = "Enter your employee ID and password."
		c.HTML(http.StatusBadRequest, "login", p)
		return
	}

	user, token, err := h.authenticate(c, req)
	if err != nil {
		status, msg := authMessage(err)
		h.log(c, status, err)
		p := h.page(c, "Sign in", "", data)
		p.Error = msg
		c.HTML(status, "login", p)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, h.cookieMaxAge, "/", "", h.secureCookie, true)
	if next == "" || next == "/login" {
		next = middleware.HomeFor(user.Role.Name)
	}
	c.Redirect(http.StatusSeeOther, next)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if id, ok := c.Get(middleware.ContextUserID); ok {
		uid, _ := id.(uint)
		if err := h.users.RecordLogout(c.Request.Context(), uid); err != nil && !errors.Is(err, repository.ErrNotFound) {
			h.Logger.Warn("logout not recorded", "user_id", uid, "error", err)
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secureCookie, true)
	c.Redirect(http.StatusSeeOther, "/login")
}

const minPasswordLength = 6

// changePassword stores a new password. The page form also proves the
// current one; the JSON API relies on the session alone.
func (h *AuthHandler) changePassword(ctx context.Context, userID uint, current, password string, checkCurrent bool) error {
	if len(password) < minPasswordLength {
		return errShortPassword
	}
	if checkCurrent {
		user, err := h.users.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if !utils.CheckPasswordHash(current, user.PasswordHash) {
			return errWrongPassword
		}
	}
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	return h.users.SetPasswordHash(ctx, userID, hashedPassword)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.changePassword(c.Request.Context(), userID, "", req.Password, false); err != nil {
		status, msg := authMessage(err)
		h.log(c, status, err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

func (h *AuthHandler) PasswordPage(c *gin.Context) {
	h.render(c, http.StatusOK, "password", "Change password", "", nil)
}

func (h *AuthHandler) PasswordForm(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	password := c.PostForm("password")
	if password != c.PostForm("confirm") {
		p := h.page(c, "Change password", "", nil)
		p.Error = "The two new passwords do not match."
		c.HTML(http.StatusUnprocessableEntity, "password", p)
		return
	}
	if err := h.changePassword(c.Request.Context(), userID, c.PostForm("current"), password, true); err != nil {
		status, msg := authMessage(err)
		h.log(c, status, err)
		p := h.page(c, "Change password", "", nil)
		p.Error = msg
		c.HTML(status, "password", p)
		return
	}
	redirectFlash(c, "/account/password", "Password updated.")
}
