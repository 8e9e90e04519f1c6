package handlers

import (
	"net/http"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/mssola/user_agent"
	"gorm.io/gorm"

	"porchlight/internal/api/middleware"
	"porchlight/internal/config"
	"porchlight/internal/models"
	"porchlight/internal/utils/logger"
)

// AuthHandler implements sign-up, log-in and log-out on top of the Firebase
// Admin SDK. Passwords never touch this service: sign-up delegates credential
// storage to Firebase, log-in exchanges a client-side ID token for a session
// cookie.
type AuthHandler struct {
	db      *gorm.DB
	client  *auth.Client
	session config.SessionConfig
	log     *logger.Logger
}

func NewAuthHandler(db *gorm.DB, client *auth.Client, session config.SessionConfig) *AuthHandler {
	return &AuthHandler{
		db:      db,
		client:  client,
		session: session,
		log:     logger.New("auth_handler"),
	}
}

type SignUpRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
}

type LogInRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// SignUp creates a Firebase account and the matching local profile row.
func (h *AuthHandler) SignUp(c echo.Context) error {
	if h.client == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Authentication is not configured"})
	}

	var req SignUpRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ctx := c.Request().Context()

	params := (&auth.UserToCreate{}).
		Email(req.Email).
		Password(req.Password).
		DisplayName(req.FirstName + " " + req.LastName)

	record, err := h.client.CreateUser(ctx, params)
	if err != nil {
		// Firebase rejects duplicates and weak passwords; details stay in logs
		_ = h.log.Error("failed to create Firebase user", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Could not create account"})
	}

	// New accounts start as residents; the role claim drives authorization
	claims := map[string]interface{}{"role": string(models.UserRoleResident)}
	if err := h.client.SetCustomUserClaims(ctx, record.UID, claims); err != nil {
		_ = h.log.Error("failed to set role claim", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Could not create account"})
	}

	user := models.User{
		FirebaseUID: record.UID,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Role:        models.UserRoleResident,
	}
	if err := h.db.Create(&user).Error; err != nil {
		_ = h.log.Error("failed to create local user row", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Could not create account"})
	}

	h.log.Success("registered user %s", record.UID)
	return c.JSON(http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

// LogIn verifies a Firebase ID token, mints a session cookie and records the
// sign-in with device information.
func (h *AuthHandler) LogIn(c echo.Context) error {
	if h.client == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Authentication is not configured"})
	}
	if h.session.CookieName == "" {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Session login is not configured"})
	}

	var req LogInRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ctx := c.Request().Context()

	decoded, err := h.client.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
	}

	// Resolve the local profile before minting anything: a failed login must
	// not leave a valid session cookie behind
	user, err := h.userByUID(decoded.UID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
	}

	cookieValue, err := h.client.SessionCookie(ctx, req.IDToken, h.session.TTL)
	if err != nil {
		_ = h.log.Error("failed to mint session cookie", err)
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
	}

	c.SetCookie(&http.Cookie{
		Name:     h.session.CookieName,
		Value:    cookieValue,
		Path:     "/",
		MaxAge:   int(h.session.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.session.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	h.recordSignIn(c, user)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Logged in",
		"user":    user,
	})
}

// LogOut revokes the caller's refresh tokens and clears the session cookie.
// Revocation invalidates every session cookie for the account, not just this
// browser's.
func (h *AuthHandler) LogOut(c echo.Context) error {
	if h.client == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Authentication is not configured"})
	}

	cookie, err := c.Cookie(h.session.CookieName)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Not logged in"})
	}

	ctx := c.Request().Context()

	decoded, err := h.client.VerifySessionCookie(ctx, cookie.Value)
	if err == nil {
		if err := h.client.RevokeRefreshTokens(ctx, decoded.UID); err != nil {
			_ = h.log.Error("failed to revoke refresh tokens", err)
		}
	}

	c.SetCookie(&http.Cookie{
		Name:     h.session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.session.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out"})
}

// GetMe returns the current user's local profile.
func (h *AuthHandler) GetMe(c echo.Context) error {
	user, err := h.userByUID(middleware.GetUID(c))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "User not found"})
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) userByUID(uid string) (*models.User, error) {
	var user models.User
	if err := h.db.Where("firebase_uid = ?", uid).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (h *AuthHandler) recordSignIn(c echo.Context, user *models.User) {
	rawUA := c.Request().UserAgent()
	ua := user_agent.New(rawUA)
	browser, _ := ua.Browser()

	signIn := models.SignIn{
		UserID:    user.ID,
		IPAddress: c.RealIP(),
		UserAgent: rawUA,
		Browser:   browser,
		Platform:  ua.Platform(),
		Mobile:    ua.Mobile(),
		ExpiresAt: time.Now().Add(h.session.TTL),
	}
	if err := h.db.Create(&signIn).Error; err != nil {
		_ = h.log.Error("failed to record sign-in", err)
	}
}
