package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/linkup/backend/internal/middleware"
	"github.com/anonto42/linkup/backend/internal/models"
	"github.com/anonto42/linkup/backend/internal/repositories"
	"github.com/anonto42/linkup/backend/pkg/logger"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// TokenTTL is the lifetime of a locally issued session token.
const TokenTTL = 7 * 24 * time.Hour

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository       repositories.UserRepository
	credentialRepository repositories.CredentialRepository
	jwtSecret            string
	now                  func() time.Time
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repositories.UserRepository, credentialRepo repositories.CredentialRepository, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		userRepository:       userRepo,
		credentialRepository: credentialRepo,
		jwtSecret:            jwtSecret,
		now:                  time.Now,
	}
}

// RegisterAuthRoutes registers the unauthenticated login routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, firebaseAuth echo.MiddlewareFunc) {
	g.POST("/signup", h.Signup)
	g.POST("/login", h.Login)
	g.POST("/firebase-login", h.FirebaseLogin, firebaseAuth)
}

// RegisterAccountRoutes registers the caller's own account routes
func (h *AuthHandler) RegisterAccountRoutes(g *echo.Group) {
	g.GET("/auth/user", h.GetCurrentUser)
	g.PUT("/auth/user", h.UpdateCurrentUser)
}

// Signup handles local user registration with email and password
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	userID := uuid.NewString()
	if err := h.credentialRepository.CreateCredential(ctx, userID, req.Email, string(hashedPassword)); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return echo.NewHTTPError(http.StatusConflict, "User with this email already registered")
		}
		return storeError(c, err)
	}

	user, err := h.userRepository.UpsertUser(ctx, models.UpsertUser{
		ID:        userID,
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		if derr := h.credentialRepository.DeleteCredential(ctx, userID); derr != nil {
			logger.FromContext(ctx).Error().Err(derr).Str(logger.FieldUserID, userID).Msg("credential stored without profile")
		}
		if errors.Is(err, repositories.ErrConflict) {
			return echo.NewHTTPError(http.StatusConflict, "User with this email already registered")
		}
		return storeError(c, err)
	}

	return h.respondWithToken(c, http.StatusCreated, "User registered successfully", *user)
}

// Login handles local user authentication with email and password
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	cred, err := h.credentialRepository.GetCredentialByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
		}
		return storeError(c, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	user, err := h.userRepository.GetUserByID(ctx, cred.UserID)
	if err != nil {
		return storeError(c, err)
	}
	if user.Status != models.StatusActive {
		return echo.NewHTTPError(http.StatusForbidden, "Account is "+user.Status)
	}

	return h.respondWithToken(c, http.StatusOK, "Login successful", *user)
}

// FirebaseLogin syncs the Firebase user into the users collection and issues
// a local session token. The ID token was verified by FirebaseAuthMiddleware.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	token, ok := c.Get(middleware.FirebaseTokenKey).(*auth.Token)
	if !ok || token.UID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing Firebase token")
	}

	in := models.UpsertUser{ID: token.UID}
	in.Email, _ = token.Claims["email"].(string)
	in.ProfileImageURL, _ = token.Claims["picture"].(string)
	if name, _ := token.Claims["name"].(string); name != "" {
		in.FirstName, in.LastName, _ = strings.Cut(name, " ")
	}

	user, err := h.userRepository.UpsertUser(c.Request().Context(), in)
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return echo.NewHTTPError(http.StatusConflict, "Email is registered to another account")
		}
		return storeError(c, err)
	}
	if user.Status != models.StatusActive {
		return echo.NewHTTPError(http.StatusForbidden, "Account is "+user.Status)
	}
	return h.respondWithToken(c, http.StatusOK, "Login successful", *user)
}

// GetCurrentUser returns the caller's user document
func (h *AuthHandler) GetCurrentUser(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}
	user, err := h.userRepository.GetUserByID(c.Request().Context(), id.UserID)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateCurrentUser edits the caller's profile fields
func (h *AuthHandler) UpdateCurrentUser(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.IsEmpty() {
		return echo.NewHTTPError(http.StatusBadRequest, "No profile fields to update")
	}

	user, err := h.userRepository.UpdateProfile(c.Request().Context(), id.UserID, req)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(c echo.Context, status int, message string, user models.User) error {
	token, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}
	return c.JSON(status, models.AuthResponse{Message: message, User: user, Token: token})
}

// generateJWT signs an HS256 token for the user
func (h *AuthHandler) generateJWT(user models.User) (string, error) {
	now := h.now()
	claims := &models.JwtCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.jwtSecret))
}
