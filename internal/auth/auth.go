package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"vibelearner/internal/config"
	"vibelearner/internal/logger"
	"vibelearner/internal/store"
	"vibelearner/pkg/validation"
)

type contextKey string

const UserContextKey contextKey = "user"

// UserID extracts the authenticated user id placed in the request
// context by Middleware
func UserID(ctx context.Context) string {
	uid, _ := ctx.Value(UserContextKey).(string)
	return uid
}

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// sendError sends a standardized JSON error response
func sendError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	errResp := ErrorResponse{
		Code:    status,
		Message: message,
	}
	if err != nil {
		errResp.Error = err.Error()
	}
	json.NewEncoder(w).Encode(errResp)
}

// AuthHandlers serves registration and login against the profile
// documents in the document store
type AuthHandlers struct {
	store     store.Store
	secret    []byte
	expiry    time.Duration
	validator *validation.AuthRequestValidator
}

// NewAuthHandlers creates AuthHandlers with the configured signing key
func NewAuthHandlers(st store.Store, cfg *config.AuthConfig) *AuthHandlers {
	return &AuthHandlers{
		store:     st,
		secret:    cfg.JWTSecret,
		expiry:    cfg.TokenExpiration,
		validator: validation.NewAuthRequestValidator(),
	}
}

func (h *AuthHandlers) GenerateToken(userID string) (string, error) {
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(h.expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.secret)
}

func (h *AuthHandlers) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return h.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}

// RegisterHandler creates a new user profile document with a hashed
// password and a zeroed usage counter
func (h *AuthHandlers) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.validator.ValidateEmail(req.Email); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid email", err)
		return
	}
	if err := h.validator.ValidatePassword(req.Password); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid password", err)
		return
	}
	if err := h.validator.ValidateDisplayName(req.DisplayName); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid display name", err)
		return
	}

	// No uniqueness constraint exists on email in the document store, so
	// two concurrent registrations can both pass this check; login then
	// matches whichever profile the Limit(1) query returns first.
	if _, err := h.store.GetProfileByEmail(r.Context(), req.Email); err == nil {
		sendError(w, http.StatusConflict, "Email already registered", nil)
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		logger.Log.Errorf("Registration lookup failed: %v", err)
		sendError(w, http.StatusInternalServerError, "Error creating user", nil)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "Error creating user", err)
		return
	}

	uid := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)
	err = h.store.UpsertProfile(r.Context(), uid, map[string]interface{}{
		"uid":            uid,
		"email":          req.Email,
		"displayName":    req.DisplayName,
		"passwordHash":   string(hash),
		"chatsRemaining": 0,
		"createdAt":      now,
		"lastLoginAt":    now,
		"updatedAt":      now,
	})
	if err != nil {
		logger.Log.Errorf("Registration failed for %s: %v", req.Email, err)
		sendError(w, http.StatusInternalServerError, "Error creating user", err)
		return
	}

	token, err := h.GenerateToken(uid)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "Error generating token", err)
		return
	}

	logger.Log.WithField("user_id", uid).Info("User registered")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(TokenResponse{Token: token, UserID: uid})
}

// LoginHandler authenticates a user and returns a JWT token
func (h *AuthHandlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if req.Email == "" || req.Password == "" {
		sendError(w, http.StatusBadRequest, "Email and password are required", nil)
		return
	}

	profile, err := h.store.GetProfileByEmail(r.Context(), req.Email)
	if err != nil {
		logger.Log.WithField("email", req.Email).Warn("Login failed: user not found")
		sendError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)) != nil {
		logger.Log.WithField("user_id", profile.UID).Warn("Login failed: invalid password")
		sendError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	// Best-effort bookkeeping, a failed timestamp update must not block login
	now := time.Now().UTC().Format(time.RFC3339)
	if err := h.store.UpsertProfile(r.Context(), profile.UID, map[string]interface{}{
		"lastLoginAt": now,
		"updatedAt":   now,
	}); err != nil {
		logger.Log.WithField("user_id", profile.UID).Warnf("Failed to update lastLoginAt: %v", err)
	}

	token, err := h.GenerateToken(profile.UID)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "Error generating token", err)
		return
	}

	logger.Log.WithField("user_id", profile.UID).Info("User logged in")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(TokenResponse{Token: token, UserID: profile.UID})
}

// Middleware rejects requests without a valid Bearer token and places
// the authenticated user id in the request context
func (h *AuthHandlers) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			sendError(w, http.StatusUnauthorized, "Missing authorization header", nil)
			return
		}

		bearerToken := strings.Split(authHeader, " ")
		if len(bearerToken) != 2 || bearerToken[0] != "Bearer" {
			sendError(w, http.StatusUnauthorized, "Invalid authorization header format", nil)
			return
		}

		claims, err := h.ValidateToken(bearerToken[1])
		if err != nil {
			sendError(w, http.StatusUnauthorized, "Invalid token", err)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}
