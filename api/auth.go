package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/gulf-dental-association/member-portal/users"
)

const (
	sessionCookieName = "gda_token"
	sessionDuration   = 7 * 24 * time.Hour
)

func (a *API) mintSessionToken(userID uuid.UUID, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sessionDuration)),
	})
	return token.SignedString(a.jwtSecret)
}

func (a *API) parseSessionToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return uuid.Nil, errors.New("token has no subject")
	}
	return uuid.Parse(claims.Subject)
}

func (a *API) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   a.env == PROD,
		SameSite: http.SameSiteLaxMode,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	FullName       string    `json:"fullName"`
	Role           string    `json:"role"`
	MembershipType string    `json:"membershipType"`
}

func userToAPIUser(user users.User) userResponse {
	return userResponse{
		ID:             user.ID,
		Email:          user.Email,
		FullName:       user.FullName,
		Role:           string(user.Role),
		MembershipType: string(user.MembershipType),
	}
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		a.writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := a.db.GetUserByEmail(r.Context(), strings.ToLower(req.Email))
	if err != nil {
		var userErr *users.Error
		if errors.As(err, &userErr) && userErr.Reason == users.REASON_USER_DOES_NOT_EXIST {
			a.writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		a.logger.Error("Failed to fetch user for login", "error", err)
		a.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		a.writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	now := time.Now()
	token, err := a.mintSessionToken(user.ID, now)
	if err != nil {
		a.logger.Error("Failed to mint session token", "error", err)
		a.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	a.setSessionCookie(w, token, now.Add(sessionDuration))

	a.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    userToAPIUser(user),
	})
}

func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.env == PROD,
		SameSite: http.SameSiteLaxMode,
	})
	a.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (a *API) me(w http.ResponseWriter, r *http.Request) {
	user, ok := getUserFromCtx(r.Context())
	if !ok {
		a.writeJSON(w, http.StatusOK, map[string]any{"user": nil})
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]any{"user": userToAPIUser(user)})
}
