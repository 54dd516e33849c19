package server

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/studyshelf/studyshelf/internal/model"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	ClassID  string `json:"classId"`
	Board    string `json:"board"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type authData struct {
	Token string            `json:"token"`
	User  model.UserProfile `json:"user"`
}

// handleRegister creates an account and opens a session
func (s *Server) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request")
	}

	if req.Name == "" || req.Phone == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "Name, phone, and password are required")
	}
	if !model.ValidPhone(req.Phone) {
		return fail(c, http.StatusBadRequest, "Invalid phone number")
	}
	if req.Email != "" && !model.ValidEmail(req.Email) {
		return fail(c, http.StatusBadRequest, "Invalid email address")
	}
	if len(req.Password) < 8 {
		return fail(c, http.StatusBadRequest, "Password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.Logger().Error("bcrypt error:", err)
		return fail(c, http.StatusInternalServerError, "Internal error")
	}

	var userID string
	err = s.db.QueryRow(`
		INSERT INTO users (name, email, phone, class_id, board, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		req.Name, req.Email, req.Phone, req.ClassID, req.Board, string(hash),
	).Scan(&userID)

	if err != nil {
		if strings.Contains(err.Error(), "unique") {
			return fail(c, http.StatusConflict, "An account with this phone or email already exists")
		}
		c.Logger().Error("db error:", err)
		return fail(c, http.StatusInternalServerError, "Internal error")
	}

	token, err := s.createSession(userID)
	if err != nil {
		c.Logger().Error("session error:", err)
		return fail(c, http.StatusInternalServerError, "Internal error")
	}

	user := model.UserProfile{
		ID: userID, Name: req.Name, Email: req.Email,
		Phone: req.Phone, ClassID: req.ClassID, Board: req.Board,
	}
	return ok(c, authData{Token: token, User: user})
}

// handleLogin authenticates by phone or email
func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request")
	}

	var row *sql.Row
	switch {
	case req.Phone != "":
		row = s.db.QueryRow(`
			SELECT id, name, email, phone, class_id, board, password_hash
			FROM users WHERE phone = $1`, req.Phone)
	case req.Email != "":
		row = s.db.QueryRow(`
			SELECT id, name, email, phone, class_id, board, password_hash
			FROM users WHERE email = $1`, req.Email)
	default:
		return fail(c, http.StatusBadRequest, "Phone or email is required")
	}

	var user model.UserProfile
	var passwordHash string
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Phone,
		&user.ClassID, &user.Board, &passwordHash); err != nil {
		return fail(c, http.StatusUnauthorized, "Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
		return fail(c, http.StatusUnauthorized, "Invalid credentials")
	}

	token, err := s.createSession(user.ID)
	if err != nil {
		c.Logger().Error("session error:", err)
		return fail(c, http.StatusInternalServerError, "Internal error")
	}

	return ok(c, authData{Token: token, User: user})
}

// handleMe returns the current profile
func (s *Server) handleMe(c echo.Context) error {
	userID := c.Get("user_id").(string)

	var user model.UserProfile
	err := s.db.QueryRow(`
		SELECT id, name, email, phone, class_id, board
		FROM users WHERE id = $1`, userID,
	).Scan(&user.ID, &user.Name, &user.Email, &user.Phone, &user.ClassID, &user.Board)

	if err != nil {
		return fail(c, http.StatusNotFound, "User not found")
	}
	return ok(c, user)
}

// handleUpdateProfile replaces the profile fields
func (s *Server) handleUpdateProfile(c echo.Context) error {
	userID := c.Get("user_id").(string)

	var req model.UserProfile
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request")
	}
	if errs := model.ValidateProfile(req); len(errs) > 0 {
		for _, msg := range errs {
			return fail(c, http.StatusBadRequest, msg)
		}
	}

	_, err := s.db.Exec(`
		UPDATE users SET name = $1, email = $2, phone = $3,
			class_id = $4, board = $5, updated_at = NOW()
		WHERE id = $6`,
		req.Name, req.Email, req.Phone, req.ClassID, req.Board, userID)
	if err != nil {
		if strings.Contains(err.Error(), "unique") {
			return fail(c, http.StatusConflict, "An account with this phone or email already exists")
		}
		c.Logger().Error("db error:", err)
		return fail(c, http.StatusInternalServerError, "Internal error")
	}

	req.ID = userID
	return ok(c, req)
}

// createSession creates a new session for a user
func (s *Server) createSession(userID string) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	// Sessions expire in 30 days
	expiresAt := time.Now().Add(30 * 24 * time.Hour)

	_, err := s.db.Exec(`
		INSERT INTO sessions (user_id, token, expires_at)
		VALUES ($1, $2, $3)`,
		userID, token, expiresAt)

	return token, err
}

// authMiddleware checks for a valid session token
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		auth := c.Request().Header.Get("Authorization")
		if auth == "" {
			return fail(c, http.StatusUnauthorized, "Authorization required")
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth {
			return fail(c, http.StatusUnauthorized, "Invalid authorization format")
		}

		var userID string
		var expiresAt time.Time
		err := s.db.QueryRow(`
			SELECT user_id, expires_at FROM sessions WHERE token = $1`,
			token,
		).Scan(&userID, &expiresAt)
		if err != nil {
			return fail(c, http.StatusUnauthorized, "Invalid token")
		}

		if time.Now().After(expiresAt) {
			return fail(c, http.StatusUnauthorized, "Session expired")
		}

		c.Set("user_id", userID)
		return next(c)
	}
}
