// Package server is a small reference backend for the StudyShelf
// client. It speaks the same envelope the client expects:
//
//	{ "success": bool, "message": string, "data": ... }
//
// It is meant for local development and demos, not production traffic.
package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"

	"github.com/studyshelf/studyshelf/internal/logger"
)

// Server is the demo marketplace backend
type Server struct {
	db   *sql.DB
	echo *echo.Echo
}

// New connects to Postgres, runs migrations, and wires the routes
func New(dbURL string) (*Server, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &Server{db: db}

	if err := s.migrate(); err != nil {
		return nil, err
	}
	if err := s.seedContent(); err != nil {
		return nil, err
	}

	s.setupEcho()

	return s, nil
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true

	// Custom logging middleware
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)

			res := c.Response()
			duration := time.Since(start)

			logger.Info("HTTP",
				logger.F("method", req.Method),
				logger.F("uri", req.RequestURI),
				logger.F("status", res.Status),
				logger.F("duration", duration.String()))

			fmt.Printf("REQUEST: %s %s  status=%d  duration=%s\n",
				req.Method, req.RequestURI, res.Status, duration)

			return err
		}
	})

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())

	e.GET("/health", s.handleHealth)

	// Public
	e.POST("/auth/register", s.handleRegister)
	e.POST("/auth/login", s.handleLogin)
	e.GET("/content", s.handleContent)
	e.GET("/content/:id", s.handleContentByID)
	e.GET("/pricing", s.handlePricing)

	// Protected
	protected := e.Group("")
	protected.Use(s.authMiddleware)
	protected.GET("/auth/me", s.handleMe)
	protected.PUT("/auth/update", s.handleUpdateProfile)
	protected.GET("/orders", s.handleListOrders)
	protected.POST("/orders", s.handleCreateOrder)
	protected.GET("/notifications", s.handleNotifications)

	s.echo = e
}

// Close closes the database connection
func (s *Server) Close() error {
	return s.db.Close()
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start starts the server
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) handleHealth(c echo.Context) error {
	return ok(c, map[string]string{"status": "ok"})
}

// envelope is the common response wrapper
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func ok(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, envelope{Success: false, Message: message})
}
