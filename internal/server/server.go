// Package server поднимает HTTP-поверхность движка: крон-эндпоинт
// ночной сверки и админ-гейт верификации заданий.
package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"droplab.ru/points-bot/internal/config"
	"droplab.ru/points-bot/internal/features/reconcile"
	"droplab.ru/points-bot/internal/features/verification"
)

// Server — HTTP-сервер движка.
type Server struct {
	e    *echo.Echo
	addr string
}

// New создаёт и настраивает сервер с маршрутами.
func New(cfg *config.Config, reconcileHandler *reconcile.Handler, verificationHandler *verification.Handler, auth *verification.Auth) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Крон-эндпоинт защищён общим секретом:
	// авторизация проверяется до любого обращения к леджеру
	e.GET("/cron/verify-reactions", reconcileHandler.HandleSweep, requireCronSecret(cfg.CronSecret))

	// Админ-гейт: вход по паролю, остальное — по сессионному токену
	e.POST("/admin/login", verificationHandler.HandleLogin)
	admin := e.Group("/admin", requireAdminSession(auth))
	admin.POST("/verify-completion", verificationHandler.HandleVerifyCompletion)
	admin.GET("/completions/pending", verificationHandler.HandlePending)

	return &Server{e: e, addr: cfg.HTTPAddr}
}

// Start запускает сервер. Блокирует до Shutdown.
func (s *Server) Start() error {
	err := s.e.Start(s.addr)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown останавливает сервер, дожидаясь активных запросов.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

// requireCronSecret проверяет bearer-токен крон-эндпоинта.
// Сравнение в постоянном времени.
func requireCronSecret(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c)
			if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error":   "unauthorized",
					"message": "неверный крон-токен",
				})
			}
			return next(c)
		}
	}
}

// requireAdminSession проверяет сессионный токен администратора.
func requireAdminSession(auth *verification.Auth) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c)
			if !ok || !auth.SessionActive(c.Request().Context(), token) {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error":   "unauthorized",
					"message": "требуется активная сессия администратора",
				})
			}
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, bool) {
	authz := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(authz, "Bearer "), true
}
