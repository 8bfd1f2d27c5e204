package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"droplab.ru/points-bot/internal/config"
	"droplab.ru/points-bot/internal/features/reconcile"
	"droplab.ru/points-bot/internal/features/verification"
)

func TestRequireCronSecret(t *testing.T) {
	e := echo.New()
	h := requireCronSecret("секрет")(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "без заголовка", header: "", want: http.StatusUnauthorized},
		{name: "не bearer", header: "Basic секрет", want: http.StatusUnauthorized},
		{name: "неверный токен", header: "Bearer другой", want: http.StatusUnauthorized},
		{name: "верный токен", header: "Bearer секрет", want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/cron/verify-reactions", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			if err := h(e.NewContext(req, rec)); err != nil {
				t.Fatalf("обработчик вернул ошибку: %v", err)
			}
			if rec.Code != tt.want {
				t.Errorf("код ответа = %d, ожидалось %d", rec.Code, tt.want)
			}
		})
	}
}

// Остановка сервера — штатное завершение, Start не должен отдавать
// http.ErrServerClosed наверх.
func TestStartReturnsNilAfterShutdown(t *testing.T) {
	cfg := &config.Config{HTTPAddr: "127.0.0.1:0", CronSecret: "секрет"}
	srv := New(cfg,
		reconcile.NewHandler(nil),
		verification.NewHandler(nil, nil),
		verification.NewAuth(nil, ""))

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	// Даём серверу подняться
	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	if err := <-done; err != nil {
		t.Errorf("Start после Shutdown должен вернуть nil, получено: %v", err)
	}
}
