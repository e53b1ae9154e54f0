package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPLogger(t *testing.T) {
	tests := []struct {
		name      string
		handler   echo.HandlerFunc
		wantCode  int
		wantLevel logrus.Level
	}{
		{
			name:      "성공: 2xx는 Debug",
			handler:   func(c echo.Context) error { return c.String(http.StatusOK, "ok") },
			wantCode:  http.StatusOK,
			wantLevel: logrus.DebugLevel,
		},
		{
			name:      "실패: 에러 응답은 Info",
			handler:   func(c echo.Context) error { return echo.NewHTTPError(http.StatusServiceUnavailable, "draining") },
			wantCode:  http.StatusServiceUnavailable,
			wantLevel: logrus.InfoLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hook := captureLogs(t)

			e := echo.New()
			e.Use(HTTPLogger())
			e.GET("/health", tt.handler)

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health?x=1", nil))

			assert.Equal(t, tt.wantCode, rec.Code)

			entry := hook.LastEntry()
			require.NotNil(t, entry)
			assert.Equal(t, tt.wantLevel, entry.Level)
			assert.Equal(t, "HTTP 요청", entry.Message)
			assert.Equal(t, http.MethodGet, entry.Data["method"])
			assert.Equal(t, "/health?x=1", entry.Data["uri"])
			assert.Equal(t, tt.wantCode, entry.Data["status"])
			assert.Equal(t, "api.http", entry.Data["component"])
		})
	}
}
