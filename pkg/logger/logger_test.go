package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/class-scheduler-api/pkg/config"
	"github.com/noah-isme/class-scheduler-api/pkg/middleware/requestid"
)

func TestNewFallsBackToInfoLevel(t *testing.T) {
	l, err := New(&config.Config{Env: config.EnvDevelopment, Log: config.LogConfig{Level: "loud", Format: "console"}})
	require.NoError(t, err)

	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
}

func TestGinMiddlewareLevelsAndSkips(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)

	router := gin.New()
	router.Use(requestid.Middleware())
	router.Use(GinMiddleware(zap.New(core), "/health"))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/schedules/:id", func(c *gin.Context) {
		_ = c.Error(errors.New("schedule missing"))
		c.Status(http.StatusNotFound)
	})

	for _, target := range []string{"/health", "/schedules/abc", "/nowhere"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	entries := logs.All()
	require.Len(t, entries, 2)

	notFound := entries[0]
	assert.Equal(t, zapcore.WarnLevel, notFound.Level)
	fields := notFound.ContextMap()
	assert.Equal(t, "/schedules/:id", fields["route"])
	assert.Contains(t, fields["errors"], "schedule missing")
	assert.NotEmpty(t, fields["request_id"])

	assert.Equal(t, "unmatched", entries[1].ContextMap()["route"])
}

func TestWithContextAddsRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := requestid.WithValue(context.Background(), "req-7")

	WithContext(ctx, zap.New(core)).Info("generating")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "req-7", logs.All()[0].ContextMap()["request_id"])
	assert.NotNil(t, WithContext(ctx, nil))
}
