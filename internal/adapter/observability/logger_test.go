package observability

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-simulator/internal/config"
)

func TestSetupLogger_DevAndProd(t *testing.T) {
	lg := SetupLogger(config.Config{AppEnv: "dev", OTELServiceName: "svc"})
	require.NotNil(t, lg)
	lg2 := SetupLogger(config.Config{AppEnv: "prod", OTELServiceName: "svc"})
	require.NotNil(t, lg2)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		cfg  config.Config
		want slog.Level
	}{
		{config.Config{AppEnv: "dev"}, slog.LevelDebug},
		{config.Config{AppEnv: "prod"}, slog.LevelInfo},
		{config.Config{AppEnv: "dev", LogLevel: "warn"}, slog.LevelWarn},
		{config.Config{AppEnv: "prod", LogLevel: "ERROR"}, slog.LevelError},
		{config.Config{AppEnv: "prod", LogLevel: "bogus"}, slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.cfg), "%+v", tt.cfg)
	}
}
