package observability

import (
	"context"
	"testing"

	"github.com/riskibarqy/playoff-pool/internal/config"
)

func TestInitUptrace_Disabled(t *testing.T) {
	cfg := config.Config{
		UptraceEnabled: false,
		ServiceName:    "playoff-pool-api",
		ServiceVersion: "dev",
		AppEnv:         config.EnvDev,
	}

	shutdown := InitUptrace(cfg, nil)
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown uptrace: %v", err)
	}
}
