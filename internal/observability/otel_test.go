package observability

import (
	"testing"

	"github.com/koopa0/codescope/internal/log"
)

func TestSetupDefaultEndpoint(t *testing.T) {
	shutdown, err := Setup(t.Context(), Config{
		Environment: "test",
		ServiceName: "test-service",
	}, log.NewNop())
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if shutdown == nil {
		t.Fatal("Setup returned nil shutdown")
	}
	if err := shutdown(t.Context()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestSetupCustomEndpoint(t *testing.T) {
	shutdown, err := Setup(t.Context(), Config{
		Endpoint:    "localhost:14318",
		Environment: "staging",
		ServiceName: "custom-service",
	}, log.NewNop())
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := shutdown(t.Context()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestSetupNilLogger(t *testing.T) {
	shutdown, err := Setup(t.Context(), Config{}, nil)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := shutdown(t.Context()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}
