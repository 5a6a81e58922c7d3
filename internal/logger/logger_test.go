package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestNewLogger_Environments(t *testing.T) {
	for _, env := range []string{"prod", "local", "dev", "docker"} {
		t.Run(env, func(t *testing.T) {
			l, err := NewLogger(env)
			if err != nil {
				t.Fatalf("NewLogger(%q): %v", env, err)
			}
			if l == nil {
				t.Fatal("expected a logger")
			}
		})
	}
}

func TestNewLogger_UnknownEnvironment(t *testing.T) {
	if _, err := NewLogger("staging"); err == nil {
		t.Fatal("expected an error for an unknown environment")
	}
}

func TestNewLogger_LevelOverride(t *testing.T) {
	l, err := NewLogger("local", "error")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if l.Core().Enabled(zap.InfoLevel) {
		t.Error("expected info to be disabled under the error override")
	}

	if _, err := NewLogger("local", "loud"); err == nil {
		t.Fatal("expected an error for an invalid level")
	}
}

func TestFromContext(t *testing.T) {
	base := zap.NewNop()
	ctx := ContextWithLogger(context.Background(), base)
	if got := FromContext(ctx); got != base {
		t.Error("expected the stored logger back")
	}
	if got := FromContext(context.Background()); got == nil {
		t.Error("expected a no-op logger, got nil")
	}
}