package auth

import (
	"context"
	"testing"
	"time"
)

func TestNewRedisClient_BadURL(t *testing.T) {
	if _, err := NewRedisClient(context.Background(), "not-a-url"); err == nil {
		t.Error("expected parse error")
	}
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := NewRedisClient(ctx, "redis://127.0.0.1:1/0"); err == nil {
		t.Error("expected ping error")
	}
}
