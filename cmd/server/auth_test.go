package main

import (
	"errors"
	"testing"
	"time"

	"github.com/Simplici0/gr24/internal/config"
)

func TestSessionValue(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	auth := newAuthService(nil, "secret")
	auth.now = func() time.Time { return now }

	value := auth.createSessionValue("admin@gr24.local")
	email, ok := auth.verifySessionValue(value)
	if !ok || email != "admin@gr24.local" {
		t.Fatalf("verify = %q, %v", email, ok)
	}

	other := newAuthService(nil, "other-secret")
	other.now = auth.now
	if _, ok := other.verifySessionValue(value); ok {
		t.Fatalf("expected value signed with another secret to fail")
	}

	if _, ok := auth.verifySessionValue(value + "00"); ok {
		t.Fatalf("expected tampered signature to fail")
	}
	if _, ok := auth.verifySessionValue("garbage"); ok {
		t.Fatalf("expected malformed value to fail")
	}

	now = now.Add(sessionTTL + time.Second)
	if _, ok := auth.verifySessionValue(value); ok {
		t.Fatalf("expected expired session to fail")
	}
}

func TestResolveSessionSecret(t *testing.T) {
	secret, generated, err := resolveSessionSecret(config.Config{Env: "production", SessionSecret: "configured"})
	if err != nil || generated || secret != "configured" {
		t.Fatalf("configured secret = %q, %v, %v", secret, generated, err)
	}

	if _, _, err := resolveSessionSecret(config.Config{Env: "production"}); !errors.Is(err, errMissingSessionSecret) {
		t.Fatalf("expected errMissingSessionSecret outside development, got %v", err)
	}

	first, generated, err := resolveSessionSecret(config.Config{Env: "dev"})
	if err != nil || !generated || len(first) != 64 {
		t.Fatalf("dev secret = %q, %v, %v", first, generated, err)
	}
	second, _, err := resolveSessionSecret(config.Config{Env: "development"})
	if err != nil {
		t.Fatalf("resolve development secret: %v", err)
	}
	if first == second {
		t.Fatalf("expected a fresh random secret per call")
	}
}
