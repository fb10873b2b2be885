package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemory_SetGet(t *testing.T) {
	m := NewMemory(time.Hour)
	ctx := context.Background()

	if _, ok := m.Get(ctx, "acme.com"); ok {
		t.Fatal("expected miss on empty cache")
	}
	if err := m.Set(ctx, "acme.com", "https://acme.com/careers"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok := m.Get(ctx, "ACME.com")
	if !ok || got != "https://acme.com/careers" {
		t.Errorf("Get = %q, %v", got, ok)
	}
}

func TestMemory_Expiry(t *testing.T) {
	m := NewMemory(time.Minute)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	m.Set(ctx, "acme.com", "x")
	now = now.Add(2 * time.Minute)

	if _, ok := m.Get(ctx, "acme.com"); ok {
		t.Error("expected entry to expire")
	}
}

func TestMemory_EmptyKeyRejected(t *testing.T) {
	if err := NewMemory(0).Set(context.Background(), "", "x"); err == nil {
		t.Error("expected error for empty key")
	}
}

func TestBuildKey_StableAndCaseInsensitive(t *testing.T) {
	a := buildKey("atsfeed:careers", "Acme.com")
	b := buildKey("atsfeed:careers", "acme.com")
	if a != b {
		t.Errorf("keys differ: %s vs %s", a, b)
	}
	if buildKey("atsfeed:careers", "other.com") == a {
		t.Error("different domains produced the same key")
	}
}

func TestNewRedis_InvalidURL(t *testing.T) {
	if _, err := NewRedis("not a url", "p", time.Minute); err == nil {
		t.Error("expected error for invalid redis URL")
	}
}
