package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryGetSet(t *testing.T) {
	m := NewMemory(10, time.Minute)
	ctx := context.Background()

	if _, ok, _ := m.Get(ctx, "missing"); ok {
		t.Fatal("expected miss for unknown key")
	}

	if err := m.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	value, ok, err := m.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if string(value) != "v" {
		t.Fatalf("unexpected value %q", value)
	}
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory(10, 30*time.Millisecond)
	ctx := context.Background()

	m.Set(ctx, "k", []byte("v"), 0)
	time.Sleep(80 * time.Millisecond)
	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestMemoryIncrement(t *testing.T) {
	m := NewMemory(10, time.Minute)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := m.Increment(ctx, "prediction_count")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Fatalf("expected counter %d, got %d", want, got)
		}
	}
}
