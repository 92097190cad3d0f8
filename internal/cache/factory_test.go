package cache

import (
	"slices"
	"testing"
	"time"
)

func TestFactory_UnknownProvider(t *testing.T) {
	_, err := New("nonexistent", ProviderConfig{})
	if err == nil {
		t.Fatal("Expected error for unknown provider")
	}
}

func TestFactory_RegisteredProviders(t *testing.T) {
	names := RegisteredProviders()
	for _, want := range []string{"memory", "none", "redis"} {
		if !slices.Contains(names, want) {
			t.Errorf("Expected %q to be registered, got %v", want, names)
		}
	}
	if !slices.IsSorted(names) {
		t.Errorf("Providers not sorted: %v", names)
	}
}

func TestFactory_RegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Expected panic on duplicate registration")
		}
	}()
	Register("memory", newMemoryCache)
}

func TestFactory_RegisterNilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Expected panic on nil provider")
		}
	}()
	Register("nil-provider", nil)
}

func TestFactory_RedisUnreachable(t *testing.T) {
	_, err := New("redis", ProviderConfig{
		TTL:   time.Hour,
		Redis: RedisOptions{Address: "localhost:59999"},
	})
	if err == nil {
		t.Fatal("Expected error when redis is unreachable")
	}
}
