package anubis

import (
	"fmt"
	"testing"
	"time"

	"github.com/riskibarqy/squad-builder/internal/domain/user"
)

func TestInMemoryPrincipalCache_SetGet(t *testing.T) {
	t.Parallel()

	cache := newInMemoryPrincipalCache(200*time.Millisecond, 10)
	cache.Set("k1", user.Principal{UserID: "u-1"})

	principal, ok := cache.Get("k1")
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if principal.UserID != "u-1" {
		t.Fatalf("unexpected user id: %s", principal.UserID)
	}
}

func TestInMemoryPrincipalCache_Expired(t *testing.T) {
	t.Parallel()

	cache := newInMemoryPrincipalCache(20*time.Millisecond, 10)
	cache.Set("k1", user.Principal{UserID: "u-1"})
	time.Sleep(40 * time.Millisecond)

	if _, ok := cache.Get("k1"); ok {
		t.Fatalf("expected cache miss after expiry")
	}
}

func TestInMemoryPrincipalCache_ZeroTTLDisablesWrites(t *testing.T) {
	t.Parallel()

	cache := newInMemoryPrincipalCache(0, 10)
	cache.Set("k1", user.Principal{UserID: "u-1"})

	if _, ok := cache.Get("k1"); ok {
		t.Fatalf("expected zero ttl to disable the cache")
	}
}

func TestInMemoryPrincipalCache_MaxEntriesEviction(t *testing.T) {
	t.Parallel()

	cache := newInMemoryPrincipalCache(time.Minute, 3)
	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("k%d", i)
		cache.Set(key, user.Principal{UserID: key})
	}

	cache.mu.RLock()
	size := len(cache.entries)
	cache.mu.RUnlock()
	if size > 3 {
		t.Fatalf("expected at most 3 entries, got %d", size)
	}
}
