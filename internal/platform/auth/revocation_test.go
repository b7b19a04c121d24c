package auth

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func claimsFor(userID string, issuedAt time.Time) *Claims {
	return &Claims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
	}}
}

// exerciseRevocationStore runs the behaviour every RevocationStore must have.
func exerciseRevocationStore(t *testing.T, store RevocationStore) {
	ctx := context.Background()
	userID := "user-" + uuid.NewString()
	now := time.Now()

	tok := claimsFor(userID, now.Add(-time.Minute))
	if revoked, err := store.IsRevoked(ctx, tok); err != nil || revoked {
		t.Fatalf("fresh token: revoked=%v err=%v", revoked, err)
	}

	if err := store.Revoke(ctx, tok.ID, tok.ExpiresAt.Time); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if revoked, _ := store.IsRevoked(ctx, tok); !revoked {
		t.Error("expected revoked jti to be rejected")
	}

	other := claimsFor(userID, now.Add(-30*time.Second))
	if revoked, _ := store.IsRevoked(ctx, other); revoked {
		t.Error("expected other token of same user to stay valid")
	}

	if err := store.RevokeUser(ctx, userID, now); err != nil {
		t.Fatalf("RevokeUser: %v", err)
	}
	if revoked, _ := store.IsRevoked(ctx, other); !revoked {
		t.Error("expected token issued before cutoff to be rejected")
	}
	later := claimsFor(userID, now.Add(2*time.Second))
	if revoked, _ := store.IsRevoked(ctx, later); revoked {
		t.Error("expected token issued after cutoff to be accepted")
	}

	// A cutoff inside a second only catches tokens issued up to it.
	sameSecondUser := "user-" + uuid.NewString()
	cutoff := now.Truncate(time.Second).Add(400 * time.Millisecond)
	if err := store.RevokeUser(ctx, sameSecondUser, cutoff); err != nil {
		t.Fatalf("RevokeUser: %v", err)
	}
	if revoked, _ := store.IsRevoked(ctx, claimsFor(sameSecondUser, cutoff.Add(-100*time.Millisecond))); !revoked {
		t.Error("expected token issued earlier in the same second to be rejected")
	}
	if revoked, _ := store.IsRevoked(ctx, claimsFor(sameSecondUser, cutoff.Add(100*time.Millisecond))); revoked {
		t.Error("expected token issued later in the same second to be accepted")
	}
}

func TestMemoryRevocationStore(t *testing.T) {
	store := NewMemoryRevocationStore(time.Hour)
	defer store.Close()
	exerciseRevocationStore(t, store)
}

func TestRedisRevocationStore(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	client, err := NewRedisClient(context.Background(), url)
	if err != nil {
		t.Fatalf("NewRedisClient: %v", err)
	}
	defer client.Close()
	exerciseRevocationStore(t, NewRedisRevocationStore(client, time.Hour))
}

func TestMemoryRevocationStore_Cleanup(t *testing.T) {
	store := NewMemoryRevocationStore(time.Hour)
	defer store.Close()
	ctx := context.Background()
	now := time.Now()

	_ = store.Revoke(ctx, "expired", now.Add(-time.Minute))
	_ = store.Revoke(ctx, "live", now.Add(time.Hour))
	_ = store.RevokeUser(ctx, "old-user", now.Add(-2*time.Hour))
	_ = store.RevokeUser(ctx, "new-user", now)

	store.cleanup(now)

	if store.Count() != 1 {
		t.Errorf("expected 1 live entry, got %d", store.Count())
	}
	store.mu.RLock()
	defer store.mu.RUnlock()
	if _, ok := store.users["old-user"]; ok {
		t.Error("expected stale user cutoff to be removed")
	}
	if _, ok := store.users["new-user"]; !ok {
		t.Error("expected recent user cutoff to be kept")
	}
}

func TestMemoryRevocationStore_CutoffOnlyMovesForward(t *testing.T) {
	store := NewMemoryRevocationStore(time.Hour)
	defer store.Close()
	ctx := context.Background()
	now := time.Now()

	_ = store.RevokeUser(ctx, "u", now)
	_ = store.RevokeUser(ctx, "u", now.Add(-time.Hour))

	if revoked, _ := store.IsRevoked(ctx, claimsFor("u", now.Add(-time.Minute))); !revoked {
		t.Error("expected earlier RevokeUser call not to shrink the cutoff")
	}
}

func TestMemoryRevocationStore_Concurrent(t *testing.T) {
	store := NewMemoryRevocationStore(time.Hour)
	defer store.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := claimsFor("u", time.Now())
			_ = store.Revoke(ctx, c.ID, c.ExpiresAt.Time)
			_, _ = store.IsRevoked(ctx, c)
		}()
	}
	wg.Wait()
	if store.Count() != 50 {
		t.Errorf("expected 50 entries, got %d", store.Count())
	}
}
