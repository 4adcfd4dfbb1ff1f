package common

import (
	"context"
	"testing"

	"ad-token-ledger/internal/memstore"

	"go.uber.org/zap"
)

func TestInitializeUsers(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	if _, err := st.CreateUser(ctx, "u1", "Ada", "ada@example.com"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if _, err := st.CreateUser(ctx, "u2", "Grace", "grace@example.com"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	all, err := InitializeUsers(ctx, st, "", zap.NewNop())
	if err != nil {
		t.Fatalf("InitializeUsers failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 users, got %d", len(all))
	}

	filtered, err := InitializeUsers(ctx, st, "grace@example.com", zap.NewNop())
	if err != nil {
		t.Fatalf("InitializeUsers failed: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Id != "u2" {
		t.Errorf("Expected only u2, got %+v", filtered)
	}

	if _, err := InitializeUsers(ctx, st, "nobody@example.com", zap.NewNop()); err == nil {
		t.Error("Expected error for unknown email")
	}
}

func TestResolveUserId(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	if _, err := st.CreateUser(ctx, "u1", "Ada", "ada@example.com"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	tests := []struct {
		name     string
		userId   string
		email    string
		expected string
		wantErr  bool
	}{
		{"explicit id", "u9", "ada@example.com", "u9", false},
		{"by email", "", "ada@example.com", "u1", false},
		{"unknown email", "", "x@example.com", "", true},
		{"neither", "", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ResolveUserId(ctx, st, tt.userId, tt.email)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveUserId failed: %v", err)
			}
			if id != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, id)
			}
		})
	}
}
