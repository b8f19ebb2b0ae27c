package usecase

import (
	"errors"
	"testing"

	"github.com/riskibarqy/playoff-pool/internal/domain/user"
	"github.com/riskibarqy/playoff-pool/internal/infrastructure/repository/memory"
)

func TestUserService_EnsureUser(t *testing.T) {
	repo := memory.NewUserRepository(nil)
	svc := NewUserService(repo, nil)

	created, err := svc.EnsureUser(t.Context(), user.Principal{UserID: "uid-1", Email: "sam@example.com"})
	if err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	if created.DisplayName != "sam" || created.CreatedAt.IsZero() {
		t.Fatalf("unexpected created user: %+v", created)
	}

	again, err := svc.EnsureUser(t.Context(), user.Principal{UserID: "uid-1"})
	if err != nil {
		t.Fatalf("ensure user again: %v", err)
	}
	if again != created {
		t.Fatalf("profile without changes must not be rewritten: %+v vs %+v", again, created)
	}

	renamed, err := svc.EnsureUser(t.Context(), user.Principal{UserID: "uid-1", DisplayName: "Sam R"})
	if err != nil {
		t.Fatalf("ensure user rename: %v", err)
	}
	if renamed.DisplayName != "Sam R" || !renamed.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("unexpected renamed user: %+v", renamed)
	}

	_, err = svc.EnsureUser(t.Context(), user.Principal{})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
