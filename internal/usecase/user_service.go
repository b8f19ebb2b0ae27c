package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/playoff-pool/internal/domain/user"
	"github.com/riskibarqy/playoff-pool/internal/platform/logging"
)

type UserService struct {
	repo   user.Repository
	logger *logging.Logger
	now    func() time.Time
}

func NewUserService(repo user.Repository, logger *logging.Logger) *UserService {
	if logger == nil {
		logger = logging.Default()
	}
	return &UserService{repo: repo, logger: logger, now: time.Now}
}

// EnsureUser captures the principal's profile on first sight and refreshes it
// when the identity provider reports changes.
func (s *UserService) EnsureUser(ctx context.Context, principal user.Principal) (user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserService.EnsureUser")
	defer span.End()

	uid := strings.TrimSpace(principal.UserID)
	if uid == "" {
		return user.User{}, fmt.Errorf("%w: principal has no user id", ErrUnauthorized)
	}

	current, exists, err := s.repo.Get(ctx, uid)
	if err != nil {
		return user.User{}, fmt.Errorf("get user: %w", err)
	}

	next := current
	next.UID = uid
	if name := strings.TrimSpace(principal.DisplayName); name != "" {
		next.DisplayName = name
	}
	if email := strings.TrimSpace(principal.Email); email != "" {
		next.Email = email
	}
	if photo := strings.TrimSpace(principal.PhotoURL); photo != "" {
		next.PhotoURL = photo
	}
	if next.DisplayName == "" {
		next.DisplayName = displayNameFromEmail(next.Email, uid)
	}
	if exists && next == current {
		return current, nil
	}

	now := s.now().UTC()
	if !exists {
		next.CreatedAt = now
	}
	next.UpdatedAt = now
	if err := s.repo.Upsert(ctx, next); err != nil {
		return user.User{}, fmt.Errorf("upsert user: %w", err)
	}

	if !exists {
		s.logger.InfoContext(ctx, "user registered", "user_id", uid)
	}
	return next, nil
}

func (s *UserService) List(ctx context.Context) ([]user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserService.List")
	defer span.End()

	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func displayNameFromEmail(email, fallback string) string {
	if local, _, ok := strings.Cut(email, "@"); ok && local != "" {
		return local
	}
	return fallback
}
