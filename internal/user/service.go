package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/invitly/invitly/internal/otp"
)

// Invite code generation retries before giving up on a creation. Collisions
// on 6-character codes are rare enough that hitting the cap means something
// else is wrong.
const maxInviteCodeAttempts = 5

// Service manages the user directory.
type Service struct {
	repo       Repository
	inviteCode func() string
}

// NewService creates a user directory service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, inviteCode: otp.NewInviteCode}
}

// SetInviteCodeGenerator overrides invite code generation. Test helper.
func (s *Service) SetInviteCodeGenerator(gen func() string) {
	s.inviteCode = gen
}

// GetOrCreate returns the user registered under phone, creating one with a
// fresh unique invite code when none exists. The boolean reports whether a
// creation occurred. Races between concurrent creations for the same phone
// resolve through the uniqueness constraint: the loser re-fetches the
// winner's record. Invite code collisions are retried with a new code.
func (s *Service) GetOrCreate(ctx context.Context, phone string) (User, bool, error) {
	existing, err := s.repo.FindByPhone(ctx, phone)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, false, err
	}

	for attempt := 0; attempt < maxInviteCodeAttempts; attempt++ {
		candidate := User{
			ID:         uuid.New().String(),
			Phone:      phone,
			InviteCode: s.inviteCode(),
			CreatedAt:  time.Now().UTC(),
		}

		err := s.repo.Create(ctx, candidate)
		switch {
		case err == nil:
			return candidate, true, nil
		case errors.Is(err, ErrInviteCodeExists):
			continue
		case errors.Is(err, ErrPhoneExists):
			winner, err := s.repo.FindByPhone(ctx, phone)
			if err != nil {
				return User{}, false, err
			}
			return winner, false, nil
		default:
			return User{}, false, err
		}
	}

	return User{}, false, fmt.Errorf("exhausted %d invite code attempts for phone %s", maxInviteCodeAttempts, phone)
}

// FindByID fetches a user by identifier.
func (s *Service) FindByID(ctx context.Context, id string) (User, error) {
	return s.repo.FindByID(ctx, id)
}

// FindByInviteCode fetches the user owning an invite code.
func (s *Service) FindByInviteCode(ctx context.Context, code string) (User, error) {
	return s.repo.FindByInviteCode(ctx, code)
}

// SetActivatedInviteCode persists the activated code for a user.
func (s *Service) SetActivatedInviteCode(ctx context.Context, id, code string) error {
	return s.repo.SetActivatedInviteCode(ctx, id, code)
}

// ListReferralPhones returns phones of users who activated the given code.
func (s *Service) ListReferralPhones(ctx context.Context, inviteCode string) ([]string, error) {
	return s.repo.ListReferralPhones(ctx, inviteCode)
}
