package referral

import (
	"context"
	"errors"

	"github.com/invitly/invitly/internal/user"
)

const maxInviteCodeLength = 6

var (
	// ErrAlreadyActivated signals the user has already activated a code.
	ErrAlreadyActivated = errors.New("invite code already activated")
	// ErrInvalidInput signals a malformed invite code in the request.
	ErrInvalidInput = errors.New("invite code must be non-empty and at most 6 characters")
	// ErrCodeNotFound signals that no user owns the submitted code.
	ErrCodeNotFound = errors.New("invite code does not exist")
	// ErrSelfActivation signals an attempt to activate one's own code.
	ErrSelfActivation = errors.New("cannot activate your own invite code")
)

// Service applies invite code activations against the user directory.
type Service struct {
	users *user.Service
}

// NewService builds the referral activation service.
func NewService(users *user.Service) *Service {
	return &Service{users: users}
}

// Activate records code as u's activated invite code. The check order is
// part of the contract: existence is checked before self-activation, so
// submitting one's own code fails with ErrSelfActivation, not
// ErrCodeNotFound.
func (s *Service) Activate(ctx context.Context, u user.User, code string) error {
	if u.HasActivated() {
		return ErrAlreadyActivated
	}
	if code == "" || len(code) > maxInviteCodeLength {
		return ErrInvalidInput
	}

	if _, err := s.users.FindByInviteCode(ctx, code); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrCodeNotFound
		}
		return err
	}

	if code == u.InviteCode {
		return ErrSelfActivation
	}

	if err := s.users.SetActivatedInviteCode(ctx, u.ID, code); err != nil {
		if errors.Is(err, user.ErrAlreadyActivated) {
			return ErrAlreadyActivated
		}
		return err
	}
	return nil
}

// Profile describes a user together with the referral relation derived from
// invite code activations.
type Profile struct {
	Phone               string
	InviteCode          string
	ActivatedInviteCode string
	Referrals           []string
}

// ProfileFor assembles the profile view for a user, listing the phones of
// everyone who activated the user's invite code.
func (s *Service) ProfileFor(ctx context.Context, u user.User) (Profile, error) {
	referrals, err := s.users.ListReferralPhones(ctx, u.InviteCode)
	if err != nil {
		return Profile{}, err
	}
	return Profile{
		Phone:               u.Phone,
		InviteCode:          u.InviteCode,
		ActivatedInviteCode: u.ActivatedInviteCode,
		Referrals:           referrals,
	}, nil
}
