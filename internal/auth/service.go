package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/invitly/invitly/internal/config"
	"github.com/invitly/invitly/internal/notification"
	"github.com/invitly/invitly/internal/otp"
	"github.com/invitly/invitly/internal/user"
)

const (
	maxPhoneLength = 15
	maxCodeLength  = 4
)

var (
	// ErrInvalidPhone signals a malformed phone number in the request.
	ErrInvalidPhone = errors.New("phone must be non-empty and at most 15 characters")
	// ErrInvalidCode signals an absent, expired or mismatched verification
	// code. Callers cannot distinguish the three.
	ErrInvalidCode = errors.New("invalid verification code")
	// ErrInvalidRefreshToken signals a refresh token that failed verification.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// Service orchestrates the phone verification flow: code issuance, code
// verification, user lookup-or-create and token issuance.
type Service struct {
	cfg      config.Config
	users    *user.Service
	codes    otp.Store
	notifier notification.Sender
}

// NewService builds the authentication flow service.
func NewService(cfg config.Config, users *user.Service, codes otp.Store, notifier notification.Sender) *Service {
	return &Service{cfg: cfg, users: users, codes: codes, notifier: notifier}
}

// TokenPair carries the issued bearer credentials.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// RequestCode validates the phone, generates a verification code and records
// it with the store's TTL. The code is returned to the caller directly,
// standing in for a real delivery channel; it is also handed to the
// notification seam.
func (s *Service) RequestCode(ctx context.Context, phone string) (string, error) {
	phone, err := normalizePhone(phone)
	if err != nil {
		return "", err
	}

	code := otp.NewVerificationCode()
	if err := s.codes.Put(ctx, phone, code); err != nil {
		return "", err
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindVerificationCode,
			Destination: phone,
			Body:        code,
		})
	}

	return code, nil
}

// VerifyCode checks the submitted code against the store. On match it
// consumes the code, fetches or creates the user (assigning a fresh invite
// code on creation) and issues a token pair. Credentials are never issued
// without a matching stored code.
func (s *Service) VerifyCode(ctx context.Context, phone, code string) (user.User, TokenPair, error) {
	phone, err := normalizePhone(phone)
	if err != nil {
		return user.User{}, TokenPair{}, err
	}
	if code == "" || len(code) > maxCodeLength {
		return user.User{}, TokenPair{}, ErrInvalidCode
	}

	stored, err := s.codes.Get(ctx, phone)
	if err != nil {
		if errors.Is(err, otp.ErrCodeNotFound) {
			return user.User{}, TokenPair{}, ErrInvalidCode
		}
		return user.User{}, TokenPair{}, err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return user.User{}, TokenPair{}, ErrInvalidCode
	}

	// Single-use consumption: a verified code cannot be replayed within the
	// TTL window. Best effort; the entry would lapse on its own anyway.
	_ = s.codes.Delete(ctx, phone)

	u, _, err := s.users.GetOrCreate(ctx, phone)
	if err != nil {
		return user.User{}, TokenPair{}, err
	}

	pair, err := s.issue(u)
	if err != nil {
		return user.User{}, TokenPair{}, err
	}
	return u, pair, nil
}

// Refresh verifies the refresh token and returns a new access token if valid.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, int64, error) {
	claims, err := ParseAndVerifyHS256(refreshToken, []byte(s.cfg.RefreshSecret))
	if err != nil {
		return "", 0, ErrInvalidRefreshToken
	}
	sub, _ := claims["sub"].(string)

	u, err := s.users.FindByID(ctx, sub)
	if err != nil {
		return "", 0, ErrInvalidRefreshToken
	}

	access, _, err := s.sign(u, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return "", 0, err
	}
	return access, int64(s.cfg.AccessTokenTTL.Seconds()), nil
}

func (s *Service) issue(u user.User) (TokenPair, error) {
	access, accessExp, err := s.sign(u, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, _, err := s.sign(u, s.cfg.RefreshSecret, s.cfg.RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(time.Until(accessExp).Seconds()),
	}, nil
}

func (s *Service) sign(u user.User, secret string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	claims := map[string]any{
		"sub":   u.ID,
		"phone": u.Phone,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}
	signed, err := SignHS256(claims, []byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

func normalizePhone(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" || len(phone) > maxPhoneLength {
		return "", ErrInvalidPhone
	}
	return phone, nil
}
