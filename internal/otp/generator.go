package otp

import (
	"math/rand"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const inviteCodeLength = 6

// NewVerificationCode returns a random 4-digit verification code in the
// range 1000-9999. Demo-grade randomness; phone verification codes here are
// short-lived and delivered back to the caller directly.
func NewVerificationCode() string {
	return strconv.Itoa(1000 + rand.Intn(9000))
}

// NewInviteCode derives a 6-character uppercase alphanumeric invite code
// from a random UUID. Uniqueness is not guaranteed; callers must handle
// collisions against already-assigned codes.
func NewInviteCode() string {
	return strings.ToUpper(uuid.NewString()[:inviteCodeLength])
}
