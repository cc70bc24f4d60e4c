package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound signals that no user matched the lookup key.
	ErrNotFound = errors.New("user not found")
	// ErrPhoneExists signals a unique violation on phone during Create.
	ErrPhoneExists = errors.New("phone already registered")
	// ErrInviteCodeExists signals a unique violation on invite_code during Create.
	ErrInviteCodeExists = errors.New("invite code already assigned")
	// ErrAlreadyActivated signals that the user's activated invite code was already set.
	ErrAlreadyActivated = errors.New("invite code already activated")
)

const uniqueViolationCode = "23505"

// Repository persists users.
type Repository interface {
	Create(ctx context.Context, u User) error
	FindByID(ctx context.Context, id string) (User, error)
	FindByPhone(ctx context.Context, phone string) (User, error)
	FindByInviteCode(ctx context.Context, code string) (User, error)
	SetActivatedInviteCode(ctx context.Context, id, code string) error
	ListReferralPhones(ctx context.Context, inviteCode string) ([]string, error)
}

// PostgresRepository implements Repository using PostgreSQL. Uniqueness of
// phone and invite_code is enforced by table constraints; Create maps
// violations to sentinel errors so the service layer can retry or re-fetch.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed user repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user record.
func (r *PostgresRepository) Create(ctx context.Context, u User) error {
	userID, err := uuid.Parse(u.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (id, phone, invite_code, created_at)
        VALUES ($1, $2, $3, $4)`, userID, u.Phone, u.InviteCode, u.CreatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			if strings.Contains(pgErr.ConstraintName, "invite_code") {
				return ErrInviteCodeExists
			}
			return ErrPhoneExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindByID fetches a user by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, phone, invite_code, activated_invite_code, created_at
        FROM users WHERE id = $1`, userID)
	return scanUser(row)
}

// FindByPhone fetches a user by phone number.
func (r *PostgresRepository) FindByPhone(ctx context.Context, phone string) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT id, phone, invite_code, activated_invite_code, created_at
        FROM users WHERE phone = $1`, phone)
	return scanUser(row)
}

// FindByInviteCode fetches the user owning the given invite code.
func (r *PostgresRepository) FindByInviteCode(ctx context.Context, code string) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT id, phone, invite_code, activated_invite_code, created_at
        FROM users WHERE invite_code = $1`, code)
	return scanUser(row)
}

// SetActivatedInviteCode records the activated code for a user. The guard on
// activated_invite_code being unset makes the write race-safe: once set it
// is never overwritten.
func (r *PostgresRepository) SetActivatedInviteCode(ctx context.Context, id, code string) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE users SET activated_invite_code = $1
        WHERE id = $2 AND activated_invite_code IS NULL`, code, userID)
	if err != nil {
		return fmt.Errorf("set activated invite code: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		existing, err := r.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if existing.HasActivated() {
			return ErrAlreadyActivated
		}
		return ErrNotFound
	}
	return nil
}

// ListReferralPhones returns the phone numbers of all users who activated
// the given invite code.
func (r *PostgresRepository) ListReferralPhones(ctx context.Context, inviteCode string) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT phone FROM users
        WHERE activated_invite_code = $1 ORDER BY created_at`, inviteCode)
	if err != nil {
		return nil, fmt.Errorf("list referrals: %w", err)
	}
	defer rows.Close()

	phones := []string{}
	for rows.Next() {
		var phone string
		if err := rows.Scan(&phone); err != nil {
			return nil, err
		}
		phones = append(phones, phone)
	}
	return phones, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var (
		id        uuid.UUID
		activated *string
		createdAt time.Time
		u         User
	)
	if err := row.Scan(&id, &u.Phone, &u.InviteCode, &activated, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	u.ID = id.String()
	if activated != nil {
		u.ActivatedInviteCode = *activated
	}
	u.CreatedAt = createdAt.UTC()
	return u, nil
}
