package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/expense-tracker/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, name, email, password_hash, phone, otp_hash, otp_expires_at, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		u.Name, u.Email, u.PasswordHash, u.Phone,
	)

	created, err := scanUser(row)
	if err != nil {
		if code, constraint := pgErrorCode(err); code == codeUniqueViolation && constraint == usersEmailKey {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}
	return created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		if code, _ := pgErrorCode(err); code == codeInvalidText {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *UserRepository) PhoneTaken(ctx context.Context, phone string) (bool, error) {
	var taken bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE phone = $1)`, phone).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check phone: %w", err)
	}
	return taken, nil
}

func (r *UserRepository) UpdateName(ctx context.Context, id, name string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET name = $2, updated_at = NOW() WHERE id = $1`, id, name)
	if err != nil {
		return fmt.Errorf("update name: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetOTP(ctx context.Context, id, otpHash string, expiresAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET    otp_hash = $2, otp_expires_at = $3, updated_at = NOW()
		WHERE  id = $1`, id, otpHash, expiresAt)
	if err != nil {
		return fmt.Errorf("set otp: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) ConsumeOTP(ctx context.Context, id, otpHash string, now time.Time, change domain.UserChange) error {
	// Matching on the stored hash makes the code single-use: a second caller
	// with the same code finds otp_hash already NULL.
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET    email          = COALESCE($4, email),
		       phone          = COALESCE($5, phone),
		       password_hash  = COALESCE($6, password_hash),
		       otp_hash       = NULL,
		       otp_expires_at = NULL,
		       updated_at     = NOW()
		WHERE  id = $1
		  AND  otp_hash = $2
		  AND  otp_expires_at > $3`,
		id, otpHash, now, change.Email, change.Phone, change.PasswordHash,
	)
	if err != nil {
		if code, constraint := pgErrorCode(err); code == codeUniqueViolation && constraint == usersEmailKey {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("consume otp: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOTPInvalid
	}
	return nil
}

func (r *UserRepository) ClearExpiredOTPs(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET    otp_hash = NULL, otp_expires_at = NULL
		WHERE  otp_expires_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("clear expired otps: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone,
		&u.OTPHash, &u.OTPExpiresAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
