package posterapi

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/keyxmakerx/posterdesk/internal/apperror"
)

// mysqlDuplicateEntry is the MariaDB error number for a unique key clash.
const mysqlDuplicateEntry = 1062

// UserRepository defines the data access contract for identity records.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, userID string) (*User, error)
	UpdateDigest(ctx context.Context, userID, digest string) error
	Delete(ctx context.Context, userID string) error
}

// PosterRepository defines the data access contract for poster history.
type PosterRepository interface {
	Create(ctx context.Context, poster *Poster) error
	ListByUser(ctx context.Context, userID string) ([]Poster, error)

	// MarkPaid flips paid on the first poster of userID whose prompt equals
	// promptUsed exactly. Unpaid rows are matched first, newest first.
	MarkPaid(ctx context.Context, userID, promptUsed string) error
}

// userRepository implements UserRepository with MariaDB queries.
type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository backed by the given
// database connection pool.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new identity. A duplicate user_id is a conflict.
func (r *userRepository) Create(ctx context.Context, user *User) error {
	query := `INSERT INTO users (user_id, password_digest, created_at) VALUES (?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, user.UserID, user.PasswordDigest, user.CreatedAt)
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
			return apperror.NewConflict("user already exists")
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// FindByID retrieves an identity by its user_id.
func (r *userRepository) FindByID(ctx context.Context, userID string) (*User, error) {
	query := `SELECT user_id, password_digest, created_at FROM users WHERE user_id = ?`

	u := &User{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&u.UserID, &u.PasswordDigest, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by id: %w", err)
	}
	return u, nil
}

// UpdateDigest overwrites the stored digest.
func (r *userRepository) UpdateDigest(ctx context.Context, userID, digest string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_digest = ? WHERE user_id = ?`, digest, userID)
	if err != nil {
		return fmt.Errorf("updating user digest: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		// Same digest as before also reports zero changed rows.
		if _, err := r.FindByID(ctx, userID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes an identity. Deleting a missing user is not an error.
func (r *userRepository) Delete(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}

// posterRepository implements PosterRepository with MariaDB queries.
type posterRepository struct {
	db *sql.DB
}

// NewPosterRepository creates a new poster history repository.
func NewPosterRepository(db *sql.DB) PosterRepository {
	return &posterRepository{db: db}
}

// Create inserts a history row and sets poster.ID.
func (r *posterRepository) Create(ctx context.Context, poster *Poster) error {
	query := `INSERT INTO poster_history (user_id, prompt_used, poster_url, paid, created_at)
	          VALUES (?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		poster.UserID, poster.PromptUsed, poster.PosterURL, poster.Paid, poster.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting poster history: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading poster id: %w", err)
	}
	poster.ID = id
	return nil
}

// ListByUser returns a user's posters, oldest first.
func (r *posterRepository) ListByUser(ctx context.Context, userID string) ([]Poster, error) {
	query := `SELECT id, user_id, prompt_used, poster_url, paid, created_at
	          FROM poster_history WHERE user_id = ? ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying poster history: %w", err)
	}
	defer rows.Close()

	var posters []Poster
	for rows.Next() {
		var p Poster
		if err := rows.Scan(&p.ID, &p.UserID, &p.PromptUsed, &p.PosterURL, &p.Paid, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning poster history: %w", err)
		}
		posters = append(posters, p)
	}
	return posters, rows.Err()
}

// MarkPaid finds the matching row first so an already-paid match still
// counts as found.
func (r *posterRepository) MarkPaid(ctx context.Context, userID, promptUsed string) error {
	query := `SELECT id FROM poster_history
	          WHERE user_id = ? AND prompt_used = ?
	          ORDER BY paid ASC, created_at DESC, id DESC
	          LIMIT 1`

	var id int64
	err := r.db.QueryRowContext(ctx, query, userID, promptUsed).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NewNotFound("Poster not found for this user with the given prompt.")
	}
	if err != nil {
		return fmt.Errorf("querying poster for payment: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `UPDATE poster_history SET paid = TRUE WHERE id = ?`, id); err != nil {
		return fmt.Errorf("marking poster paid: %w", err)
	}
	return nil
}
