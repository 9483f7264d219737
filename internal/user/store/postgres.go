package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"clavis/internal/sentinel"
	"clavis/internal/user/models"
	id "clavis/pkg/domain"
)

// PostgresUserStore persists users in PostgreSQL. The unique index on
// lower(email) is the final arbiter for concurrent registrations; unique
// violations surface as sentinel.ErrAlreadyUsed.
type PostgresUserStore struct {
	db *sql.DB
}

// NewPostgresUserStore constructs a PostgreSQL-backed user store.
func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

const userColumns = "id, email, password_hash, full_name, is_active, is_superuser, tenant_id, created_at, updated_at"

func (s *PostgresUserStore) Create(ctx context.Context, user *models.User) error {
	if user == nil {
		return fmt.Errorf("user is required")
	}
	query := `
		INSERT INTO users (id, email, password_hash, full_name, is_active, is_superuser, tenant_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(user.ID),
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.Active,
		user.Superuser,
		tenantIDParam(user.TenantID),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email already registered: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, uuid.UUID(userID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return user, nil
}

func (s *PostgresUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return user, nil
}

func (s *PostgresUserStore) Update(ctx context.Context, user *models.User) error {
	if user == nil {
		return fmt.Errorf("user is required")
	}
	query := `
		UPDATE users
		SET email = $2, password_hash = $3, full_name = $4, is_active = $5,
		    is_superuser = $6, tenant_id = $7, updated_at = $8
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(user.ID),
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.Active,
		user.Superuser,
		tenantIDParam(user.TenantID),
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email already registered: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresUserStore) Delete(ctx context.Context, userID id.UserID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, uuid.UUID(userID))
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresUserStore) List(ctx context.Context, offset, limit int) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, id OFFSET $1 LIMIT $2`
	rows, err := s.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor
	return collectUsers(rows)
}

func (s *PostgresUserStore) FindByTenant(ctx context.Context, tenantID id.TenantID) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE tenant_id = $1 ORDER BY created_at, id`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(tenantID))
	if err != nil {
		return nil, fmt.Errorf("find users by tenant: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor
	return collectUsers(rows)
}

// DeleteByTenant removes all users owned by the tenant in one statement and
// reports how many rows were removed.
func (s *PostgresUserStore) DeleteByTenant(ctx context.Context, tenantID id.TenantID) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE tenant_id = $1`, uuid.UUID(tenantID))
	if err != nil {
		return 0, fmt.Errorf("delete users by tenant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete users by tenant: %w", err)
	}
	return int(n), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var userID uuid.UUID
	var tenantID uuid.NullUUID
	if err := row.Scan(
		&userID,
		&u.Email,
		&u.PasswordHash,
		&u.FullName,
		&u.Active,
		&u.Superuser,
		&tenantID,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.ID = id.UserID(userID)
	if tenantID.Valid {
		u.TenantID = id.TenantID(tenantID.UUID)
	}
	return &u, nil
}

func collectUsers(rows *sql.Rows) ([]*models.User, error) {
	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// tenantIDParam maps the nil tenant ID to SQL NULL so the foreign key is
// only enforced when a tenant reference is actually set.
func tenantIDParam(tenantID id.TenantID) uuid.NullUUID {
	if tenantID.IsNil() {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(tenantID), Valid: true}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
