package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"clavis/internal/sentinel"
	"clavis/internal/tenant/models"
	id "clavis/pkg/domain"
)

// PostgresTenantStore persists tenants in PostgreSQL. The unique index on
// lower(name) arbitrates racing creations; the ON DELETE CASCADE on
// users.tenant_id backs up the service-level cascade.
type PostgresTenantStore struct {
	db *sql.DB
}

// NewPostgresTenantStore constructs a PostgreSQL-backed tenant store.
func NewPostgresTenantStore(db *sql.DB) *PostgresTenantStore {
	return &PostgresTenantStore{db: db}
}

func (s *PostgresTenantStore) Create(ctx context.Context, tenant *models.Tenant) error {
	if tenant == nil {
		return fmt.Errorf("tenant is required")
	}
	query := `
		INSERT INTO tenants (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(tenant.ID),
		tenant.Name,
		tenant.CreatedAt,
		tenant.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("tenant name already taken: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create tenant: %w", err)
	}
	return nil
}

func (s *PostgresTenantStore) FindByID(ctx context.Context, tenantID id.TenantID) (*models.Tenant, error) {
	query := `SELECT id, name, created_at, updated_at FROM tenants WHERE id = $1`
	tenant, err := scanTenant(s.db.QueryRowContext(ctx, query, uuid.UUID(tenantID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("tenant not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find tenant by id: %w", err)
	}
	return tenant, nil
}

func (s *PostgresTenantStore) FindByName(ctx context.Context, name string) (*models.Tenant, error) {
	query := `SELECT id, name, created_at, updated_at FROM tenants WHERE lower(name) = lower($1)`
	tenant, err := scanTenant(s.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("tenant not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find tenant by name: %w", err)
	}
	return tenant, nil
}

func (s *PostgresTenantStore) Update(ctx context.Context, tenant *models.Tenant) error {
	if tenant == nil {
		return fmt.Errorf("tenant is required")
	}
	query := `UPDATE tenants SET name = $2, updated_at = $3 WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, uuid.UUID(tenant.ID), tenant.Name, tenant.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("tenant name already taken: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("update tenant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update tenant: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("tenant not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresTenantStore) Delete(ctx context.Context, tenantID id.TenantID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tenants WHERE id = $1`, uuid.UUID(tenantID))
	if err != nil {
		return fmt.Errorf("delete tenant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete tenant: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("tenant not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresTenantStore) List(ctx context.Context, offset, limit int) ([]*models.Tenant, error) {
	query := `SELECT id, name, created_at, updated_at FROM tenants ORDER BY created_at, id OFFSET $1 LIMIT $2`
	rows, err := s.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	var tenants []*models.Tenant
	for rows.Next() {
		tenant, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, tenant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tenants: %w", err)
	}
	return tenants, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTenant(row rowScanner) (*models.Tenant, error) {
	var t models.Tenant
	var tenantID uuid.UUID
	if err := row.Scan(&tenantID, &t.Name, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.ID = id.TenantID(tenantID)
	return &t, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
