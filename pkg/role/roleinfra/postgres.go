package roleinfra

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/infinitynet/api/pkg/cachex"
	"github.com/infinitynet/api/pkg/errx"
	"github.com/infinitynet/api/pkg/kernel"
	"github.com/infinitynet/api/pkg/role"
)

const cachePrefix = "role:"

// userTables are every table holding a role_id reference; the deletion
// guard counts across all of them.
var userTables = []string{"users", "admin_users", "affiliate_users", "app_users"}

type PostgresRoleRepository struct {
	db    *sqlx.DB
	cache *cachex.Facade
}

func NewPostgresRoleRepository(db *sqlx.DB, cache *cachex.Facade) role.Repository {
	return &PostgresRoleRepository{db: db, cache: cache}
}

func (r *PostgresRoleRepository) FindAll(ctx context.Context, opts kernel.PaginationOptions, filter role.ListFilter) (kernel.Paginated[role.Role], error) {
	where, args := buildFilter(filter)

	var total int
	countQuery := "SELECT COUNT(*) FROM roles" + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return kernel.Paginated[role.Role]{}, errx.Wrap(err, "failed to count roles", errx.TypeInternal)
	}

	var rows []role.Role
	listQuery := fmt.Sprintf(
		"SELECT * FROM roles%s ORDER BY level DESC, name ASC LIMIT $%d OFFSET $%d",
		where, len(args)+1, len(args)+2,
	)
	args = append(args, opts.Limit, opts.Offset())
	if err := r.db.SelectContext(ctx, &rows, listQuery, args...); err != nil {
		return kernel.Paginated[role.Role]{}, errx.Wrap(err, "failed to list roles", errx.TypeInternal)
	}

	return kernel.NewPaginated(rows, opts.Page, opts.Limit, total), nil
}

func (r *PostgresRoleRepository) FindByID(ctx context.Context, id string) (*role.Role, error) {
	var cached role.Role
	if r.cache.GetJSON(ctx, cachePrefix+id, &cached) {
		return &cached, nil
	}

	var row role.Role
	err := r.db.GetContext(ctx, &row, "SELECT * FROM roles WHERE id = $1", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, role.ErrNotFound()
		}
		return nil, errx.Wrap(err, "failed to find role by id", errx.TypeInternal)
	}

	r.cache.SetJSON(ctx, cachePrefix+id, row)
	return &row, nil
}

func (r *PostgresRoleRepository) FindByField(ctx context.Context, field, value string) (*role.Role, error) {
	if !allowedField(field) {
		return nil, errx.Validation("Campo de busca inválido").WithDetail("field", field)
	}

	var row role.Role
	query := fmt.Sprintf("SELECT * FROM roles WHERE %s = $1", field)
	err := r.db.GetContext(ctx, &row, query, value)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, role.ErrNotFound()
		}
		return nil, errx.Wrap(err, "failed to find role by field", errx.TypeInternal)
	}
	return &row, nil
}

func (r *PostgresRoleRepository) FindByName(ctx context.Context, name string) (*role.Role, error) {
	return r.FindByField(ctx, "name", name)
}

func (r *PostgresRoleRepository) Create(ctx context.Context, dto role.CreateRole) (*role.Role, error) {
	taken, err := r.nameTaken(ctx, dto.Name, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, role.ErrNameTaken()
	}

	active := true
	if dto.Active != nil {
		active = *dto.Active
	}

	row := role.Role{
		ID:     uuid.NewString(),
		Name:   dto.Name,
		Level:  dto.Level,
		Active: active,
	}

	_, err = r.db.NamedExecContext(ctx,
		`INSERT INTO roles (id, name, level, active) VALUES (:id, :name, :level, :active)`, row)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return nil, role.ErrNameTaken()
		}
		return nil, errx.Wrap(err, "failed to create role", errx.TypeInternal)
	}

	r.cache.SetJSON(ctx, cachePrefix+row.ID, row)
	return &row, nil
}

func (r *PostgresRoleRepository) Update(ctx context.Context, id string, dto role.UpdateRole) (*role.Role, error) {
	if dto.Empty() {
		return nil, role.ErrEmptyUpdate()
	}

	current, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil && *dto.Name != current.Name {
		taken, err := r.nameTaken(ctx, *dto.Name, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, role.ErrNameTaken()
		}
		current.Name = *dto.Name
	}
	if dto.Level != nil {
		current.Level = *dto.Level
	}
	if dto.Active != nil {
		current.Active = *dto.Active
	}

	result, err := r.db.NamedExecContext(ctx,
		`UPDATE roles SET name = :name, level = :level, active = :active WHERE id = :id`, current)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, role.ErrNameTaken()
		}
		return nil, errx.Wrap(err, "failed to update role", errx.TypeInternal)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return nil, role.ErrNotFound()
	}

	r.cache.SetJSON(ctx, cachePrefix+id, *current)
	return current, nil
}

func (r *PostgresRoleRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}

	refs, err := r.referenceCount(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return role.ErrInUse().WithDetail("references", refs)
	}

	result, err := r.db.ExecContext(ctx, "DELETE FROM roles WHERE id = $1", id)
	if err != nil {
		return errx.Wrap(err, "failed to delete role", errx.TypeInternal)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return role.ErrNotFound()
	}

	r.cache.Delete(ctx, cachePrefix+id)
	return nil
}

func (r *PostgresRoleRepository) nameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM roles WHERE name = $1)"
	args := []any{name}
	if excludeID != "" {
		query = "SELECT EXISTS(SELECT 1 FROM roles WHERE name = $1 AND id <> $2)"
		args = append(args, excludeID)
	}
	if err := r.db.GetContext(ctx, &exists, query, args...); err != nil {
		return false, errx.Wrap(err, "failed to check role name uniqueness", errx.TypeInternal)
	}
	return exists, nil
}

func (r *PostgresRoleRepository) referenceCount(ctx context.Context, id string) (int, error) {
	parts := make([]string, len(userTables))
	for i, table := range userTables {
		parts[i] = fmt.Sprintf("(SELECT COUNT(*) FROM %s WHERE role_id = $1)", table)
	}
	query := "SELECT " + strings.Join(parts, " + ")

	var refs int
	if err := r.db.GetContext(ctx, &refs, query, id); err != nil {
		return 0, errx.Wrap(err, "failed to count role references", errx.TypeInternal)
	}
	return refs, nil
}

func buildFilter(filter role.ListFilter) (string, []any) {
	var clauses []string
	var args []any

	if filter.Name != "" {
		args = append(args, "%"+filter.Name+"%")
		clauses = append(clauses, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if filter.Level != nil {
		args = append(args, *filter.Level)
		clauses = append(clauses, fmt.Sprintf("level = $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("active = $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func allowedField(field string) bool {
	switch field {
	case "id", "name", "level", "active":
		return true
	}
	return false
}
