package statusinfra

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
	"github.com/infinitynet/api/pkg/status"
)

const cachePrefix = "status:"

var userTables = []string{"users", "admin_users", "affiliate_users", "app_users"}

type PostgresStatusRepository struct {
	db    *sqlx.DB
	cache *cachex.Facade
}

func NewPostgresStatusRepository(db *sqlx.DB, cache *cachex.Facade) status.Repository {
	return &PostgresStatusRepository{db: db, cache: cache}
}

func (r *PostgresStatusRepository) FindAll(ctx context.Context, opts kernel.PaginationOptions, filter status.ListFilter) (kernel.Paginated[status.Status], error) {
	var where string
	var args []any
	if filter.Name != "" {
		where = " WHERE name ILIKE $1"
		args = append(args, "%"+filter.Name+"%")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM statuses"+where, args...); err != nil {
		return kernel.Paginated[status.Status]{}, errx.Wrap(err, "failed to count statuses", errx.TypeInternal)
	}

	var rows []status.Status
	listQuery := fmt.Sprintf(
		"SELECT * FROM statuses%s ORDER BY name ASC LIMIT $%d OFFSET $%d",
		where, len(args)+1, len(args)+2,
	)
	args = append(args, opts.Limit, opts.Offset())
	if err := r.db.SelectContext(ctx, &rows, listQuery, args...); err != nil {
		return kernel.Paginated[status.Status]{}, errx.Wrap(err, "failed to list statuses", errx.TypeInternal)
	}

	return kernel.NewPaginated(rows, opts.Page, opts.Limit, total), nil
}

func (r *PostgresStatusRepository) FindByID(ctx context.Context, id string) (*status.Status, error) {
	var cached status.Status
	if r.cache.GetJSON(ctx, cachePrefix+id, &cached) {
		return &cached, nil
	}

	var row status.Status
	err := r.db.GetContext(ctx, &row, "SELECT * FROM statuses WHERE id = $1", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, status.ErrNotFound()
		}
		return nil, errx.Wrap(err, "failed to find status by id", errx.TypeInternal)
	}

	r.cache.SetJSON(ctx, cachePrefix+id, row)
	return &row, nil
}

func (r *PostgresStatusRepository) FindByField(ctx context.Context, field, value string) (*status.Status, error) {
	if field != "id" && field != "name" {
		return nil, errx.Validation("Campo de busca inválido").WithDetail("field", field)
	}

	var row status.Status
	query := fmt.Sprintf("SELECT * FROM statuses WHERE %s = $1", field)
	err := r.db.GetContext(ctx, &row, query, value)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, status.ErrNotFound()
		}
		return nil, errx.Wrap(err, "failed to find status by field", errx.TypeInternal)
	}
	return &row, nil
}

func (r *PostgresStatusRepository) FindByName(ctx context.Context, name string) (*status.Status, error) {
	return r.FindByField(ctx, "name", name)
}

func (r *PostgresStatusRepository) Create(ctx context.Context, dto status.CreateStatus) (*status.Status, error) {
	taken, err := r.nameTaken(ctx, dto.Name, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, status.ErrNameTaken()
	}

	row := status.Status{ID: uuid.NewString(), Name: dto.Name}

	_, err = r.db.NamedExecContext(ctx, `INSERT INTO statuses (id, name) VALUES (:id, :name)`, row)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return nil, status.ErrNameTaken()
		}
		return nil, errx.Wrap(err, "failed to create status", errx.TypeInternal)
	}

	r.cache.SetJSON(ctx, cachePrefix+row.ID, row)
	return &row, nil
}

func (r *PostgresStatusRepository) Update(ctx context.Context, id string, dto status.UpdateStatus) (*status.Status, error) {
	if dto.Empty() {
		return nil, status.ErrEmptyUpdate()
	}

	current, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if *dto.Name != current.Name {
		taken, err := r.nameTaken(ctx, *dto.Name, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, status.ErrNameTaken()
		}
	}
	current.Name = *dto.Name

	result, err := r.db.NamedExecContext(ctx, `UPDATE statuses SET name = :name WHERE id = :id`, current)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, status.ErrNameTaken()
		}
		return nil, errx.Wrap(err, "failed to update status", errx.TypeInternal)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return nil, status.ErrNotFound()
	}

	r.cache.SetJSON(ctx, cachePrefix+id, *current)
	return current, nil
}

func (r *PostgresStatusRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}

	refs, err := r.referenceCount(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return status.ErrInUse().WithDetail("references", refs)
	}

	result, err := r.db.ExecContext(ctx, "DELETE FROM statuses WHERE id = $1", id)
	if err != nil {
		return errx.Wrap(err, "failed to delete status", errx.TypeInternal)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return status.ErrNotFound()
	}

	r.cache.Delete(ctx, cachePrefix+id)
	return nil
}

func (r *PostgresStatusRepository) nameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM statuses WHERE name = $1)"
	args := []any{name}
	if excludeID != "" {
		query = "SELECT EXISTS(SELECT 1 FROM statuses WHERE name = $1 AND id <> $2)"
		args = append(args, excludeID)
	}
	if err := r.db.GetContext(ctx, &exists, query, args...); err != nil {
		return false, errx.Wrap(err, "failed to check status name uniqueness", errx.TypeInternal)
	}
	return exists, nil
}

func (r *PostgresStatusRepository) referenceCount(ctx context.Context, id string) (int, error) {
	parts := make([]string, len(userTables))
	for i, table := range userTables {
		parts[i] = fmt.Sprintf("(SELECT COUNT(*) FROM %s WHERE status_id = $1)", table)
	}
	query := "SELECT " + strings.Join(parts, " + ")

	var refs int
	if err := r.db.GetContext(ctx, &refs, query, id); err != nil {
		return 0, errx.Wrap(err, "failed to count status references", errx.TypeInternal)
	}
	return refs, nil
}
