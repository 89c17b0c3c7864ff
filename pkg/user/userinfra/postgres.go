package userinfra

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/infinitynet/api/pkg/cachex"
	"github.com/infinitynet/api/pkg/errx"
	"github.com/infinitynet/api/pkg/hashx"
	"github.com/infinitynet/api/pkg/kernel"
	"github.com/infinitynet/api/pkg/user"
)

const cachePrefix = "user:"

var uniqueFields = []string{"email", "cpf", "telefone"}

const selectJoined = `
	SELECT u.id, u.cpf, u.nome, u.telefone, u.email, u.senha, u.avatar,
	       u.cidade, u.estado, u.role_id, u.status_id, u.last_login_at,
	       u.failed_attempts, u.created_at, u.updated_at,
	       r.name AS role_name, r.level AS role_level, s.name AS status_name
	FROM users u
	LEFT JOIN roles r ON r.id = u.role_id
	LEFT JOIN statuses s ON s.id = u.status_id`

type PostgresUserRepository struct {
	db         *sqlx.DB
	cache      *cachex.Facade
	bcryptCost int
}

func NewPostgresUserRepository(db *sqlx.DB, cache *cachex.Facade, bcryptCost int) user.Repository {
	if bcryptCost <= 0 {
		bcryptCost = hashx.DefaultCost
	}
	return &PostgresUserRepository{db: db, cache: cache, bcryptCost: bcryptCost}
}

func (r *PostgresUserRepository) FindAll(ctx context.Context, opts kernel.PaginationOptions, filter user.ListFilter) (kernel.Paginated[user.User], error) {
	where, args := buildFilter(filter)

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM users u"+where, args...); err != nil {
		return kernel.Paginated[user.User]{}, errx.Wrap(err, "failed to count users", errx.TypeInternal)
	}

	var rows []userPersistence
	listQuery := fmt.Sprintf(
		"%s%s ORDER BY u.nome ASC LIMIT $%d OFFSET $%d",
		selectJoined, where, len(args)+1, len(args)+2,
	)
	args = append(args, opts.Limit, opts.Offset())
	if err := r.db.SelectContext(ctx, &rows, listQuery, args...); err != nil {
		return kernel.Paginated[user.User]{}, errx.Wrap(err, "failed to list users", errx.TypeInternal)
	}

	return kernel.NewPaginated(toDomainSlice(rows), opts.Page, opts.Limit, total), nil
}

func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	var cached user.User
	if r.cache.GetJSON(ctx, cachePrefix+id, &cached) {
		return &cached, nil
	}
	return r.fetch(ctx, "u.id", id, true)
}

func (r *PostgresUserRepository) FindByField(ctx context.Context, field, value string) (*user.User, error) {
	if !allowedField(field) {
		return nil, errx.Validation("Campo de busca inválido").WithDetail("field", field)
	}
	return r.fetch(ctx, "u."+field, value, false)
}

func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.fetch(ctx, "u.email", email, false)
}

func (r *PostgresUserRepository) FindByCPF(ctx context.Context, cpf string) (*user.User, error) {
	return r.fetch(ctx, "u.cpf", cpf, false)
}

func (r *PostgresUserRepository) Create(ctx context.Context, dto user.CreateUser) (*user.User, error) {
	if err := r.checkReferences(ctx, &dto.RoleID, &dto.StatusID); err != nil {
		return nil, err
	}
	values := map[string]string{"email": dto.Email, "cpf": dto.CPF, "telefone": dto.Telefone}
	if err := r.checkUnique(ctx, values, ""); err != nil {
		return nil, err
	}

	hashed, err := hashx.Hash(dto.Senha, r.bcryptCost)
	if err != nil {
		return nil, errx.Wrap(err, "failed to hash user credential", errx.TypeInternal)
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (id, cpf, nome, telefone, email, senha, avatar,
		                   cidade, estado, role_id, status_id, failed_attempts,
		                   created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 0, $12, $12)`,
		id, dto.CPF, dto.Nome, dto.Telefone, dto.Email, hashed, dto.Avatar,
		dto.Cidade, dto.Estado, dto.RoleID, dto.StatusID, now)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return nil, user.ErrFieldTaken(constraintField(pqErr))
		}
		return nil, errx.Wrap(err, "failed to create user", errx.TypeInternal)
	}

	return r.fetch(ctx, "u.id", id, true)
}

func (r *PostgresUserRepository) Update(ctx context.Context, id string, dto user.UpdateUser) (*user.User, error) {
	if err := r.requireExists(ctx, id); err != nil {
		return nil, err
	}
	if err := r.checkReferences(ctx, dto.RoleID, dto.StatusID); err != nil {
		return nil, err
	}

	values := map[string]string{}
	if dto.Email != nil {
		values["email"] = *dto.Email
	}
	if dto.CPF != nil {
		values["cpf"] = *dto.CPF
	}
	if dto.Telefone != nil {
		values["telefone"] = *dto.Telefone
	}
	if err := r.checkUnique(ctx, values, id); err != nil {
		return nil, err
	}

	var hashed string
	if dto.Senha != nil {
		h, err := hashx.Hash(*dto.Senha, r.bcryptCost)
		if err != nil {
			return nil, errx.Wrap(err, "failed to hash user credential", errx.TypeInternal)
		}
		hashed = h
	}

	set, args := updateClauses(dto, hashed)
	if len(set) == 0 {
		return nil, user.ErrEmptyUpdate()
	}

	args = append(args, time.Now().UTC())
	set = append(set, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, id)

	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(set, ", "), len(args))
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, user.ErrFieldTaken(constraintField(pqErr))
		}
		return nil, errx.Wrap(err, "failed to update user", errx.TypeInternal)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return nil, user.ErrNotFound()
	}

	return r.fetch(ctx, "u.id", id, true)
}

func (r *PostgresUserRepository) Delete(ctx context.Context, id string) error {
	if err := r.requireExists(ctx, id); err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return errx.Wrap(err, "failed to delete user", errx.TypeInternal)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return user.ErrNotFound()
	}

	r.cache.Delete(ctx, cachePrefix+id)
	return nil
}

func (r *PostgresUserRepository) IncrementFailedAttempts(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET failed_attempts = failed_attempts + 1, updated_at = NOW() WHERE id = $1", id)
	if err != nil {
		return errx.Wrap(err, "failed to increment failed attempts", errx.TypeInternal)
	}
	_, err = r.fetch(ctx, "u.id", id, true)
	return err
}

func (r *PostgresUserRepository) RegisterSuccessfulLogin(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET failed_attempts = 0, last_login_at = NOW(), updated_at = NOW() WHERE id = $1", id)
	if err != nil {
		return errx.Wrap(err, "failed to register successful login", errx.TypeInternal)
	}
	_, err = r.fetch(ctx, "u.id", id, true)
	return err
}

// fetch loads one joined row; refresh controls whether the cache entry is
// (re)populated.
func (r *PostgresUserRepository) fetch(ctx context.Context, column, value string, refresh bool) (*user.User, error) {
	var row userPersistence
	query := fmt.Sprintf("%s WHERE %s = $1", selectJoined, column)
	err := r.db.GetContext(ctx, &row, query, value)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, user.ErrNotFound()
		}
		return nil, errx.Wrap(err, "failed to find user", errx.TypeInternal)
	}

	domain := toDomain(row)
	if refresh {
		r.cache.SetJSON(ctx, cachePrefix+domain.ID, domain)
	}
	return &domain, nil
}

func (r *PostgresUserRepository) requireExists(ctx context.Context, id string) error {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)", id); err != nil {
		return errx.Wrap(err, "failed to check user existence", errx.TypeInternal)
	}
	if !exists {
		return user.ErrNotFound()
	}
	return nil
}

// checkReferences validates the role/status foreign keys when provided.
func (r *PostgresUserRepository) checkReferences(ctx context.Context, roleID, statusID *string) error {
	if roleID != nil {
		var exists bool
		if err := r.db.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM roles WHERE id = $1)", *roleID); err != nil {
			return errx.Wrap(err, "failed to check role reference", errx.TypeInternal)
		}
		if !exists {
			return user.ErrRoleNotFound()
		}
	}
	if statusID != nil {
		var exists bool
		if err := r.db.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM statuses WHERE id = $1)", *statusID); err != nil {
			return errx.Wrap(err, "failed to check status reference", errx.TypeInternal)
		}
		if !exists {
			return user.ErrStatusNotFound()
		}
	}
	return nil
}

// checkUnique pre-checks each provided unique field, excluding the
// record's own id on update.
func (r *PostgresUserRepository) checkUnique(ctx context.Context, values map[string]string, excludeID string) error {
	for _, field := range uniqueFields {
		value, ok := values[field]
		if !ok {
			continue
		}
		query, args := uniqueExistsQuery(field, value, excludeID)
		var exists bool
		if err := r.db.GetContext(ctx, &exists, query, args...); err != nil {
			return errx.Wrap(err, "failed to check unique field", errx.TypeInternal)
		}
		if exists {
			return user.ErrFieldTaken(field)
		}
	}
	return nil
}

// uniqueExistsQuery builds the pre-check for one unique field. A
// non-empty excludeID removes the record's own row from the match, so
// an update keeping a field unchanged does not collide with itself.
func uniqueExistsQuery(field, value, excludeID string) (string, []any) {
	if excludeID == "" {
		return fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM users WHERE %s = $1)", field), []any{value}
	}
	return fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM users WHERE %s = $1 AND id <> $2)", field), []any{value, excludeID}
}

func buildFilter(filter user.ListFilter) (string, []any) {
	var clauses []string
	var args []any

	like := func(column, value string) {
		args = append(args, "%"+value+"%")
		clauses = append(clauses, fmt.Sprintf("u.%s ILIKE $%d", column, len(args)))
	}
	eq := func(column, value string) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("u.%s = $%d", column, len(args)))
	}

	if filter.Nome != "" {
		like("nome", filter.Nome)
	}
	if filter.Email != "" {
		eq("email", filter.Email)
	}
	if filter.CPF != "" {
		eq("cpf", filter.CPF)
	}
	if filter.Cidade != "" {
		like("cidade", filter.Cidade)
	}
	if filter.Estado != "" {
		eq("estado", filter.Estado)
	}
	if filter.RoleID != "" {
		eq("role_id", filter.RoleID)
	}
	if filter.StatusID != "" {
		eq("status_id", filter.StatusID)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func buildPatch(dto user.UpdateUser) ([]string, []any) {
	var set []string
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if dto.CPF != nil {
		add("cpf", *dto.CPF)
	}
	if dto.Nome != nil {
		add("nome", *dto.Nome)
	}
	if dto.Telefone != nil {
		add("telefone", *dto.Telefone)
	}
	if dto.Email != nil {
		add("email", *dto.Email)
	}
	if dto.Avatar != nil {
		add("avatar", *dto.Avatar)
	}
	if dto.Cidade != nil {
		add("cidade", *dto.Cidade)
	}
	if dto.Estado != nil {
		add("estado", *dto.Estado)
	}
	if dto.RoleID != nil {
		add("role_id", *dto.RoleID)
	}
	if dto.StatusID != nil {
		add("status_id", *dto.StatusID)
	}
	return set, args
}

// updateClauses merges the field patch with the credential clause. The
// credential arrives already hashed; empty means it was not provided.
// A credential-only update therefore still yields a non-empty SET list.
func updateClauses(dto user.UpdateUser, hashedSenha string) ([]string, []any) {
	set, args := buildPatch(dto)
	if hashedSenha != "" {
		args = append(args, hashedSenha)
		set = append(set, fmt.Sprintf("senha = $%d", len(args)))
	}
	return set, args
}

func allowedField(field string) bool {
	switch field {
	case "id", "email", "cpf", "telefone", "nome", "cidade", "estado":
		return true
	}
	return false
}

// constraintField maps a pq unique-violation constraint name back to the
// offending column.
func constraintField(pqErr *pq.Error) string {
	for _, field := range uniqueFields {
		if strings.Contains(pqErr.Constraint, field) {
			return field
		}
	}
	return "único"
}

type userPersistence struct {
	ID             string         `db:"id"`
	CPF            string         `db:"cpf"`
	Nome           string         `db:"nome"`
	Telefone       string         `db:"telefone"`
	Email          string         `db:"email"`
	Senha          string         `db:"senha"`
	Avatar         sql.NullString `db:"avatar"`
	Cidade         string         `db:"cidade"`
	Estado         string         `db:"estado"`
	RoleID         string         `db:"role_id"`
	StatusID       string         `db:"status_id"`
	LastLoginAt    *time.Time     `db:"last_login_at"`
	FailedAttempts int            `db:"failed_attempts"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
	RoleName       sql.NullString `db:"role_name"`
	RoleLevel      sql.NullInt64  `db:"role_level"`
	StatusName     sql.NullString `db:"status_name"`
}

func toDomain(p userPersistence) user.User {
	u := user.User{
		ID:             p.ID,
		CPF:            p.CPF,
		Nome:           p.Nome,
		Telefone:       p.Telefone,
		Email:          p.Email,
		Senha:          p.Senha,
		Cidade:         p.Cidade,
		Estado:         p.Estado,
		RoleID:         p.RoleID,
		StatusID:       p.StatusID,
		LastLoginAt:    p.LastLoginAt,
		FailedAttempts: p.FailedAttempts,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.Avatar.Valid {
		u.Avatar = &p.Avatar.String
	}
	if p.RoleName.Valid {
		u.Role = &kernel.RoleRef{ID: p.RoleID, Name: p.RoleName.String, Level: int(p.RoleLevel.Int64)}
	}
	if p.StatusName.Valid {
		u.Status = &kernel.StatusRef{ID: p.StatusID, Name: p.StatusName.String}
	}
	return u
}

func toDomainSlice(rows []userPersistence) []user.User {
	out := make([]user.User, len(rows))
	for i, row := range rows {
		out[i] = toDomain(row)
	}
	return out
}
