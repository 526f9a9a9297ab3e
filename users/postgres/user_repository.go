package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jrsteele09/sales-dashboard/internal/database"
	dasherrors "github.com/jrsteele09/sales-dashboard/internal/errors"
	"github.com/jrsteele09/sales-dashboard/users"
)

const userColumns = `id, nome, login, senha, tipo, loja_id, permissao, status, "CPF", matricula, email, data_nascimento, data_contratacao`

var _ users.UserRepo = (*UserRepository)(nil)

// UserRepository reads and writes the usuarios table.
type UserRepository struct {
	db database.DB
}

func NewUserRepository(db database.DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*users.User, error) {
	var u users.User
	var secret *string
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Login,
		&secret,
		&u.Role,
		&u.StoreID,
		&u.Permission,
		&u.Status,
		&u.NationalID,
		&u.EmployeeNumber,
		&u.Email,
		&u.BirthDate,
		&u.HireDate,
	)
	if err != nil {
		return nil, err
	}
	if secret != nil {
		u.Secret = *secret
	}
	return &u, nil
}

// GetByLogin returns the single row whose login matches exactly, or nil.
func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*users.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM usuarios WHERE login = $1 LIMIT 2`, login)
	if err != nil {
		return nil, fmt.Errorf("failed to query user by login: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to query user by login: %w", err)
		}
		return nil, nil
	}
	u, err := scanUser(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	if rows.Next() {
		return nil, fmt.Errorf("multiple users with login %q", login)
	}
	return u, rows.Err()
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (*users.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM usuarios WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dasherrors.Wrapf(dasherrors.ErrNotFound, "user %d", id)
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return u, nil
}

func (r *UserRepository) List(ctx context.Context, storeID *int) ([]*users.User, error) {
	query := `SELECT ` + userColumns + ` FROM usuarios`
	var args []any
	if storeID != nil {
		query += ` WHERE loja_id = $1`
		args = append(args, *storeID)
	}
	query += ` ORDER BY nome`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var list []*users.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		list = append(list, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return list, nil
}

func (r *UserRepository) Update(ctx context.Context, update users.Update) error {
	query := `UPDATE usuarios SET
		nome = $2,
		login = $3,
		tipo = $4,
		loja_id = $5,
		email = $6,
		"CPF" = $7,
		matricula = $8,
		data_nascimento = $9,
		data_contratacao = $10,
		status = $11,
		permissao = $12
	WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		update.ID,
		update.Name,
		update.Login,
		update.Role,
		update.StoreID,
		update.Email,
		update.NationalID,
		update.EmployeeNumber,
		update.BirthDate,
		update.HireDate,
		update.Status,
		users.FormatPermission(update.Permission),
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dasherrors.Wrapf(dasherrors.ErrNotFound, "user %d", update.ID)
	}
	return nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id int, update users.ProfileUpdate) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE usuarios SET email = $2, data_nascimento = $3, data_contratacao = $4 WHERE id = $1`,
		id, update.Email, update.BirthDate, update.HireDate)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dasherrors.Wrapf(dasherrors.ErrNotFound, "user %d", id)
	}
	return nil
}

func (r *UserRepository) SetSecret(ctx context.Context, id int, secret string) error {
	tag, err := r.db.Exec(ctx, `UPDATE usuarios SET senha = $2 WHERE id = $1`, id, secret)
	if err != nil {
		return fmt.Errorf("failed to update secret: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dasherrors.Wrapf(dasherrors.ErrNotFound, "user %d", id)
	}
	return nil
}
