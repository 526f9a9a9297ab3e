package postgres_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jrsteele09/sales-dashboard/auth"
	dasherrors "github.com/jrsteele09/sales-dashboard/internal/errors"
	"github.com/jrsteele09/sales-dashboard/internal/utils"
	"github.com/jrsteele09/sales-dashboard/users"
	"github.com/jrsteele09/sales-dashboard/users/postgres"
	"github.com/stretchr/testify/require"
)

// fakeRows replays fixed rows; each row holds values in userColumns order.
type fakeRows struct {
	rows [][]any
	pos  int
	err  error
}

func (f *fakeRows) Close()                                       {}
func (f *fakeRows) Err() error                                   { return f.err }
func (f *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (f *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (f *fakeRows) RawValues() [][]byte                          { return nil }
func (f *fakeRows) Conn() *pgx.Conn                              { return nil }
func (f *fakeRows) Values() ([]any, error)                       { return f.rows[f.pos-1], nil }

func (f *fakeRows) Next() bool {
	if f.pos >= len(f.rows) {
		return false
	}
	f.pos++
	return true
}

func (f *fakeRows) Scan(dest ...any) error {
	return assign(f.rows[f.pos-1], dest)
}

type fakeRow struct {
	values []any
	err    error
}

func (f fakeRow) Scan(dest ...any) error {
	if f.err != nil {
		return f.err
	}
	return assign(f.values, dest)
}

func assign(values, dest []any) error {
	if len(values) != len(dest) {
		return errors.New("column count mismatch")
	}
	for i, v := range values {
		target := reflect.ValueOf(dest[i]).Elem()
		if v == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		val := reflect.ValueOf(v)
		if target.Kind() == reflect.Pointer && val.Kind() != reflect.Pointer {
			p := reflect.New(target.Type().Elem())
			p.Elem().Set(val)
			val = p
		}
		target.Set(val)
	}
	return nil
}

type execCall struct {
	sql  string
	args []any
}

type fakeDB struct {
	rows     [][]any
	row      fakeRow
	queryErr error
	tag      string
	execErr  error
	execs    []execCall
	queries  []string
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	f.queries = append(f.queries, sql)
	return f.row
}

func (f *fakeDB) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	f.queries = append(f.queries, sql)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &fakeRows{rows: f.rows}, nil
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, execCall{sql: sql, args: args})
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	return pgconn.NewCommandTag(f.tag), nil
}

func jdoeRow() []any {
	return []any{7, "John Doe", "jdoe", "$2b$10$hash", "gerente", 7, "3", "inativo", nil, "M-77", nil, nil, nil}
}

func TestUserRepository_GetByLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("single row", func(t *testing.T) {
		db := &fakeDB{rows: [][]any{jdoeRow()}}
		u, err := postgres.NewUserRepository(db).GetByLogin(ctx, "jdoe")
		require.NoError(t, err)
		require.NotNil(t, u)
		require.Equal(t, 7, u.ID)
		require.Equal(t, "$2b$10$hash", u.Secret)
		require.Equal(t, 3, u.PermissionLevel())
		require.Nil(t, u.NationalID)
		require.Equal(t, "M-77", utils.Value(u.EmployeeNumber))
		require.Contains(t, db.queries[0], "WHERE login = $1")
	})

	t.Run("null secret", func(t *testing.T) {
		row := jdoeRow()
		row[3] = nil
		u, err := postgres.NewUserRepository(&fakeDB{rows: [][]any{row}}).GetByLogin(ctx, "jdoe")
		require.NoError(t, err)
		require.Empty(t, u.Secret)
		require.False(t, u.HasSecret())
	})

	t.Run("no rows", func(t *testing.T) {
		u, err := postgres.NewUserRepository(&fakeDB{}).GetByLogin(ctx, "ghost")
		require.NoError(t, err)
		require.Nil(t, u)
	})

	t.Run("duplicate logins are an error", func(t *testing.T) {
		db := &fakeDB{rows: [][]any{jdoeRow(), jdoeRow()}}
		_, err := postgres.NewUserRepository(db).GetByLogin(ctx, "jdoe")
		require.Error(t, err)
		require.Contains(t, err.Error(), "multiple users")
	})

	t.Run("query failure", func(t *testing.T) {
		db := &fakeDB{queryErr: errors.New("connection refused")}
		_, err := postgres.NewUserRepository(db).GetByLogin(ctx, "jdoe")
		require.ErrorContains(t, err, "connection refused")
	})
}

func TestUserRepository_NullSecretCannotLogIn(t *testing.T) {
	ctx := context.Background()
	row := []any{8, "No Pass", "nopass", nil, "admin", 99, "5", "ativo", nil, nil, nil, nil, nil}

	for _, password := range []string{"", " ", "null"} {
		db := &fakeDB{rows: [][]any{row}}
		service, err := auth.NewService(postgres.NewUserRepository(db))
		require.NoError(t, err)

		_, err = service.Authenticate(ctx, "nopass", password)
		require.ErrorIs(t, err, dasherrors.ErrInvalidCredentials, "password %q", password)
	}
}

func TestUserRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		db := &fakeDB{row: fakeRow{values: jdoeRow()}}
		u, err := postgres.NewUserRepository(db).GetByID(ctx, 7)
		require.NoError(t, err)
		require.Equal(t, "jdoe", u.Login)
	})

	t.Run("not found", func(t *testing.T) {
		db := &fakeDB{row: fakeRow{err: pgx.ErrNoRows}}
		_, err := postgres.NewUserRepository(db).GetByID(ctx, 7)
		require.ErrorIs(t, err, dasherrors.ErrNotFound)
	})
}

func TestUserRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("writes permission as text", func(t *testing.T) {
		db := &fakeDB{tag: "UPDATE 1"}
		err := postgres.NewUserRepository(db).Update(ctx, users.Update{ID: 7, Name: "John", Login: "jdoe", Role: "gerente", StoreID: 7, Permission: 4})
		require.NoError(t, err)
		require.Len(t, db.execs, 1)
		require.True(t, strings.HasPrefix(strings.TrimSpace(db.execs[0].sql), "UPDATE usuarios SET"))
		require.Equal(t, "4", db.execs[0].args[11])
	})

	t.Run("missing row", func(t *testing.T) {
		db := &fakeDB{tag: "UPDATE 0"}
		err := postgres.NewUserRepository(db).Update(ctx, users.Update{ID: 99})
		require.ErrorIs(t, err, dasherrors.ErrNotFound)
	})

	t.Run("exec failure", func(t *testing.T) {
		db := &fakeDB{execErr: errors.New("timeout")}
		err := postgres.NewUserRepository(db).SetSecret(ctx, 7, "$2b$")
		require.ErrorContains(t, err, "timeout")
	})
}
