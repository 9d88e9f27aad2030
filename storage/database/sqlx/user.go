package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db: sqlx.NewDb(db, "postgres")}
}

type userRow struct {
	ID           string       `db:"id"`
	Name         string       `db:"name"`
	Email        string       `db:"email"`
	Role         string       `db:"role"`
	IsActive     bool         `db:"is_active"`
	PasswordHash []byte       `db:"password_hash"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
	LastLogin    sql.NullTime `db:"last_login"`
}

func (repo userRepository) row(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		Name:         usr.Name,
		Email:        usr.Email,
		Role:         usr.Role,
		IsActive:     usr.IsActive,
		PasswordHash: usr.PasswordHash,
		CreatedAt:    usr.CreatedAt.UTC(),
		UpdatedAt:    usr.UpdatedAt.UTC(),
		LastLogin:    sql.NullTime{Time: usr.LastLogin.UTC(), Valid: !usr.LastLogin.IsZero()},
	}
}

func (repo userRepository) unrow(row userRow) user.User {
	return user.User{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		Role:         row.Role,
		IsActive:     row.IsActive,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		LastLogin:    row.LastLogin.Time,
	}
}

func (repo userRepository) unrowSlice(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, repo.unrow(row))
	}
	return users
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	query := `SELECT EXISTS (SELECT 1 FROM "user" WHERE email = $1 AND id != ALL($2))`
	ids := make([]string, 0, len(excludedUsers))
	for _, usr := range excludedUsers {
		ids = append(ids, usr.ID)
	}

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, query, email, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	query := `
INSERT INTO "user" (id, name, email, role, is_active, password_hash, created_at, updated_at, last_login)
VALUES (:id, :name, :email, :role, :is_active, :password_hash, :created_at, :updated_at, :last_login)`
	if _, err := repo.db.NamedExecContext(ctx, query, repo.row(usr)); err != nil {
		if isUniqueViolation(err, "user_email_key") {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	ord := core.DBOrdering{Field: "created_at", Ascending: true}
	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM "user" ORDER BY `+ord.String()); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return repo.unrowSlice(rows), nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return user.User{}, user.ErrNotFound
	}
	var row userRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM "user" WHERE id = $1`, id); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "getting user by ID")
	}
	return repo.unrow(row), nil
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var row userRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM "user" WHERE email = $1`, email); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "getting user by email")
	}
	return repo.unrow(row), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	query := `
UPDATE "user" SET
	name = COALESCE(NULLIF(:name, ''), name),
	email = COALESCE(NULLIF(:email, ''), email),
	role = COALESCE(NULLIF(:role, ''), role),
	password_hash = COALESCE(:password_hash, password_hash),
	last_login = COALESCE(:last_login, last_login),
	updated_at = now()
WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, repo.row(usr))
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUserByID(ctx, usr.ID)
}

func (repo userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	existing, err := repo.GetUserByEmail(ctx, usr.Email)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return repo.CreateUser(ctx, usr)
		}
		return user.User{}, err
	}
	usr.ID = existing.ID
	return repo.UpdateUser(ctx, usr)
}
