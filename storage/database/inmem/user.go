package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core/user"
)

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.table))
	for _, usr := range repo.db.table {
		users = append(users, *usr)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users
}

func (repo *userRepository) CheckEmailUniqueness(_ context.Context, email string, excludedUsers ...user.User) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	excluded := make(map[string]struct{}, len(excludedUsers))
	for _, usr := range excludedUsers {
		excluded[usr.ID] = struct{}{}
	}

	for _, usr := range repo.query() {
		if _, skip := excluded[usr.ID]; skip {
			continue
		}
		if usr.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.table {
		if existing.Email == usr.Email {
			return user.User{}, user.ErrEmailExists
		}
	}
	usr.ID = uuid.New().String()
	repo.db.table[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) QueryAllUsers(_ context.Context) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if usr, ok := repo.db.table[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.query() {
		if usr.Email == email {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields
	origUsr, ok := repo.db.table[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	if usr.Name != "" {
		origUsr.Name = usr.Name
	}
	if usr.Email != "" {
		origUsr.Email = usr.Email
	}
	if usr.Role != "" {
		origUsr.Role = usr.Role
	}
	if usr.PasswordHash != nil {
		origUsr.PasswordHash = usr.PasswordHash
	}
	if !usr.LastLogin.IsZero() {
		origUsr.LastLogin = usr.LastLogin
	}
	if !usr.UpdatedAt.IsZero() {
		origUsr.UpdatedAt = usr.UpdatedAt
	}
	origUsr.IsActive = usr.IsActive

	repo.db.table[usr.ID] = origUsr
	return *origUsr, nil
}

func (repo *userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID != "" {
		if _, err := repo.GetUserByID(ctx, usr.ID); err == nil {
			return repo.UpdateUser(ctx, usr)
		}
	}
	return repo.CreateUser(ctx, usr)
}
