package fakeuserrepo

import (
	"context"
	"fmt"
	"sort"
	"sync"

	dasherrors "github.com/jrsteele09/sales-dashboard/internal/errors"
	"github.com/jrsteele09/sales-dashboard/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	users    map[int]*users.User
	loginIds map[string]int // login to user id
	nextID   int
	lock     sync.RWMutex

	// Err, when set, is returned by every call to simulate a backend outage
	Err error
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:    make(map[int]*users.User),
		loginIds: make(map[string]int),
		nextID:   1,
	}
}

// Insert stores a copy of user, assigning an id when it has none.
func (ur *FakeUserRepo) Insert(user users.User) (int, error) {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if _, exists := ur.loginIds[user.Login]; exists {
		return 0, fmt.Errorf("login %q already exists", user.Login)
	}
	if user.ID == 0 {
		user.ID = ur.nextID
	}
	if user.ID >= ur.nextID {
		ur.nextID = user.ID + 1
	}
	ur.users[user.ID] = &user
	ur.loginIds[user.Login] = user.ID
	return user.ID, nil
}

func (ur *FakeUserRepo) GetByLogin(_ context.Context, login string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	if ur.Err != nil {
		return nil, ur.Err
	}
	id, ok := ur.loginIds[login]
	if !ok {
		return nil, nil
	}
	u := *ur.users[id]
	return &u, nil
}

func (ur *FakeUserRepo) GetByID(_ context.Context, id int) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	if ur.Err != nil {
		return nil, ur.Err
	}
	u, ok := ur.users[id]
	if !ok {
		return nil, dasherrors.Wrapf(dasherrors.ErrNotFound, "user %d", id)
	}
	cp := *u
	return &cp, nil
}

func (ur *FakeUserRepo) List(_ context.Context, storeID *int) ([]*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	if ur.Err != nil {
		return nil, ur.Err
	}
	userList := make([]*users.User, 0, len(ur.users))
	for _, v := range ur.users {
		if storeID != nil && v.StoreID != *storeID {
			continue
		}
		cp := *v
		userList = append(userList, &cp)
	}
	sort.Slice(userList, func(i, j int) bool {
		return userList[i].Name < userList[j].Name
	})
	return userList, nil
}

func (ur *FakeUserRepo) Update(_ context.Context, update users.Update) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if ur.Err != nil {
		return ur.Err
	}
	u, ok := ur.users[update.ID]
	if !ok {
		return dasherrors.Wrapf(dasherrors.ErrNotFound, "user %d", update.ID)
	}
	if other, taken := ur.loginIds[update.Login]; taken && other != update.ID {
		return fmt.Errorf("duplicate key value violates unique constraint \"usuarios_login_key\"")
	}
	delete(ur.loginIds, u.Login)

	permission := users.FormatPermission(update.Permission)
	u.Name = update.Name
	u.Login = update.Login
	u.Role = update.Role
	u.StoreID = update.StoreID
	u.Email = update.Email
	u.NationalID = update.NationalID
	u.EmployeeNumber = update.EmployeeNumber
	u.BirthDate = update.BirthDate
	u.HireDate = update.HireDate
	u.Status = update.Status
	u.Permission = &permission

	ur.loginIds[u.Login] = u.ID
	return nil
}

func (ur *FakeUserRepo) UpdateProfile(_ context.Context, id int, update users.ProfileUpdate) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if ur.Err != nil {
		return ur.Err
	}
	u, ok := ur.users[id]
	if !ok {
		return dasherrors.Wrapf(dasherrors.ErrNotFound, "user %d", id)
	}
	u.Email = update.Email
	u.BirthDate = update.BirthDate
	u.HireDate = update.HireDate
	return nil
}

func (ur *FakeUserRepo) SetSecret(_ context.Context, id int, secret string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if ur.Err != nil {
		return ur.Err
	}
	u, ok := ur.users[id]
	if !ok {
		return dasherrors.Wrapf(dasherrors.ErrNotFound, "user %d", id)
	}
	u.Secret = secret
	return nil
}
