// Package accounts implements the user record screens: editing another
// user's record and the actor's own settings.
package accounts

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jrsteele09/sales-dashboard/auth"
	dasherrors "github.com/jrsteele09/sales-dashboard/internal/errors"
	"github.com/jrsteele09/sales-dashboard/internal/metrics"
	"github.com/jrsteele09/sales-dashboard/roles"
	"github.com/jrsteele09/sales-dashboard/sessions"
	"github.com/jrsteele09/sales-dashboard/stores"
	"github.com/jrsteele09/sales-dashboard/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// Record kinds used in metrics
const (
	KindUser     = "user"
	KindProfile  = "profile"
	KindPassword = "password"
)

const defaultMinPasswordLength = 6

// RoleOption is an entry of the role picker.
type RoleOption struct {
	Code  string `json:"value"`
	Label string `json:"label"`
}

// EditForm is what the edit screen needs for one user.
type EditForm struct {
	User      *users.User     `json:"usuario"`
	RoleLabel string          `json:"descricao_tipo"`
	Roles     []RoleOption    `json:"tipos"`
	Stores    []*stores.Store `json:"lojas"`
	// CanChangeStore is false for same-store editors; the store picker is hidden
	CanChangeStore bool `json:"pode_alterar_loja"`
}

// Editor applies record changes on behalf of an authenticated actor.
// Authorization here is advisory, the database enforces row level access.
type Editor struct {
	users             users.UserRepo
	stores            stores.Repo
	verifier          auth.Verifier
	bcryptCost        int
	minPasswordLength int
}

// EditorOption defines a function type to modify the Editor instance.
type EditorOption func(*Editor)

// WithVerifier sets the secret policy used to check the current password
func WithVerifier(v auth.Verifier) EditorOption {
	return func(e *Editor) {
		e.verifier = v
	}
}

func WithBcryptCost(cost int) EditorOption {
	return func(e *Editor) {
		e.bcryptCost = cost
	}
}

func WithMinPasswordLength(n int) EditorOption {
	return func(e *Editor) {
		e.minPasswordLength = n
	}
}

func NewEditor(userRepo users.UserRepo, storeRepo stores.Repo, options ...EditorOption) (*Editor, error) {
	if userRepo == nil {
		return nil, errors.New("[accounts.NewEditor] users repo is required")
	}
	if storeRepo == nil {
		return nil, errors.New("[accounts.NewEditor] stores repo is required")
	}
	e := &Editor{
		users:             userRepo,
		stores:            storeRepo,
		verifier:          auth.Verifier{Legacy: auth.DefaultLegacyPolicy},
		bcryptCost:        bcrypt.DefaultCost,
		minPasswordLength: defaultMinPasswordLength,
	}
	for _, opt := range options {
		opt(e)
	}
	return e, nil
}

// List returns the users the actor may edit: every user for all-store
// editors, the actor's own store otherwise.
func (e *Editor) List(ctx context.Context, actor sessions.Session) ([]*users.User, error) {
	c := roles.CapabilitiesFor(actor.Role)
	var storeID *int
	switch {
	case c.Has(roles.EditAllStoreUsers):
	case c.Has(roles.EditSameStoreUsers):
		storeID = &actor.StoreID
	default:
		return nil, dasherrors.ErrForbidden
	}
	list, err := e.users.List(ctx, storeID)
	if err != nil {
		return nil, dasherrors.Transport(err, "Erro ao carregar usuários")
	}
	return list, nil
}

// Load returns the edit form for targetID.
func (e *Editor) Load(ctx context.Context, actor sessions.Session, targetID int) (*EditForm, error) {
	if !roles.CanEditAnyUser(actor.Role) {
		return nil, dasherrors.ErrForbidden
	}
	target, err := e.users.GetByID(ctx, targetID)
	if err != nil {
		if dasherrors.Is(err, dasherrors.ErrNotFound) {
			return nil, err
		}
		return nil, dasherrors.Transport(err, "Erro ao carregar dados do usuário")
	}
	if !roles.CanEditUser(actor.Role, actor.StoreID, target.StoreID) {
		return nil, dasherrors.ErrForbidden
	}

	form := &EditForm{
		User:           target,
		RoleLabel:      roles.Label(target.Role),
		Roles:          roleOptions(),
		Stores:         []*stores.Store{},
		CanChangeStore: roles.CapabilitiesFor(actor.Role).Has(roles.EditAllStoreUsers),
	}
	if form.CanChangeStore {
		list, err := e.stores.List(ctx)
		if err != nil {
			// The form still works without the picker
			log.Err(err).Msg("Erro ao buscar lojas")
		} else {
			form.Stores = stores.SortByNumber(list)
		}
	}
	return form, nil
}

// Save writes update after checking the actor may edit the stored record.
func (e *Editor) Save(ctx context.Context, actor sessions.Session, update users.Update) error {
	err := e.save(ctx, actor, update)
	metrics.RecordUpdate(KindUser, err)
	return err
}

func (e *Editor) save(ctx context.Context, actor sessions.Session, update users.Update) error {
	if !roles.CanEditAnyUser(actor.Role) {
		return dasherrors.ErrForbidden
	}
	current, err := e.users.GetByID(ctx, update.ID)
	if err != nil {
		if dasherrors.Is(err, dasherrors.ErrNotFound) {
			return err
		}
		return dasherrors.Transport(err, "Erro ao salvar usuário")
	}
	if !roles.CanEditUser(actor.Role, actor.StoreID, current.StoreID) {
		return dasherrors.ErrForbidden
	}
	if !roles.CanEditUser(actor.Role, actor.StoreID, update.StoreID) {
		return dasherrors.ErrForbidden
	}
	if err := validateUpdate(update); err != nil {
		return err
	}
	if update.StoreID != current.StoreID {
		if _, err := e.stores.Get(ctx, update.StoreID); err != nil {
			if dasherrors.Is(err, dasherrors.ErrNotFound) {
				return dasherrors.Validation("Loja inválida")
			}
			return dasherrors.Transport(err, "Erro ao salvar usuário")
		}
	}

	if err := e.users.Update(ctx, update); err != nil {
		if dasherrors.Is(err, dasherrors.ErrNotFound) {
			return err
		}
		return dasherrors.Transport(err, "Erro ao salvar usuário")
	}
	log.Info().Int("actor_id", actor.ID).Int("user_id", update.ID).Msg("User record updated")
	return nil
}

func validateUpdate(update users.Update) error {
	if strings.TrimSpace(update.Name) == "" {
		return dasherrors.Validation("Nome é obrigatório")
	}
	if strings.TrimSpace(update.Login) == "" {
		return dasherrors.Validation("Login é obrigatório")
	}
	if _, ok := roles.Parse(update.Role); !ok {
		return dasherrors.Validation(fmt.Sprintf("Função desconhecida: %s", update.Role))
	}
	return nil
}

// UpdateProfile changes the actor's own email and dates.
func (e *Editor) UpdateProfile(ctx context.Context, actor sessions.Session, update users.ProfileUpdate) error {
	err := e.users.UpdateProfile(ctx, actor.ID, update)
	if err != nil && !dasherrors.Is(err, dasherrors.ErrNotFound) {
		err = dasherrors.Transport(err, "Erro ao atualizar perfil")
	}
	metrics.RecordUpdate(KindProfile, err)
	return err
}

// ChangePassword replaces the actor's secret with a bcrypt hash of newPassword.
func (e *Editor) ChangePassword(ctx context.Context, actor sessions.Session, currentPassword, newPassword, confirm string) error {
	err := e.changePassword(ctx, actor, currentPassword, newPassword, confirm)
	metrics.RecordUpdate(KindPassword, err)
	return err
}

func (e *Editor) changePassword(ctx context.Context, actor sessions.Session, currentPassword, newPassword, confirm string) error {
	if newPassword != confirm {
		return dasherrors.Validation("A nova senha e confirmação devem ser iguais")
	}
	if utf8.RuneCountInString(newPassword) < e.minPasswordLength {
		return dasherrors.Validation(fmt.Sprintf("A nova senha deve ter pelo menos %d caracteres", e.minPasswordLength))
	}

	user, err := e.users.GetByID(ctx, actor.ID)
	if err != nil {
		if dasherrors.Is(err, dasherrors.ErrNotFound) {
			return err
		}
		return dasherrors.Transport(err, "Erro ao alterar senha")
	}
	if ok, _ := e.verifier.Verify(user.Secret, currentPassword); !ok {
		return dasherrors.Validation("Senha atual incorreta")
	}

	hash, err := users.HashPasswordWithCost(newPassword, e.bcryptCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	if err := e.users.SetSecret(ctx, actor.ID, hash); err != nil {
		return dasherrors.Transport(err, "Erro ao alterar senha")
	}
	log.Info().Int("user_id", actor.ID).Msg("Password changed")
	return nil
}

func roleOptions() []RoleOption {
	all := roles.All()
	options := make([]RoleOption, 0, len(all))
	for _, r := range all {
		options = append(options, RoleOption{Code: string(r), Label: roles.Label(string(r))})
	}
	return options
}
