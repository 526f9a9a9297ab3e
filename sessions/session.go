package sessions

import (
	"encoding/json"

	dasherrors "github.com/jrsteele09/sales-dashboard/internal/errors"
	"github.com/jrsteele09/sales-dashboard/users"
)

// StatusActive is the status every new session carries. The stored record
// status is not consulted.
const StatusActive = "ativo"

// Session is the authenticated actor. It is never modified in place; a new
// login replaces it.
type Session struct {
	ID             int     `json:"id"`
	Name           string  `json:"nome"`
	Login          string  `json:"login"`
	Role           string  `json:"tipo"`
	StoreID        int     `json:"loja_id"`
	Permission     int     `json:"permissao"`
	Status         string  `json:"status"`
	NationalID     *string `json:"cpf,omitempty"`
	EmployeeNumber *string `json:"matricula,omitempty"`
}

// FromUser builds the session for a verified credential record.
func FromUser(u *users.User) Session {
	s := Session{
		ID:         u.ID,
		Name:       u.Name,
		Login:      u.Login,
		Role:       u.Role,
		StoreID:    u.StoreID,
		Permission: u.PermissionLevel(),
		Status:     StatusActive,
	}
	if u.NationalID != nil && *u.NationalID != "" {
		s.NationalID = copyString(u.NationalID)
	}
	s.EmployeeNumber = copyString(u.EmployeeNumber)
	return s
}

func (s Session) clone() Session {
	s.NationalID = copyString(s.NationalID)
	s.EmployeeNumber = copyString(s.EmployeeNumber)
	return s
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

func encode(s Session) ([]byte, error) {
	return json.Marshal(s)
}

// decode parses a stored session. Anything that is not a JSON object with a
// login is corrupt.
func decode(data []byte) (Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, dasherrors.Wrapf(dasherrors.ErrCorruptSessionData, "%v", err)
	}
	if s.Login == "" {
		return Session{}, dasherrors.Wrapf(dasherrors.ErrCorruptSessionData, "missing login")
	}
	return s, nil
}
