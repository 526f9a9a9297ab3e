package users

import (
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is a row of the usuarios table. Optional columns are pointers.
type User struct {
	ID             int        `json:"id"`
	Name           string     `json:"nome"`
	Login          string     `json:"login"`
	Secret         string     `json:"-"` // bcrypt hash or, for legacy rows, plaintext - never serialize
	Role           string     `json:"tipo"`
	StoreID        int        `json:"loja_id"`
	Permission     *string    `json:"permissao,omitempty"` // stored as text
	Status         *string    `json:"status,omitempty"`
	NationalID     *string    `json:"cpf,omitempty"`
	EmployeeNumber *string    `json:"matricula,omitempty"`
	Email          *string    `json:"email,omitempty"`
	BirthDate      *time.Time `json:"data_nascimento,omitempty"`
	HireDate       *time.Time `json:"data_contratacao,omitempty"`
}

// Update holds the editable columns of a usuarios row.
type Update struct {
	ID             int        `json:"id"`
	Name           string     `json:"nome"`
	Login          string     `json:"login"`
	Role           string     `json:"tipo"`
	StoreID        int        `json:"loja_id"`
	Email          *string    `json:"email"`
	NationalID     *string    `json:"cpf"`
	EmployeeNumber *string    `json:"matricula"`
	BirthDate      *time.Time `json:"data_nascimento"`
	HireDate       *time.Time `json:"data_contratacao"`
	Status         *string    `json:"status"`
	Permission     int        `json:"permissao"`
}

// ProfileUpdate holds the columns a user may change on their own record.
type ProfileUpdate struct {
	Email     *string    `json:"email"`
	BirthDate *time.Time `json:"data_nascimento"`
	HireDate  *time.Time `json:"data_contratacao"`
}

// HasSecret reports whether the row carries a usable secret. NULL and blank
// senha columns never authenticate.
func (u *User) HasSecret() bool {
	return strings.TrimSpace(u.Secret) != ""
}

// PermissionLevel coerces the stored permission text to an integer.
// Blank or non-numeric values yield 0, fractional values are truncated.
func (u *User) PermissionLevel() int {
	if u.Permission == nil {
		return 0
	}
	return ParsePermission(*u.Permission)
}

func ParsePermission(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}

// FormatPermission is the text form written back to the permissao column
func FormatPermission(level int) string {
	return strconv.Itoa(level)
}

func HashPasswordWithCost(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
