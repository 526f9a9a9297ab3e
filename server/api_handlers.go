package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	dasherrors "github.com/jrsteele09/sales-dashboard/internal/errors"
	"github.com/jrsteele09/sales-dashboard/internal/utils"
	"github.com/jrsteele09/sales-dashboard/navigation"
	"github.com/jrsteele09/sales-dashboard/roles"
	"github.com/jrsteele09/sales-dashboard/sessions"
	"github.com/jrsteele09/sales-dashboard/stores"
	"github.com/jrsteele09/sales-dashboard/users"
	"github.com/rs/zerolog/log"
)

const dateLayout = "2006-01-02"

// SessionResponse is the body of GET /api/session
type SessionResponse struct {
	User         sessions.Session `json:"user"`
	RoleLabel    string           `json:"descricao_tipo"`
	Capabilities []string         `json:"capabilities"`
	Loading      bool             `json:"loading"`
}

// userUpdateRequest is the edit form body. Dates use YYYY-MM-DD, blank optional fields are stored as NULL.
type userUpdateRequest struct {
	Name           string  `json:"nome"`
	Login          string  `json:"login"`
	Role           string  `json:"tipo"`
	StoreID        int     `json:"loja_id"`
	Email          string  `json:"email"`
	NationalID     string  `json:"cpf"`
	EmployeeNumber string  `json:"matricula"`
	BirthDate      string  `json:"data_nascimento"`
	HireDate       string  `json:"data_contratacao"`
	Status         *string `json:"status"`
	Permission     int     `json:"permissao"`
}

type profileUpdateRequest struct {
	Email     string `json:"email"`
	BirthDate string `json:"data_nascimento"`
	HireDate  string `json:"data_contratacao"`
}

type passwordChangeRequest struct {
	CurrentPassword string `json:"senha_atual"`
	NewPassword     string `json:"nova_senha"`
	Confirm         string `json:"confirmar_senha"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) SessionAPIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := currentSession(r)
		writeJSON(w, http.StatusOK, SessionResponse{
			User:         session,
			RoleLabel:    roles.Label(session.Role),
			Capabilities: roles.CapabilitiesFor(session.Role).Names(),
			Loading:      managerFromContext(r.Context()).Loading(),
		})
	}
}

func (s *Server) NavigationAPIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := currentSession(r)
		writeJSON(w, http.StatusOK, navigation.Entries(session.Role))
	}
}

// StoresAPIHandler lists the stores the user may pick
func (s *Server) StoresAPIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := currentSession(r)
		list, err := s.repos.Stores.List(r.Context())
		if err != nil {
			writeError(w, dasherrors.Transport(err, "Erro ao buscar lojas"))
			return
		}
		viewAll := roles.CapabilitiesFor(session.Role).Has(roles.ViewAllStores)
		writeJSON(w, http.StatusOK, stores.Visible(list, viewAll, session.StoreID))
	}
}

func (s *Server) UsersListAPIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := currentSession(r)
		list, err := s.editor.List(r.Context(), session)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func (s *Server) UserGetAPIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(r.PathValue("id"))
		if err != nil {
			writeJSONError(w, "invalid user id", http.StatusBadRequest)
			return
		}
		session, _ := currentSession(r)
		form, err := s.editor.Load(r.Context(), session, id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, form)
	}
}

func (s *Server) UserUpdateAPIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(r.PathValue("id"))
		if err != nil {
			writeJSONError(w, "invalid user id", http.StatusBadRequest)
			return
		}
		var req userUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, "invalid request body", http.StatusBadRequest)
			return
		}
		update, err := req.toUpdate(id)
		if err != nil {
			writeError(w, err)
			return
		}

		session, _ := currentSession(r)
		if err := s.editor.Save(r.Context(), session, update); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "Usuário atualizado com sucesso!"})
	}
}

func (s *Server) ProfileUpdateAPIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req profileUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, "invalid request body", http.StatusBadRequest)
			return
		}
		birth, err := parseDate(req.BirthDate)
		if err != nil {
			writeError(w, err)
			return
		}
		hire, err := parseDate(req.HireDate)
		if err != nil {
			writeError(w, err)
			return
		}

		session, _ := currentSession(r)
		err = s.editor.UpdateProfile(r.Context(), session, users.ProfileUpdate{
			Email:     utils.NonEmpty(req.Email),
			BirthDate: birth,
			HireDate:  hire,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "Perfil atualizado com sucesso!"})
	}
}

func (s *Server) PasswordChangeAPIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req passwordChangeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, "invalid request body", http.StatusBadRequest)
			return
		}
		session, _ := currentSession(r)
		if err := s.editor.ChangePassword(r.Context(), session, req.CurrentPassword, req.NewPassword, req.Confirm); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "Senha alterada com sucesso!"})
	}
}

func (req userUpdateRequest) toUpdate(id int) (users.Update, error) {
	birth, err := parseDate(req.BirthDate)
	if err != nil {
		return users.Update{}, err
	}
	hire, err := parseDate(req.HireDate)
	if err != nil {
		return users.Update{}, err
	}
	return users.Update{
		ID:             id,
		Name:           req.Name,
		Login:          req.Login,
		Role:           req.Role,
		StoreID:        req.StoreID,
		Email:          utils.NonEmpty(req.Email),
		NationalID:     utils.NonEmpty(req.NationalID),
		EmployeeNumber: utils.NonEmpty(req.EmployeeNumber),
		BirthDate:      birth,
		HireDate:       hire,
		Status:         req.Status,
		Permission:     req.Permission,
	}, nil
}

func parseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, dasherrors.Validation("Data inválida: " + value)
	}
	return &t, nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("Failed to encode JSON response")
	}
}

func writeJSONError(w http.ResponseWriter, description string, statusCode int) {
	writeJSON(w, statusCode, map[string]string{"error": description})
}

// writeError maps the error taxonomy onto HTTP statuses
func writeError(w http.ResponseWriter, err error) {
	switch {
	case dasherrors.Is(err, dasherrors.ErrNotAuthenticated):
		writeJSONError(w, err.Error(), http.StatusUnauthorized)
	case dasherrors.Is(err, dasherrors.ErrForbidden):
		writeJSONError(w, err.Error(), http.StatusForbidden)
	case dasherrors.Is(err, dasherrors.ErrNotFound):
		writeJSONError(w, "Usuário não encontrado", http.StatusNotFound)
	case dasherrors.Is(err, dasherrors.ErrValidation):
		writeJSONError(w, strings.TrimPrefix(err.Error(), dasherrors.ErrValidation.Error()+": "), http.StatusBadRequest)
	case dasherrors.Is(err, dasherrors.ErrTransport):
		log.Err(err).Msg("Backend failure")
		writeJSONError(w, strings.TrimPrefix(err.Error(), dasherrors.ErrTransport.Error()+": "), http.StatusBadGateway)
	default:
		log.Err(err).Msg("Unexpected error")
		writeJSONError(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
