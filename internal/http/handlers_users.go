package httpx

import (
	"net/http"

	domainauth "github.com/utem-ti/canvas-auth/internal/domain/auth"
	"github.com/utem-ti/canvas-auth/internal/service"
)

// UserHandlers provides the administrative user-management API. Every route
// is registered behind RequirePermission(manage_users).
type UserHandlers struct {
	Svc *service.UserService
}

// List handles GET /api/users.
func (h *UserHandlers) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Svc.List(r.Context())
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"users": users})
}

// Get handles GET /api/users/{email}.
func (h *UserHandlers) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.Svc.Get(r.Context(), r.PathValue("email"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

// createUserRequest is the POST /api/users payload.
type createUserRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Create handles POST /api/users.
func (h *UserHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	var role domainauth.Role
	if req.Role != "" {
		parsed, err := domainauth.ParseRole(req.Role)
		if err != nil {
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_role", Err: err})
			return
		}
		role = parsed
	}

	user, err := h.Svc.Create(r.Context(), service.CreateUserInput{
		Email: req.Email,
		Name:  req.Name,
		Role:  role,
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, user)
}

// setRoleRequest is the PUT /api/users/{email}/role payload.
type setRoleRequest struct {
	Role string `json:"role"`
}

// SetRole handles PUT /api/users/{email}/role.
func (h *UserHandlers) SetRole(w http.ResponseWriter, r *http.Request) {
	var req setRoleRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	role, err := domainauth.ParseRole(req.Role)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_role", Err: err})
		return
	}

	if err := h.Svc.SetRole(r.Context(), r.PathValue("email"), role); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// setActiveRequest is the PUT /api/users/{email}/active payload.
type setActiveRequest struct {
	Active bool `json:"active"`
}

// SetActive handles PUT /api/users/{email}/active.
func (h *UserHandlers) SetActive(w http.ResponseWriter, r *http.Request) {
	var req setActiveRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	if err := h.Svc.SetActive(r.Context(), r.PathValue("email"), req.Active); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// Delete handles DELETE /api/users/{email}. User records only leave the
// store through this explicit administrative action.
func (h *UserHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), r.PathValue("email")); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
