package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/accounts-backend/api/middleware"
	"github.com/angelmondragon/accounts-backend/api/responses"
	"github.com/angelmondragon/accounts-backend/api/validators"
	"github.com/angelmondragon/accounts-backend/internal/users"
	pkgerrors "github.com/angelmondragon/accounts-backend/pkg/errors"
	"github.com/angelmondragon/accounts-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

const usersBasePath = "/api/v1/users"

// UserRegister handles POST /api/v1/users/register.
func UserRegister(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req users.RegistrationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Register(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, usersBasePath+"/"+user.ID, user)
	}
}

// UserUpdate handles PUT /api/v1/users/{id}.
func UserUpdate(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := userIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req users.UpdateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Update(r.Context(), id, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

// UserUpdateRoleStatus handles PUT /api/v1/users/{id}/role-status. The
// performer comes from the X-Performing-User-Id header.
func UserUpdateRoleStatus(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := userIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req users.RoleStatusUpdateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		performer := middleware.PerformerIDFromContext(r.Context())
		user, err := svc.UpdateRoleStatus(r.Context(), id, req, performer)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

// UserGet handles GET /api/v1/users/{id}.
func UserGet(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := userIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if user == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, users.MsgUserNotFound))
			return
		}
		responses.WriteSuccess(w, user)
	}
}

// UserList handles GET /api/v1/users.
func UserList(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.GetAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if list == nil {
			list = []users.UserDTO{}
		}
		responses.WriteSuccess(w, list)
	}
}

func userIDParam(r *http.Request) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	return id, nil
}
