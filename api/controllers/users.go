package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cropcareapp/cropcare-backend/api/middleware"
	"github.com/cropcareapp/cropcare-backend/api/responses"
	"github.com/cropcareapp/cropcare-backend/api/validators"
	"github.com/cropcareapp/cropcare-backend/internal/users"
	"github.com/cropcareapp/cropcare-backend/pkg/enums"
	pkgerrors "github.com/cropcareapp/cropcare-backend/pkg/errors"
	"github.com/cropcareapp/cropcare-backend/pkg/logger"
	"github.com/cropcareapp/cropcare-backend/pkg/pagination"
	"github.com/google/uuid"
)

func actorFromContext(r *http.Request) (users.Actor, error) {
	rawID := middleware.UserIDFromContext(r.Context())
	if rawID == "" {
		return users.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return users.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	role, err := enums.ParseRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return users.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	return users.Actor{
		UserID:   id,
		Username: middleware.UsernameFromContext(r.Context()),
		Role:     role,
	}, nil
}

// GetUserByUsername serves the public profile lookup.
func GetUserByUsername(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := strings.TrimSpace(chi.URLParam(r, "username"))
		user, err := svc.GetByUsername(r.Context(), username)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

// GetUserByID serves the id-keyed profile lookup.
func GetUserByID(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

// ListUsers returns every account without credential material.
func ListUsers(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Has("limit") || query.Has("cursor") {
			limit, err := strconv.Atoi(query.Get("limit"))
			if err != nil && query.Has("limit") {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a number"))
				return
			}
			page, err := svc.ListPage(r.Context(), pagination.Params{
				Limit:  limit,
				Cursor: query.Get("cursor"),
			})
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, page)
			return
		}

		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// UpdateUser patches a profile. The target defaults to the caller; admins
// may name another account with the id query parameter.
func UpdateUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		targetID := actor.UserID
		if raw := strings.TrimSpace(r.URL.Query().Get("id")); raw != "" {
			targetID, err = validators.ParseUUIDParam(raw, "id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		var body users.UpdateUserRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), actor, targetID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"msg":  "user updated successfully",
			"user": updated,
		})
	}
}

// DeleteUser removes an account, subject to the admin-or-self rule.
func DeleteUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.ParseUUIDParam(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), actor, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"msg": "user deleted successfully"})
	}
}
