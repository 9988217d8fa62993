package controllers

import (
	"net/http"

	"github.com/cropcareapp/cropcare-backend/api/responses"
	"github.com/cropcareapp/cropcare-backend/api/validators"
	"github.com/cropcareapp/cropcare-backend/internal/reset"
	pkgerrors "github.com/cropcareapp/cropcare-backend/pkg/errors"
	"github.com/cropcareapp/cropcare-backend/pkg/logger"
)

// ResetPasswordRequest is the payload for the final recovery step.
type ResetPasswordRequest struct {
	Flow     string `json:"flow" validate:"required"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=4"`
}

// GenerateOTP issues a recovery code for the named account and opens a
// fresh recovery flow.
func GenerateOTP(svc reset.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reset service unavailable"))
			return
		}
		username, err := validators.RequireQuery(r, "username")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Generate(r.Context(), username)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// VerifyOTP checks a code against its flow and opens the reset session.
func VerifyOTP(svc reset.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flow, err := validators.RequireQuery(r, "flow")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		code, err := validators.RequireQuery(r, "code")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Verify(r.Context(), flow, code); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"msg": "otp verified successfully"})
	}
}

// CreateResetSession reports whether the flow's gate is open so the client
// can show the new-password form.
func CreateResetSession(svc reset.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flow, err := validators.RequireQuery(r, "flow")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.SessionOpen(r.Context(), flow); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"flag": true})
	}
}

// ResetPassword stores the replacement credential and closes the flow.
func ResetPassword(svc reset.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body ResetPasswordRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.ResetPassword(r.Context(), body.Flow, body.Username, body.Password); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"msg": "password reset successfully"})
	}
}
