package controllers

import (
	"net/http"

	"github.com/cropcareapp/cropcare-backend/api/responses"
	"github.com/cropcareapp/cropcare-backend/api/validators"
	"github.com/cropcareapp/cropcare-backend/internal/auth"
	pkgerrors "github.com/cropcareapp/cropcare-backend/pkg/errors"
	"github.com/cropcareapp/cropcare-backend/pkg/logger"
)

// AuthRegister handles account creation.
func AuthRegister(reg auth.RegisterService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reg == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := reg.Register(r.Context(), body)
		if err != nil {
			if logg != nil {
				logg.Error(r.Context(), "register failed", err)
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"msg":  "user registered successfully",
			"user": user,
		})
	}
}
