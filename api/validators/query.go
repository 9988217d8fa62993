package validators

import (
	"net/http"
	"strings"

	pkgerrors "github.com/cropcareapp/cropcare-backend/pkg/errors"
	"github.com/google/uuid"
)

// RequireQuery returns the trimmed query value or a validation error when
// it is absent.
func RequireQuery(r *http.Request, key string) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "query parameter is required").WithDetails(map[string]any{"field": key})
	}
	return raw, nil
}

// ParseUUIDParam parses a UUID path or query value.
func ParseUUIDParam(value, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "must be a valid uuid").WithDetails(map[string]any{"field": field})
	}
	return id, nil
}
