package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/dom/coinshelf/internal/api/middleware"
	"github.com/dom/coinshelf/internal/domain"
	"github.com/dom/coinshelf/internal/logger"
	"github.com/dom/coinshelf/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxBodyBytes = 5 << 20

var validate = newValidator()

// newValidator reports fields by their JSON name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Warn("encode response", zap.Error(err))
	}
}

// decodeBody reads the request body into dst without validating it.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.Invalidf("invalid request body")
	}
	return nil
}

// decodeJSON reads a JSON object into the struct dst and runs its validate
// tags. Failures are returned as ErrInvalidInput.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := decodeBody(w, r, dst); err != nil {
		return err
	}
	return validateStruct(dst)
}

func validateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return domain.Invalidf("%s", fieldMessage(verrs[0]))
		}
		return domain.Invalidf("invalid request")
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "url", "http_url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	}
	return fmt.Sprintf("%s is invalid", field)
}

// writeError maps a service error to a status code. Unexpected errors are
// logged and hidden behind a generic message.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		http.Error(w, errorMessage(err), http.StatusBadRequest)
	case errors.Is(err, domain.ErrInvalidResetToken):
		http.Error(w, domain.ErrInvalidResetToken.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrInvalidCredentials):
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, domain.ErrInvalidToken):
		http.Error(w, "Invalid token", http.StatusUnauthorized)
	case errors.Is(err, domain.ErrItemNotFound):
		http.Error(w, "Item not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrLinkNotFound):
		http.Error(w, "Public collection not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrUserNotFound):
		http.Error(w, "User not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrEmailExists):
		http.Error(w, "User with that email already exists", http.StatusConflict)
	case errors.Is(err, domain.ErrUsernameExists):
		http.Error(w, "Username already taken", http.StatusConflict)
	case errors.Is(err, domain.ErrCatalogUnavailable):
		http.Error(w, "Catalog lookup is not configured", http.StatusServiceUnavailable)
	case errors.Is(err, domain.ErrStorageUnavailable):
		http.Error(w, "Image storage is not configured", http.StatusServiceUnavailable)
	case errors.Is(err, domain.ErrCatalogUpstream):
		logger.Log.Warn(op, zap.Error(err))
		http.Error(w, "Catalog service unavailable", http.StatusBadGateway)
	default:
		logger.Log.Error(op,
			zap.String("request_id", chiMiddleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func currentUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	}
	return userID, ok
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		http.Error(w, "Invalid "+name, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// errorMessage is the client facing text of a validation error.
func errorMessage(err error) string {
	return strings.TrimPrefix(err.Error(), domain.ErrInvalidInput.Error()+": ")
}

func sortBulkErrors(errs []service.BulkError) {
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Index < errs[j].Index })
}
