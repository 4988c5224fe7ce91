package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/rafaeltorres/user-registry/internal/domain"
	"github.com/rafaeltorres/user-registry/internal/service"
	"github.com/rafaeltorres/user-registry/internal/validation"
)

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondFieldErrors(w http.ResponseWriter, errs []validation.FieldError) {
	respondJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":  "validation failed",
		"errors": errs,
	})
}

// respondServiceError maps service/domain errors onto status codes. Auth
// failures are reported uniformly; internal logs keep the detail.
func respondServiceError(w http.ResponseWriter, err error, logTag string) {
	var valErr *service.ValidationError
	switch {
	case errors.As(err, &valErr):
		respondFieldErrors(w, valErr.Fields)
	case errors.Is(err, domain.ErrEmailExists), errors.Is(err, domain.ErrCPFExists):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUserNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid credentials")
	default:
		log.Printf("ERROR [%s] %v", logTag, err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
