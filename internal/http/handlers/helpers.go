package handlers

import (
	"net/http"
	"strconv"

	"chiya-order-service/pkg/response"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func zapError(err error) zap.Field {
	return zap.Error(err)
}

func readPathString(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

func readPathInt(r *http.Request, key string) (int, bool) {
	value, err := strconv.Atoi(readPathString(r, key))
	return value, err == nil
}

// readBoolFlag parses an optional ?flag=true|false query filter; the second
// return reports whether the flag was present and valid.
func readBoolFlag(r *http.Request, key string) (bool, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return false, false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return value, true
}

func notFound(w http.ResponseWriter, message string) {
	response.Error(w, http.StatusNotFound, "NOT_FOUND", message)
}

func badRequest(w http.ResponseWriter, message string) {
	response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", message)
}
