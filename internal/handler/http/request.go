package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/jwtauth/v5"
)

// getUserIDFromContext extracts user_id from JWT context
func getUserIDFromContext(r *http.Request) string {
	_, claims, _ := jwtauth.FromContext(r.Context())
	if userID, ok := claims["user_id"].(string); ok {
		return userID
	}
	return ""
}

// getIntQueryParam returns defaultVal when the parameter is absent. ok is false when
// it is present but not an integer.
func getIntQueryParam(r *http.Request, key string, defaultVal int) (value int, ok bool) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal, true
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return intVal, true
}
