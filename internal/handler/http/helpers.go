package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-engine-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/jwt"
)

// maxBodyBytes caps JSON request bodies. Pulse batches are the largest payloads.
const maxBodyBytes = 1 << 20

// actorFrom returns the authenticated caller, writing a 401 when the token is unusable.
func actorFrom(w http.ResponseWriter, r *http.Request) (user.Actor, bool) {
	actor, err := jwt.ActorFromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, "Unauthorized")
		return user.Actor{}, false
	}
	return actor, true
}

// decodeBody decodes a JSON body into dst. An empty body leaves dst untouched when
// optional is set.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}, optional bool) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}
	response.BadRequest(w, "Invalid request body", nil)
	return false
}

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

// getBoolQueryParam gets a bool query parameter with a default value
func getBoolQueryParam(r *http.Request, key string, defaultVal bool) bool {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	return val == "true" || val == "1"
}

func getOptionalQueryParam(r *http.Request, key string) *string {
	if val := r.URL.Query().Get(key); val != "" {
		return &val
	}
	return nil
}

// targetEmployee resolves whose payroll the caller asks for. Approvers may name another
// employee; everyone else is limited to themselves.
func targetEmployee(w http.ResponseWriter, actor user.Actor, requested string) (string, bool) {
	if requested == "" || requested == actor.EmployeeID {
		return actor.EmployeeID, true
	}
	if !actor.Role.CanApprove() {
		response.Forbidden(w, "You may only view your own payroll")
		return "", false
	}
	return requested, true
}
