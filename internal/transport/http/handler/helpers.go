package handler

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"nlustudio/internal/transport/http/middleware"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

func userIDFromContext(c *gin.Context) (uint, bool) {
	userIDAny, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}
	userID, ok := userIDAny.(uint)
	return userID, ok
}

func idParam(c *gin.Context) (uint, bool) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id64 == 0 {
		return 0, false
	}
	return uint(id64), true
}

func uintQuery(c *gin.Context, name string) (value uint, present, valid bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false, false
	}
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || parsed == 0 {
		return 0, true, false
	}
	return uint(parsed), true, true
}

func pagination(c *gin.Context) (limit, offset int) {
	limit = defaultPageLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if raw := c.Query("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			offset = parsed
		}
	}
	return limit, offset
}

// decodeBody unmarshals the request body into out and also returns the raw
// top-level keys, so handlers can reject fields that must not be client-set
// and tell an absent field from an explicit null.
func decodeBody(c *gin.Context, out interface{}) (map[string]json.RawMessage, error) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, err
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func hasUserIDKey(keys map[string]json.RawMessage) bool {
	_, camel := keys["userId"]
	_, snake := keys["user_id"]
	return camel || snake
}

func isNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}
