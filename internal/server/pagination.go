package server

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/banban-dev/banban/internal/pagination"
)

// pageRequest reads ?lastId and ?size. size is clamped, not rejected, so old
// clients asking for large pages keep working.
func pageRequest(c *gin.Context) (pagination.Request, error) {
	var req pagination.Request

	if raw := c.Query("lastId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return req, fmt.Errorf("invalid lastId %q", raw)
		}
		req.Cursor = &id
	}

	if raw := c.Query("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return req, fmt.Errorf("invalid size %q", raw)
		}
		req.Size = max(size, 1)
	}
	req.Size = pagination.NormalizeSize(req.Size)

	return req, nil
}

// pathID reads a positive numeric path parameter
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, c.Param(name))
	}
	return id, nil
}
