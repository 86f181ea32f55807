// Package api holds the gin handlers. Each handler binds the request, calls one
// service method and maps the result or error onto an HTTP response.
package api

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
	"github.com/foodgram/backend/internal/validation"
)

// respondError maps service errors onto status codes. Unknown errors are
// logged and hidden behind a generic 500.
func respondError(c *gin.Context, err error) {
	if errs, ok := validation.AsErrors(err); ok {
		c.JSON(http.StatusBadRequest, errs)
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrAlreadyExists),
		errors.Is(err, service.ErrSelfFollow),
		errors.Is(err, service.ErrNotPresent):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidToken):
		status = http.StatusUnauthorized
	}

	if status == http.StatusInternalServerError {
		logging.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(status, types.DetailResponse{Detail: "internal server error"})
		return
	}
	c.JSON(status, types.DetailResponse{Detail: err.Error()})
}

// bindJSON decodes the body into dst. It answers 413 when the body exceeds
// the router limit and 400 on any other failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, types.DetailResponse{Detail: "Request body is too large."})
			return false
		}
		c.JSON(http.StatusBadRequest, validation.FromBindingError(err))
		return false
	}
	return true
}

// pathID parses a numeric path parameter. Anything else is a 404, the same
// as an id that does not exist.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, types.DetailResponse{Detail: "Not found."})
		return 0, false
	}
	return uint(id), true
}

func queryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return v
}

func pageRequest(c *gin.Context) service.PageRequest {
	return service.PageRequest{
		Page:  queryInt(c, "page", 1),
		Limit: queryInt(c, "limit", service.DefaultPageSize),
	}
}

// paginate wraps results in the page envelope with absolute next/previous links.
func paginate[T any](c *gin.Context, page service.PageRequest, count int64, results []T) types.Page[T] {
	p := page.Offset()/page.Size() + 1
	out := types.Page[T]{Count: count, Results: results}
	if int64(p*page.Size()) < count {
		out.Next = pageURL(c, p+1)
	}
	if p > 1 {
		out.Previous = pageURL(c, p-1)
	}
	return out
}

func pageURL(c *gin.Context, page int) *string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	u := url.URL{Scheme: scheme, Host: c.Request.Host, Path: c.Request.URL.Path}
	q := c.Request.URL.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()

	s := u.String()
	return &s
}
