package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hivcare-api/internal/handler"
)

// Recovery turns a handler panic into the 500 envelope. The log line names
// the route template and the authenticated caller, never the request body or
// path parameters, which carry patient identifiers.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			// The client went away; net/http expects this one to propagate.
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			route := c.FullPath()
			if route == "" {
				route = "unmatched"
			}
			event := requestLogger(c).Error().
				Interface("panic", rec).
				Str("stack", string(debug.Stack())).
				Str("method", c.Request.Method).
				Str("route", route)
			if claims, ok := ClaimsFrom(c); ok {
				event = event.Str("subject", claims.Subject).Str("role", claims.Role)
			}
			event.Msg("Request panic recovered")

			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, handler.NewErrorResponse("internal server error"))
		}()
		c.Next()
	}
}
