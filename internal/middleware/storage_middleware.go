package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yigit/catequesis/internal/app/repositories"
	"github.com/yigit/catequesis/internal/pkg/logger"
)

// RequireStorage aborts with the generic storage notice when store does not answer within timeout
func RequireStorage(store repositories.Store, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Storage ping failed")
			renderStorageUnavailable(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
