package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/sigil/core"
)

// respondError maps core errors to HTTP responses. The mapping lives at
// the boundary; the core never sees status codes.
func respondError(c *gin.Context, err error) {
	var rateErr *core.RateLimitError
	if errors.As(err, &rateErr) {
		c.Header("Retry-After", strconv.Itoa(rateErr.WindowSeconds))
		c.JSON(http.StatusTooManyRequests, gin.H{"error": rateErr.Error()})
		return
	}

	switch {
	case errors.Is(err, core.ErrInvalidAddress):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Ethereum address"})
	case errors.Is(err, core.ErrNoActiveChallenge):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No active challenge found"})
	case errors.Is(err, core.ErrInvalidSignature):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
	case errors.Is(err, core.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
	case errors.Is(err, core.ErrTokenRevoked):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token has been revoked"})
	case errors.Is(err, core.ErrWrongTokenType), errors.Is(err, core.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
