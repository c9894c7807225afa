package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

func Home() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome to POS Backend API"})
	}
}

func APIHome() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "POS API is running"})
	}
}

// ClientCounter reports how many notification sockets are open.
type ClientCounter interface {
	ConnectedClients() int
}

func WebsocketStatus(counter ClientCounter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"connected_clients": counter.ConnectedClients(),
			"status":            "active",
		})
	}
}

// Pinger checks that the backing store answers. A nil Pinger (memory mode)
// is always healthy.
type Pinger func(ctx context.Context) error

func Health(ping Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /healthz"
		if ping != nil {
			ctx, cancel := requestContext(c)
			defer cancel()
			if err := ping(ctx); err != nil {
				respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
