package main

import (
	"receptionist-platform/internal/httpapi"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic.
func registerRoutes(r *gin.Engine, rt httpapi.CallRouter) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Provider call webhooks (public).
	// NOTE: These should be protected by provider signature validation in
	// production (Twilio X-Twilio-Signature, Plivo X-Plivo-Signature).
	r.POST("/incoming", rt.Incoming)
	r.POST("/gather", rt.Gather)
	r.POST("/hangup", rt.Hangup)
}
