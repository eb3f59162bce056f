package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thetactl/thetactl"
)

const contextKey = "supervisor"

func currentSupervisor(c *gin.Context) thetactl.Supervisor {
	if m, ok := c.Get(contextKey); ok {
		return m.(thetactl.Supervisor)
	}
	c.AbortWithError(http.StatusInternalServerError, errSystem)
	return nil
}

func supervisorMiddleware(m thetactl.Supervisor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextKey, m)
	}
}
