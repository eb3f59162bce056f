package main

import (
	"context"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/thetactl/thetactl"
)

func newRouter(m thetactl.Supervisor) *gin.Engine {
	e := gin.New()
	e.Use(gin.Logger(), gin.Recovery(), supervisorMiddleware(m))
	return e
}

func startWebServer(addr string, e http.Handler) *http.Server {
	srv := &http.Server{
		Addr:    addr,
		Handler: e,
	}

	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	return srv
}

func stopWebServer(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server failed to shutdown")
	}
}
