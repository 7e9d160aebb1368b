package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/AustinHatem/crema-live/backend"
	"github.com/AustinHatem/crema-live/util"
	"github.com/charmbracelet/log"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const maxBodyBytes = 64 * 1024

// NewRouter builds the public read-only surface over p.
func NewRouter(conf *util.AppConfig, p backend.Provider) *gin.Engine {
	g := gin.New()
	g.Use(gin.Recovery(), requestLogger())
	g.Use(gzip.Gzip(gzip.DefaultCompression))

	// 10 requests per second per IP, burst of 20
	globalLimiter := NewRateLimiter(rate.Limit(10), 20)
	g.Use(RateLimitMiddleware(globalLimiter))
	g.Use(MaxBytesMiddleware(maxBodyBytes))

	api := &API{provider: p}
	g.GET("/api/streams", api.LiveStreams)
	g.GET("/api/streams/:id", api.Stream)
	g.GET("/api/streams/:id/chat", api.Chat)
	g.GET("/api/users/:username", api.User)

	g.GET("/feed", func(c *gin.Context) {
		c.Header("Content-Type", "application/xml; charset=utf-8")
		rss, err := GetRSS(c.Request.Context(), conf, p, c.Query("username"))
		if err != nil {
			c.Render(http.StatusNotFound, render.String{Format: ""})
			return
		}
		c.Render(http.StatusOK, render.String{Format: rss})
	})

	g.GET("/feed/:id", func(c *gin.Context) {
		c.Header("Content-Type", "application/xml; charset=utf-8")
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.Render(http.StatusNotFound, render.String{Format: ""})
			return
		}
		rss, err := GetRSSItem(c.Request.Context(), conf, p, id)
		if err != nil {
			c.Render(http.StatusNotFound, render.String{Format: ""})
			return
		}
		c.Render(http.StatusOK, render.String{Format: rss})
	})

	return g
}

// Router serves until ctx is cancelled, then shuts down gracefully.
func Router(ctx context.Context, conf *util.AppConfig, p backend.Provider) error {
	addr := fmt.Sprintf("%s:%d", conf.Conf.Host, conf.Conf.HttpPort)
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(conf, p),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("Stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
