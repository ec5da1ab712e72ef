package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"signalbox/cmd/root"
	"signalbox/controllers"
	"signalbox/internal/config"
	"signalbox/internal/env"
	"signalbox/internal/logger"
	"signalbox/internal/middleware"
	"signalbox/services"
)

const (
	monitorInterval = 15 * time.Second
	shutdownTimeout = 10 * time.Second
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the keeper daemon",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if err := startServer(ctx); err != nil {
			logger.Fatal(err)
		}
	},
}

// configReloader applies config file edits to the server. Edits arriving
// before Attach are dropped.
type configReloader struct {
	ctx     context.Context
	current atomic.Pointer[services.Server]
}

func (r *configReloader) Attach(srv *services.Server) {
	r.current.Store(srv)
}

func (r *configReloader) OnChange(cfg *config.AppConfig) {
	srv := r.current.Load()
	if srv == nil {
		return
	}
	logger.Infof("Config file changed, reloading")
	if err := srv.Reload(r.ctx, cfg); err != nil {
		logger.Errorf("Reload failed: %v", err)
	}
}

func (r *configReloader) OnError(err error) {
	logger.Errorf("Ignoring invalid config edit: %v", err)
}

func newRouter(srv *services.Server) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.MetricsMiddleware())

	controllers.NewAPIController(srv).RegisterRoutes(router)
	controllers.NewServiceController(srv.Services()).RegisterRoutes(router)
	controllers.NewSdrController(srv.Sdrs()).RegisterRoutes(router)
	return router
}

/**
 * Run the keeper until ctx is cancelled
 * @param {context.Context} ctx - Cancelled by SIGINT/SIGTERM
 * @returns {error} Returns config, bootstrap or listener errors
 * @description
 * - Valid edits of the config file are applied like an API reload
 * - On exit the HTTP server drains, then every owned child is stopped
 */
func startServer(ctx context.Context) error {
	env.Daemon = true

	reloader := &configReloader{ctx: ctx}
	if err := config.Watch(env.ConfigPath, reloader.OnChange, reloader.OnError); err != nil {
		return err
	}
	cfg := config.Config
	logger.InitLogger(&cfg.Log, true)
	gin.SetMode(cfg.Server.Mode)

	srv, err := services.Bootstrap(&cfg)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	reloader.Attach(srv)

	listeners, err := CreateListeners([]ListenAddr{
		{Network: "tcp", Address: cfg.Server.Address},
		{Network: "unix", Address: cfg.Server.Socket},
	})
	if len(listeners) == 0 {
		srv.Shutdown(context.Background(), shutdownTimeout)
		return fmt.Errorf("no usable listener: %w", err)
	}

	httpServer := &http.Server{Handler: newRouter(srv)}
	var wg sync.WaitGroup
	for _, ln := range listeners {
		wg.Add(1)
		go func(ln net.Listener) {
			defer wg.Done()
			if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Errorf("HTTP server on %s stopped: %v", ln.Addr(), err)
			}
		}(ln)
	}
	go srv.StartMonitoring(ctx, monitorInterval)

	logger.Infof("signalbox %s started with %d services", env.Version, len(cfg.Services))
	<-ctx.Done()
	logger.Infof("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("HTTP shutdown: %v", err)
	}
	wg.Wait()
	srv.Shutdown(shutdownCtx, shutdownTimeout)
	if cfg.Server.Socket != "" {
		os.Remove(cfg.Server.Socket)
	}
	return nil
}

func init() {
	root.RootCmd.AddCommand(serverCmd)
}
