package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	fieldCtrlImp "canaswarm/pkg/field/controllerImp"
	healthCtrlImp "canaswarm/pkg/health/controllerImp"
	"canaswarm/pkg/logging"
	"canaswarm/pkg/middleware"
	"canaswarm/pkg/storage/repository"
	"canaswarm/router"
)

const shutdownTimeout = 5 * time.Second

func runServer(o *overrides) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd, o)
		if err != nil {
			return err
		}
		log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return err
		}
		a, err := newApp(cfg, log)
		if err != nil {
			log.Fatal("storage unavailable", zap.String("backend", cfg.StorageBackend), zap.Error(err))
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, a)
	}
}

func newEcho(a *app) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler(a.log)
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.RequestID(), middleware.RequestLogger(a.log))
	e.Use(middleware.Timeout(a.cfg.RequestTimeout))

	pinger, _ := a.store.(repository.Pinger)
	return router.New(
		e,
		fieldCtrlImp.New(a.fields, a.log),
		healthCtrlImp.NewHealthCtrl(a.fields, pinger),
	)
}

// serve runs the HTTP API until ctx is cancelled, then drains in-flight
// requests for at most shutdownTimeout.
func serve(ctx context.Context, a *app) error {
	e := newEcho(a)
	addr := net.JoinHostPort("", a.cfg.Port)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.Info("listening",
			zap.String("addr", addr),
			zap.String("storage", a.cfg.StorageBackend),
			zap.String("env_file", a.cfg.EnvFile))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(sctx)
	})
	return g.Wait()
}
