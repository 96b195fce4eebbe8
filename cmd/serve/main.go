// Package classification Instance Manager Calendar Service.
//
// Calendar Service as part of the Instance Manager environment. Expands recurring events, relays
// chat between event participants and reminds them of upcoming events.
//
// Terms Of Service:
//
// there are no TOS at this moment, use at your own risk we take no responsibility
//
//    Version: 0.1.0
//    License: TODO
//    Contact: <info@dhis2.org> https://github.com/dhis2-sre/im-calendar
//
//    Consumes:
//      - application/json
//
//    Produces:
//      - application/json
//
//    SecurityDefinitions:
//      oauth2:
//        type: oauth2
//        tokenUrl: /not-valid--endpoint-is-served-from-the-im-user-service
//        refreshUrl: /not-valid--endpoint-is-served-from-the-im-user-service
//        flow: password
// swagger:meta
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dhis2-sre/im-calendar/internal/handler"
	"github.com/dhis2-sre/im-calendar/internal/log"
	"github.com/dhis2-sre/im-calendar/internal/middleware"
	"github.com/dhis2-sre/im-calendar/internal/server"
	"github.com/dhis2-sre/im-calendar/internal/tracing"
	"github.com/dhis2-sre/im-calendar/pkg/category"
	"github.com/dhis2-sre/im-calendar/pkg/chat"
	"github.com/dhis2-sre/im-calendar/pkg/config"
	"github.com/dhis2-sre/im-calendar/pkg/event"
	"github.com/dhis2-sre/im-calendar/pkg/notification"
	"github.com/dhis2-sre/im-calendar/pkg/presence"
	"github.com/dhis2-sre/im-calendar/pkg/recurrence"
	"github.com/dhis2-sre/im-calendar/pkg/storage"
	"github.com/dhis2-sre/im-calendar/pkg/user"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Failed to run calendar service", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %v", err)
	}

	cfg, err := config.New()
	if err != nil {
		return err
	}

	logger := slog.New(log.New(log.NewPrettyJSONHandler(os.Stdout, &log.PrettyJSONHandlerOptions{
		HandlerOptions: slog.HandlerOptions{Level: cfg.Logging.Level},
		PrettyPrint:    cfg.Logging.PrettyPrint,
	})))
	slog.SetDefault(logger)

	shutdownTracing, err := tracing.New(server.ServiceName, cfg.Environment, cfg.Tracing.JaegerEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("Failed to flush traces", "error", err)
		}
	}()

	db, err := storage.NewDatabase(logger, cfg.Postgresql)
	if err != nil {
		return err
	}

	if err := handler.RegisterValidation(); err != nil {
		return err
	}

	userRepository := user.NewRepository(db)
	userService := user.NewService(userRepository)
	userHandler := user.NewHandler(userService)

	categoryRepository := category.NewRepository(db)
	eventRepository := event.NewRepository(db)
	expander := recurrence.NewExpander(time.Now, cfg.Recurrence.CalendarAware)
	eventService := event.NewService(logger, eventRepository, categoryRepository, expander)
	eventHandler := event.NewHandler(eventService)

	registry := presence.NewRegistry(logger, cfg.Presence.QueueSize)
	chatRepository := chat.NewRepository(db)
	relay := chat.NewRelay(logger, registry, eventRepository, chatRepository, time.Now)
	chatHandler := chat.NewHandler(logger, registry, relay, cfg.AllowedOrigins)

	notificationRepository := notification.NewRepository(db)
	scheduler := notification.NewScheduler(logger, eventRepository, notificationRepository, registry, time.Now, cfg.Notification)

	authentication := middleware.NewAuthentication(logger, cfg.Authentication.Secret, userService)

	engine, router := server.GetEngine(logger, cfg.BasePath, cfg.AllowedOrigins)
	user.Routes(router, authentication.TokenAuthentication, userHandler)
	event.Routes(router, authentication.TokenAuthentication, eventHandler)
	chat.Routes(router, authentication.TokenAuthentication, chatHandler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Listening for HTTP requests", "addr", srv.Addr, "basePath", cfg.BasePath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve HTTP: %v", err)
		}
		return nil
	})
	g.Go(func() error {
		scheduler.Start(ctx)
		<-ctx.Done()
		scheduler.Stop()
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		// websocket connections are hijacked and not tracked by Shutdown
		registry.CloseAll()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
