package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/elousi1010/quanlyveso-sub000/internal/config"
	"github.com/elousi1010/quanlyveso-sub000/internal/logging"
	"github.com/elousi1010/quanlyveso-sub000/server"
	refreshrepofake "github.com/elousi1010/quanlyveso-sub000/token/refresh/repofake"
	fakeuserrepo "github.com/elousi1010/quanlyveso-sub000/users/repofake"
	"github.com/rs/zerolog/log"
)

const revocationCleanupInterval = 5 * time.Minute

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	if err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("config.LoadDotEnv: %w", err)
	}
	c := config.New()
	logging.Init(c.GetLogLevel(), c.GetEnv())
	displayAppname(c.GetAppName())

	// accounts live in memory: every restart starts from the bootstrap admin
	srv, err := server.New(c, server.Repos{
		Users:         fakeuserrepo.NewFakeUserRepo(),
		RefreshTokens: refreshrepofake.NewFakeRefreshTokenRepo(),
	})
	if err != nil {
		return err
	}

	generatedPassword, err := srv.BootstrapAdmin(c)
	if err != nil {
		return err
	}
	if generatedPassword != "" {
		log.Warn().
			Str("phone_number", c.GetAdminPhoneNumber()).
			Str("password", generatedPassword).
			Msg("Generated admin password, it will not be displayed again")
	}

	stop := make(chan struct{})
	defer close(stop)
	go srv.Accounts().RunRevocationCleanup(revocationCleanupInterval, stop)

	httpServer := &http.Server{Addr: c.GetPort(), Handler: srv, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(httpServer) }()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
