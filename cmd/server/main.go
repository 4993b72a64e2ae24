// Package main provides the server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	apiconnect "github.com/osa030/surabhi/internal/api/connect"
	"github.com/osa030/surabhi/internal/api/playerv1/playerv1connect"
	"github.com/osa030/surabhi/internal/app/catalog"
	"github.com/osa030/surabhi/internal/app/favorites"
	"github.com/osa030/surabhi/internal/app/filter"
	"github.com/osa030/surabhi/internal/app/notification"
	"github.com/osa030/surabhi/internal/app/session"
	"github.com/osa030/surabhi/internal/infra/config"
	"github.com/osa030/surabhi/internal/infra/kvstore"
	"github.com/osa030/surabhi/internal/infra/logger"
	"github.com/osa030/surabhi/internal/infra/sink"
	"github.com/osa030/surabhi/internal/infra/store"
)

// maxUploadBytes caps ImportFiles requests.
const maxUploadBytes = 512 << 20

var (
	app        = kingpin.New("surabhi-server", "surabhi music player server")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	// start command (default)
	startCmd    = app.Command("start", "Start the server (default)").Default()
	importPaths = startCmd.Flag("import", "Audio file to import into the library at startup (repeatable)").ExistingFiles()

	// list-filters command
	listFiltersCmd = app.Command("list-filters", "List available filters and exit")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if command == listFiltersCmd.FullCommand() {
		printFilters()
		return
	}

	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = "file"
		loggerConfig.File = *logfile
	}
	closer, err := logger.Init(loggerConfig)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer closer.Close()

	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		os.Exit(1)
	}
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	ctx := context.Background()

	filters, err := filter.Build(cfg.EnabledFilters())
	if err != nil {
		return errors.Wrap(err, "invalid filter config")
	}

	catalogService, err := catalog.NewServiceFromConfig(ctx, cfg.Catalog, filters)
	if err != nil {
		return errors.Wrap(err, "failed to create catalog")
	}

	trackStore, err := store.New(cfg.TracksDir())
	if err != nil {
		return errors.Wrap(err, "failed to open track store")
	}
	kv, err := kvstore.Open(cfg.KVPath())
	if err != nil {
		return errors.Wrap(err, "failed to open favorites store")
	}

	if !sink.AudioAvailable {
		zlog.Warn().Msg("Audio output is not available in this build; playback will report failures")
	}
	audioSink := sink.New(sink.Config{TimeUpdateInterval: cfg.TimeUpdateInterval()})

	sessionMgr, err := session.NewManager(cfg, session.Deps{
		Sink:      audioSink,
		Catalog:   catalogService,
		Store:     trackStore,
		Favorites: favorites.NewKVPersister(kv),
		Desktop:   notification.NewDesktop(cfg.Notify.AppName, cfg.Notify.Desktop),
	})
	if err != nil {
		return errors.Wrap(err, "failed to create session manager")
	}

	mux := http.NewServeMux()
	mux.Handle(playerv1connect.NewPlayerServiceHandler(apiconnect.NewPlayerService(sessionMgr)))
	mux.Handle(playerv1connect.NewAdminServiceHandler(
		apiconnect.NewAdminService(sessionMgr),
		connect.WithInterceptors(apiconnect.NewAdminAuthInterceptor(cfg)),
		connect.WithReadMaxBytes(maxUploadBytes),
	))

	// Create server with h2c (HTTP/2 cleartext) support
	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: h2c.NewHandler(mux, &http2.Server{}),
	}

	if err := sessionMgr.Start(ctx); err != nil {
		return errors.Wrap(err, "failed to start session")
	}
	if len(*importPaths) > 0 {
		imported, err := sessionMgr.ImportPaths(ctx, *importPaths)
		if err != nil {
			zlog.Error().Msgf("Startup import failed: %v", err)
		} else {
			zlog.Info().Msgf("Startup import: imported=%d", len(imported))
		}
	}

	serverErrCh := make(chan error, 1)
	serverStartedCh := make(chan struct{})

	go func() {
		zlog.Info().Msgf("Starting server: addr=%s", cfg.Server.Addr)
		close(serverStartedCh)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	<-serverStartedCh
	// Give the server a moment to fully initialize
	time.Sleep(100 * time.Millisecond)

	executeHooks(cfg.Server.Hooks.OnStarted, "on_started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case <-sessionMgr.Done():
		zlog.Info().Msg("Session ended, shutting down...")
	case err := <-serverErrCh:
		runErr = errors.Wrap(err, "server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close session manager first to terminate active streams
	sessionMgr.Close()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}
	zlog.Info().Msg("Server stopped")

	executeHooks(cfg.Server.Hooks.OnStopped, "on_stopped")
	return runErr
}

// printFilters prints available filters.
func printFilters() {
	fmt.Println("Built-in Filters:")
	for _, f := range []filter.Filter{filter.NewPlayablePreviewFilter(), filter.NewDuplicateTrackFilter()} {
		printFilter(f)
	}
	fmt.Println("Configurable Filters:")
	registered := filter.GetRegistered()
	for _, name := range filter.RegisteredNames() {
		printFilter(registered[name]())
	}
}

func printFilter(f filter.Filter) {
	codes := strings.Join(f.ReturnCodes(), ", ")
	fmt.Printf("  %-30s - %s [codes: %s]\n", f.Name(), f.Description(), codes)
}

// executeHooks runs a list of shell commands.
func executeHooks(hooks []string, stage string) {
	if len(hooks) == 0 {
		return
	}

	zlog.Info().Msgf("Executing %s hooks (%d commands)", stage, len(hooks))

	for _, hook := range hooks {
		zlog.Info().Msgf("Executing hook: %s", hook)
		// Use sh -c to allow shell features like redirection or pipes
		cmd := exec.Command("sh", "-c", hook)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			zlog.Error().Err(err).Msgf("Failed to execute hook: %s", hook)
		}
	}
}
