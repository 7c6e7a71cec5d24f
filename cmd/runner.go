package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"reelist/internal/events"
	"reelist/internal/services"
	"reelist/internal/session"
	"reelist/internal/shared"
	"reelist/internal/tasks"
	wl "reelist/internal/watchlist"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	client     *services.Client
	auth       *services.AuthAPI
	watchlist  *services.WatchlistAPI
	metadata   *services.MetadataAPI
	manager    *session.Manager
	controller *wl.Controller
	bus        *events.Bus
	engine     *tasks.WatchlistEngine
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	bootstrapped bool
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Store      session.Store
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration.
//
// Wiring order matters: the session manager owns the client's auth header,
// and the client's 401 interceptor routes back into the manager so an expired
// session tears down exactly once regardless of which call hit the 401.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Store == nil {
		opts.Store = session.NewFileStore(session.DefaultStorePath())
	}

	bus := events.NewBus()
	client := services.NewClient(opts.Config.API.Origin, opts.HTTPClient)
	manager := session.NewManager(opts.Store, client, bus, opts.Logger)
	client.OnUnauthorized(manager.Expire)

	authAPI := services.NewAuthAPI(client)
	watchlistAPI := services.NewWatchlistAPI(client)
	metadataAPI := services.NewMetadataAPI(opts.Config.Metadata, nil)

	controller := wl.NewController(watchlistAPI, manager, bus, opts.Logger)
	engine := tasks.NewWatchlistEngine(watchlistAPI, metadataAPI, nil, client)

	return &Runner{
		config:     opts.Config,
		client:     client,
		auth:       authAPI,
		watchlist:  watchlistAPI,
		metadata:   metadataAPI,
		manager:    manager,
		controller: controller,
		bus:        bus,
		engine:     engine,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger swaps the runner's logger, e.g. to redirect logs to a file while
// the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// bootstrap restores the persisted session once per process: arms the auth
// header and seeds the watchlist when a full session survives on disk.
func (r *Runner) bootstrap(ctx context.Context) {
	if r.bootstrapped {
		return
	}
	r.bootstrapped = true
	wl.Bootstrap(ctx, r.manager, r.client, r.controller, r.logger)
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, moviesCommand, watchlistCommand, apiCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
