package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotilytics/internal/cache"
	"github.com/desertthunder/spotilytics/internal/formatter"
	"github.com/desertthunder/spotilytics/internal/overlay"
	"github.com/desertthunder/spotilytics/internal/repositories"
	"github.com/desertthunder/spotilytics/internal/services"
	"github.com/desertthunder/spotilytics/internal/shared"
	"github.com/desertthunder/spotilytics/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Spotify-backed dependencies are opened lazily by connect so that setup and help work
// without credentials.
type Runner struct {
	config     *shared.Config
	configPath string
	configSet  bool
	profile    string

	db        *sql.DB
	profiles  *repositories.SessionRepository
	cache     *cache.Gateway
	session   services.Session
	client    *services.SpotifyClient
	spotify   services.Spotify
	dashboard *tasks.Dashboard

	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// When Spotify is set the runner uses it as-is and never opens the database or cache.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Spotify    services.Spotify
	Session    services.Session
	Hidden     overlay.Store
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		configSet:  opts.Config != nil,
		spotify:    opts.Spotify,
		session:    opts.Session,
		logger:     opts.Logger,
		output:     opts.Output,
	}

	if r.config == nil {
		r.config = shared.DefaultConfig()
	}
	if r.logger == nil {
		r.logger = shared.NewLogger(nil)
	}
	if r.output == nil {
		r.output = os.Stdout
	}

	if r.spotify != nil {
		store := opts.Hidden
		if store == nil {
			store = overlay.NewMemoryStore()
		}
		r.dashboard = tasks.NewDashboard(r.spotify, overlay.New(store, r.logger), r.session, r.logger)
	}
	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, dashboardCommand, topCommand, hideCommand, unhideCommand,
		playlistsCommand, showsCommand, episodesCommand, searchCommand, artistsCommand, cacheCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// configure loads the config file named by --config, applies environment overrides
// and sets the log level. A missing file falls back to the embedded defaults.
func (r *Runner) configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}
	r.profile = cmd.String("profile")

	if !r.configSet {
		config, err := loadConfig(r.configPath, r.logger)
		if err != nil {
			return ctx, err
		}
		r.config = config
		r.configSet = true
	}

	level := cmd.String("log-level")
	if level == "" {
		level = r.config.Logging.Level
	}
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(level))
	return ctx, nil
}

func loadConfig(path string, logger *log.Logger) (*shared.Config, error) {
	config := shared.DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		if config, err = shared.LoadConfig(path); err != nil {
			return nil, err
		}
	} else {
		logger.Debug("config file not found, using defaults", "path", path)
	}
	config.ApplyEnv(os.LookupEnv)
	return config, nil
}

// connect opens the database, session, cache and Spotify client on first use.
func (r *Runner) connect(ctx context.Context) error {
	if r.spotify != nil {
		return nil
	}

	creds := r.config.Credentials.Spotify
	if !creds.Configured() {
		return fmt.Errorf("%w: set client_id and client_secret in %s or SPOTIFY_CLIENT_ID/SPOTIFY_CLIENT_SECRET", shared.ErrMissingCredentials, r.configPath)
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return err
	}

	profiles := repositories.NewSessionRepository(db)
	session, err := repositories.OpenSession(profiles, r.profile)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to open session: %w", err)
	}

	gateway, err := cache.Open(ctx, r.config.Cache, r.logger)
	if err != nil {
		db.Close()
		return err
	}

	connect, read := r.config.HTTP.Timeouts()
	client, err := services.NewSpotifyClient(creds, session, services.Options{
		HTTPClient: services.NewHTTPClient(connect, read),
		RateLimit:  r.config.HTTP.RateLimit,
		Cache:      gateway,
		CacheTTL:   gateway.TTL(),
		Logger:     r.logger,
	})
	if err != nil {
		gateway.Close()
		db.Close()
		return err
	}

	r.db, r.profiles, r.cache, r.session, r.client, r.spotify = db, profiles, gateway, session, client, client
	o := overlay.New(repositories.NewHiddenRepository(db), r.logger)
	r.dashboard = tasks.NewDashboard(client, o, session, r.logger)

	r.logger.Debug("connected", "profile", session.Name(), "cache", r.config.Cache.Backend)
	return nil
}

// close releases whatever connect opened.
func (r *Runner) close(ctx context.Context, cmd *cli.Command) error {
	var errs []error
	if r.cache != nil {
		errs = append(errs, r.cache.Close())
		r.cache = nil
	}
	if r.db != nil {
		errs = append(errs, r.db.Close())
		r.db, r.profiles = nil, nil
	}
	return errors.Join(errs...)
}

// connected wraps a command action so it runs with the Spotify dependencies open.
func (r *Runner) connected(action cli.ActionFunc) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		if err := r.connect(ctx); err != nil {
			return err
		}
		return action(ctx, cmd)
	}
}

// render writes data as JSON when --json is set and tables otherwise.
// With --output the tables are also exported to a file.
func (r *Runner) render(cmd *cli.Command, data any, tables ...formatter.Table) error {
	if cmd.Bool("json") {
		return r.writeJSON(data, cmd.Bool("pretty"))
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	if path := cmd.String("output"); path != "" {
		written, err := formatter.WriteExport(path, format, tables...)
		if err != nil {
			return err
		}
		r.logger.Info("export written", "path", written)
		return r.writePlain("%s Exported to %s\n", formatter.Styles.OK("✓"), written)
	}
	return formatter.Render(r.output, format, tables...)
}

func (r *Runner) notice(msg string) {
	if msg != "" {
		r.writePlain("%s\n\n", formatter.Styles.Warn("! "+msg))
	}
}

// progress prints updates until the returned stop func is called. When disabled the
// channel is nil and updates are dropped.
func (r *Runner) progress(enabled bool) (chan<- tasks.ProgressUpdate, func()) {
	if !enabled {
		return nil, func() {}
	}

	ch := make(chan tasks.ProgressUpdate, 10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range ch {
			r.logger.Debug("progress", "phase", update.Phase, "step", update.Step, "total", update.Total)
			r.writePlain("%s %s\n", formatter.Styles.Help(fmt.Sprintf("[%d/%d]", update.Step, update.Total)), update.Message)
		}
	}()
	return ch, func() {
		close(ch)
		<-done
	}
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
	text := fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
