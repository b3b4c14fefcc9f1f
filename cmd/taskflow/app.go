package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"taskflow/internal/authapi"
	"taskflow/internal/config"
	"taskflow/internal/logging"
	"taskflow/internal/session"
	"taskflow/internal/store"
	"taskflow/internal/taskapi"
)

var errSessionEnded = errors.New("your session has expired, please run `taskflow login` again")

var errNotSignedIn = errors.New("not signed in, run `taskflow login` first")

// app is everything a command needs, built once in the root pre-run.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	out    io.Writer
	errOut io.Writer
	now    func() time.Time

	session *session.Manager
	auth    *authapi.Client
	api     *taskapi.Client
	tasks   *store.Store
}

type rootFlags struct {
	configPath string
	apiURL     string
	logLevel   string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var flags rootFlags
	a := &app{out: stdout, errOut: stderr, now: time.Now}

	root := &cobra.Command{
		Use:           "taskflow",
		Short:         "Manage your tasks from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(flags, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "Config file (default: layered ~/.taskflow and ./.taskflow)")
	root.PersistentFlags().StringVar(&flags.apiURL, "api-url", "", "Task API base URL (overrides api.base_url)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newRegisterCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newListCmd(a),
		newRecentCmd(a),
		newStatsCmd(a),
		newAddCmd(a),
		newEditCmd(a),
		newRmCmd(a),
		newToggleCmd(a),
		newMoveCmd(a),
		newExportCmd(a),
		newConfigCmd(a),
	)
	return root
}

func (a *app) init(flags rootFlags, stderr io.Writer) error {
	var err error
	if flags.configPath != "" {
		a.cfg, err = config.LoadFile(flags.configPath)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if flags.apiURL != "" {
		a.cfg.API.BaseURL = flags.apiURL
	}
	if flags.logLevel != "" {
		a.cfg.Log.Level = flags.logLevel
	}

	a.logger = logging.New(stderr, a.cfg.Log.Level, a.cfg.Log.Format)

	fs, err := session.NewFileStore(a.cfg.SessionPath())
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	a.session = session.NewManager(fs, logging.Component(a.logger, "session"), session.WithClock(a.now))
	if _, err := a.session.Restore(); err != nil {
		a.logger.Warn().Err(err).Msg("could not restore session")
	}

	a.auth = authapi.NewClient(a.cfg.API.BaseURL, a.cfg.API.Timeout, logging.Component(a.logger, "authapi"))
	a.api = taskapi.NewClient(a.cfg.API.BaseURL, a.session, logging.Component(a.logger, "taskapi"),
		taskapi.WithTimeout(a.cfg.API.Timeout))
	a.tasks = store.New(a.api, logging.Component(a.logger, "store"))
	return nil
}

// load refreshes the task list for a command that needs it.
func (a *app) load(ctx context.Context) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	return a.check(a.tasks.Refresh(ctx))
}

func (a *app) requireSession() error {
	if a.session.Expired() {
		return errSessionEnded
	}
	if a.session.State() != session.StateAuthenticated {
		return errNotSignedIn
	}
	return nil
}

// check turns an expired-session failure into a logout.
func (a *app) check(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, taskapi.ErrSessionExpired) {
		if lerr := a.session.Logout(); lerr != nil {
			a.logger.Warn().Err(lerr).Msg("logout after expiry")
		}
		return errSessionEnded
	}
	return err
}

// done reports a create, update or delete. Once the server has confirmed the
// change, a failed reload of the list is only a warning so the user does not
// repeat a mutation that already happened.
func (a *app) done(out store.Outcome, err error, format string, args ...any) error {
	if !out.Has(store.Confirmed) {
		return userError(a.check(err))
	}
	fmt.Fprintf(a.out, format+"\n", args...)
	if err != nil {
		fmt.Fprintf(a.errOut, "Warning: the change was saved but the task list could not be reloaded: %s\n", store.Message(a.check(err)))
	}
	return nil
}
