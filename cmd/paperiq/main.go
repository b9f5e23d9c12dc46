package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/paperiq/dashboard/internal/backend"
	"github.com/paperiq/dashboard/internal/logger"
	"github.com/paperiq/dashboard/internal/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type globalOptions struct {
	apiURL      string
	sessionPath string
	timeout     time.Duration
	verbose     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "paperiq",
		Short:         "Run PaperIQ document processing from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	apiURL := os.Getenv("PAPERIQ_API_URL")
	if apiURL == "" {
		apiURL = backend.DefaultBaseURL
	}
	root.PersistentFlags().StringVar(&opts.apiURL, "api", apiURL, "backend API base URL")
	root.PersistentFlags().StringVar(&opts.sessionPath, "session", defaultSessionPath(), "session file")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 0, "per-request timeout (0 for none)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log backend traffic")

	root.AddCommand(
		registerCmd(opts),
		loginCmd(opts),
		logoutCmd(opts),
		whoamiCmd(opts),
		runCmd(opts),
	)
	return root
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".paperiq", "session.yaml")
	}
	return filepath.Join(home, ".paperiq", "session.yaml")
}

func (o *globalOptions) logger() *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	l, err := logger.New(logger.Options{Level: "debug"})
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// client opens the session file and builds a backend client on it. A 401
// clears the file and, when a login was stored, prints a hint.
func (o *globalOptions) client(cmd *cobra.Command) (*backend.Client, *session.FileStorage, error) {
	store, err := session.OpenFileStorage(o.sessionPath)
	if err != nil {
		return nil, nil, err
	}
	errOut := cmd.ErrOrStderr()
	hadLogin := session.IsAuthenticated(store)
	c := backend.New(o.apiURL, store,
		backend.WithHTTPClient(&http.Client{Timeout: o.timeout}),
		backend.WithLogger(o.logger()),
		backend.WithUnauthorizedHandler(func() {
			if hadLogin {
				color.New(color.FgYellow).Fprintln(errOut, "Session expired, run `paperiq login` again")
			}
		}),
	)
	return c, store, nil
}
