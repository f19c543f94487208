// Package cli implements receiptctl, the terminal client of the receipts
// API.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sangkips/ecs-receipts/internal/gateway"
	"github.com/sangkips/ecs-receipts/internal/session"
)

// Settings may come from flags or ECS_* environment variables.
const (
	keyServer  = "server"
	keySession = "session"
	keyCatalog = "catalog"
	keyTimeout = "timeout"
)

// app holds what every command needs once flags are parsed.
type app struct {
	cfg *viper.Viper

	client *gateway.Client
	sess   *gateway.FileSession
}

// NewRootCommand builds the receiptctl command tree.
func NewRootCommand() *cobra.Command {
	a := &app{cfg: viper.New()}
	a.cfg.SetEnvPrefix("ECS")
	a.cfg.AutomaticEnv()

	root := &cobra.Command{
		Use:           "receiptctl",
		Short:         "Issue and manage ECS investment receipts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.connect()
		},
	}

	flags := root.PersistentFlags()
	flags.String(keyServer, "http://localhost:8080", "receipts API base URL (ECS_SERVER)")
	flags.String(keySession, defaultSessionPath(), "where the login token is kept (ECS_SESSION)")
	flags.String(keyCatalog, "./data", "reference data directory (ECS_CATALOG)")
	flags.Duration(keyTimeout, 30*time.Second, "request timeout (ECS_TIMEOUT)")
	for _, k := range []string{keyServer, keySession, keyCatalog, keyTimeout} {
		_ = a.cfg.BindPFlag(k, flags.Lookup(k))
	}

	root.AddCommand(
		a.loginCommand(),
		a.logoutCommand(),
		a.whoamiCommand(),
		a.newCommand(),
		a.receiptsCommand(),
		a.statsCommand(),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func (a *app) connect() error {
	a.client = gateway.New(a.cfg.GetString(keyServer), gateway.WithTimeout(a.cfg.GetDuration(keyTimeout)))
	sess, err := gateway.NewFileSession(a.cfg.GetString(keySession), a.client)
	if err != nil {
		return err
	}
	a.sess = sess
	return nil
}

// requireUser fails early when no one is logged in.
func (a *app) requireUser() (*session.User, error) {
	u := a.sess.CurrentUser()
	if u == nil || a.sess.Token() == "" {
		return nil, fmt.Errorf("not logged in; run receiptctl login")
	}
	return u, nil
}

func (a *app) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.cfg.GetDuration(keyTimeout))
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".receiptctl-session.json"
	}
	return filepath.Join(dir, "ecs-receipts", "session.json")
}
