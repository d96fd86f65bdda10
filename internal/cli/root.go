// Package cli wires the vigil command tree.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/BradenHooton/vigil/internal/config"
	"github.com/BradenHooton/vigil/internal/repositories"
	"github.com/BradenHooton/vigil/internal/services"
	pkghttp "github.com/BradenHooton/vigil/pkg/http"
	pkglogger "github.com/BradenHooton/vigil/pkg/logger"
	"github.com/spf13/cobra"
)

// app holds what every command needs once configuration has loaded
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	audit  *pkglogger.AuditLogger
}

// directory builds the remote-backed services. It fails when the API
// settings are missing.
func (a *app) directory() (*services.UserService, *services.BulkService, error) {
	if err := a.cfg.RequireAPI(); err != nil {
		return nil, nil, err
	}

	client := pkghttp.NewClient(a.cfg.API.Token, a.cfg.API.Timeout, a.logger)
	repo, err := repositories.NewUserRepository(client, a.cfg.API.BaseURL)
	if err != nil {
		return nil, nil, err
	}

	mode, err := services.ParseBulkMode(a.cfg.Bulk.Mode)
	if err != nil {
		return nil, nil, err
	}

	users := services.NewUserService(repo, a.logger, a.audit)
	bulk := services.NewBulkService(repo, services.BulkConfig{
		Mode:        mode,
		Concurrency: a.cfg.Bulk.Concurrency,
	}, a.logger, a.audit)
	return users, bulk, nil
}

// NewRootCmd builds the vigil command tree. Logs go to stderr; results go to
// the command's output stream.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "vigil",
		Short: "Administer users of a video surveillance platform",
		Long: `Administer users of a video surveillance platform. Usage:

	vigil users list --role admin
	vigil users bulk-delete 4 7 9
`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = pkglogger.New(cmd.ErrOrStderr(), cfg.LogLevel)
			a.audit = pkglogger.NewAuditLogger(a.logger, cfg.Env)
			return nil
		},
	}

	rootCmd.AddCommand(newUsersCmd(a))
	rootCmd.AddCommand(newPasswordStrengthCmd())
	rootCmd.AddCommand(newMockServerCmd(a))
	return rootCmd
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
