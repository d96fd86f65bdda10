package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BradenHooton/vigil/internal/models"
	"github.com/BradenHooton/vigil/internal/services"
	"github.com/spf13/cobra"
)

func newBulkCreateCmd(a *app) *cobra.Command {
	var file string
	var welcome bool

	cmd := &cobra.Command{
		Use:   "bulk-create",
		Short: "Create users from a JSON file",
		Long: `Create users from a JSON array of {username, email, password, role}
objects. Each item succeeds or fails on its own; invalid items are reported
without being sent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := readBulkItems(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			_, bulk, err := a.directory()
			if err != nil {
				return err
			}

			result, err := bulk.BulkCreate(cmd.Context(), items, services.BulkCreateOptions{
				SendWelcomeEmail: welcome,
				Progress:         progressPrinter(cmd.ErrOrStderr(), len(items)),
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file of users, or - for stdin")
	cmd.Flags().BoolVar(&welcome, "welcome", false, "ask the server to send welcome emails (batch mode)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newBulkDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "bulk-delete ID...",
		Short: "Delete several users",
		Long: `Delete several users. Repeated IDs are deleted once; each ID
succeeds or fails on its own.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := parseUserID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			_, bulk, err := a.directory()
			if err != nil {
				return err
			}

			result, err := bulk.BulkDelete(cmd.Context(), ids, progressPrinter(cmd.ErrOrStderr(), len(ids)))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
}

func readBulkItems(stdin io.Reader, file string) ([]models.UserCreate, error) {
	var r io.Reader = stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", file, err)
		}
		defer f.Close()
		r = f
	}

	var items []models.UserCreate
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to parse users: %w", err)
	}
	return items, nil
}

// progressPrinter reports terminal item states as "[n/total] #index state"
func progressPrinter(w io.Writer, total int) services.ProgressFunc {
	done := 0
	return func(p services.ItemProgress) {
		switch p.State {
		case services.ItemSucceeded:
			done++
			fmt.Fprintf(w, "[%d/%d] #%d succeeded\n", done, total, p.Index)
		case services.ItemFailed:
			done++
			fmt.Fprintf(w, "[%d/%d] #%d failed: %s\n", done, total, p.Index, p.Reason)
		}
	}
}
