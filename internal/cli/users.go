package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/BradenHooton/vigil/internal/filter"
	"github.com/BradenHooton/vigil/internal/models"
	"github.com/BradenHooton/vigil/internal/mutation"
	"github.com/spf13/cobra"
)

func newUsersCmd(a *app) *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "List, inspect and change user accounts",
	}

	usersCmd.AddCommand(
		newListCmd(a),
		newGetCmd(a),
		newCreateCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newStatsCmd(a),
		newBulkCreateCmd(a),
		newBulkDeleteCmd(a),
	)
	return usersCmd
}

// listFlags maps flag names onto filter keys
var listFlags = []struct {
	key   string
	usage string
}{
	{filter.KeySearchTerm, "case-insensitive match on username or email"},
	{filter.KeyRole, "user or admin"},
	{filter.KeyStatus, "active or inactive"},
	{filter.KeyEmailVerified, "true or false"},
	{filter.KeyTwoFactorEnabled, "true or false"},
	{filter.KeyCreatedAfter, "YYYY-MM-DD, inclusive"},
	{filter.KeyCreatedBefore, "YYYY-MM-DD, inclusive"},
	{filter.KeyLastLoginAfter, "YYYY-MM-DD, inclusive"},
	{filter.KeyLastLoginBefore, "YYYY-MM-DD, inclusive"},
	{filter.KeySortBy, "id, username, email, role, created_at, last_login or updated_at"},
	{filter.KeySortOrder, "asc or desc"},
	{filter.KeyLimit, "page size"},
	{filter.KeyOffset, "page offset"},
}

func newListCmd(a *app) *cobra.Command {
	raw := make(map[string]*string, len(listFlags))

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users matching the given filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users, _, err := a.directory()
			if err != nil {
				return err
			}

			input := make(map[string]string, len(raw))
			for key, value := range raw {
				input[key] = *value
			}
			params := filter.Compose(input)

			var list *models.UserList
			if len(filter.Keys(params)) == 0 {
				list, err = users.ListUsers(cmd.Context(), nil)
			} else {
				list, err = users.ListUsers(cmd.Context(), &params)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), list)
		},
	}

	for _, f := range listFlags {
		raw[f.key] = cmd.Flags().String(flagName(f.key), "", f.usage)
	}
	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			users, _, err := a.directory()
			if err != nil {
				return err
			}

			user, err := users.GetUser(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), user)
		},
	}
}

func newCreateCmd(a *app) *cobra.Command {
	var payload models.UserCreate
	var role string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users, _, err := a.directory()
			if err != nil {
				return err
			}

			payload.Role = models.Role(role)
			user, err := users.CreateUser(cmd.Context(), payload)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), user)
		},
	}

	cmd.Flags().StringVar(&payload.Username, "username", "", "3-50 letters, digits, '_' or '-'")
	cmd.Flags().StringVar(&payload.Email, "email", "", "email address")
	cmd.Flags().StringVar(&payload.Password, "password", "", "initial password, at least 6 characters")
	cmd.Flags().StringVar(&role, "role", "", "user (default) or admin")
	return cmd
}

func newUpdateCmd(a *app) *cobra.Command {
	var email, role, password string
	var active bool

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change a user's email, role, status or password",
		Long: `Change a user's email, role, status or password. Only fields that
differ from the current account are sent.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			users, _, err := a.directory()
			if err != nil {
				return err
			}

			original, err := users.GetUser(cmd.Context(), id)
			if err != nil {
				return err
			}

			edited := mutation.FormStateFrom(*original)
			flags := cmd.Flags()
			if flags.Changed("email") {
				edited.Email = email
			}
			if flags.Changed("role") {
				edited.Role = models.Role(role)
			}
			if flags.Changed("active") {
				edited.IsActive = active
			}
			edited.Password = password

			updated, err := users.UpdateUser(cmd.Context(), *original, edited)
			if errors.Is(err, models.ErrNoChanges) {
				fmt.Fprintln(cmd.OutOrStdout(), "no changes to submit")
				return nil
			}
			if err != nil {
				return err
			}
			if updated == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "user %d updated\n", id)
				return nil
			}
			return printJSON(cmd.OutOrStdout(), updated)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "new email address")
	cmd.Flags().StringVar(&role, "role", "", "user or admin")
	cmd.Flags().BoolVar(&active, "active", true, "account status")
	cmd.Flags().StringVar(&password, "password", "", "new password, at least 6 characters")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			users, _, err := a.directory()
			if err != nil {
				return err
			}

			if err := users.DeleteUser(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %d deleted\n", id)
			return nil
		},
	}
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate account counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users, _, err := a.directory()
			if err != nil {
				return err
			}

			stats, err := users.Statistics(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), stats)
		},
	}
}

func parseUserID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", s)
	}
	return id, nil
}

// flagName turns a filter key into a flag name, e.g. created_after -> created-after
func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}
