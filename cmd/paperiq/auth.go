package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/paperiq/dashboard/internal/backend"
	"github.com/paperiq/dashboard/internal/session"
	"github.com/spf13/cobra"
)

func passwordFlag(cmd *cobra.Command, p *string) {
	cmd.Flags().StringVarP(p, "password", "p", os.Getenv("PAPERIQ_PASSWORD"), "password (default $PAPERIQ_PASSWORD)")
}

func registerCmd(opts *globalOptions) *cobra.Command {
	var req backend.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := opts.client(cmd)
			if err != nil {
				return err
			}
			if _, err := client.Register(cmd.Context(), req); err != nil {
				return explain(err)
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Registered %s, now run `paperiq login`\n", req.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "display name")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	passwordFlag(cmd, &req.Password)
	return cmd
}

func loginCmd(opts *globalOptions) *cobra.Command {
	var req backend.LoginRequest
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, store, err := opts.client(cmd)
			if err != nil {
				return err
			}
			user, err := client.Login(cmd.Context(), req)
			if err != nil {
				return explain(err)
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", user.DisplayName())
			fmt.Fprintf(cmd.OutOrStdout(), "Session saved to %s\n", store.Path())
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	passwordFlag(cmd, &req.Password)
	return cmd
}

func logoutCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := opts.client(cmd)
			if err != nil {
				return err
			}
			if err := client.Logout(); err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "Logged out successfully")
			return nil
		},
	}
}

func whoamiCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, store, err := opts.client(cmd)
			if err != nil {
				return err
			}
			if !session.IsAuthenticated(store) {
				return errors.New("not logged in, run `paperiq login`")
			}
			token := session.Token(store)
			user, err := client.CurrentUser(cmd.Context())
			if err != nil {
				return explain(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s <%s>\n", user.DisplayName(), user.Email)
			fmt.Fprintf(out, "id: %s\n", user.ID)
			if exp, ok := backend.TokenExpiry(token); ok {
				left := time.Until(exp).Round(time.Minute)
				if left <= 0 {
					color.New(color.FgYellow).Fprintf(out, "token expired at %s\n", exp.Local().Format(time.RFC1123))
				} else {
					fmt.Fprintf(out, "token expires %s (in %s)\n", exp.Local().Format(time.RFC1123), left)
				}
			}
			return nil
		},
	}
}

// explain turns client errors into the message a user should see.
func explain(err error) error {
	var input *backend.InputError
	if errors.As(err, &input) {
		return fmt.Errorf("missing or invalid: %v", input.Fields)
	}
	var se *backend.StatusError
	if errors.As(err, &se) && se.Message != "" {
		return errors.New(se.Message)
	}
	return err
}
