package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	authEmail    string
	authPassword string
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a CareerMatch account",
	RunE:  runSignup,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session",
	Long:  "Log in with email and password. The session token is kept in the OS keyring, or in a private file with --session-store file.",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := current.sessions.Logout(); err != nil {
			return err
		}
		current.printer.Success("Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := current.sessions.Current()
		if err != nil {
			return loginHint(err)
		}
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "Email:   %s\n", orUnknown(s.Email))
		if !s.ExpiresAt.IsZero() {
			_, _ = fmt.Fprintf(out, "Expires: %s (in %s)\n", s.ExpiresAt.Local().Format(time.RFC3339), time.Until(s.ExpiresAt).Round(time.Minute))
		}
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{signupCmd, loginCmd} {
		cmd.Flags().StringVarP(&authEmail, "email", "e", "", "Account email (required)")
		cmd.Flags().StringVarP(&authPassword, "password", "p", "", "Password (prompted when omitted)")
		_ = cmd.MarkFlagRequired("email")
	}
	rootCmd.AddCommand(signupCmd, loginCmd, logoutCmd, whoamiCmd)
}

func runSignup(cmd *cobra.Command, _ []string) error {
	password, err := readPassword(cmd)
	if err != nil {
		return err
	}
	if err := current.client.Signup(cmd.Context(), authEmail, password); err != nil {
		return fmt.Errorf("signup failed: %w", err)
	}
	current.printer.Success("Account created for %s, run 'careermatch login' to continue", authEmail)
	return nil
}

func runLogin(cmd *cobra.Command, _ []string) error {
	password, err := readPassword(cmd)
	if err != nil {
		return err
	}
	token, err := current.client.Login(cmd.Context(), authEmail, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	s, err := current.sessions.Login(token, authEmail)
	if err != nil {
		return err
	}
	current.log.Debug("session stored", "store", current.cfg.SessionStore, "expires_at", s.ExpiresAt)
	current.printer.Success("Logged in as %s", s.Email)
	return nil
}

// readPassword returns --password, or prompts for it. Input is hidden when
// stdin is a terminal; otherwise the first line is read.
func readPassword(cmd *cobra.Command) (string, error) {
	if authPassword != "" {
		return authPassword, nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		raw, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return checkPassword(string(raw))
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return checkPassword(strings.TrimRight(line, "\r\n"))
}

func checkPassword(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("password is required")
	}
	return p, nil
}

func orUnknown(s string) string {
	if s == "" {
		return "(unknown)"
	}
	return s
}

