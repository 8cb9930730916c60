package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jobguard/jobguard/internal/auth"
	"github.com/jobguard/jobguard/internal/client"
	"github.com/jobguard/jobguard/internal/dashboard"
	"github.com/jobguard/jobguard/internal/session"
)

// NewLoginCmd creates the login command.
func NewLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in to the JobGuard server",
		Long: `Login authenticates against the server and stores the session cookie in
the local database. Without --password the password is read from the first
line of stdin, or prompted for without echo on a terminal.

Examples:
  jobguard login alice --remember
  echo "$JOBGUARD_PASSWORD" | jobguard login alice`,
		Args: cobra.ExactArgs(1),
		RunE: runLoginCmd,
	}
	cmd.Flags().StringP("password", "p", "", "Password (default: read from stdin)")
	cmd.Flags().BoolP("remember", "r", false, "Ask the server for a persistent session")
	return cmd
}

func runLoginCmd(cmd *cobra.Command, args []string) error {
	username := args[0]
	password, err := passwordInput(cmd)
	if err != nil {
		return err
	}
	if err := auth.ValidateLogin(username, password); err != nil {
		return errors.New(auth.DeniedMessage(err.Error()))
	}
	remember, err := cmd.Flags().GetBool("remember")
	if err != nil {
		return err
	}

	ctx, a, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := a.client.Login(ctx, username, password, remember)
	if err != nil {
		return fmt.Errorf("%s: %w", auth.DeniedMessage(failureReason(err)), err)
	}

	state := a.ident.Remember(ctx, res.Username)
	fmt.Fprintln(cmd.OutOrStdout(), "ACCESS GRANTED")
	fmt.Fprintln(cmd.OutOrStdout(), state.Label)
	return nil
}

// NewSignupCmd creates the signup command.
func NewSignupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup <username>",
		Short: "Create an account on the JobGuard server",
		Long: `Signup registers a new account and logs it in.

Usernames are 3-15 letters, digits or underscores. Passwords need at least
8 characters including a digit and one of !@#$%^&*. Every field is checked
locally before anything is sent.`,
		Args: cobra.ExactArgs(1),
		RunE: runSignupCmd,
	}
	cmd.Flags().StringP("email", "e", "", "E-mail address")
	cmd.Flags().StringP("password", "p", "", "Password (default: read from stdin)")
	return cmd
}

func runSignupCmd(cmd *cobra.Command, args []string) error {
	email, err := cmd.Flags().GetString("email")
	if err != nil {
		return err
	}
	password, err := passwordInput(cmd)
	if err != nil {
		return err
	}

	form := auth.Signup{Username: args[0], Email: email, Password: password}
	if err := form.Validate(); err != nil {
		writeFieldReport(cmd.ErrOrStderr(), err)
		return errors.New(auth.RegistrationFailedMessage("invalid fields"))
	}

	ctx, a, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := a.client.Signup(ctx, form.Username, form.Email, form.Password)
	if err != nil {
		return fmt.Errorf("%s: %w", auth.RegistrationFailedMessage(failureReason(err)), err)
	}

	state := a.ident.Remember(ctx, res.Username)
	fmt.Fprintln(cmd.OutOrStdout(), "REGISTRATION COMPLETE")
	fmt.Fprintln(cmd.OutOrStdout(), state.Label)
	return nil
}

// writeFieldReport prints one status line per signup field.
func writeFieldReport(w io.Writer, err error) {
	var fe auth.FieldErrors
	errors.As(err, &fe)
	for _, field := range []string{"username", "email", "password"} {
		fmt.Fprintf(w, "%-9s %s\n", field, auth.FieldMessage(fe[field]))
	}
}

// NewLogoutCmd creates the logout command.
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the server session",
		Long: `Logout ends the server session. The cached identity and the stored session
cookie are removed even when the server cannot be reached.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, a, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if _, err := a.ident.Logout(ctx); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: server did not confirm logout: %v\n", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Session terminated.")
			return nil
		},
	}
}

// NewDeleteAccountCmd creates the delete-account command.
func NewDeleteAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete-account",
		Short: "Delete the logged-in account",
		Long: `Delete-account permanently deletes the logged-in account on the server and
clears the local identity. It asks for confirmation unless --yes is given.`,
		Args: cobra.NoArgs,
		RunE: runDeleteAccountCmd,
	}
	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func runDeleteAccountCmd(cmd *cobra.Command, _ []string) error {
	yes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return err
	}
	if !yes {
		fmt.Fprint(cmd.ErrOrStderr(), dashboard.PromptDeleteAccount+" [y/N] ")
		answer, err := readLine(cmd.InOrStdin())
		if err != nil {
			return err
		}
		if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	ctx, a, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := a.ident.DeleteAccount(ctx); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: server did not confirm deletion: %v\n", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Account deleted.")
	return nil
}

// NewWhoamiCmd creates the whoami command.
func NewWhoamiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the operator the session belongs to",
		Long: `Whoami asks the server who the current session belongs to and updates the
cached identity. If the server cannot be reached the cached identity is
shown instead. With --offline only the cache is read.`,
		Args: cobra.NoArgs,
		RunE: runWhoamiCmd,
	}
	cmd.Flags().Bool("offline", false, "Show the cached identity without asking the server")
	return cmd
}

func runWhoamiCmd(cmd *cobra.Command, _ []string) error {
	offline, err := cmd.Flags().GetBool("offline")
	if err != nil {
		return err
	}

	ctx, a, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	state := a.ident.Paint(ctx)
	if !offline {
		s, err := a.ident.Reconcile(ctx)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s, showing cached identity\n", session.Message(err))
		}
		state = s
	}

	fmt.Fprintln(cmd.OutOrStdout(), state.Label)
	if state.AdminPanel {
		fmt.Fprintln(cmd.OutOrStdout(), "system logs: available (jobguard logs)")
	}
	return nil
}

// passwordInput returns --password, prompts without echo when stdin is a
// terminal, and otherwise reads the first line of stdin.
func passwordInput(cmd *cobra.Command) (string, error) {
	password, err := cmd.Flags().GetString("password")
	if err != nil {
		return "", err
	}
	if password != "" {
		return password, nil
	}
	return systemTerminal.password(cmd.InOrStdin(), cmd.ErrOrStderr())
}

// terminal reads secrets from an interactive terminal.
type terminal struct {
	isTerminal   func(fd int) bool
	readPassword func(fd int) ([]byte, error)
}

var systemTerminal = terminal{
	isTerminal:   term.IsTerminal,
	readPassword: term.ReadPassword,
}

func (t terminal) password(in io.Reader, prompt io.Writer) (string, error) {
	f, ok := in.(*os.File)
	if !ok || !t.isTerminal(int(f.Fd())) {
		return readLine(in)
	}

	fmt.Fprint(prompt, "Password: ")
	b, err := t.readPassword(int(f.Fd()))
	fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// failureReason extracts the server's message, or names a connection failure.
func failureReason(err error) string {
	var se *client.ServerError
	switch {
	case errors.As(err, &se):
		return se.Message
	case errors.Is(err, client.ErrConnection):
		return session.MessageConnectionError
	default:
		return err.Error()
	}
}
