package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/optipresta/optipresta/internal/contract"
	"github.com/optipresta/optipresta/internal/session"
)

func newLoginCmd(opts *globalOptions) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Open a session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, ro, err := buildPrinter(cmd, opts, "login")
			if err != nil {
				return err
			}
			if username == "" || password == "" {
				if ro.NoInput || !stdinInteractive() {
					err := errors.New("missing credentials")
					return failWithHint(p, contract.ErrInvalidUsage, err, "Pass --username and --password", 2)
				}
				reader := bufio.NewReader(os.Stdin)
				if username == "" {
					username, err = promptLine(reader, cmd.ErrOrStderr(), "Username: ")
					if err != nil {
						return Wrap(1, err)
					}
				}
				if password == "" {
					password, err = promptLine(reader, cmd.ErrOrStderr(), "Password: ")
					if err != nil {
						return Wrap(1, err)
					}
				}
			}
			creds := session.Credentials{Username: ro.Username, PasswordHash: ro.PasswordHash}
			if err := creds.Check(username, password); err != nil {
				return failWithHint(p, contract.ErrUnauthenticated, err, "Check the reception credentials", 3)
			}
			st := session.State{Username: username, CreatedAt: nowFunc()}
			if err := session.Save(ro.SessionPath, st); err != nil {
				return failWithHint(p, contract.ErrGeneric, err, "Check the session file path and permissions", 1)
			}
			return p.Success(map[string]any{"username": username, "session": ro.SessionPath}, nil, nil)
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "Login username")
	cmd.Flags().StringVar(&password, "password", "", "Login password")
	return cmd
}

func newLogoutCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Close the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, ro, err := buildPrinter(cmd, opts, "logout")
			if err != nil {
				return err
			}
			if err := session.Clear(ro.SessionPath); err != nil {
				return failWithHint(p, contract.ErrGeneric, err, "Remove the session file by hand", 1)
			}
			return p.Success(map[string]any{"logged_out": true}, nil, nil)
		},
	}
}

func newSessionCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Show the active session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, ro, err := buildPrinter(cmd, opts, "session")
			if err != nil {
				return err
			}
			st, err := session.Load(ro.SessionPath)
			if err != nil {
				return failWithHint(p, contract.ErrGeneric, err, "Remove the session file and log in again", 1)
			}
			if st == nil {
				return p.Success(map[string]any{"active": false}, nil, nil)
			}
			return p.Success(map[string]any{
				"active":     true,
				"username":   st.Username,
				"created_at": st.CreatedAt,
				"age":        humanize.Time(st.CreatedAt),
			}, nil, nil)
		},
	}
}

// newHashPasswordCmd produces an argon2id hash for the config
// password_hash key.
func newHashPasswordCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Hash a password for the config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ro, err := buildPrinter(cmd, opts, "hash-password")
			if err != nil {
				return err
			}
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				if ro.NoInput || !stdinInteractive() {
					err := errors.New("missing password")
					return failWithHint(p, contract.ErrInvalidUsage, err, "Pass the password as an argument", 2)
				}
				password, err = promptLine(bufio.NewReader(os.Stdin), cmd.ErrOrStderr(), "Password: ")
				if err != nil {
					return Wrap(1, err)
				}
			}
			if password == "" {
				return failWithHint(p, contract.ErrInvalidUsage, errors.New("empty password"), "", 2)
			}
			hash, err := session.HashPassword(password)
			if err != nil {
				return Wrap(1, err)
			}
			return p.Success(map[string]any{"password_hash": hash}, nil, nil)
		},
	}
}

func promptLine(r *bufio.Reader, out io.Writer, label string) (string, error) {
	if _, err := fmt.Fprint(out, label); err != nil {
		return "", err
	}
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
