package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tableflip.dev/diary/pkg/runner/auth"
)

func addLogin(topLevel *cobra.Command) {
	var token string

	cmd := &cobra.Command{
		Use:     "login",
		Aliases: []string{"signin"},
		Short:   "Sign in with an access token to use the hosted journal",
		Example: `
diary login
diary login --token="$DIARY_TOKEN"
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			mgr, err := sessionManager(cfg)
			if err != nil {
				return err
			}
			l := auth.Login{
				Manager: mgr,
				Token:   token,
				Prompt:  promptToken,
				Out:     cmd.OutOrStdout(),
			}
			return output.HandleError(l.Do(cmd.Context()))
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Access token; prompted for when empty.")
	output.AddOutputArg(cmd)
	topLevel.AddCommand(cmd)
}

// promptToken reads the token without echoing it.
func promptToken() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("stdin is not a terminal, pass --token")
	}
	_, _ = fmt.Fprint(os.Stderr, "Access token: ")
	b, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func addLogout(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "logout",
		Aliases: []string{"signout"},
		Short:   "Forget the stored session",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			mgr, err := sessionManager(cfg)
			if err != nil {
				return err
			}
			l := auth.Logout{Manager: mgr, Out: cmd.OutOrStdout()}
			return output.HandleError(l.Do(cmd.Context()))
		},
	}

	output.AddOutputArg(cmd)
	topLevel.AddCommand(cmd)
}

func addWhoAmI(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show who is signed in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			mgr, err := sessionManager(cfg)
			if err != nil {
				return err
			}
			w := auth.WhoAmI{Manager: mgr, Out: cmd.OutOrStdout()}
			return output.HandleError(w.Do(cmd.Context()))
		},
	}

	output.AddOutputArg(cmd)
	topLevel.AddCommand(cmd)
}
