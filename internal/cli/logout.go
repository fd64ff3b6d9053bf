package cli

import (
	"github.com/spf13/cobra"
)

// newLogoutCmd creates and returns a new logout command
func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and discard the stored session",
		Long: `Sign out of the task-manager service. The server-side signout is
best-effort: the local session token is removed even when the server cannot
be reached.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			a.session.Logout(cmd.Context())

			if jsonOutput {
				printJSON(map[string]string{"status": "success", "message": "Logged out"})
			} else {
				okLabel.Println("✓ Logged out")
			}
			return nil
		},
	}
}
