package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newWhoamiCmd creates and returns a new whoami command
func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the currently signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			if err := a.requireSession(cmd.Context()); err != nil {
				return err
			}

			user := a.session.CurrentUser()
			if jsonOutput {
				printJSON(user)
			} else {
				fmt.Printf("Username: %s\n", user.Username)
				fmt.Printf("Email:    %s\n", user.Email)
				fmt.Printf("User ID:  %s\n", user.UserID)
			}
			return nil
		},
	}
}
