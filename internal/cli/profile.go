package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"
)

// newProfileCmd creates the profile command group
func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View and maintain the account profile",
	}
	cmd.AddCommand(newProfileUpdateCmd())
	cmd.AddCommand(newProfileDeleteCmd())
	return cmd
}

// newProfileUpdateCmd creates the profile update command
func newProfileUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update profile fields",
		Long: `Update profile fields. Only the provided flags are sent to the server.

Example:
  taskmate profile update --username ada-lovelace`,
		RunE: runProfileUpdate,
	}

	cmd.Flags().String("username", "", "New username")
	cmd.Flags().String("email", "", "New email address")
	return cmd
}

// runProfileUpdate builds a sparse patch from the provided flags and applies it
func runProfileUpdate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	patch := []byte(`{}`)
	for _, field := range []string{"username", "email"} {
		if v, _ := cmd.Flags().GetString(field); v != "" {
			patch, err = sjson.SetBytes(patch, field, v)
			if err != nil {
				return fmt.Errorf("failed to build update: %w", err)
			}
		}
	}
	if string(patch) == `{}` {
		return fmt.Errorf("nothing to update. Provide --username or --email")
	}

	user := a.session.UpdateProfile(cmd.Context(), json.RawMessage(patch))
	if user == nil {
		return fmt.Errorf("profile update failed: %s", a.session.LastError())
	}

	if jsonOutput {
		printJSON(user)
	} else {
		okLabel.Println("✓ Profile updated")
		fmt.Printf("Username: %s\nEmail:    %s\n", user.Username, user.Email)
	}
	return nil
}

// newProfileDeleteCmd creates the account deletion command
func newProfileDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Permanently delete the account",
		Long: `Permanently delete the account and its tasks on the server, then discard
the local session. Requires --yes to confirm.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			confirmed, _ := cmd.Flags().GetBool("yes")
			if !confirmed {
				return fmt.Errorf("refusing to delete the account without --yes")
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(cmd.Context()); err != nil {
				return err
			}

			if !a.session.DeleteAccount(cmd.Context()) {
				return fmt.Errorf("account deletion failed: %s", a.session.LastError())
			}

			if jsonOutput {
				printJSON(map[string]string{"status": "success", "message": "Account deleted"})
			} else {
				okLabel.Println("✓ Account deleted")
			}
			return nil
		},
	}

	cmd.Flags().Bool("yes", false, "Confirm the deletion")
	return cmd
}
