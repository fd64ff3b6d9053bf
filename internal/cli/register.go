package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskmate/taskmate/pkg/types"
)

// newRegisterCmd creates and returns a new register command
func newRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account on the task-manager service",
		Long: `Create an account on the task-manager service. A successful registration
signs you in immediately: the returned session token is stored locally.

Example:
  taskmate register --username ada --email ada@example.com`,
		RunE: runRegister,
	}

	cmd.Flags().String("username", "", "Account username")
	cmd.Flags().String("email", "", "Account email address")
	cmd.Flags().String("passwd", "", "Account password (prompted when omitted)")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("email")
	return cmd
}

// runRegister handles the register command execution
func runRegister(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	username, _ := cmd.Flags().GetString("username")
	email, _ := cmd.Flags().GetString("email")
	passwd, _ := cmd.Flags().GetString("passwd")

	confirm := passwd
	if passwd == "" {
		passwd, err = promptSecret("Password: ")
		if err != nil {
			return err
		}
		confirm, err = promptSecret("Confirm password: ")
		if err != nil {
			return err
		}
	}

	ok := a.session.Register(cmd.Context(), types.Registration{
		Username:        username,
		Email:           email,
		Password:        passwd,
		ConfirmPassword: confirm,
	})
	if !ok {
		return fmt.Errorf("registration failed: %s", a.session.LastError())
	}

	user := a.session.CurrentUser()
	if jsonOutput {
		printJSON(map[string]any{
			"status": "success",
			"user":   user,
		})
	} else {
		okLabel.Println("✓ Registration successful")
		fmt.Printf("Signed in as %s <%s>\n", user.Username, user.Email)
	}
	return nil
}
