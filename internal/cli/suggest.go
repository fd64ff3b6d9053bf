package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newSuggestCmd creates the suggest command
func newSuggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest",
		Short: "Fetch AI-generated task suggestions",
		Long: `Fetch AI-generated task suggestions based on your current tasks.
Suggestions are produced server-side; this command only displays them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(cmd.Context()); err != nil {
				return err
			}

			suggestions := a.tasks.Suggestions(cmd.Context())
			if suggestions == nil {
				return fmt.Errorf("could not load suggestions: %s", a.tasks.LastError())
			}

			if jsonOutput {
				printJSON(suggestions)
				return nil
			}
			if len(suggestions) == 0 {
				fmt.Println("No suggestions right now.")
				return nil
			}
			for i, s := range suggestions {
				fmt.Printf("%d. %s\n", i+1, s)
			}
			return nil
		},
	}
}
