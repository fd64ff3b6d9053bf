package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"

	"github.com/taskmate/taskmate/pkg/types"
)

// newTaskCmd creates the task command group
func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Create, inspect, and maintain tasks",
	}
	cmd.AddCommand(newTaskListCmd())
	cmd.AddCommand(newTaskGetCmd())
	cmd.AddCommand(newTaskAddCmd())
	cmd.AddCommand(newTaskUpdateCmd())
	cmd.AddCommand(newTaskRmCmd())
	return cmd
}

// parseTaskID validates a task id argument before it reaches the server.
func parseTaskID(arg string) (string, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return "", fmt.Errorf("invalid task id %q: %w", arg, err)
	}
	return id.String(), nil
}

// newTaskListCmd creates the task list command
func newTaskListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(cmd.Context()); err != nil {
				return err
			}

			tasks := a.tasks.List(cmd.Context())
			if tasks == nil {
				return fmt.Errorf("could not list tasks: %s", a.tasks.LastError())
			}

			if jsonOutput {
				printJSON(tasks)
				return nil
			}
			if len(tasks) == 0 {
				fmt.Println("No tasks.")
				return nil
			}
			for _, t := range tasks {
				printTaskLine(t)
			}
			return nil
		},
	}
}

// newTaskGetCmd creates the task get command
func newTaskGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get TASK_ID",
		Short: "Show a single task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(cmd.Context()); err != nil {
				return err
			}

			task := a.tasks.Get(cmd.Context(), id)
			if task == nil {
				return fmt.Errorf("could not load task: %s", a.tasks.LastError())
			}

			if jsonOutput {
				printJSON(task)
				return nil
			}
			printTaskDetail(*task)
			return nil
		},
	}
}

// newTaskAddCmd creates the task add command
func newTaskAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Create a new task",
		Long: `Create a new task with the given title.

Examples:
  taskmate task add "Write release notes"
  taskmate task add "Fix login flow" --priority high --due 2026-09-15`,
		Args: cobra.ExactArgs(1),
		RunE: runTaskAdd,
	}

	cmd.Flags().String("desc", "", "Task description")
	cmd.Flags().String("priority", "", "Task priority (low, medium, high)")
	cmd.Flags().String("due", "", "Due date (YYYY-MM-DD)")
	return cmd
}

// runTaskAdd handles the task add command execution
func runTaskAdd(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	input := types.TaskInput{Title: args[0]}
	if v, _ := cmd.Flags().GetString("desc"); v != "" {
		input.Description = v
	}
	if v, _ := cmd.Flags().GetString("priority"); v != "" {
		input.Priority = types.TaskPriority(v)
	}
	if v, _ := cmd.Flags().GetString("due"); v != "" {
		due, err := time.Parse("2006-01-02", v)
		if err != nil {
			return fmt.Errorf("invalid due date %q: expected YYYY-MM-DD", v)
		}
		input.DueDate = &due
	}

	task := a.tasks.Create(cmd.Context(), input)
	if task == nil {
		return fmt.Errorf("could not create task: %s", a.tasks.LastError())
	}

	if jsonOutput {
		printJSON(task)
	} else {
		okLabel.Println("✓ Task created")
		printTaskLine(*task)
	}
	return nil
}

// newTaskUpdateCmd creates the task update command
func newTaskUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update TASK_ID",
		Short: "Update task fields",
		Long: `Update task fields. Only the provided flags are sent to the server.

Examples:
  taskmate task update 3f1f... --status completed
  taskmate task update 3f1f... --title "New title" --priority low`,
		Args: cobra.ExactArgs(1),
		RunE: runTaskUpdate,
	}

	cmd.Flags().String("title", "", "New title")
	cmd.Flags().String("desc", "", "New description")
	cmd.Flags().String("priority", "", "New priority (low, medium, high)")
	cmd.Flags().String("status", "", "New status (pending, in_progress, completed)")
	return cmd
}

// runTaskUpdate builds a sparse patch from the provided flags and applies it
func runTaskUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseTaskID(args[0])
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	patch := []byte(`{}`)
	fields := []struct{ flag, field string }{
		{"title", "title"},
		{"desc", "description"},
		{"priority", "priority"},
		{"status", "status"},
	}
	for _, f := range fields {
		if v, _ := cmd.Flags().GetString(f.flag); v != "" {
			patch, err = sjson.SetBytes(patch, f.field, v)
			if err != nil {
				return fmt.Errorf("failed to build update: %w", err)
			}
		}
	}
	if string(patch) == `{}` {
		return fmt.Errorf("nothing to update. Provide at least one field flag")
	}

	task := a.tasks.Update(cmd.Context(), id, json.RawMessage(patch))
	if task == nil {
		return fmt.Errorf("could not update task: %s", a.tasks.LastError())
	}

	if jsonOutput {
		printJSON(task)
	} else {
		okLabel.Println("✓ Task updated")
		printTaskLine(*task)
	}
	return nil
}

// newTaskRmCmd creates the task rm command
func newTaskRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm TASK_ID",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(cmd.Context()); err != nil {
				return err
			}

			if !a.tasks.Remove(cmd.Context(), id) {
				return fmt.Errorf("could not delete task: %s", a.tasks.LastError())
			}

			if jsonOutput {
				printJSON(map[string]string{"status": "success", "taskID": id})
			} else {
				okLabel.Println("✓ Task deleted")
			}
			return nil
		},
	}
}

func printTaskLine(t types.Task) {
	due := ""
	if t.DueDate != nil {
		due = "  due " + t.DueDate.Format("2006-01-02")
	}
	fmt.Printf("%s  [%s/%s]  %s%s\n", t.TaskID, t.Status, t.Priority, t.Title, due)
}

func printTaskDetail(t types.Task) {
	fmt.Printf("Task:     %s\n", t.Title)
	fmt.Printf("ID:       %s\n", t.TaskID)
	fmt.Printf("Status:   %s\n", t.Status)
	fmt.Printf("Priority: %s\n", t.Priority)
	if t.Description != "" {
		fmt.Printf("Details:  %s\n", t.Description)
	}
	if t.DueDate != nil {
		fmt.Printf("Due:      %s\n", t.DueDate.Format("2006-01-02"))
	}
	if !t.UpdatedAt.IsZero() {
		fmt.Printf("Updated:  %s\n", t.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	}
}
