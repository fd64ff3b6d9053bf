package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/taskmate/taskmate/pkg/types"
)

var createdLabel = color.New(color.FgGreen).Add(color.Bold)
var updatedLabel = color.New(color.FgYellow).Add(color.Bold)
var deletedLabel = color.New(color.FgRed).Add(color.Bold)

// newWatchCmd creates the watch command
func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream realtime task events",
		Long: `Stream realtime task events from the service's socket endpoint.
The connection is self-healing: after any closure the client reconnects on a
fixed delay until interrupted with Ctrl-C.`,
		RunE: runWatch,
	}
}

// runWatch handles the watch command execution
func runWatch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	conn := a.realtimeConn()
	for _, eventType := range []string{
		types.EventTaskCreated,
		types.EventTaskUpdated,
		types.EventTaskDeleted,
	} {
		eventType := eventType
		conn.Subscribe(eventType, func(env types.Envelope) {
			printEvent(eventType, env)
		})
	}

	conn.Connect()
	defer conn.Disconnect()

	if !jsonOutput {
		fmt.Printf("Watching %s (Ctrl-C to stop)\n", a.cfg.WSURL)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	<-interrupt
	return nil
}

// printEvent formats and prints a single realtime event
func printEvent(eventType string, env types.Envelope) {
	if jsonOutput {
		printJSON(env)
		return
	}

	ts := env.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	stamp := ts.Local().Format("15:04:05")

	title := gjson.GetBytes(env.Data, "title").String()
	id := gjson.GetBytes(env.Data, "taskID").String()

	switch eventType {
	case types.EventTaskCreated:
		createdLabel.Printf("[%s] created ", stamp)
	case types.EventTaskUpdated:
		updatedLabel.Printf("[%s] updated ", stamp)
	case types.EventTaskDeleted:
		deletedLabel.Printf("[%s] deleted ", stamp)
	}
	if title != "" {
		fmt.Printf("%s (%s)\n", title, id)
	} else {
		fmt.Printf("%s\n", string(env.Data))
	}
}
