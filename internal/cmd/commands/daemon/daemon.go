// Package daemon holds the commands that drive the repository's backup and
// restore daemons.
package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/cmd/base"
	"github.com/Sage-Bionetworks/synapse_sdk_go/pkg/synapse"
)

// signalContext is cancelled on interrupt so that waits stop between polls.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// report prints the status and maps it to an exit code: 0 unless the daemon
// failed.
func report(c *base.Command, status *synapse.OperationStatus) int {
	if err := c.PrintJSON(status.Raw); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	if status.Status == synapse.StatusFailed {
		c.UI.Error(fmt.Sprintf("daemon %s failed: %s", status.ID, status.ErrorMessage))
		return 1
	}
	return 0
}

// finish optionally waits for a started daemon before reporting it.
func finish(ctx context.Context, c *base.Command, client *synapse.Client, started *synapse.OperationStatus, wait bool) int {
	c.Log.Info("daemon started", "id", started.ID, "type", started.Type)
	if !wait {
		return report(c, started)
	}
	final, err := client.AwaitCompletion(ctx, started.ID)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error waiting for daemon %s: %v", started.ID, err))
		return 1
	}
	return report(c, final)
}
