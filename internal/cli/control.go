package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systrayctl/systrayctl/internal/core"
	"github.com/systrayctl/systrayctl/internal/models"
)

// newControlCmd builds the start/stop commands.
func newControlCmd(action models.Action) *cobra.Command {
	verb := "Start"
	if action == models.ActionStop {
		verb = "Stop"
	}
	return &cobra.Command{
		Use:   string(action) + " <label|unit>",
		Short: verb + " a configured service",
		Long: verb + ` a configured service, send the result as a desktop notification,
and print the refreshed state. The service may be named by label or unit;
the ".service" suffix is optional.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runControl(cmd, action, args[0])
		},
	}
}

func runControl(cmd *cobra.Command, action models.Action, name string) error {
	// nil notifier: desktop + log, as in the tray.
	d, err := newOneShot(nil)
	if err != nil {
		return err
	}
	defer stopOneShot(d)

	svc, ok := d.Registry().Resolve(name)
	if !ok {
		return fmt.Errorf("%w: %q", core.ErrUnregistered, name)
	}

	out, err := d.Execute(context.Background(), svc.Unit, action)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if out.Success {
		fmt.Fprintln(w, styleSuccess.Render(out.Message))
	} else {
		fmt.Fprintln(w, styleError.Render(out.Message))
	}
	fmt.Fprintln(w)
	printStatus(w, []models.ServiceEntry{svc}, out.Snapshot)

	if !out.Success {
		return out.Err
	}
	return nil
}
