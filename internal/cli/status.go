package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/systrayctl/systrayctl/internal/core"
	"github.com/systrayctl/systrayctl/internal/daemon"
	"github.com/systrayctl/systrayctl/internal/models"
	"github.com/systrayctl/systrayctl/internal/notify"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"ls"},
	Short:   "Poll every configured service once and print its state",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newOneShot(notify.Log{})
		if err != nil {
			return err
		}
		defer stopOneShot(d)

		snap := d.Refresh(context.Background())
		if statusJSON {
			return writeStatusJSON(cmd.OutOrStdout(), d.Services(), snap)
		}
		printStatus(cmd.OutOrStdout(), d.Services(), snap)
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "print JSON instead of a table")
}

// newOneShot builds a controller that is never started: commands drive
// Refresh and Execute directly.
func newOneShot(n notify.Notifier) (*daemon.Daemon, error) {
	settings, _, err := loadSettings()
	if err != nil {
		return nil, err
	}
	return daemon.New(settings, daemon.Options{Notifier: n})
}

func stopOneShot(d *daemon.Daemon) {
	if err := d.Stop(); err != nil {
		log.Debug().Err(err).Msg("shutdown")
	}
}

// serviceStatus is the JSON form of one service's state.
type serviceStatus struct {
	Label       string    `json:"label"`
	Unit        string    `json:"unit"`
	Status      string    `json:"status"`
	State       string    `json:"state,omitempty"`
	Error       string    `json:"error,omitempty"`
	LastUpdated time.Time `json:"last_updated"`
}

func statusRows(services []models.ServiceEntry, snap *core.Snapshot) []serviceStatus {
	rows := make([]serviceStatus, 0, len(services))
	for _, svc := range services {
		row := serviceStatus{Label: svc.Label, Unit: svc.Unit, Status: "loading"}
		if e, ok := snap.Lookup(svc.Unit); ok {
			row.Status = string(e.Status)
			row.State = e.State
			row.LastUpdated = e.LastUpdated
			if e.Err != nil {
				row.Error = e.Err.Error()
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func writeStatusJSON(w io.Writer, services []models.ServiceEntry, snap *core.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(statusRows(services, snap))
}

func printStatus(w io.Writer, services []models.ServiceEntry, snap *core.Snapshot) {
	labelWidth, unitWidth := len("SERVICE"), len("UNIT")
	for _, svc := range services {
		labelWidth = max(labelWidth, len(svc.Label))
		unitWidth = max(unitWidth, len(svc.Unit))
	}

	fmt.Fprintf(w, "%s  %s  %s\n",
		styleHeader.Render(fmt.Sprintf("%-*s", labelWidth, "SERVICE")),
		styleHeader.Render(fmt.Sprintf("%-*s", unitWidth, "UNIT")),
		styleHeader.Render("STATUS"),
	)
	for _, svc := range services {
		status := styleHint.Render("Loading")
		detail := ""
		if e, ok := snap.Lookup(svc.Unit); ok {
			status = statusBadge(e.Status).Render(e.Status.String())
			if e.Err != nil {
				detail = "  " + styleError.Render(e.Err.Error())
			} else if e.State != "" && e.State != string(e.Status) {
				detail = "  " + styleHint.Render("("+e.State+")")
			}
		}
		fmt.Fprintf(w, "%s  %s  %s%s\n",
			styleValue.Render(fmt.Sprintf("%-*s", labelWidth, svc.Label)),
			styleLabel.Render(fmt.Sprintf("%-*s", unitWidth, svc.Unit)),
			status,
			detail,
		)
	}
}
