package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"claudewatch/internal/errors"
	"claudewatch/internal/format"
	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current usage window",
	Long: `Display the current usage window: ordinal, start and expiry instants,
elapsed and remaining time. Read-only; never creates or mutates a window.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "emit machine-parseable JSON")
	rootCmd.AddCommand(statusCmd)
}

// statusPayload is the machine-parseable status form.
type statusPayload struct {
	ID        int64     `json:"id,omitempty"`
	StartedAt time.Time `json:"started_at,omitzero"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
	Status    string    `json:"status"`
	Elapsed   string    `json:"elapsed,omitempty"`
	Remaining string    `json:"remaining,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	mgr, cleanup, err := newManager()
	if err != nil {
		return err
	}
	defer cleanup()

	rep, err := mgr.Status()
	if errors.Is(err, errors.ErrNoSession) {
		// A window that was never started is a legitimate state.
		if statusJSON {
			return printJSON(statusPayload{Status: "none"})
		}
		fmt.Println(format.Info("No session has been started."))
		return nil
	}
	if err != nil {
		return err
	}

	if statusJSON {
		return printJSON(statusPayload{
			ID:        rep.Session.ID,
			StartedAt: rep.Session.StartedAt,
			ExpiresAt: rep.Session.ExpiresAt,
			Status:    string(rep.State),
			Elapsed:   format.Clock(rep.Elapsed),
			Remaining: format.Clock(rep.Remaining),
		})
	}

	fmt.Printf("%s #%d\n", format.Label("Session"), rep.Session.ID)
	fmt.Printf("  %s  %s\n", format.Label("Started:"), format.Timestamp(rep.Session.StartedAt))
	fmt.Printf("  %s  %s\n", format.Label("Expires:"), format.Timestamp(rep.Session.ExpiresAt))
	fmt.Printf("  %s   %s\n", format.Label("Status:"), string(rep.State))
	fmt.Printf("  %s  %s\n", format.Label("Elapsed:"), format.Clock(rep.Elapsed))
	fmt.Printf("  %s %s\n", format.Label("Remaining:"), format.Clock(rep.Remaining))
	return nil
}

func printJSON(payload statusPayload) error {
	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
