package cmd

import (
	"fmt"

	"claudewatch/internal/errors"
	"claudewatch/internal/format"
	"github.com/spf13/cobra"
)

var activateForce bool

var activateCmd = &cobra.Command{
	Use:   "activate",
	Short: "Start a new usage window",
	Long: `Start a new usage window after confirming the Claude CLI is reachable.

If a window is already open the call is an idempotent no-op that reports the
remaining time, so a scheduled trigger can run it on every cycle. Pass
--force to discard the open window and start a new one immediately.`,
	RunE: runActivate,
}

func init() {
	activateCmd.Flags().BoolVarP(&activateForce, "force", "f", false, "discard an active window and start a new one")
	rootCmd.AddCommand(activateCmd)
}

func runActivate(cmd *cobra.Command, args []string) error {
	mgr, cleanup, err := newManager()
	if err != nil {
		return err
	}
	defer cleanup()

	sess, err := mgr.Activate(cmd.Context(), activateForce)

	var active *errors.AlreadyActiveError
	if errors.As(err, &active) {
		// Normal informational outcome, not a failure.
		fmt.Println(format.Info(fmt.Sprintf("Session #%d already active, %s remaining",
			active.SessionID, format.Clock(active.Remaining))))
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Println(format.Success(fmt.Sprintf("Session #%d activated, window open until %s",
		sess.ID, format.Timestamp(sess.ExpiresAt))))
	return nil
}
