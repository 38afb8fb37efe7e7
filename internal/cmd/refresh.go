package cmd

import (
	"fmt"

	"claudewatch/internal/format"
	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Extend the active usage window",
	Long: `Extend the currently active window so it expires a full window length
from now. The session keeps its ordinal and start instant. Fails when no
window exists or the window has already expired.`,
	RunE: runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	mgr, cleanup, err := newManager()
	if err != nil {
		return err
	}
	defer cleanup()

	sess, err := mgr.Refresh(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Println(format.Success(fmt.Sprintf("Session #%d refreshed, window open until %s",
		sess.ID, format.Timestamp(sess.ExpiresAt))))
	return nil
}
