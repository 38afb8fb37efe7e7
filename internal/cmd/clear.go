package cmd

import (
	"fmt"

	"claudewatch/internal/format"
	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the persisted session record",
	Long: `Remove the persisted session record. The next activation starts over
with a fresh window. Clearing when no record exists is a no-op.`,
	RunE: runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	mgr, cleanup, err := newManager()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := mgr.Clear(cmd.Context()); err != nil {
		return err
	}

	fmt.Println(format.Success("Session record cleared"))
	return nil
}
