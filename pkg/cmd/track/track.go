package track

import (
	"github.com/spf13/cobra"
)

func NewTrackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "track",
		Short: "commands for track descriptors",
	}
	cmd.AddCommand(newCheckCmd())
	return cmd
}
