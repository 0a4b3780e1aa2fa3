package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/deal-pipeline/internal/reader"
)

// detectCmd prints the format tag of each file.
var detectCmd = &cobra.Command{
	Use:   "detect <files...>",
	Short: "Print the detected format of files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, path := range args {
			format, err := reader.DetectFormat(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", path, format)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)
}
