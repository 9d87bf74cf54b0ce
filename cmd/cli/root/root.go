package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "proxi",
	Short: "Proxication POI CLI",
	Long:  "Command line interface for interacting with the Proxication POI API",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// GetRoot returns the root command so subpackages can register themselves.
func GetRoot() *cobra.Command {
	return rootCmd
}
