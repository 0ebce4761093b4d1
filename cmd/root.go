package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "shortpage",
	Short: "short link and content block management tool",
	Example: `shortpage serve
shortpage create -s <slug> -r redirect -d '{"url":"https://example.com"}'
shortpage get -b <block-id>
shortpage list
shortpage stats -b <block-id>
shortpage landing set -b <block-id>
shortpage privacy -b <block-id>
shortpage delete -b <block-id>`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(dbCmd)
	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	cobra.EnableCommandSorting = false
}
