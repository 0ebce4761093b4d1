package cmd

import (
	"github.com/emrgen/shortpage/internal/config"
	"github.com/emrgen/shortpage/internal/server"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var port string

	command := &cobra.Command{
		Use:   "serve",
		Short: "start the shortpage server",
		Run: func(cmd *cobra.Command, args []string) {
			if port == "" {
				port = config.LoadConfig().HTTPPort
			}

			server.NewServer(port).Start()
		},
	}

	command.Flags().StringVarP(&port, "port", "p", "", "http port to listen on")

	return command
}
