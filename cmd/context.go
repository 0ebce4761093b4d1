package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/emrgen/shortpage"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	configFileName = "shortpage"
)

var contextCommand = &cobra.Command{
	Use:   "context",
	Short: "context commands",
}

func init() {
	rootCmd.AddCommand(contextCommand)
	contextCommand.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	contextCommand.AddCommand(setContextCommand())
	contextCommand.AddCommand(currentContextCommand())
	contextCommand.AddCommand(resetContextCommand())
}

type Context struct {
	Server string `json:"server"`
	Token  string `json:"token"`
}

// saves the context info to the config file in ./.tmp
func setContextCommand() *cobra.Command {
	var server string
	var token string

	command := &cobra.Command{
		Use:   "set",
		Short: "set context",
		Run: func(cmd *cobra.Command, args []string) {
			if server == "" {
				color.Red(`missing: --server`)
				return
			}

			writeContext(Context{
				Server: server,
				Token:  token,
			})
		},
	}

	command.Flags().StringVarP(&server, "server", "s", "", "server base url")
	command.Flags().StringVarP(&token, "token", "t", "", "admin token")

	return command
}

func currentContextCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "current",
		Short: "current context",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := readContext()
			fmt.Println("server: ", ctx.Server)
			if ctx.Token != "" {
				fmt.Println("token:  ", strings.Repeat("*", len(ctx.Token)))
			}
		},
	}

	return command
}

func resetContextCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "reset",
		Short: "reset context",
		Run: func(cmd *cobra.Command, args []string) {
			writeContext(Context{})
		},
	}

	return command
}

func writeContext(context Context) {
	if err := os.MkdirAll("./.tmp", os.ModePerm); err != nil {
		fmt.Println("error creating config dir: ", err)
		return
	}

	viper.SetConfigName(configFileName)
	viper.AddConfigPath("./.tmp")
	viper.SetConfigType("yml")
	viper.Set("context", context)

	if err := viper.WriteConfigAs("./.tmp/" + configFileName + ".yml"); err != nil {
		fmt.Println("error writing config file: ", err)
	} else {
		fmt.Println("context saved")
	}
}

func readContext() Context {
	var ctx Context

	// create file if it doesn't exist
	if _, err := os.Stat("./.tmp/" + configFileName + ".yml"); os.IsNotExist(err) {
		return ctx
	}

	viper.SetConfigName(configFileName)
	viper.AddConfigPath("./.tmp")
	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("error reading config file: ", err)
	}

	if err := viper.UnmarshalKey("context", &ctx); err != nil {
		fmt.Println("error unmarshalling config file: ", err)
	}

	return ctx
}

// apiClient builds a client from the saved context, localhost by default.
func apiClient() *shortpage.Client {
	ctx := readContext()
	if ctx.Server == "" {
		ctx.Server = "http://localhost:4040"
	}
	if ctx.Token == "" {
		ctx.Token = os.Getenv("ADMIN_TOKEN")
	}

	return shortpage.NewClient(ctx.Server, ctx.Token)
}

func checkMissingFlags(cmd *cobra.Command, flags []string) bool {
	var missingFlags []string
	var providedFlags []string
	for _, required := range flags {
		if cmd.Flag(required).Changed == false {
			missingFlags = append(missingFlags, required)
		} else {
			value := cmd.Flag(required).Value.String()
			providedFlags = append(providedFlags, fmt.Sprintf("--%s=%s", required, value))
		}
	}

	if len(missingFlags) > 0 {
		var msg string
		for _, f := range missingFlags {
			msg += fmt.Sprintf("--%s ", f)
		}

		color.Red("missing: %s\n", msg)
		if len(providedFlags) > 0 {
			provided := strings.Join(providedFlags, " ")
			color.Green("provide: %s\n", provided)
		}

		cmd.Println("")

		cmd.Usage()

		return true
	}

	return false
}
