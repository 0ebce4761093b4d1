package cmd

import (
	"context"
	"encoding/json"
	"os"
	"strconv"

	"github.com/emrgen/shortpage/internal/model"
	"github.com/emrgen/shortpage/internal/service"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(createBlockCmd())
	rootCmd.AddCommand(getBlockCmd())
	rootCmd.AddCommand(listBlocksCmd())
	rootCmd.AddCommand(publishBlockCmd())
	rootCmd.AddCommand(privacyBlockCmd())
	rootCmd.AddCommand(statsBlockCmd())
	rootCmd.AddCommand(deleteBlockCmd())
	rootCmd.AddCommand(resolveCmd())

	rootCmd.AddCommand(landingCmd)
	landingCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	landingCmd.AddCommand(setLandingCmd())
	landingCmd.AddCommand(getLandingCmd())
	landingCmd.AddCommand(removeLandingCmd())
}

func createBlockCmd() *cobra.Command {
	var slug string
	var renderer string
	var data string
	var metadata string
	var published bool
	var private bool

	var required = []string{"slug", "renderer"}

	command := &cobra.Command{
		Use:     "create",
		Short:   "create a block",
		Example: `shortpage create -s go-blog -r redirect -d '{"url":"https://blog.example.com"}' --published`,
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			params := service.CreateBlockParams{
				Slug:        slug,
				Renderer:    renderer,
				IsPublished: published,
				IsPrivate:   private,
			}
			if data != "" {
				if !json.Valid([]byte(data)) {
					logrus.Error("invalid data, expected a json object")
					return
				}
				params.Data = json.RawMessage(data)
			}
			if metadata != "" {
				if !json.Valid([]byte(metadata)) {
					logrus.Error("invalid metadata, expected a json object")
					return
				}
				params.Metadata = json.RawMessage(metadata)
			}

			block, err := apiClient().CreateBlock(context.Background(), params)
			if err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("block created with id: %s, slug: %s", block.ID, block.Slug)
		},
	}

	command.Flags().StringVarP(&slug, "slug", "s", "", "slug of the block (required)")
	command.Flags().StringVarP(&renderer, "renderer", "r", "", "renderer tag (required)")
	command.Flags().StringVarP(&data, "data", "d", "", "payload json")
	command.Flags().StringVarP(&metadata, "metadata", "m", "", "metadata json")
	command.Flags().BoolVar(&published, "published", false, "publish the block")
	command.Flags().BoolVar(&private, "private", false, "hide the block from the public index")

	command.Flags().SortFlags = false

	return command
}

func getBlockCmd() *cobra.Command {
	var blockID string

	var required = []string{"block-id"}

	command := &cobra.Command{
		Use:     "get",
		Short:   "get a block",
		Example: "shortpage get -b <block-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			if _, err := uuid.Parse(blockID); err != nil {
				logrus.Error("invalid block id, expected a valid uuid")
				return
			}

			block, err := apiClient().GetBlock(context.Background(), blockID)
			if err != nil {
				logrus.Error(err)
				return
			}

			printBlocks(block)
		},
	}

	command.Flags().StringVarP(&blockID, "block-id", "b", "", "block id (required)")

	return command
}

func listBlocksCmd() *cobra.Command {
	command := &cobra.Command{
		Use:     "list",
		Short:   "list root blocks",
		Example: "shortpage list",
		Run: func(cmd *cobra.Command, args []string) {
			blocks, err := apiClient().ListBlocks(context.Background())
			if err != nil {
				logrus.Error(err)
				return
			}

			printBlocks(blocks...)
		},
	}

	return command
}

func publishBlockCmd() *cobra.Command {
	var blockID string
	var unpublish bool

	var required = []string{"block-id"}

	command := &cobra.Command{
		Use:     "publish",
		Short:   "publish or unpublish a block",
		Example: "shortpage publish -b <block-id> --undo",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			published := !unpublish
			block, err := apiClient().UpdateBlock(context.Background(), blockID, service.UpdateBlockParams{
				IsPublished: &published,
			})
			if err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("block %s published: %t", block.ID, block.IsPublished)
		},
	}

	command.Flags().StringVarP(&blockID, "block-id", "b", "", "block id (required)")
	command.Flags().BoolVar(&unpublish, "undo", false, "unpublish instead")

	command.Flags().SortFlags = false

	return command
}

func privacyBlockCmd() *cobra.Command {
	var blockID string

	var required = []string{"block-id"}

	command := &cobra.Command{
		Use:     "privacy",
		Short:   "toggle a block's privacy flag",
		Example: "shortpage privacy -b <block-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			block, err := apiClient().TogglePrivacy(context.Background(), blockID)
			if err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("block %s private: %t", block.ID, block.IsPrivate)
		},
	}

	command.Flags().StringVarP(&blockID, "block-id", "b", "", "block id (required)")

	return command
}

func statsBlockCmd() *cobra.Command {
	var blockID string

	var required = []string{"block-id"}

	command := &cobra.Command{
		Use:     "stats",
		Short:   "show click stats for a block",
		Example: "shortpage stats -b <block-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			stats, err := apiClient().BlockStats(context.Background(), blockID)
			if err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("total clicks: %d", stats.TotalClicks)

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Type", "Clicked At", "Referrer", "Country"})
			for _, click := range stats.RecentClicks {
				table.Append([]string{
					click.Type,
					click.ClickedAt.Format("2006-01-02 15:04:05"),
					click.Referrer,
					click.Country,
				})
			}

			table.Render()
		},
	}

	command.Flags().StringVarP(&blockID, "block-id", "b", "", "block id (required)")

	return command
}

func deleteBlockCmd() *cobra.Command {
	var blockID string

	var required = []string{"block-id"}

	command := &cobra.Command{
		Use:     "delete",
		Short:   "delete a block and its children",
		Example: "shortpage delete -b <block-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			if err := apiClient().DeleteBlock(context.Background(), blockID); err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("block deleted: %s", blockID)
		},
	}

	command.Flags().StringVarP(&blockID, "block-id", "b", "", "block id (required)")

	return command
}

func resolveCmd() *cobra.Command {
	var slug string

	var required = []string{"slug"}

	command := &cobra.Command{
		Use:     "resolve",
		Short:   "resolve a slug as an audience visitor",
		Example: "shortpage resolve -s go-blog",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			result, err := apiClient().Resolve(context.Background(), slug)
			if err != nil {
				logrus.Error(err)
				return
			}

			if result.Redirect != nil {
				logrus.Infof("%d -> %s", result.Redirect.StatusCode, result.Redirect.URL)
				return
			}

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				logrus.Error(err)
				return
			}

			cmd.Println(string(out))
		},
	}

	command.Flags().StringVarP(&slug, "slug", "s", "", "slug to resolve (required)")

	return command
}

var landingCmd = &cobra.Command{
	Use:   "landing",
	Short: "landing block commands",
}

func setLandingCmd() *cobra.Command {
	var blockID string

	var required = []string{"block-id"}

	command := &cobra.Command{
		Use:     "set",
		Short:   "designate a block as the landing page",
		Example: "shortpage landing set -b <block-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			block, err := apiClient().SetLandingBlock(context.Background(), blockID)
			if err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("landing block set: %s (%s)", block.ID, block.Slug)
		},
	}

	command.Flags().StringVarP(&blockID, "block-id", "b", "", "block id (required)")

	return command
}

func getLandingCmd() *cobra.Command {
	command := &cobra.Command{
		Use:     "get",
		Short:   "show the current landing block",
		Example: "shortpage landing get",
		Run: func(cmd *cobra.Command, args []string) {
			block, err := apiClient().GetLandingBlock(context.Background())
			if err != nil {
				logrus.Error(err)
				return
			}

			printBlocks(block)
		},
	}

	return command
}

func removeLandingCmd() *cobra.Command {
	command := &cobra.Command{
		Use:     "remove",
		Short:   "clear the landing designation",
		Example: "shortpage landing remove",
		Run: func(cmd *cobra.Command, args []string) {
			if err := apiClient().RemoveLandingBlock(context.Background()); err != nil {
				logrus.Error(err)
				return
			}

			logrus.Info("landing block removed")
		},
	}

	return command
}

func printBlocks(blocks ...*model.Block) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Slug", "Renderer", "Published", "Private", "Updated"})
	for _, block := range blocks {
		table.Append([]string{
			block.ID,
			block.Slug,
			block.Renderer,
			strconv.FormatBool(block.IsPublished),
			strconv.FormatBool(block.IsPrivate),
			block.UpdatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	table.Render()
}
