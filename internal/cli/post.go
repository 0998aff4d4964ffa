package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/yatube/yatube/internal/output"
	"github.com/yatube/yatube/internal/services"
)

var (
	flagGroup  string
	flagAuthor string
	flagPage   int
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Inspect posts",
}

var postListCmd = &cobra.Command{
	Use:   "list",
	Short: "List posts, newest first, ten per page",
	Long: `List posts newest first, in pages of ten like the site feeds.

  yatubectl post list                         First page of all posts
  yatubectl post list --group cats --page 2   Second page of a group
  yatubectl post list --author leo --json     An author's posts as JSON`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := services.PostFilter{GroupSlug: flagGroup, Username: flagAuthor}
		page, err := services.NewPostService(db).List(cmd.Context(), filter, strconv.Itoa(flagPage))
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				return errors.New("no such group or author")
			}
			return fmt.Errorf("listing posts: %w", err)
		}

		if flagJSON {
			return output.JSON(cmd.OutOrStdout(), map[string]interface{}{
				"page":     page.Number,
				"numPages": page.NumPages,
				"total":    page.Total,
				"posts":    page.Items,
			})
		}

		output.PostTable(cmd.OutOrStdout(), page)
		return nil
	},
}

func init() {
	postListCmd.Flags().StringVar(&flagGroup, "group", "", "Only posts of the group with this slug")
	postListCmd.Flags().StringVar(&flagAuthor, "author", "", "Only posts by this username")
	postListCmd.Flags().IntVar(&flagPage, "page", 1, "Page number")
	postCmd.AddCommand(postListCmd)
	rootCmd.AddCommand(postCmd)
}
