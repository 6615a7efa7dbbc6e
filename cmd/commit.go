package cmd

import (
	"fmt"

	"github.com/KostasZigo/vx/internal/repository"
	"github.com/KostasZigo/vx/utils"
	"github.com/spf13/cobra"
)

var commitCmd = &cobra.Command{
	Use:   "commit -m <message>",
	Short: "Record the working directory as a new commit",
	Long: `Store the working directory as a tree, create a commit pointing at it and advance
the current branch. The parent is the commit HEAD points at unless --parent is given.

Examples:
  vx commit -m "initial import"
  vx commit -m "merge" --parent <hash> --parent <hash>
  vx commit -m "fix" --author "Ada Lovelace"`,
	SilenceUsage: true,
	Args:         maximumArgs(0),
	RunE:         runCommit,
}

var (
	messageFlag string
	authorFlag  string
	parentFlags []string
)

func init() {
	rootCmd.AddCommand(commitCmd)

	commitCmd.Flags().StringVarP(&messageFlag, "message", "m", "", "Commit message")
	commitCmd.Flags().StringVar(&authorFlag, "author", "", "Commit author (defaults to [user] name)")
	commitCmd.Flags().StringArrayVar(&parentFlags, "parent", nil, "Parent commit hash or CID; repeat for several parents")
	commitCmd.MarkFlagRequired("message")
}

func runCommit(cmd *cobra.Command, _ []string) error {
	opts := repository.CommitOptions{
		Message: messageFlag,
		Author:  authorFlag,
	}
	if cmd.Flags().Changed("parent") {
		opts.Parents = make([]utils.Hash, 0, len(parentFlags))
		for _, arg := range parentFlags {
			parent, err := utils.ParseHashOrCID(arg)
			if err != nil {
				return err
			}
			opts.Parents = append(opts.Parents, parent)
		}
	}

	repo, err := openRepo()
	if err != nil {
		return err
	}
	defer repo.Close()

	hash, err := repo.Commit(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
