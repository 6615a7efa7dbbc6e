package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var writeTreeCmd = &cobra.Command{
	Use:   "write-tree",
	Short: "Store the working directory as a tree and print its hash",
	Long: `Scan the working directory, skipping .vx, .git and anything matched by .vxignore
or [worktree] ignore, store every file as a blob and every directory as a tree,
and print the root tree hash. Identical content is stored once.`,
	SilenceUsage: true,
	Args:         maximumArgs(0),
	RunE:         runWriteTree,
}

var writeTreeCIDFlag bool

func init() {
	rootCmd.AddCommand(writeTreeCmd)

	writeTreeCmd.Flags().BoolVar(&writeTreeCIDFlag, "cid", false, "Print the hash as a CIDv1")
}

func runWriteTree(cmd *cobra.Command, _ []string) error {
	repo, err := openRepo()
	if err != nil {
		return err
	}
	defer repo.Close()

	root, err := repo.WriteTree(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to write tree: %w", err)
	}

	out, err := formatHash(root, writeTreeCIDFlag)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
