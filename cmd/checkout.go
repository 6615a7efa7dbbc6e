package cmd

import (
	"fmt"

	"github.com/KostasZigo/vx/internal/repository"
	"github.com/spf13/cobra"
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout <branch|commit>",
	Short: "Switch HEAD and the working directory to a branch or commit",
	Long: `Rewrite the working directory to the tree of the target commit and move HEAD.
A branch name attaches HEAD to that branch; a hash or CID detaches it.
Uncommitted changes to tracked files stop the checkout unless --force is given.

Examples:
  vx checkout feature
  vx checkout <hash>`,
	SilenceUsage: true,
	Args:         exactArgs(1, "branch or commit"),
	RunE:         runCheckout,
}

var forceCheckoutFlag bool

func init() {
	rootCmd.AddCommand(checkoutCmd)

	checkoutCmd.Flags().BoolVarP(&forceCheckoutFlag, "force", "f", false, "Discard uncommitted changes to tracked files")
}

func runCheckout(cmd *cobra.Command, args []string) error {
	repo, err := openRepo()
	if err != nil {
		return err
	}
	defer repo.Close()

	target := args[0]
	if !repo.BranchExists(target) {
		hash, err := resolveCommitish(repo, target)
		if err != nil {
			return err
		}
		target = hash.String()
	}

	head, err := repo.Checkout(cmd.Context(), target, repository.CheckoutOptions{Force: forceCheckoutFlag})
	if err != nil {
		return fmt.Errorf("failed to checkout %s: %w", args[0], err)
	}

	if head.Detached() {
		fmt.Fprintf(cmd.OutOrStdout(), "HEAD is now at %s\n", head.Commit)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Switched to branch '%s'\n", head.Branch)
	}
	return nil
}
