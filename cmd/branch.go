package cmd

import (
	"fmt"

	"github.com/KostasZigo/vx/internal/repository"
	"github.com/KostasZigo/vx/utils"
	"github.com/spf13/cobra"
)

var branchCmd = &cobra.Command{
	Use:   "branch [<name> [<start>]]",
	Short: "List, create, delete or rename branches",
	Long: `With no arguments, list branches and mark the current one with '*'.
With a name, create a branch at <start> (a branch, hash or CID), or at HEAD.

Examples:
  vx branch
  vx branch feature
  vx branch hotfix <hash>
  vx branch -d feature
  vx branch -m main trunk`,
	SilenceUsage: true,
	Args:         maximumArgs(2),
	RunE:         runBranch,
}

var (
	deleteBranchFlag bool
	moveBranchFlag   bool
)

func init() {
	rootCmd.AddCommand(branchCmd)

	branchCmd.Flags().BoolVarP(&deleteBranchFlag, "delete", "d", false, "Delete the named branch")
	branchCmd.Flags().BoolVarP(&moveBranchFlag, "move", "m", false, "Rename branch <old> to <new>")
	branchCmd.MarkFlagsMutuallyExclusive("delete", "move")
}

func runBranch(cmd *cobra.Command, args []string) error {
	switch {
	case deleteBranchFlag && len(args) != 1:
		return fmt.Errorf("%s -d requires exactly 1 branch name, received %d", cmd.Name(), len(args))
	case moveBranchFlag && len(args) != 2:
		return fmt.Errorf("%s -m requires <old> and <new>, received %d argument(s)", cmd.Name(), len(args))
	}

	repo, err := openRepo()
	if err != nil {
		return err
	}
	defer repo.Close()

	out := cmd.OutOrStdout()
	switch {
	case deleteBranchFlag:
		was, err := repo.DeleteBranch(args[0])
		if err != nil {
			return fmt.Errorf("failed to delete branch: %w", err)
		}
		fmt.Fprintf(out, "Deleted branch %s (was %s)\n", args[0], was)

	case moveBranchFlag:
		if err := repo.RenameBranch(args[0], args[1]); err != nil {
			return fmt.Errorf("failed to rename branch: %w", err)
		}
		fmt.Fprintf(out, "Renamed branch %s to %s\n", args[0], args[1])

	case len(args) > 0:
		start := utils.ZeroHash
		if len(args) == 2 {
			if start, err = resolveCommitish(repo, args[1]); err != nil {
				return err
			}
		}
		hash, err := repo.CreateBranch(args[0], start)
		if err != nil {
			return fmt.Errorf("failed to create branch: %w", err)
		}
		fmt.Fprintf(out, "Created branch %s at %s\n", args[0], hash)

	default:
		branches, err := repo.ListBranches()
		if err != nil {
			return err
		}
		for _, branch := range branches {
			marker := " "
			if branch.Current {
				marker = "*"
			}
			if branch.Commit.IsZero() {
				fmt.Fprintf(out, "%s %s (no commits)\n", marker, branch.Name)
				continue
			}
			fmt.Fprintf(out, "%s %s %s\n", marker, branch.Name, branch.Commit)
		}
	}
	return nil
}

// resolveCommitish reads arg as a branch name, then as a hash or CID.
func resolveCommitish(repo *repository.Repository, arg string) (utils.Hash, error) {
	if repo.BranchExists(arg) {
		return repo.ResolveBranch(arg)
	}
	hash, err := utils.ParseHashOrCID(arg)
	if err != nil {
		return utils.ZeroHash, fmt.Errorf("%w: %q is neither a branch nor a commit hash", repository.ErrBranchNotFound, arg)
	}
	return hash, nil
}
