package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var fsckCmd = &cobra.Command{
	Use:   "fsck",
	Short: "Verify every stored object against its hash",
	Long: `Re-read every stored payload, bypassing the read cache, and check that it hashes
to the key it is stored under. Each corrupt object is reported on stderr and the
command exits with the malformed-object status.`,
	SilenceUsage: true,
	Args:         maximumArgs(0),
	RunE:         runFsck,
}

func init() {
	rootCmd.AddCommand(fsckCmd)
}

func runFsck(cmd *cobra.Command, _ []string) error {
	repo, err := openRepo()
	if err != nil {
		return err
	}
	defer repo.Close()

	failures := repo.Store.Verify()
	for _, failure := range failures {
		fmt.Fprintf(cmd.ErrOrStderr(), "corrupt %s: %v\n", failure.Hash, failure.Err)
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d of %d objects failed verification: %w", len(failures), repo.Store.Len(), failures[0].Err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "checked %d objects\n", repo.Store.Len())
	return nil
}
