package cmd

import (
	"fmt"

	"github.com/KostasZigo/vx/internal/objects"
	"github.com/spf13/cobra"
)

var hashObjectCmd = &cobra.Command{
	Use:   "hash-object <filepath>",
	Short: "Compute object hash and optionally create and store a blob from a file",
	Long: `Compute the object hash (BLAKE3-256) for a file's content.
Optionally write the resulting blob into the object store.

Examples:
  # Compute hash without storing
  vx hash-object myfile.txt

  # Compute hash and store in .vx/objects
  vx hash-object -w myfile.txt

  # Print the hash as a CID
  vx hash-object --cid myfile.txt`,
	SilenceUsage: true,
	Args:         exactArgs(1, "filepath"),
	RunE:         runHashObject,
}

var (
	writeFlag         bool
	hashObjectCIDFlag bool
)

func init() {
	rootCmd.AddCommand(hashObjectCmd)

	// Add flag using Cobra's flag system
	hashObjectCmd.Flags().BoolVarP(&writeFlag, "write", "w", false, "Write the object into the object store")
	hashObjectCmd.Flags().BoolVar(&hashObjectCIDFlag, "cid", false, "Print the hash as a CIDv1")
}

// runHashObject computes hash and optionally stores blob object.
func runHashObject(cmd *cobra.Command, args []string) error {
	// Create blob from file's contents
	blob, err := objects.NewBlobFromFile(args[0])
	if err != nil {
		return err
	}

	if writeFlag {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		defer repo.Close()

		if _, err := repo.Store.Write(blob); err != nil {
			return fmt.Errorf("failed to store object: %w", err)
		}
	}

	// Print hash to stdout
	out, err := formatHash(blob.Hash(), hashObjectCIDFlag)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
