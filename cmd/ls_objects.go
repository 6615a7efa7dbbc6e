package cmd

import (
	"fmt"

	"github.com/KostasZigo/vx/utils"
	"github.com/spf13/cobra"
)

var lsObjectsCmd = &cobra.Command{
	Use:   "ls-objects",
	Short: "List stored objects in write order",
	Long: `Print one "<type> <hash>" line per stored object, in the order they were written.
--type restricts the listing to blobs, trees or commits.`,
	SilenceUsage: true,
	Args:         maximumArgs(0),
	RunE:         runLsObjects,
}

var lsTypeFlag string

func init() {
	rootCmd.AddCommand(lsObjectsCmd)

	lsObjectsCmd.Flags().StringVar(&lsTypeFlag, "type", "", "Only list objects of this type (blob, tree or commit)")
}

func runLsObjects(cmd *cobra.Command, _ []string) error {
	repo, err := openRepo()
	if err != nil {
		return err
	}
	defer repo.Close()

	out := cmd.OutOrStdout()
	if lsTypeFlag != "" {
		objectType, err := utils.ParseObjectType(lsTypeFlag)
		if err != nil {
			return err
		}
		for _, hash := range repo.Store.List(objectType) {
			fmt.Fprintf(out, "%s %s\n", objectType, hash)
		}
		return nil
	}

	for _, hash := range repo.Store.Hashes() {
		objectType, err := repo.Store.TypeOf(hash)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s\n", objectType, hash)
	}
	return nil
}
