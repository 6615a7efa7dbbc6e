package cmd

import (
	"fmt"
	"io"

	"github.com/KostasZigo/vx/internal/builder"
	"github.com/KostasZigo/vx/internal/objects"
	"github.com/KostasZigo/vx/utils"
	"github.com/spf13/cobra"
)

var catFileCmd = &cobra.Command{
	Use:   "cat-file <hash-or-cid>",
	Short: "Print the type or content of a stored object",
	Long: `Print a stored object. Blobs are written byte for byte; trees print one line per
entry as "<mode> <type> <hash>\t<name>"; commits print their header lines, a blank
line and the message.

Examples:
  vx cat-file 9f3c...        # print the content
  vx cat-file -t 9f3c...     # print the type
  vx cat-file -r 9f3c...     # list every file below a tree
  vx cat-file bafkr4i...     # objects can also be named by CID`,
	SilenceUsage: true,
	Args:         exactArgs(1, "object"),
	RunE:         runCatFile,
}

var (
	typeOnlyFlag  bool
	recursiveFlag bool
)

func init() {
	rootCmd.AddCommand(catFileCmd)

	catFileCmd.Flags().BoolVarP(&typeOnlyFlag, "type", "t", false, "Print the object type instead of its content")
	catFileCmd.Flags().BoolVarP(&recursiveFlag, "recursive", "r", false, "For trees, list every file and empty directory by full path")
}

func runCatFile(cmd *cobra.Command, args []string) error {
	hash, err := utils.ParseHashOrCID(args[0])
	if err != nil {
		return err
	}

	repo, err := openRepo()
	if err != nil {
		return err
	}
	defer repo.Close()

	if typeOnlyFlag {
		objectType, err := repo.Store.TypeOf(hash)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), objectType)
		return nil
	}

	if recursiveFlag {
		return printFlatTree(cmd.OutOrStdout(), repo.Store, hash)
	}

	obj, err := repo.Store.Read(hash)
	if err != nil {
		return err
	}
	return printObject(cmd.OutOrStdout(), obj)
}

func printObject(w io.Writer, obj objects.Object) error {
	switch o := obj.(type) {
	case *objects.Blob:
		_, err := w.Write(o.Content())
		return err

	case *objects.Tree:
		for _, entry := range o.Entries() {
			if _, err := fmt.Fprintf(w, "%s %s %s\t%s\n", entry.Mode(), entry.Mode().ObjectType(), entry.Hash(), entry.Name()); err != nil {
				return err
			}
		}
		return nil

	case *objects.Commit:
		fmt.Fprintf(w, "tree %s\n", o.TreeHash())
		for _, parent := range o.Parents() {
			fmt.Fprintf(w, "parent %s\n", parent)
		}
		fmt.Fprintf(w, "author %s\n", o.Author())
		fmt.Fprintf(w, "timestamp %d\n", o.Timestamp())
		_, err := fmt.Fprintf(w, "\n%s\n", o.Message())
		return err

	default:
		return fmt.Errorf("cannot print object of type %s", obj.Type())
	}
}

func printFlatTree(w io.Writer, store builder.TreeReader, root utils.Hash) error {
	flat, err := builder.FlattenTree(store, root)
	if err != nil {
		return err
	}
	for _, entry := range flat {
		if _, err := fmt.Fprintf(w, "%s %s\t%s\n", entry.Mode, entry.Hash, entry.Path); err != nil {
			return err
		}
	}
	return nil
}
