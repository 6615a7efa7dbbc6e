package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/KostasZigo/vx/utils"
	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:          "log",
	Short:        "Show first-parent history from HEAD",
	SilenceUsage: true,
	Args:         maximumArgs(0),
	RunE:         runLog,
}

var maxCountFlag int

func init() {
	rootCmd.AddCommand(logCmd)

	logCmd.Flags().IntVarP(&maxCountFlag, "max-count", "n", 0, "Limit the number of commits shown (0 means all)")
}

func runLog(cmd *cobra.Command, _ []string) error {
	repo, err := openRepo()
	if err != nil {
		return err
	}
	defer repo.Close()

	commits, err := repo.Log(utils.ZeroHash, maxCountFlag)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, commit := range commits {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "commit %s\n", commit.Hash())
		fmt.Fprintf(out, "Author: %s\n", commit.Author())
		fmt.Fprintf(out, "Date:   %s\n\n", commit.Time().UTC().Format(time.RFC1123Z))
		for line := range strings.SplitSeq(commit.Message(), "\n") {
			fmt.Fprintf(out, "    %s\n", line)
		}
	}
	return nil
}
