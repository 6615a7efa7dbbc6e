package cmd

import (
	"fmt"

	"github.com/KostasZigo/vx/internal/config"
	"github.com/KostasZigo/vx/internal/constants"
	"github.com/KostasZigo/vx/internal/repository"
	"github.com/KostasZigo/vx/utils"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Initialize a new vx repository",
	Long: `The 'init' command sets up a new vx repository in the current directory.
It creates a .vx directory with an empty object store, a HEAD pointing at the main branch
and a config.toml holding the defaults.
If a repository already exists, the command will not overwrite existing data.`,
	SilenceUsage: true,
	Args:         maximumArgs(1),
	RunE:         runInit,
}

var compressionFlag string

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&compressionFlag, "compression", "none", `Object payload compression, "none" or "zstd"; fixed for the life of the repository`)
}

// runInit executes repository initialization at specified or current directory.
func runInit(cmd *cobra.Command, args []string) error {
	dirPath := "."
	if len(args) > 0 {
		dirPath = args[0]
	}

	cfg := config.Default()
	cfg.Core.Compression = compressionFlag

	if err := repository.InitRepositoryWithConfig(dirPath, cfg); err != nil {
		return fmt.Errorf("failed to initialize repository - %w", err)
	}

	cmd.Printf("Initialized empty vx repository in %s\n", utils.BuildDirPath(dirPath, constants.Vx))
	return nil
}
