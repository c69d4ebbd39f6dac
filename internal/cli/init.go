package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/jamie8johnson/cqs/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold .cqs.toml and the .cqs data directory for this project",
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	rootDir, err := os.Getwd()
	if err != nil {
		return err
	}

	configPath := filepath.Join(rootDir, ".cqs.toml")
	if _, err := os.Stat(configPath); err == nil {
		printf(".cqs.toml already exists, leaving it untouched\n")
	} else {
		f, err := os.Create(configPath)
		if err != nil {
			return fmt.Errorf("cqs: failed to create .cqs.toml: %w", err)
		}
		defer f.Close()
		enc := toml.NewEncoder(f)
		if err := enc.Encode(config.Default()); err != nil {
			return fmt.Errorf("cqs: failed to write .cqs.toml: %w", err)
		}
		printf("created .cqs.toml\n")
	}

	if err := os.MkdirAll(filepath.Join(rootDir, dataDirName), 0o755); err != nil {
		return fmt.Errorf("cqs: failed to create %s: %w", dataDirName, err)
	}
	if err := os.MkdirAll(filepath.Join(rootDir, "docs"), 0o755); err != nil {
		return fmt.Errorf("cqs: failed to create docs directory: %w", err)
	}

	printf("run `cqs index` to build the initial index\n")
	return nil
}
