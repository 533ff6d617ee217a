// The allcode command rebuilds a source tree from a concatenated
// archive, creating every file and missing directory it names.
//
// Usage:
//
//	allcode [flags] [archive]
//
// The archive defaults to a file named allcode in the current directory.
// See package github.com/allcode-tools/allcode/allcode for the format.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/allcode-tools/allcode/internal/config"
	"github.com/allcode-tools/allcode/internal/logging"
	"github.com/allcode-tools/allcode/unpack"
)

// version is set via -ldflags.
var version = "dev"

func main() {
	os.Exit(main1())
}

func main1() int {
	if err := fang.Execute(context.Background(), newRootCmd(), fang.WithVersion(version)); err != nil {
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var configFile string
	cmd := &cobra.Command{
		Use:   "allcode [archive]",
		Short: "Rebuild a source tree from a concatenated archive",
		Long: `allcode reads an archive of files delimited by <<<FILE:path>>> and
<<<ENDFILE>>> markers and writes each file to disk, creating parent
directories as needed. Malformed blocks and files that cannot be
written are reported and skipped.

Settings may also come from a config file (--config) or from
ALLCODE_* environment variables, e.g. ALLCODE_DRY_RUN=1.`,
		Example: `  allcode                 unpack ./allcode into the current directory
  allcode -C out dump.txt unpack dump.txt under out/
  allcode -n              list the files that would be written`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags(), configFile)
			if err != nil {
				return err
			}
			archive := unpack.DefaultArchive
			if len(args) == 1 {
				archive = args[0]
			}
			return run(cmd.OutOrStdout(), archive, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "config file (YAML, TOML or JSON)")
	flags.StringP("dir", "C", ".", "directory to extract files into")
	flags.Bool("contain", false, "refuse absolute paths and paths outside the extraction directory")
	flags.Bool("atomic", false, "write each file through a temporary file and rename")
	flags.BoolP("dry-run", "n", false, "report what would be written without writing")
	flags.Bool("hash", false, "print the h1 hash of the written files")
	flags.BoolP("verbose", "v", false, "also log each parsed record")
	flags.BoolP("quiet", "q", false, "log only warnings and errors")
	return cmd
}

func run(w io.Writer, archive string, cfg *config.Config) error {
	logger := logging.New(w, cfg.LogLevel())
	r, err := unpack.Unpack(archive,
		unpack.WithDir(cfg.Dir),
		unpack.WithContainment(cfg.Contain),
		unpack.WithAtomic(cfg.Atomic),
		unpack.WithDryRun(cfg.DryRun),
		unpack.WithLogger(logger),
	)
	if err != nil {
		// A missing archive has already been reported and is not a
		// usage error.
		if errors.Is(err, unpack.ErrArchiveNotFound) {
			return nil
		}
		return err
	}
	if cfg.Hash && !cfg.DryRun {
		sum, err := r.Sum()
		if err != nil {
			return fmt.Errorf("hash written files: %w", err)
		}
		fmt.Fprintln(w, sum)
	}
	return nil
}
