package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/district-lens/internal/tiger"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the TIGER/Line congressional district shapefile",
	Long: `Downloads the Census TIGER/Line CD product for the given year and
Congress and installs it as the configured shapefile (shapefile.dir/shapefile.name).
The ZIP is kept in a .tiger subdirectory and reused on later runs.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if year, _ := cmd.Flags().GetInt("year"); year != 0 {
			cfg.Fetch.Year = year
		}
		if congress, _ := cmd.Flags().GetInt("congress"); congress != 0 {
			cfg.Fetch.Congress = congress
		}
		if err := cfg.Validate("fetch"); err != nil {
			return err
		}

		log := zap.L().With(zap.String("command", "fetch"))
		url := tiger.DistrictURL(cfg.Fetch.BaseURL, cfg.Fetch.Year, cfg.Fetch.Congress)
		log.Info("fetching congressional districts",
			zap.Int("year", cfg.Fetch.Year),
			zap.Int("congress", cfg.Fetch.Congress),
			zap.String("url", url),
		)

		extracted, err := tiger.NewDownloader().Download(ctx, url, filepath.Join(cfg.Shapefile.Dir, ".tiger"))
		if err != nil {
			return eris.Wrap(err, "fetch")
		}
		installed, err := tiger.Install(extracted, cfg.Shapefile.Dir, cfg.Shapefile.Name)
		if err != nil {
			return eris.Wrap(err, "fetch")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Shapefile installed at %s\n", installed)
		return nil
	},
}

func init() {
	fetchCmd.Flags().Int("year", 0, "TIGER/Line year (default: from config or 2024)")
	fetchCmd.Flags().Int("congress", 0, "Congress number (default: from config or 119)")
	rootCmd.AddCommand(fetchCmd)
}
