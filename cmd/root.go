// file: cmd/root.go
// version: 1.2.0
// guid: 0b1c2d3e-4f5a-6b7c-8d9e-0f1a2b3c4d5e

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cratestats/cratestats/internal/config"
	"github.com/cratestats/cratestats/internal/models"
	"github.com/cratestats/cratestats/internal/rekordbox"
	"github.com/cratestats/cratestats/internal/server"
	"github.com/cratestats/cratestats/internal/stats"
	"github.com/cratestats/cratestats/internal/store"
	"github.com/cratestats/cratestats/internal/watcher"
)

var cfgFile string
var databasePath string
var bpmBucketSize int
var topN int

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cratestats",
	Short: "Analyze DJ software library exports",
	Long: `cratestats ingests a DJ library export (rekordbox-style XML), builds a
normalized track and playlist model, and reports collection statistics:
genre and key distributions, BPM histogram, growth over time, duplicates.`,
}

// analyzeCmd parses an export and prints its stats without persisting
var analyzeCmd = &cobra.Command{
	Use:   "analyze <library.xml>",
	Short: "Parse a library export and print statistics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := parseWithProgress(args[0])
		if err != nil {
			return err
		}
		printStats(lib)
		return nil
	},
}

// importCmd parses an export and stores the resulting library
var importCmd = &cobra.Command{
	Use:   "import <library.xml>",
	Short: "Parse a library export and store it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := parseWithProgress(args[0])
		if err != nil {
			return err
		}

		st, err := store.Open(config.AppConfig.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer st.Close()

		if err := st.Save(lib); err != nil {
			return fmt.Errorf("failed to store library: %w", err)
		}

		fmt.Printf("Imported %d tracks and %d playlists into %s\n",
			len(lib.Tracks), len(lib.Playlists), config.AppConfig.DatabasePath)
		return nil
	},
}

// statsCmd recomputes statistics for the stored library
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print statistics for the stored library",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(config.AppConfig.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer st.Close()

		lib, err := st.Load()
		if err == store.ErrNotFound {
			return fmt.Errorf("no library imported yet, run: cratestats import <library.xml>")
		}
		if err != nil {
			return err
		}

		printStats(lib)
		return nil
	},
}

// serveCmd starts the JSON API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(config.AppConfig.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer st.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if path, _ := cmd.Flags().GetString("watch"); path != "" {
			w, err := watcher.New(path)
			if err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
			defer w.Close()
			go reimportOnChange(ctx, w, st, path)
			fmt.Printf("Watching %s for changes\n", path)
		}

		srv := server.NewServer(st)
		cfg := server.GetDefaultServerConfig()
		if port, _ := cmd.Flags().GetString("port"); port != "" {
			cfg.Port = port
		}
		if host, _ := cmd.Flags().GetString("host"); host != "" {
			cfg.Host = host
		}

		return srv.Start(ctx, cfg)
	},
}

// reimportOnChange re-parses and stores the export whenever the watcher
// reports a change.
func reimportOnChange(ctx context.Context, w *watcher.ExportWatcher, st *store.LibraryStore, path string) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.Changes():
			parser := rekordbox.NewParser()
			lib, err := parser.ParseFile(path)
			if err != nil {
				fmt.Printf("Re-parse of %s failed: %v\n", path, err)
				continue
			}
			if err := st.Save(lib); err != nil {
				fmt.Printf("Failed to store re-parsed library: %v\n", err)
				continue
			}
			w.ClearChanged()
			fmt.Printf("Re-imported %s (%d tracks)\n", path, len(lib.Tracks))
		}
	}
}

// parseWithProgress runs the pipeline with a terminal progress bar
func parseWithProgress(path string) (*models.Library, error) {
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetDescription("parsing"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)

	parser := rekordbox.NewParser()
	parser.Progress = func(percent int, stage string) {
		bar.Describe(stage)
		_ = bar.Set(percent)
	}

	start := time.Now()
	lib, err := parser.ParseFile(path)
	if err != nil {
		return nil, err
	}
	_ = bar.Finish()

	fmt.Printf("Parsed %s in %v\n", filepath.Base(path), time.Since(start).Round(time.Millisecond))
	return lib, nil
}

func printStats(lib *models.Library) {
	result := stats.Compute(*lib)
	if size := config.AppConfig.BPMBucketSize; size != stats.DefaultBPMBucketSize {
		result.BPMDistribution = stats.BPMDistribution(lib.Tracks, size)
	}

	fmt.Printf("\nLibrary: %s %s (%d tracks reported)\n",
		lib.Metadata.Producer, lib.Metadata.Version, lib.Metadata.TrackCount)
	fmt.Printf("Tracks: %d  Playlists: %d  Artists: %d  Genres: %d\n",
		result.TotalTracks, result.TotalPlaylists, result.UniqueArtists, result.UniqueGenres)
	fmt.Printf("Average BPM: %.1f  Total duration: %.1f h\n",
		result.AverageBPM, result.TotalDurationHours)

	printDistribution("Genres", result.GenreDistribution, config.AppConfig.TopN)
	printDistribution("Keys", result.KeyDistribution, config.AppConfig.TopN)
	printDistribution("BPM", result.BPMDistribution, 0)

	if len(result.RatingDistribution) > 0 {
		fmt.Println("\nRatings:")
		for _, e := range result.RatingDistribution {
			fmt.Printf("  %d stars: %d\n", e.Rating, e.Count)
		}
	}

	if len(result.GrowthTimeline) > 0 {
		last := result.GrowthTimeline[len(result.GrowthTimeline)-1]
		fmt.Printf("\nGrowth: %d tracks by %s across %d months\n",
			last.Count, last.Month, len(result.GrowthTimeline))
	}

	if n := len(result.Duplicates); n > 0 {
		fmt.Printf("\nDuplicate groups: %d\n", n)
		for i, g := range result.Duplicates {
			if i >= config.AppConfig.TopN {
				break
			}
			fmt.Printf("  %s (%d copies)\n", g.Key, len(g.Tracks))
		}
	}

	top := stats.TopArtists(lib.Tracks, config.AppConfig.TopN)
	if len(top) > 0 {
		fmt.Println("\nTop artists:")
		for _, e := range top {
			fmt.Printf("  %-30s %d\n", e.Label, e.Count)
		}
	}
}

func printDistribution(title string, entries []models.CountEntry, limit int) {
	if len(entries) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", title)
	for i, e := range entries {
		if limit > 0 && i >= limit {
			break
		}
		fmt.Printf("  %-20s %d\n", e.Label, e.Count)
	}
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.cratestats.yaml)")
	rootCmd.PersistentFlags().StringVar(&databasePath, "db", "cratestats.pebble", "path to the library database")
	rootCmd.PersistentFlags().IntVar(&bpmBucketSize, "bpm-bucket", 10, "BPM histogram bucket width")
	rootCmd.PersistentFlags().IntVar(&topN, "top", 10, "number of entries in top lists")

	viper.BindPFlag("database_path", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("bpm_bucket_size", rootCmd.PersistentFlags().Lookup("bpm-bucket"))
	viper.BindPFlag("top_n", rootCmd.PersistentFlags().Lookup("top"))

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("port", "8080", "port to run the API server on")
	serveCmd.Flags().String("host", "localhost", "host to bind the API server to")
	serveCmd.Flags().String("watch", "", "library export file to watch and re-import on change")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".cratestats")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}

	config.InitConfig()
}
