package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"congestion-pulse/internal/api"
	"congestion-pulse/internal/config"
	"congestion-pulse/internal/db"
	"congestion-pulse/internal/demand"
	"congestion-pulse/internal/logging"
	"congestion-pulse/internal/predictions"
	"congestion-pulse/internal/refresh"
	"congestion-pulse/internal/splitter"
	"congestion-pulse/internal/station"
	"congestion-pulse/internal/synth"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dbPath   string
	database *db.Database
	cfg      *config.Config
	logger   *zap.Logger
)

func main() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err = logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	rootCmd := &cobra.Command{
		Use:   "congestion-pulse",
		Short: "Congestion Pulse - NYC congestion pricing and subway ridership map service",
		Long: `Serves congestion-pricing entry volumes and subway ridership predictions
as map-renderer layer configurations, with synthetic fallbacks when the live
prediction endpoint is unavailable. Also splits prediction CSV exports by
vehicle class.`,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", cfg.DBPath, "Path to SQLite database")

	// Add commands
	rootCmd.AddCommand(serverCmd())
	rootCmd.AddCommand(ingestStationsCmd())
	rootCmd.AddCommand(volumesCmd())
	rootCmd.AddCommand(splitCmd())
	rootCmd.AddCommand(statsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initDB initializes database connection
func initDB() error {
	var err error
	database, err = db.New(dbPath)
	return err
}

// serverCmd starts the REST API server
func serverCmd() *cobra.Command {
	var port int
	var predictionsURL string

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initDB(); err != nil {
				return fmt.Errorf("database error: %w", err)
			}
			defer database.Close()

			client := predictions.NewClient(predictionsURL, cfg.Predictions.FetchTimeout, logger)
			builder := api.NewBuilder(client, database, nil, logger)
			coordinator := refresh.New(cfg.Predictions.DebounceInterval, builder.Build, logger)
			defer coordinator.Stop()

			server := api.NewServer(database, builder, coordinator, logger)
			addr := fmt.Sprintf(":%d", port)

			logger.Info("starting server",
				zap.String("addr", addr),
				zap.String("db", dbPath),
				zap.String("predictions_url", predictionsURL),
			)

			return http.ListenAndServe(addr, server.Router())
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", cfg.HTTP.Port, "Server port")
	cmd.Flags().StringVar(&predictionsURL, "predictions-url", cfg.Predictions.BaseURL, "Base URL of the live prediction endpoint")
	return cmd
}

// ingestStationsCmd loads an MTA stops CSV into the station catalog
func ingestStationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest-stations [file...]",
		Short: "Ingest MTA stops CSV files into the station catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initDB(); err != nil {
				return fmt.Errorf("database error: %w", err)
			}
			defer database.Close()

			total := int64(0)
			for _, file := range args {
				start := time.Now()

				stations, err := station.ParseFile(file, logger)
				if err != nil {
					logger.Error("parse failed", zap.String("file", file), zap.Error(err))
					continue
				}

				count, err := database.UpsertStationBatch(stations)
				if err != nil {
					logger.Error("ingest failed", zap.String("file", file), zap.Error(err))
					continue
				}

				logger.Info("ingested stations",
					zap.String("file", file),
					zap.Int64("count", count),
					zap.Duration("elapsed", time.Since(start)),
				)
				total += count
			}

			fmt.Printf("Total: %d stations ingested\n", total)
			return nil
		},
	}
	return cmd
}

// volumesCmd prints synthetic entry-point volumes for a time of day
func volumesCmd() *cobra.Command {
	var timeOfDay string
	var day string
	var classList []int
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "volumes",
		Short: "Generate synthetic entry-point traffic volumes",
		RunE: func(cmd *cobra.Command, args []string) error {
			hour, minute := 12, 0
			if _, err := fmt.Sscanf(timeOfDay, "%d:%d", &hour, &minute); err != nil {
				return fmt.Errorf("invalid time %q (use HH:MM)", timeOfDay)
			}
			if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
				return fmt.Errorf("time out of range: %s", timeOfDay)
			}

			if len(classList) == 0 {
				for _, c := range demand.TollableClasses() {
					classList = append(classList, c.ID)
				}
			}

			rows := synth.Volumes(synth.VolumeParams{
				Hour:     hour,
				Minute:   minute,
				Day:      day,
				ClassIDs: classList,
			}, synth.DefaultRand, logger)

			switch outputFormat {
			case "json":
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				enc.Encode(rows)
			default:
				fmt.Printf("%-20s %-26s %8s %6s %8s\n", "Entry Point", "Class", "Volume", "Peak", "Toll")
				for _, r := range rows {
					fmt.Printf("%-20s %-26s %8.0f %6v %8.2f\n",
						r.EntryPoint, r.ClassName, r.Volume, r.IsPeak, r.TollFee)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&timeOfDay, "time", "t", "08:00", "Time of day (HH:MM)")
	cmd.Flags().StringVarP(&day, "day", "d", "weekday", "Day category (weekday, weekend, or a day name)")
	cmd.Flags().IntSliceVarP(&classList, "classes", "c", nil, "Vehicle class ids (default: all tollable)")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json)")
	return cmd
}

// splitCmd splits a predictions CSV by vehicle class
func splitCmd() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "split [predictions.csv]",
		Short: "Split a predictions CSV into one file per vehicle class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()

			result, err := splitter.Split(args[0], outputDir, logger)
			if err != nil {
				return fmt.Errorf("split error: %w", err)
			}

			fmt.Printf("Split %d rows into %d files in %v\n",
				result.Rows, len(result.Files), time.Since(start))
			for class, path := range result.Files {
				fmt.Printf("  %-30s -> %s\n", class, path)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "out", "o", "predictions_by_class", "Output directory")
	return cmd
}

// statsCmd shows database statistics
func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initDB(); err != nil {
				return fmt.Errorf("database error: %w", err)
			}
			defer database.Close()

			stats, err := database.GetStats()
			if err != nil {
				return fmt.Errorf("error getting stats: %w", err)
			}

			fmt.Println("Congestion Pulse Statistics")
			fmt.Println("===========================")
			fmt.Printf("  Stations:           %v\n", stats["stations"])
			fmt.Printf("  Snapshots:          %v\n", stats["snapshots"])
			fmt.Printf("  Fallback snapshots: %v\n", stats["fallback_snapshots"])
			if v, ok := stats["last_refresh"]; ok {
				fmt.Printf("  Last refresh:       %v\n", v)
			}
			fmt.Printf("  Database:           %s\n", dbPath)

			return nil
		},
	}
}
