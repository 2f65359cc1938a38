package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/distlabel/coretree/pkg/logger"
	"github.com/distlabel/coretree/pkg/pprof"
)

var (
	// Global flags
	verbose    bool
	configPath string
	log        logger.Logger

	// Pprof flags
	pprofEnabled     bool
	pprofMode        string
	pprofDir         string
	pprofProfiles    string
	pprofInterval    string
	pprofCPUDuration string
	pprofCPURate     int
	pprofAddr        string

	pprofCollector *pprof.Collector
)

// rootCmd is the coretree CLI's base command.
var rootCmd = &cobra.Command{
	Use:   "coretree",
	Short: "Build and query Core-Tree exact shortest-path distance oracles",
	Long: `coretree builds and queries a labeling-based distance oracle for large
unweighted undirected graphs: a bit-parallel sketch, a tree decomposition of
low-degree vertices peeled below a width threshold W, and a 2-hop pruned
landmark label on the remaining dense core.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := logger.LevelInfo
		if verbose {
			level = logger.LevelDebug
		}
		log = logger.NewDefaultLogger(level, os.Stdout)

		if pprofEnabled {
			cfg, err := buildPprofConfig()
			if err != nil {
				return err
			}
			collector, err := pprof.NewCollector(cfg)
			if err != nil {
				return err
			}
			if err := collector.Start(); err != nil {
				return err
			}
			pprofCollector = collector
			log.Info("pprof collection started (mode: %s, dir: %s)", cfg.Mode, cfg.OutputDir)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if pprofCollector != nil {
			log.Info("stopping pprof collection...")
			if err := pprofCollector.Stop(); err != nil {
				log.Warn("failed to stop pprof collector: %v", err)
			}
		}
		return nil
	},
}

// Execute runs the root command, exiting the process non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a coretree config file (yaml/json/toml)")

	rootCmd.PersistentFlags().BoolVar(&pprofEnabled, "pprof", false, "enable pprof performance profiling")
	rootCmd.PersistentFlags().StringVar(&pprofMode, "pprof-mode", "file", "pprof mode: file or http")
	rootCmd.PersistentFlags().StringVar(&pprofDir, "pprof-dir", "./pprof", "output directory for pprof data")
	rootCmd.PersistentFlags().StringVar(&pprofProfiles, "pprof-profiles", "cpu,heap,goroutine", "comma-separated profile types")
	rootCmd.PersistentFlags().StringVar(&pprofInterval, "pprof-interval", "30s", "snapshot interval for file mode")
	rootCmd.PersistentFlags().StringVar(&pprofCPUDuration, "pprof-cpu-duration", "10s", "CPU profile duration per snapshot")
	rootCmd.PersistentFlags().IntVar(&pprofCPURate, "pprof-cpu-rate", 100, "CPU profiling rate in Hz")
	rootCmd.PersistentFlags().StringVar(&pprofAddr, "pprof-addr", ":6060", "HTTP listen address for http mode")

	binName := BinName()
	rootCmd.Example = `  # Ingest ./data/web-graph/edges.txt into graph-dis.bin
  ` + binName + ` txt-to-bin ./data/web-graph

  # Build the bit-parallel sketch with 4 worker threads
  ` + binName + ` decompose-bp ./data/web-graph 4

  # Build the tree decomposition for width 20
  ` + binName + ` decompose-tree ./data/web-graph 20

  # Full build: bp + tree + core in one shot
  ` + binName + ` decompose-bt ./data/web-graph 20 4
  ` + binName + ` decompose-core ./data/web-graph 20

  # Query a single pair
  ` + binName + ` query-dis ./data/web-graph 20 17 9031`
}

// GetLogger returns the CLI's configured logger.
func GetLogger() logger.Logger {
	return log
}

// BinName returns the base name of the running executable.
func BinName() string {
	return filepath.Base(os.Args[0])
}

func buildPprofConfig() (*pprof.Config, error) {
	cfg := pprof.DefaultConfig()
	cfg.Enabled = true
	cfg.OutputDir = pprofDir

	switch pprofMode {
	case "file":
		cfg.Mode = pprof.ModeFile
	case "http":
		cfg.Mode = pprof.ModeHTTP
	default:
		return nil, fmt.Errorf("invalid pprof mode: %q (valid: file, http)", pprofMode)
	}

	profiles, err := pprof.ParseProfileTypes(pprofProfiles)
	if err != nil {
		return nil, err
	}
	cfg.Profiles = profiles

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
