package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/distlabel/coretree/internal/catalog"
	"github.com/distlabel/coretree/pkg/config"
)

var catalogListLimit int

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the build catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent builds",
	RunE:  runCatalogList,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogListCmd)
	catalogListCmd.Flags().IntVar(&catalogListLimit, "limit", 20, "maximum number of builds to list")
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := catalog.NewDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to catalog database: %w", err)
	}
	repo := catalog.NewGormRepository(db)

	builds, err := repo.ListBuilds(context.Background(), catalogListLimit)
	if err != nil {
		return err
	}

	for _, b := range builds {
		fmt.Printf("%-24s  W=%-4d  n=%-10d  core=%-8d  status=%s\n",
			b.GraphName, b.Width, b.NumVertices, b.NumCore, b.Status)
	}
	return nil
}
