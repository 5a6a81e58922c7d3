package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/docly-ai/texforge/internal/dataset"
	buildenc "github.com/docly-ai/texforge/internal/usecase/build"
)

var buildDatasetPath string

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the retrieval index from the example dataset",
	Long:  "Reads the example dataset, embeds every record and writes the\nvector and metadata files configured under index.",
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildDatasetPath, "dataset", "", "dataset file (.xlsx or .csv); overrides config")
}

func runBuild(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	path := buildDatasetPath
	if path == "" {
		path = a.cfg.Dataset.Path
	}
	if path == "" {
		return fmt.Errorf("no dataset configured; set dataset.path or pass --dataset")
	}

	records, err := dataset.Load(path, a.cfg.Dataset.Sheet)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	a.logger.Info("Dataset loaded", zap.String("path", path), zap.Int("records", len(records)))

	svc := buildenc.New(a.embedder())
	if err := svc.Build(ctx, records, a.cfg.Index.VectorsPath, a.cfg.Index.MetaPath); err != nil {
		return err
	}

	fmt.Printf("Indexed %d records -> %s\n", len(records), a.cfg.Index.VectorsPath)
	return nil
}
