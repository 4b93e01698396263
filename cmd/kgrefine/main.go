// Package main provides the kgrefine CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/agenthands/kgrefine/internal/config"
	"github.com/agenthands/kgrefine/internal/core"
	"github.com/agenthands/kgrefine/internal/core/common"
	"github.com/agenthands/kgrefine/internal/core/graph"
	"github.com/agenthands/kgrefine/internal/core/model"
	"github.com/agenthands/kgrefine/internal/driver"
)

var version = "0.1.0"

const defaultConfigPath = "config/config.toml"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	rootCmd := &cobra.Command{
		Use:   "kgrefine",
		Short: "Refine extracted knowledge graphs",
		Long: `kgrefine resolves duplicate entities, infers missing relations and
analyses the structure of a knowledge graph built from extraction output.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "TOML config file (default $KGREFINE_CONFIG or "+defaultConfigPath+")")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("kgrefine v%s\n", version)
		},
	})

	refineCmd := &cobra.Command{
		Use:   "refine",
		Short: "Run resolution, inference and analysis on a graph",
		RunE:  runRefine,
	}
	refineCmd.Flags().String("input", "", "Extraction document (JSON with entities and relations)")
	refineCmd.Flags().String("from-group", "", "Load the graph from Memgraph instead of --input")
	refineCmd.Flags().String("output", "", "Write the report to this file instead of stdout")
	refineCmd.Flags().String("cache", "", "Embedding cache snapshot to load and save (overrides embedding.cache_path)")
	refineCmd.Flags().Bool("export", false, "Export the refined graph to Memgraph")
	refineCmd.Flags().String("group", "", "Group id for the export (default: a new uuid)")
	rootCmd.AddCommand(refineCmd)

	statsCmd := &cobra.Command{
		Use:   "stats [document]",
		Short: "Print statistics of an extraction document",
		Args:  cobra.ExactArgs(1),
		RunE:  runStats,
	}
	rootCmd.AddCommand(statsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("KGREFINE_CONFIG")
	}
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); err == nil {
			path = defaultConfigPath
		}
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
		log.Printf("Loaded config from %s", path)
	}
	cfg.ApplyEnv()
	return cfg, nil
}

func readDocument(path string) (*graph.Graph, error) {
	doc, err := common.ReadJSON[model.Document](path)
	if err != nil {
		return nil, err
	}
	g, skipped := graph.FromRecords(doc.Entities, doc.Relations)
	if skipped > 0 {
		log.Printf("Warning: skipped %d invalid records in %s", skipped, path)
	}
	return g, nil
}

type output struct {
	*core.Report
	Nodes []*model.Node `json:"nodes"`
	Edges []*model.Edge `json:"edges"`
}

func runRefine(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	fromGroup, _ := cmd.Flags().GetString("from-group")
	outPath, _ := cmd.Flags().GetString("output")
	cachePath, _ := cmd.Flags().GetString("cache")
	export, _ := cmd.Flags().GetBool("export")
	groupID, _ := cmd.Flags().GetString("group")

	if (input == "") == (fromGroup == "") {
		return errors.New("exactly one of --input or --from-group is required")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cachePath == "" {
		cachePath = cfg.Embedding.CachePath
	}

	r, err := core.NewRefiner(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	var d *driver.MemgraphDriver
	if export || fromGroup != "" {
		d, err = driver.NewMemgraphDriver(ctx, cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password)
		if err != nil {
			return err
		}
		defer d.Close(context.Background())
	}

	var g *graph.Graph
	if fromGroup != "" {
		g, err = driver.LoadGraph(ctx, d, fromGroup)
	} else {
		g, err = readDocument(input)
	}
	if err != nil {
		return err
	}

	if cachePath != "" {
		if _, statErr := os.Stat(cachePath); statErr == nil {
			n, err := r.Cache.Load(cachePath)
			if err != nil {
				log.Printf("Warning: ignoring embedding cache %s: %v", cachePath, err)
			} else {
				log.Printf("Loaded %d cached embeddings from %s", n, cachePath)
			}
		}
	}

	report, err := r.Run(g)
	if err != nil {
		return err
	}

	if cachePath != "" {
		if err := r.Cache.Save(cachePath); err != nil {
			log.Printf("Warning: failed to save embedding cache: %v", err)
		}
	}

	if export {
		if groupID == "" {
			groupID = uuid.New().String()
		}
		if err := r.Export(ctx, d, groupID, report); err != nil {
			return err
		}
		log.Printf("Exported refined graph as group %s", groupID)
	}

	out := output{Report: report, Nodes: report.Graph.Nodes(), Edges: report.Graph.Edges()}
	if outPath == "" {
		return writeStdout(out)
	}
	return common.WriteJSON(outPath, out)
}

func runStats(cmd *cobra.Command, args []string) error {
	g, err := readDocument(args[0])
	if err != nil {
		return err
	}
	return writeStdout(g.Statistics())
}

func writeStdout(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
