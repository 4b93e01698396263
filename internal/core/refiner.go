// Package core wires the refinement stages into one pipeline run:
// entity resolution, then relation inference, then read-only analysis.
package core

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/agenthands/kgrefine/internal/config"
	"github.com/agenthands/kgrefine/internal/core/anomaly"
	"github.com/agenthands/kgrefine/internal/core/cluster"
	"github.com/agenthands/kgrefine/internal/core/community"
	"github.com/agenthands/kgrefine/internal/core/dedupe"
	"github.com/agenthands/kgrefine/internal/core/embedding"
	"github.com/agenthands/kgrefine/internal/core/graph"
	"github.com/agenthands/kgrefine/internal/core/inference"
	"github.com/agenthands/kgrefine/internal/core/model"
	"github.com/agenthands/kgrefine/internal/core/similarity"
	"github.com/agenthands/kgrefine/internal/driver"
)

var ErrNoGraph = errors.New("report has no graph to export")

// Refiner owns the cache and engines of one pipeline run. Concurrent runs
// need separate Refiners.
type Refiner struct {
	Config    *config.Config
	Cache     *embedding.Cache
	Resolver  *dedupe.Resolver
	Inference *inference.Engine
	Community community.Detector
}

// NewRefiner validates cfg and builds the engines. Configuration errors wrap
// config.ErrInvalidConfig.
func NewRefiner(cfg *config.Config) (*Refiner, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cache, err := embedding.NewCache(cfg.Embedding.Dimension)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	detector, err := community.NewDetector(cfg.Analysis.Community)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}

	resolver := dedupe.NewResolver(cfg.Resolution.SimilarityThreshold)
	resolver.Ladder = similarity.LadderOptions{
		SemanticCutoff: cfg.Resolution.SemanticCutoff,
		PartialCutoff:  cfg.Resolution.PartialCutoff,
	}

	return &Refiner{
		Config:   cfg,
		Cache:    cache,
		Resolver: resolver,
		Inference: inference.NewEngine(inference.Config{
			ConfidenceThreshold: cfg.Inference.ConfidenceThreshold,
			TypeThreshold:       cfg.Inference.TypeThreshold,
			MaxPathDepth:        cfg.Inference.MaxPathDepth,
			MaxPaths:            cfg.Inference.MaxPaths,
		}),
		Community: detector,
	}, nil
}

// Report is the outcome of a run.
type Report struct {
	Before          graph.Statistics        `json:"before"`
	After           graph.Statistics        `json:"after"`
	Alignments      []model.AlignmentResult `json:"alignments"`
	Inferred        []model.InferredEdge    `json:"inferred"`
	Committed       int                     `json:"committed"`
	Clusters        map[string]int          `json:"clusters"`
	DensityClusters map[string]int          `json:"density_clusters"`
	Communities     [][]string              `json:"communities"`
	Anomalies       []anomaly.Result        `json:"anomalies"`
	Excluded        int                     `json:"excluded"`
	Cache           embedding.Stats         `json:"cache"`

	// Graph is the refined graph. The input graph is left untouched.
	Graph *graph.Graph `json:"-"`
}

// Run refines g. Each stage sees the graph the previous stage left behind.
// Only a structural failure while rewriting the graph aborts the run; the
// analyses degrade to empty results.
func (r *Refiner) Run(g *graph.Graph) (*Report, error) {
	report := &Report{Before: g.Statistics()}

	resolved, alignments, err := r.Resolver.Resolve(g)
	if err != nil {
		return nil, fmt.Errorf("entity resolution failed: %w", err)
	}
	for _, res := range alignments {
		r.Cache.Evict(res.CanonicalEntity.ID)
		for _, id := range res.DuplicateIDs() {
			r.Cache.Evict(id)
		}
	}
	resolved.OnRemove(r.Cache.Evict)
	report.Alignments = alignments
	log.Printf("Resolution merged %d groups (%d -> %d nodes)", len(alignments), g.NodeCount(), resolved.NodeCount())

	report.Inferred = r.Inference.Infer(resolved)
	if r.Config.Inference.Commit {
		report.Committed = inference.Commit(resolved, inference.ToEdges(report.Inferred))
	}
	log.Printf("Inference proposed %d edges, committed %d", len(report.Inferred), report.Committed)

	r.analyze(resolved, report)

	report.After = resolved.Statistics()
	report.Cache = r.Cache.Stats()
	report.Graph = resolved
	return report, nil
}

func (r *Refiner) analyze(g *graph.Graph, report *Report) {
	cfg := r.Config.Analysis

	var vectors cluster.Vectors
	if cfg.Features == "embedding" {
		vectors = cluster.EmbeddingFeatures(g, r.Cache)
	} else {
		vectors = cluster.StructuralFeatures(g)
	}
	report.Excluded = g.NodeCount() - vectors.Len()

	if vectors.Len() > 0 {
		rows := cluster.Standardize(vectors.Rows)

		kopts := cluster.DefaultKMeansOptions()
		kopts.K, kopts.Seed = cfg.Clusters, cfg.Seed
		km, err := cluster.KMeans(rows, kopts)
		if err != nil {
			log.Printf("Warning: k-means skipped: %v", err)
		} else {
			report.Clusters = cluster.Assign(vectors.IDs, km.Labels)
		}

		labels, err := cluster.DBSCAN(rows, cluster.DBSCANOptions{Eps: cfg.Eps, MinPoints: cfg.MinPoints})
		if err != nil {
			log.Printf("Warning: dbscan skipped: %v", err)
		} else {
			report.DensityClusters = cluster.Assign(vectors.IDs, labels)
		}

		forest := anomaly.DefaultConfig()
		forest.Contamination, forest.Seed = cfg.Contamination, cfg.Seed
		report.Anomalies = anomaly.Detect(vectors.IDs, rows, forest)
	}

	communities, err := r.Community.Detect(g)
	if err != nil {
		log.Printf("Warning: community detection skipped: %v", err)
	}
	report.Communities = communities
}

// Export writes the refined graph and its analysis to d under groupID,
// replacing whatever the group held before.
func (r *Refiner) Export(ctx context.Context, d driver.GraphDriver, groupID string, report *Report) error {
	if report == nil || report.Graph == nil {
		return ErrNoGraph
	}
	x := driver.NewExporter(d, groupID)
	if err := d.BuildIndices(ctx); err != nil {
		return fmt.Errorf("failed to build indices: %w", err)
	}
	if err := x.Reset(ctx); err != nil {
		return err
	}
	if err := x.ExportGraph(ctx, report.Graph); err != nil {
		return err
	}

	scores := make(map[string]float64, len(report.Anomalies))
	for _, a := range report.Anomalies {
		scores[a.ID] = a.Score
	}
	return x.ExportAnalysis(ctx, report.Graph, driver.Analysis{
		Clusters:    report.Clusters,
		Anomalies:   scores,
		Communities: report.Communities,
	})
}
