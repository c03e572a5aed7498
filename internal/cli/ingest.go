package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lazypower/synapse/internal/config"
	"github.com/lazypower/synapse/internal/extract"
	"github.com/lazypower/synapse/internal/graph"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Ingest files into the knowledge graph",
	Long: `Ingest markdown notes (.md), PDF documents (.pdf), and saved-link
exports (.json, .csv) directly, without going through the HTTP API.
The graph is loaded from the database, updated, and saved back.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	g := graph.NewStore()
	if err := db.LoadGraph(g); err != nil {
		return fmt.Errorf("load graph: %w", err)
	}

	provider := pickProvider(cfg)
	builder := graph.NewBuilder(g, provider)
	builder.Threshold = cfg.Graph.SimilarityThreshold

	records, extractErrs := extractFiles(args)

	sum, err := builder.Ingest(cmd.Context(), records)
	if err != nil {
		return err
	}
	sum.Errors = append(extractErrs, sum.Errors...)
	sum.ItemsProcessed += len(extractErrs)

	if err := db.SaveGraph(g.Export(), provider.Model()); err != nil {
		return fmt.Errorf("save graph: %w", err)
	}

	fmt.Printf("processed %d items: %d nodes created, %d updated, %d edges\n",
		sum.ItemsProcessed, sum.NodesCreated, sum.NodesUpdated, sum.EdgesCreated)
	for _, e := range sum.Errors {
		fmt.Fprintf(os.Stderr, "  error: %s: %s\n", e.SourceReference, e.Error)
	}
	fmt.Printf("graph: %d nodes, %d edges\n", g.NodeCount(), g.EdgeCount())
	return nil
}

// extractFiles maps each path to the extractor for its extension. Unreadable
// or unrecognized files are reported as item errors, never fatal.
func extractFiles(paths []string) ([]graph.Record, []graph.ItemError) {
	var records []graph.Record
	var errs []graph.ItemError

	for _, path := range paths {
		name := filepath.Base(path)
		data, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, graph.ItemError{SourceReference: name, Error: err.Error()})
			continue
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".md", ".markdown", ".txt":
			records = append(records, extract.Markdown(name, string(data)))
		case ".pdf":
			rec, err := extract.PDF(name, data)
			if err != nil {
				errs = append(errs, graph.ItemError{SourceReference: name, Error: err.Error()})
				continue
			}
			records = append(records, rec)
		case ".json", ".csv":
			linkRecords, err := extract.Links(name, data)
			if err != nil {
				errs = append(errs, graph.ItemError{SourceReference: name, Error: err.Error()})
				continue
			}
			records = append(records, linkRecords...)
		default:
			errs = append(errs, graph.ItemError{SourceReference: name, Error: "unsupported file type"})
		}
	}

	return records, errs
}
