package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lazypower/synapse/internal/config"
	"github.com/lazypower/synapse/internal/graph"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge graph statistics",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
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

	st := g.Stats(cfg.Graph.TopConnected)

	fmt.Printf("nodes:   %d\n", st.TotalNodes)
	fmt.Printf("edges:   %d\n", st.TotalEdges)
	fmt.Printf("density: %.4f\n", st.Density)
	fmt.Printf("clicks:  %d (%.2f per node)\n", st.TotalClicks, st.AvgClicksPerNode)

	if len(st.NodeKinds) > 0 {
		fmt.Println("kinds:")
		for kind, n := range st.NodeKinds {
			fmt.Printf("  %-8s %d\n", kind, n)
		}
	}

	if st.TotalEdges > 0 {
		fmt.Printf("edge weight: avg %.3f, min %.3f, max %.3f\n",
			st.AvgEdgeWeight, st.MinEdgeWeight, st.MaxEdgeWeight)
	}

	if len(st.MostConnectedNodes) > 0 {
		fmt.Println("most connected:")
		for _, mc := range st.MostConnectedNodes {
			fmt.Printf("  %-30s %d connections\n", mc.Title, mc.Connections)
		}
	}

	return nil
}
