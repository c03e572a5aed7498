package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lazypower/synapse/internal/config"
	"github.com/lazypower/synapse/internal/graph"
)

var clearForce bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the entire knowledge graph",
	RunE:  runClear,
}

func init() {
	clearCmd.Flags().BoolVarP(&clearForce, "force", "f", false, "Skip confirmation prompt")
}

func runClear(cmd *cobra.Command, args []string) error {
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

	if g.NodeCount() == 0 {
		fmt.Println("graph is already empty")
		return nil
	}

	if !clearForce {
		fmt.Printf("delete %d nodes and %d edges? [y/N] ", g.NodeCount(), g.EdgeCount())
		reader := bufio.NewReader(os.Stdin)
		line, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(line)) != "y" {
			fmt.Println("aborted")
			return nil
		}
	}

	g.Clear()
	if err := db.SaveGraph(g.Export(), ""); err != nil {
		return fmt.Errorf("save graph: %w", err)
	}

	fmt.Println("knowledge graph cleared")
	return nil
}
