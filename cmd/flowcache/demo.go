package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/allaspectsdev/flowcache/internal/config"
	"github.com/allaspectsdev/flowcache/internal/coordinator"
	"github.com/allaspectsdev/flowcache/internal/diagnostic"
	"github.com/allaspectsdev/flowcache/internal/resultstore"
	"github.com/allaspectsdev/flowcache/internal/store"
	"github.com/allaspectsdev/flowcache/internal/testutil"
)

// cmdDemo drives a two-node fixture graph (A -> B) through the Coordinator
// twice with identical inputs, to make the caching behavior visible: the
// first run executes both nodes, the second serves both from cache.
func cmdDemo(args []string) {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	meta, err := store.Open(cfg.Cache.MetadataDBPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening metadata store: %v\n", err)
		os.Exit(1)
	}
	defer meta.Close()

	results, err := resultstore.NewSQLiteStore(cfg.Cache.ResultDBPath(), cfg.Cache.SideChannelPath(), cfg.Cache.MaxMemoryEntries)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening result store: %v\n", err)
		os.Exit(1)
	}
	defer results.Close()

	graph := testutil.TwoNodeChainGraph()

	nodeA := func(kwargs map[string]any) (any, error) {
		fmt.Println("  executing A...")
		return 42, nil
	}
	nodeB := func(kwargs map[string]any) (any, error) {
		fmt.Println("  executing B...")
		a, _ := kwargs["A"].(int)
		return a * 2, nil
	}
	callables := map[string]coordinator.NodeCallable{"A": nodeA, "B": nodeB}

	sink := diagnostic.New(cfg.Cache.DataDir)

	for run := 1; run <= 2; run++ {
		runID := uuid.NewString()
		fmt.Printf("run %d (run_id=%s):\n", run, runID)

		c := coordinator.New(meta, results, coordinator.WithDiagnosticSink(sink))
		if err := c.BeforeGraph(runID, graph, nil, nil); err != nil {
			fmt.Fprintf(os.Stderr, "error: before_graph: %v\n", err)
			os.Exit(1)
		}

		kwargs := map[string]any{}
		for _, n := range graph.Nodes() {
			value, err := c.ToExecuteNode(n.Name(), callables[n.Name()], kwargs)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: execute_node %s: %v\n", n.Name(), err)
				os.Exit(1)
			}
			if err := c.AfterNode(n.Name(), kwargs, value); err != nil {
				fmt.Fprintf(os.Stderr, "error: after_node %s: %v\n", n.Name(), err)
				os.Exit(1)
			}
			kwargs[n.Name()] = value
			fmt.Printf("  %s -> %v\n", n.Name(), value)
		}

		if err := c.AfterGraph(); err != nil {
			fmt.Fprintf(os.Stderr, "error: after_graph: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("\nrun 1 executed both nodes; run 2 should have served both from cache\n")
	fmt.Printf("fingerprint dumps written under %s/fingerprints/\n", cfg.Cache.DataDir)
}
