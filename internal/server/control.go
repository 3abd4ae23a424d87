package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/allaspectsdev/flowcache/internal/config"
	"github.com/allaspectsdev/flowcache/internal/store"
)

// Stop sends SIGTERM to a running flowcache process and waits briefly for
// it to exit.
func Stop(cfg *config.Config) error {
	dataDir := expandHome(cfg.Cache.DataDir)

	pid, err := ReadPID(dataDir)
	if err != nil {
		return fmt.Errorf("flowcache does not appear to be running: %w", err)
	}

	if !isProcessAlive(pid) {
		if rmErr := RemovePID(dataDir); rmErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to remove stale PID file: %v\n", rmErr)
		}
		return fmt.Errorf("flowcache is not running (stale PID file removed)")
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("finding process %d: %w", pid, err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("sending SIGTERM to process %d: %w", pid, err)
	}

	fmt.Printf("Sent SIGTERM to flowcache (PID %d)\n", pid)

	for i := 0; i < 30; i++ {
		time.Sleep(100 * time.Millisecond)
		if !isProcessAlive(pid) {
			break
		}
	}

	return nil
}

// Status checks whether flowcache is running and, if so, prints a summary
// fetched from the inspector's /stats endpoint.
func Status(cfg *config.Config) error {
	dataDir := expandHome(cfg.Cache.DataDir)

	if !IsRunning(dataDir) {
		fmt.Println("flowcache is not running")
		return nil
	}

	pid, _ := ReadPID(dataDir)
	fmt.Printf("flowcache is running (PID %d)\n", pid)

	url := fmt.Sprintf("http://%s/stats", cfg.Server.InspectorAddr)
	client := &http.Client{Timeout: 3 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		fmt.Println("  (inspector unreachable)")
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}

	var stats store.Stats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil
	}

	fmt.Printf("\n  Nodes:          %d\n", stats.Nodes)
	fmt.Printf("  Runs:           %d\n", stats.Runs)
	fmt.Printf("  Cache Entries:  %d\n", stats.Entries)
	total := stats.Hits + stats.Misses
	rate := 0.0
	if total > 0 {
		rate = 100 * float64(stats.Hits) / float64(total)
	}
	fmt.Printf("  Cache Hit Rate: %.1f%% (%d hits / %d misses)\n", rate, stats.Hits, stats.Misses)
	return nil
}
