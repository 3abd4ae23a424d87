package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/allaspectsdev/flowcache/internal/config"
	"github.com/allaspectsdev/flowcache/internal/resultstore"
	"github.com/allaspectsdev/flowcache/internal/store"
)

// cmdReset clears the metadata store and result store, after confirming
// with the user unless --yes was passed.
func cmdReset(args []string) {
	skipConfirm := false
	for _, a := range args {
		if a == "--yes" || a == "-y" {
			skipConfirm = true
		}
	}

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	metaSize := fileSize(cfg.Cache.MetadataDBPath())
	resultSize := fileSize(cfg.Cache.ResultDBPath())

	if !skipConfirm {
		if !term.IsTerminal(int(syscall.Stdin)) {
			fmt.Fprintln(os.Stderr, "stdin is not a terminal; rerun with --yes to confirm a non-interactive reset")
			os.Exit(1)
		}

		fmt.Printf("This will permanently delete all cached results and metadata:\n")
		fmt.Printf("  %s (%s)\n", cfg.Cache.MetadataDBPath(), humanize.Bytes(metaSize))
		fmt.Printf("  %s (%s)\n", cfg.Cache.ResultDBPath(), humanize.Bytes(resultSize))
		fmt.Print("Type 'yes' to continue: ")

		reader := bufio.NewReader(os.Stdin)
		line, _ := reader.ReadString('\n')
		if strings.TrimSpace(line) != "yes" {
			fmt.Println("Aborted")
			return
		}
	}

	meta, err := store.Open(cfg.Cache.MetadataDBPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening metadata store: %v\n", err)
		os.Exit(1)
	}
	defer meta.Close()
	if err := meta.Reset(); err != nil {
		fmt.Fprintf(os.Stderr, "error resetting metadata store: %v\n", err)
		os.Exit(1)
	}

	results, err := resultstore.NewSQLiteStore(cfg.Cache.ResultDBPath(), cfg.Cache.SideChannelPath(), cfg.Cache.MaxMemoryEntries)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening result store: %v\n", err)
		os.Exit(1)
	}
	defer results.Close()
	if err := results.Reset(); err != nil {
		fmt.Fprintf(os.Stderr, "error resetting result store: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Cache reset complete")
}

func fileSize(path string) uint64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return uint64(info.Size())
}
