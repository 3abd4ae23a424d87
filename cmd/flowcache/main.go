package main

import (
	"fmt"
	"os"

	"github.com/allaspectsdev/flowcache/internal/version"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmdServe(os.Args[2:])
	case "stop":
		cmdStop()
	case "status":
		cmdStatus()
	case "reset":
		cmdReset(os.Args[2:])
	case "demo":
		cmdDemo(os.Args[2:])
	case "init-config":
		cmdInitConfig()
	case "install-service":
		cmdInstallService()
	case "config-export":
		cmdConfigExport(os.Args[2:])
	case "config-import":
		cmdConfigImport(os.Args[2:])
	case "version":
		fmt.Println(version.String())
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: flowcache <command> [options]

Commands:
  serve            Start the inspector server and block until shutdown
  stop             Stop the running server
  status           Show server status and cache stats
  reset            Clear all cached results and metadata
  demo             Run a small sample graph through the cache and print outcomes
  init-config      Generate default config file
  config-export    Export current config to a TOML file
  config-import    Import config from a TOML file
  install-service  Install as system service (launchd on macOS)
  version          Print version information
  help             Show this help message

Options:
  --foreground     Run in foreground (with 'serve')
  --yes            Skip confirmation prompt (with 'reset')`)
}
