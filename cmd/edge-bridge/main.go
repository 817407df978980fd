package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}
	cmd := os.Args[1]
	switch cmd {
	case "agent":
		runAgent(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(2)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  edge-bridge agent -config config.yaml")
}

func parseAgentFlags(args []string) string {
	fs := flag.NewFlagSet("agent", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "Path to YAML config file")
	if err := fs.Parse(args); err != nil {
		slog.Error("parse flags", "err", err)
		os.Exit(2)
	}
	return *cfgPath
}
