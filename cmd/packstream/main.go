package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/seuros/gopher-packstream/packstream"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "dump":
		err = dumpCommand(args)
	case "pack":
		err = packCommand(args)
	case "version", "--version", "-v":
		err = versionCommand()
	case "help", "--help", "-h":
		printUsage()
		return
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			if exitErr.Error() != "" {
				fmt.Fprintln(os.Stderr, exitErr.Error())
			}
			os.Exit(exitErr.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("packstream - PackStream codec inspection tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  packstream dump [--trace] [file]  - Trace markers/values in a PackStream byte stream (stdin if file omitted)")
	fmt.Println("  packstream pack [--trace]         - Read a JSON value from stdin, re-encode as PackStream to stdout")
	fmt.Println("  packstream version                - Show version information")
	fmt.Println()
	fmt.Println("  --trace  emit OpenTelemetry spans/metrics for each value to stderr")
}

func versionCommand() error {
	fmt.Printf("packstream version %s\n", packstream.Version)
	return nil
}
