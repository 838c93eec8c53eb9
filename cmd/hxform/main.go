package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/pthm/hxform"
	"github.com/pthm/hxform/cmd/hxform/internal/script"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "replay":
		if err := runReplay(args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("hxform version %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`hxform - form state engine for HTMX

Usage:
  hxform <command> [arguments]

Commands:
  replay <script.yaml>  Replay a form script and print the final state
  version               Print version
  help                  Show this help

Options for replay:
  --dump                Dump the state after every event
  --verbose             Log every commit to stderr

Examples:
  hxform replay signup.yaml          Print the final state as JSON
  hxform replay --dump signup.yaml   Dump every intermediate state`)
}

func runReplay(args []string) error {
	var dump, verbose bool
	var path string

	for _, arg := range args {
		switch arg {
		case "--dump":
			dump = true
		case "--verbose":
			verbose = true
		default:
			if path != "" {
				return fmt.Errorf("unexpected argument: %s", arg)
			}
			path = arg
		}
	}
	if path == "" {
		return fmt.Errorf("missing script path")
	}

	s, err := script.Load(path)
	if err != nil {
		return err
	}

	var opts []hxform.Option
	if verbose {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		opts = append(opts, hxform.WithLogger(logger))
	}

	steps, err := s.Replay(opts...)
	if dump {
		for i, step := range steps {
			fmt.Printf("--- %d: %s %s\n", i+1, step.Event.Event, step.Event.Field)
			spew.Dump(step.State)
		}
	}
	if err != nil {
		return err
	}
	if dump || len(steps) == 0 {
		return nil
	}

	out := struct {
		State     hxform.FormState `json:"state"`
		Submitted []map[string]any `json:"submitted,omitempty"`
	}{State: steps[len(steps)-1].State}
	for _, step := range steps {
		if step.Submitted != nil {
			out.Submitted = append(out.Submitted, step.Submitted)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
