package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dmitrijs2005/sitescribe/internal/analysis"
	"github.com/dmitrijs2005/sitescribe/internal/config"
)

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  analyze run <inspection-id>    transcribe and caption an inspection")
	fmt.Fprintln(os.Stderr, "  analyze retry <photo-id>       regenerate one photo caption")
	fmt.Fprintln(os.Stderr, "  analyze reconcile              re-enqueue and push unsynced evidence")
}

// positionals strips flag tokens (and their values) from args, leaving
// the subcommand and its arguments. Config flags are parsed separately.
func positionals(args []string) []string {
	var out []string
	skip := false
	for _, a := range args {
		if skip {
			skip = false
			continue
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") {
				skip = true
			}
			continue
		}
		out = append(out, a)
	}
	return out
}

func main() {

	cfg := config.LoadConfig()

	args := positionals(os.Args[1:])
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	app, err := analysis.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer app.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch args[0] {
	case "run":
		if len(args) < 2 {
			usage()
			os.Exit(2)
		}
		err = app.RunAnalysis(ctx, args[1])
	case "retry":
		if len(args) < 2 {
			usage()
			os.Exit(2)
		}
		err = app.RetryCaption(ctx, args[1])
	case "reconcile":
		err = app.Reconcile(ctx)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatalf("%v", err)
	}
}
