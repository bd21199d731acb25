package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	hasInspection() bool
	NewInspection(ctx context.Context) error
	StartRecording(ctx context.Context) error
	Photo(ctx context.Context) error
	Finish(ctx context.Context) error
	List(ctx context.Context) error
	Open(ctx context.Context, id string) error
	Delete(ctx context.Context) error
	Sync(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the capture console.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Commands:
//
//	No inspection selected:
//	  - help           — show available commands
//	  - new            — create an inspection
//	  - list           — list stored inspections
//	  - open <id>      — select an existing inspection
//	  - exit | quit    — leave the program
//
//	Inspection selected:
//	  - help           — show available commands
//	  - start          — begin the continuous audio recording
//	  - photo          — photograph evidence (stamped with audio time)
//	  - finish         — stop recording and store the audio
//	  - delete         — remove the inspection and its photos
//	  - sync           — push pending evidence to the remote now
//	  - exit | quit    — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("scribe> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.hasInspection() {
				printlnFn("Available commands: start, photo, finish, list, delete, sync, exit")
			} else {
				printlnFn("Available commands: new, list, open <id>, exit")
			}

		case "new":
			_ = a.NewInspection(ctx)

		case "open":
			if len(args) == 0 {
				printlnFn("Usage: open <id>")
				continue
			}
			_ = a.Open(ctx, args[0])

		case "start":
			_ = a.StartRecording(ctx)

		case "photo":
			_ = a.Photo(ctx)

		case "finish":
			_ = a.Finish(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "delete":
			_ = a.Delete(ctx)

		case "sync":
			_ = a.Sync(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
