package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"time"
)

// getStatus renders the REPL prompt suffix: the selected inspection and,
// while recording, the elapsed audio time.
func (a *App) getStatus() string {
	s := ""
	if a.currentID != "" {
		s = shortID(a.currentID)
	}
	if a.session.Recording() {
		elapsed := time.Duration(a.session.DurationMs()) * time.Millisecond
		s = fmt.Sprintf("%s rec %s", s, elapsed.Truncate(time.Second))
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (a *App) Root(ctx context.Context) {
	log.Println("Welcome to the sitescribe capture console (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
