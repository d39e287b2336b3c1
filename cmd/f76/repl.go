// File path: cmd/f76/repl.go
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rofenac/fo76-ml-db/internal/common"
	"github.com/rofenac/fo76-ml-db/internal/engine"
)

// runREPL drives a single interactive session against the engine. "clear"
// drops conversation history, "exit" or "quit" leaves the loop.
func runREPL(ctx context.Context, eng *engine.Engine) {
	logger := common.Logger()
	session := engine.NewSession()
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("Fallout 76 database assistant. Type a question, 'clear' to reset history, 'exit' to quit.")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		question := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(question) {
		case "":
			continue
		case "exit", "quit":
			return
		case "clear":
			session.Clear()
			fmt.Println("history cleared")
			continue
		}

		answer, method, err := eng.Ask(ctx, session, question)
		if err != nil {
			logger.Error("f76: question failed", "error", err)
			fmt.Println("error:", err)
			continue
		}
		fmt.Printf("[%s]\n%s\n\n", method, answer)
	}
}
