package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sih-agent/backend/internal/guard"
)

var exitPhrases = []string{"quit", "exit", "bye", "stop"}

// Loop drives the turn-taking protocol over a line-based surface: read one
// line, gate it, answer it, print the answer or the rejection reason, repeat.
// A fixed set of exit phrases terminates the session.
type Loop struct {
	session *Session
	in      io.Reader
	out     io.Writer
}

func NewLoop(session *Session, in io.Reader, out io.Writer) *Loop {
	return &Loop{session: session, in: in, out: out}
}

func (l *Loop) Run(ctx context.Context) error {
	fmt.Fprintln(l.out, strings.Repeat("=", 60))
	fmt.Fprintln(l.out, "SIH CHATBOT - Ask about Smart India Hackathon")
	fmt.Fprintln(l.out, "Type 'quit' to exit | Max: 150 tokens, 800 characters")
	fmt.Fprintln(l.out, strings.Repeat("=", 60))

	scanner := bufio.NewScanner(l.in)
	scanner.Buffer(make([]byte, 64*1024), 64*1024)

	// Reading happens in its own goroutine so an interrupt ends the session
	// immediately instead of waiting for the next line.
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}

		fmt.Fprint(l.out, "\nYou: ")

		var line string
		var open bool
		select {
		case <-ctx.Done():
			fmt.Fprintln(l.out)
			return nil
		case line, open = <-lines:
			if !open {
				// EOF or read failure ends the session.
				fmt.Fprintln(l.out)
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if isExitPhrase(input) {
			fmt.Fprintln(l.out, "Thank you for using SIH Chatbot!")
			return nil
		}

		answer, err := l.session.Ask(ctx, input)
		if err != nil {
			var rej *guard.Rejection
			if errors.As(err, &rej) {
				fmt.Fprintf(l.out, "%s\n", rej.Message)
			} else {
				fmt.Fprintln(l.out, "Something went wrong. Please try again with a different question.")
			}
			continue
		}

		fmt.Fprintf(l.out, "\nBot: %s\n", answer)
	}
}

func isExitPhrase(input string) bool {
	lower := strings.ToLower(input)
	for _, phrase := range exitPhrases {
		if lower == phrase {
			return true
		}
	}
	return false
}
