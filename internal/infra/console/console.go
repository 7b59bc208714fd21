// Package console provides a line based hotkey registrar reading from a terminal.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/radiotray/internal/app/hotkey"
)

// Console turns input lines into hotkey activations and station selections.
// A line is matched against registered key sequences and command names ignoring case;
// a bare number selects that station, counting from 1.
type Console struct {
	registry *hotkey.Registry
	in       io.Reader
	out      io.Writer

	mu        sync.Mutex
	onStation func(index int) error
	onList    func() []string
}

// New creates a console reading lines from in and writing replies to out.
func New(in io.Reader, out io.Writer) *Console {
	return &Console{
		registry: hotkey.NewRegistry(),
		in:       in,
		out:      out,
	}
}

// Register implements hotkey.Registrar.
func (c *Console) Register(keys string, onActivate func()) error {
	return c.registry.Register(keys, onActivate)
}

// OnStation sets the handler for station numbers. index is zero based.
func (c *Console) OnStation(fn func(index int) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStation = fn
}

// OnList sets the provider of the lines printed by "list".
func (c *Console) OnList(fn func() []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onList = fn
}

// Run reads lines until ctx is done or the input ends.
func (c *Console) Run(ctx context.Context) error {
	lines := make(chan string)
	errCh := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errCh <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errCh:
					if err != nil {
						return errors.Wrap(err, "failed to read input")
					}
				default:
				}
				zlog.Debug().Msg("console: input closed")
				return nil
			}
			c.Handle(line)
		}
	}
}

// Handle processes one input line. It returns false if the line was not understood.
func (c *Console) Handle(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}

	if c.registry.Trigger(line) {
		return true
	}

	switch strings.ToLower(line) {
	case "help", "?":
		c.printHelp()
		return true
	case "list", "ls":
		c.printList()
		return true
	}

	if n, err := strconv.Atoi(line); err == nil {
		c.selectStation(n)
		return true
	}

	c.printf("unknown input %q, type \"help\"\n", line)
	return false
}

func (c *Console) selectStation(n int) {
	c.mu.Lock()
	fn := c.onStation
	c.mu.Unlock()

	if fn == nil {
		return
	}
	if err := fn(n - 1); err != nil {
		zlog.Warn().Err(err).Msgf("console: station %d", n)
		c.printf("cannot select station %d: %v\n", n, err)
	}
}

func (c *Console) printList() {
	c.mu.Lock()
	fn := c.onList
	c.mu.Unlock()

	if fn == nil {
		return
	}
	for _, l := range fn() {
		c.printf("%s\n", l)
	}
}

func (c *Console) printHelp() {
	c.printf("keys: %s\n", strings.Join(c.registry.Keys(), ", "))
	c.printf("<number>: select station, list: show stations\n")
}

func (c *Console) printf(format string, args ...any) {
	if c.out == nil {
		return
	}
	fmt.Fprintf(c.out, format, args...)
}
