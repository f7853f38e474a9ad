// Package terminal adapts a line-oriented reader and writer, usually stdin and
// stdout, to the game's input/output boundary.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"io"
	"sync"
)

// Terminal reads one line per ReadLine call. Reads happen on a background
// goroutine so a pending read can be abandoned when the context ends. The
// goroutine exits at end of input or on Close.
type Terminal struct {
	in     *bufio.Scanner
	out    io.Writer
	once   sync.Once
	lines  chan string
	done   chan struct{}
	exited chan struct{}
	closed sync.Once
	err    error // set before lines is closed
}

func New(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{
		in:     bufio.NewScanner(in),
		out:    out,
		lines:  make(chan string),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
}

func (t *Terminal) start() {
	go func() {
		defer close(t.exited)
		defer close(t.lines)
		for t.in.Scan() {
			select {
			case t.lines <- t.in.Text():
			case <-t.done:
				t.err = ErrClosed
				return
			}
		}
		t.err = t.in.Err()
		if t.err == nil {
			t.err = io.EOF
		}
	}()
}

// ErrClosed is returned by ReadLine after Close.
var ErrClosed = errors.New("terminal closed")

func (t *Terminal) ReadLine(ctx context.Context) (string, error) {
	select {
	case <-t.done:
		return "", ErrClosed
	default:
	}
	t.once.Do(t.start)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-t.done:
		return "", ErrClosed
	case text, ok := <-t.lines:
		if !ok {
			return "", t.err
		}
		return text, nil
	}
}

// Close releases the reader goroutine once its current read returns. A read
// blocked on the underlying reader cannot be interrupted.
func (t *Terminal) Close() error {
	t.closed.Do(func() { close(t.done) })
	return nil
}

func (t *Terminal) Print(text string) error {
	_, err := io.WriteString(t.out, text)
	return err
}
