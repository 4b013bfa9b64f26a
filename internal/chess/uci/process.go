package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
)

var errStreamClosed = errors.New("engine output closed")

// process is one engine subprocess. It is used by a single request and then torn down.
type process struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	mu     sync.Mutex
	closed bool
}

func spawn(ctx context.Context, binaryPath string, args []string) (*process, error) {
	cmd := exec.CommandContext(ctx, binaryPath, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdin pipe: %w", err)
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		stdin.Close()
		stdoutPipe.Close()
		return nil, fmt.Errorf("start engine: %w", err)
	}
	return &process{
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewReader(stdoutPipe),
	}, nil
}

func (p *process) send(line string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return errStreamClosed
	}
	_, err := io.WriteString(p.stdin, line+"\n")
	return err
}

// awaitBestMove reads until a line carrying the bestmove token. Every other line is ignored.
func (p *process) awaitBestMove(ctx context.Context) (string, error) {
	for {
		line, err := p.readLine(ctx)
		if line != "" {
			if move, found := parseBestMove(line); found {
				if move == "" {
					return "", ErrNoBestMove
				}
				return move, nil
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", errStreamClosed
			}
			return "", err
		}
	}
}

func (p *process) readLine(ctx context.Context) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)

	go func() {
		line, err := p.stdout.ReadString('\n')
		ch <- result{line: strings.TrimSpace(line), err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		return res.line, res.err
	}
}

// close ends the subprocess and reaps it. Safe to call more than once.
func (p *process) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true

	_ = p.stdin.Close()
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	_ = p.cmd.Wait()
}

// parseBestMove reports whether line carries the bestmove token and, if so, the move after it.
// "(none)" and a missing move both yield an empty move.
func parseBestMove(line string) (string, bool) {
	fields := strings.Fields(line)
	for i, f := range fields {
		if f != "bestmove" {
			continue
		}
		if i+1 >= len(fields) || fields[i+1] == "(none)" {
			return "", true
		}
		return fields[i+1], true
	}
	return "", false
}
