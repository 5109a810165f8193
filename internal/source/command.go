package source

import (
	"bufio"
	"context"
	"os/exec"
	"strings"
	"sync"

	"github.com/creack/pty"
	"github.com/olekukonko/errors"
)

// LoadCommand runs command through the shell on a pseudo terminal and parses
// its output as CSV (default) or JSON. Tools that only colour or align
// output for terminals behave as they would interactively.
func LoadCommand(ctx context.Context, command string, format Kind, jsonPath string) (*Result, error) {
	if strings.TrimSpace(command) == "" {
		return nil, errors.New("no command given")
	}
	lines, err := runCommand(ctx, command)
	if err != nil {
		return nil, err
	}
	output := strings.Join(lines, "\n")
	if format == KindJSON {
		return ReadJSON([]byte(output), jsonPath)
	}
	return ReadCSV(strings.NewReader(output))
}

func runCommand(ctx context.Context, command string) ([]string, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return nil, errors.Newf("start %q", command).Wrap(err)
	}
	defer ptmx.Close()

	var lines []string
	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(ptmx)
		scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
		}
	}()

	wg.Wait()
	if err := cmd.Wait(); err != nil {
		return nil, errors.Newf("command %q failed", command).Wrap(err)
	}
	return lines, nil
}
