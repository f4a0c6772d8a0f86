package markov

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// maxLineLength bounds a single training line, so one giant line cannot
// exhaust memory.
const maxLineLength = 1 << 20

// Train reads data line by line and parses every non-empty, trimmed line as a
// sentence. It returns the number of lines parsed. If ctx is cancelled, Train
// stops between lines; everything parsed so far stays in the chain.
func (c *Chain) Train(ctx context.Context, data io.Reader) (int, error) {
	scanner := bufio.NewScanner(data)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	textletsBefore, edgesBefore := c.NumTextlets(), c.NumEdges()

	var lines int
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return lines, err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		c.ParseSentence(line)
		lines++
	}
	if err := scanner.Err(); err != nil {
		return lines, fmt.Errorf("reading training data: %w", err)
	}

	c.logger.InfoContext(ctx, "Training completed",
		slog.Int("lines_processed", lines),
		slog.Int("textlets_added", c.NumTextlets()-textletsBefore),
		slog.Int("edges_added", c.NumEdges()-edgesBefore),
	)
	return lines, nil
}
