package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const (
	pollInterval  = 250 * time.Millisecond
	followWait    = time.Second
	maxLineLength = 1024 * 1024
)

// TailOptions controls what Tail reads.
type TailOptions struct {
	// Offset is the byte position to resume from. Negative means start from
	// the last Limit lines.
	Offset int64
	Limit  int
	Follow bool
	Wait   time.Duration
	// Match keeps only lines containing this substring, typically a run ID.
	Match string
}

// TailResult holds the lines read and the offset to resume from.
type TailResult struct {
	Lines  []string
	Offset int64
}

// Tail reads lines from the log at path. A missing file yields no lines.
func Tail(ctx context.Context, path string, opts TailOptions) (TailResult, error) {
	result := TailResult{Offset: opts.Offset}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			result.Offset = 0
			return result, nil
		}
		return result, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return result, fmt.Errorf("log path %q is a directory", path)
	}
	if opts.Wait < 0 {
		opts.Wait = 0
	}

	offset := opts.Offset
	if offset < 0 {
		lines, end, err := readLastLines(path, opts.Limit, opts.Match)
		if err != nil {
			return result, err
		}
		if len(lines) > 0 || !opts.Follow {
			return TailResult{Lines: lines, Offset: end}, nil
		}
		offset = end
	} else if offset > info.Size() {
		// Truncated or rotated underneath us; start over from the end.
		offset = info.Size()
	}

	lines, end, err := readForward(path, offset, opts.Match)
	if err != nil {
		return result, err
	}
	if len(lines) > 0 || !opts.Follow || opts.Wait == 0 {
		return TailResult{Lines: lines, Offset: end}, nil
	}
	return waitForLines(ctx, path, end, opts.Wait, opts.Match)
}

// Follow prints the last opts.Limit lines and then every new line until ctx
// is done. It returns nil when ctx is canceled.
func Follow(ctx context.Context, path string, opts TailOptions, emit func(string)) error {
	opts.Offset = -1
	opts.Follow = false
	result, err := Tail(ctx, path, opts)
	if err != nil {
		return err
	}
	for {
		for _, line := range result.Lines {
			emit(line)
		}
		if len(result.Lines) == 0 {
			// The file may not exist yet, in which case Tail returns at once.
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(pollInterval):
			}
		}
		result, err = Tail(ctx, path, TailOptions{
			Offset: result.Offset,
			Follow: true,
			Wait:   followWait,
			Match:  opts.Match,
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
	}
}

func matches(line, match string) bool {
	return match == "" || strings.Contains(line, match)
}

func readLastLines(path string, limit int, match string) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if limit <= 0 {
		end, err := file.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, 0, fmt.Errorf("seek log file: %w", err)
		}
		return nil, end, nil
	}

	scanner := newScanner(file)
	ring := make([]string, limit)
	count, next := 0, 0
	for scanner.Scan() {
		line := scanner.Text()
		if !matches(line, match) {
			continue
		}
		ring[next] = line
		next = (next + 1) % limit
		if count < limit {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read log file: %w", err)
	}
	end, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, 0, fmt.Errorf("seek log file: %w", err)
	}

	lines := make([]string, count)
	if count == limit {
		for i := range count {
			lines[i] = ring[(next+i)%limit]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, end, nil
}

// readForward returns complete lines after offset. A trailing partial line
// is left for the next call so a writer mid-line is never split.
func readForward(path string, offset int64, match string) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, 0, fmt.Errorf("seek log file: %w", err)
	}

	reader := bufio.NewReaderSize(file, 64*1024)
	var lines []string
	for {
		chunk, err := reader.ReadString('\n')
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read log file: %w", err)
		}
		offset += int64(len(chunk))
		line := strings.TrimRight(chunk, "\r\n")
		if matches(line, match) {
			lines = append(lines, line)
		}
	}
	return lines, offset, nil
}

func waitForLines(ctx context.Context, path string, offset int64, wait time.Duration, match string) (TailResult, error) {
	deadline := time.Now().Add(wait)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return TailResult{Offset: offset}, ctx.Err()
		case <-ticker.C:
		}

		lines, end, err := readForward(path, offset, match)
		if err != nil {
			return TailResult{Offset: offset}, err
		}
		offset = end
		if len(lines) > 0 || time.Now().After(deadline) {
			return TailResult{Lines: lines, Offset: offset}, nil
		}
	}
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	return scanner
}
