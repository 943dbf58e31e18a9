// Package logtail reads the end of a log file and follows appended lines.
package logtail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/zulandar/retromgr/internal/logging"
)

const blockSize = 4096

// Tail returns the last n lines of the file at path, oldest first.
func Tail(path string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("logtail: open: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("logtail: stat: %w", err)
	}
	return tailReader(f, info.Size(), n)
}

// tailReader reads blocks backwards from size until it has seen more than
// n line breaks or reached the start of the file.
func tailReader(r io.ReaderAt, size int64, n int) ([]string, error) {
	var buf []byte
	off := size
	for off > 0 && bytes.Count(buf, []byte{'\n'}) <= n {
		step := min(int64(blockSize), off)
		off -= step
		block := make([]byte, step)
		if _, err := r.ReadAt(block, off); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("logtail: read: %w", err)
		}
		buf = append(block, buf...)
	}

	text := strings.TrimSuffix(string(buf), "\n")
	if text == "" {
		return nil, nil
	}
	lines := strings.Split(text, "\n")
	if off > 0 {
		// first line is partial
		lines = lines[1:]
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines, nil
}

// Follow calls fn for every complete line appended to path after the call,
// until ctx is cancelled. A truncated or recreated file is read again from
// the start.
func Follow(ctx context.Context, path string, fn func(line string)) error {
	return follow(ctx, path, nil, fn)
}

type follower struct {
	path    string
	offset  int64
	partial []byte
	fn      func(string)
}

func follow(ctx context.Context, path string, ready func(), fn func(string)) error {
	log := logging.WithComponent("logtail")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("logtail: new watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	// Watch the directory so rotation and late creation are seen.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("logtail: watch %s: %w", dir, err)
	}

	fl := &follower{path: path, fn: fn}
	if info, err := os.Stat(path); err == nil {
		fl.offset = info.Size()
	}
	if ready != nil {
		ready()
	}

	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("logtail: watcher closed")
			}
			if filepath.Clean(evt.Name) != target {
				continue
			}
			switch {
			case evt.Has(fsnotify.Create):
				fl.reset()
				fl.read()
			case evt.Has(fsnotify.Write):
				fl.read()
			case evt.Has(fsnotify.Remove), evt.Has(fsnotify.Rename):
				fl.reset()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("logtail: watcher closed")
			}
			log.Warn().Err(err).Str("path", path).Msg("fsnotify watcher error")
		}
	}
}

func (f *follower) reset() {
	f.offset = 0
	f.partial = nil
}

func (f *follower) read() {
	fh, err := os.Open(f.path)
	if err != nil {
		return
	}
	defer fh.Close()
	info, err := fh.Stat()
	if err != nil {
		return
	}
	if info.Size() < f.offset {
		f.reset()
	}
	if info.Size() == f.offset {
		return
	}
	data := make([]byte, info.Size()-f.offset)
	n, err := fh.ReadAt(data, f.offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return
	}
	f.offset += int64(n)

	data = append(f.partial, data[:n]...)
	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		f.fn(strings.TrimSuffix(string(data[:i]), "\r"))
		data = data[i+1:]
	}
	f.partial = append([]byte(nil), data...)
}
