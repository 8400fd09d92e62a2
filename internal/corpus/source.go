package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Source yields raw corpus documents.
type Source interface {
	Load() ([]RawItem, error)
}

// FileSource reads one document per line from a text or JSONL file.
// Lines starting with "{" are parsed as JSON objects with a "text"
// field; anything else is taken verbatim.
type FileSource struct {
	Path string
}

// Load reads every document in the file, preserving order.
func (f FileSource) Load() ([]RawItem, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open corpus file: %w", err)
	}
	defer file.Close()

	var items []RawItem
	sc := bufio.NewScanner(file)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(line), "{") {
			var it RawItem
			if err := json.Unmarshal([]byte(line), &it); err != nil {
				return nil, fmt.Errorf("parse line %d: %w", lineNo, err)
			}
			items = append(items, it)
			continue
		}
		items = append(items, RawItem{Text: line})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read corpus file: %w", err)
	}
	return items, nil
}

// SliceSource serves an in-memory document list. Used by tests and
// programmatic callers.
type SliceSource []RawItem

func (s SliceSource) Load() ([]RawItem, error) {
	return []RawItem(s), nil
}
