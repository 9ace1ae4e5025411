// Package memory is the append-only store of goal+answer pairs, one
// subdirectory per category. The dispatcher reads a small recent window
// when building prompts; the merger appends the final answer after a run.
package memory

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Record is one stored goal+answer pair.
type Record struct {
	Goal      string    `json:"goal"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}

// Store manages the category directories under the memory root.
type Store struct {
	dir string
}

// NewStore creates a memory store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

const recordsFile = "records.jsonl"

// Append adds one record to a category, creating the category directory on
// first use. Records are JSON lines; existing records are never rewritten.
func (s *Store) Append(category string, rec Record) error {
	if category == "" {
		return fmt.Errorf("category must not be empty")
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	catDir := filepath.Join(s.dir, category)
	if err := os.MkdirAll(catDir, 0755); err != nil {
		return fmt.Errorf("failed to create category directory: %w", err)
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(catDir, recordsFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open records file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to append record: %w", err)
	}
	return nil
}

// Recent returns the last n records of a category, oldest first. A missing
// category yields no records and no error.
func (s *Store) Recent(category string, n int) ([]Record, error) {
	if n <= 0 {
		return nil, nil
	}
	f, err := os.Open(filepath.Join(s.dir, category, recordsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			continue // skip corrupt lines rather than losing the whole file
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(records) > n {
		records = records[len(records)-n:]
	}
	return records, nil
}

// Categories lists the existing category names, sorted.
func (s *Store) Categories() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var cats []string
	for _, e := range entries {
		if e.IsDir() {
			cats = append(cats, e.Name())
		}
	}
	sort.Strings(cats)
	return cats, nil
}

// Clear removes a category and everything in it.
func (s *Store) Clear(category string) error {
	if category == "" || strings.Contains(category, string(filepath.Separator)) || category == ".." {
		return fmt.Errorf("invalid category name %q", category)
	}
	return os.RemoveAll(filepath.Join(s.dir, category))
}

// Window formats the last n records of a category as prompt context. An
// empty window returns the empty string.
func (s *Store) Window(category string, n int) string {
	records, err := s.Recent(category, n)
	if err != nil || len(records) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, rec := range records {
		sb.WriteString(fmt.Sprintf("Q: %s\nA: %s\n\n", rec.Goal, rec.Answer))
	}
	return strings.TrimSpace(sb.String())
}
