package patch

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pmezard/go-difflib/difflib"
	sgdiff "github.com/sourcegraph/go-diff/diff"
)

// DiffStats captures basic statistics about a unified-diff output.
type DiffStats struct {
	FilesChanged int
	Insertions   int
	Deletions    int
	Hunks        int
}

// DiffResult holds a generated unified diff plus its statistics.
type DiffResult struct {
	Patch string
	Stats DiffStats
}

var ErrNoChange = errors.New("no change between old and new")

// GenerateDiff produces a GNU unified diff between two fragment revisions.
func GenerateDiff(old, new []byte, path string, contextLines int) (DiffResult, error) {
	if bytes.Equal(old, new) {
		return DiffResult{}, ErrNoChange
	}
	if path == "" {
		path = "fragment"
	}
	if contextLines <= 0 {
		contextLines = 3
	}

	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(old)),
		B:        difflib.SplitLines(string(new)),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  contextLines,
	}
	patch, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return DiffResult{}, fmt.Errorf("diff generation: %w", err)
	}

	stats := DiffStats{FilesChanged: 1}
	for _, l := range strings.Split(patch, "\n") {
		switch {
		case strings.HasPrefix(l, "@@"):
			stats.Hunks++
		case strings.HasPrefix(l, "+") && !strings.HasPrefix(l, "+++"):
			stats.Insertions++
		case strings.HasPrefix(l, "-") && !strings.HasPrefix(l, "---"):
			stats.Deletions++
		}
	}
	return DiffResult{Patch: patch, Stats: stats}, nil
}

type action string

const (
	actionDelete action = "delete"
	actionMove   action = "move"
	actionUpdate action = "update"
	actionAdd    action = "add"
)

type rollbackEntry struct {
	action   action
	path     string // primary path affected, relative to the session root
	auxPath  string // destination for move, otherwise ""
	tempCopy string // unique snapshot path
}

// Session applies edits to fragment sources transactionally.  Every mutating
// call stores its own backup snapshot, so the same fragment may be patched
// several times within a session and Rollback still restores the pre-session
// content.
type Session struct {
	ID        string
	root      string
	tempDir   string
	rollbacks []rollbackEntry
	committed bool
	mu        sync.Mutex // guards committed flag and rollbacks slice
}

// NewSession creates a patch session scoped to the fragment root directory.
// Paths passed to the session operations are resolved relative to root.
func NewSession(root string) (*Session, error) {
	if root == "" {
		root = "."
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("fragment root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("fragment root %s is not a directory", root)
	}
	tmp, err := os.MkdirTemp("", "decker-patch-*")
	if err != nil {
		return nil, err
	}
	return &Session{ID: filepath.Base(tmp), root: root, tempDir: tmp}, nil
}

func (s *Session) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.root, path)
}

// backup stores one snapshot per invocation using a timestamp suffix so that
// repeated edits of the same fragment never overwrite the original snapshot.
func (s *Session) backup(path string) (string, error) {
	data, err := os.ReadFile(s.abs(path))
	if err != nil {
		return "", err
	}
	rel := strings.TrimPrefix(path, string(os.PathSeparator))
	unique := fmt.Sprintf("%s.%d.bak", rel, time.Now().UnixNano())
	dst := filepath.Join(s.tempDir, unique)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", err
	}
	return dst, nil
}

func (s *Session) assertActive() error {
	if s.committed {
		return errors.New("session already committed")
	}
	return nil
}

// Delete removes a fragment source.
func (s *Session) Delete(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.assertActive(); err != nil {
		return err
	}
	if _, err := os.Stat(s.abs(path)); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	backup, err := s.backup(path)
	if err != nil {
		return err
	}
	if err := os.Remove(s.abs(path)); err != nil {
		return err
	}
	s.rollbacks = append(s.rollbacks, rollbackEntry{action: actionDelete, path: path, tempCopy: backup})
	return nil
}

// Move renames a fragment source, e.g. when a topic identifier changes.
func (s *Session) Move(src, dst string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.assertActive(); err != nil {
		return err
	}
	if _, err := os.Stat(s.abs(src)); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.abs(dst)), 0o755); err != nil {
		return err
	}
	if err := os.Rename(s.abs(src), s.abs(dst)); err != nil {
		return err
	}
	s.rollbacks = append(s.rollbacks, rollbackEntry{action: actionMove, path: src, auxPath: dst})
	return nil
}

// Update replaces a fragment source's content.
func (s *Session) Update(path string, newData []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.assertActive(); err != nil {
		return err
	}
	if _, err := os.Stat(s.abs(path)); err != nil {
		return err
	}
	backup, err := s.backup(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.abs(path), newData, 0o644); err != nil {
		return err
	}
	s.rollbacks = append(s.rollbacks, rollbackEntry{action: actionUpdate, path: path, tempCopy: backup})
	return nil
}

// Add creates a new fragment source; it fails when the path already exists.
func (s *Session) Add(path string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.assertActive(); err != nil {
		return err
	}
	if _, err := os.Stat(s.abs(path)); err == nil {
		return fmt.Errorf("add: file %s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(s.abs(path)), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(s.abs(path), data, 0o644); err != nil {
		return err
	}
	s.rollbacks = append(s.rollbacks, rollbackEntry{action: actionAdd, path: path})
	return nil
}

// Rollback restores every touched fragment to its pre-session content, in
// reverse order of modification.
func (s *Session) Rollback() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.rollbacks) - 1; i >= 0; i-- {
		r := s.rollbacks[i]
		switch r.action {
		case actionDelete, actionUpdate:
			data, err := os.ReadFile(r.tempCopy)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(s.abs(r.path)), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(s.abs(r.path), data, 0o644); err != nil {
				return err
			}
		case actionMove:
			if err := os.Rename(s.abs(r.auxPath), s.abs(r.path)); err != nil {
				return err
			}
		case actionAdd:
			if err := os.Remove(s.abs(r.path)); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("rollback add: %w", err)
			}
		}
	}
	if err := os.RemoveAll(s.tempDir); err != nil {
		return fmt.Errorf("rollback cleanup: %w", err)
	}
	s.rollbacks = nil
	return nil
}

// Commit discards the snapshots and finalises the session; further mutating
// calls fail.
func (s *Session) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.committed {
		return nil
	}
	s.committed = true
	s.rollbacks = nil
	if err := os.RemoveAll(s.tempDir); err != nil {
		return fmt.Errorf("commit cleanup: %w", err)
	}
	return nil
}

// ApplyPatch applies a unified diff (as produced by git diff or GenerateDiff)
// to the session's fragment sources.  File creations, deletions, renames and
// in-place updates are supported; every context and delete line is verified
// against the current content before anything is written.
func (s *Session) ApplyPatch(patchText string) error {
	mfd, err := sgdiff.ParseMultiFileDiff([]byte(patchText))
	if err != nil {
		return fmt.Errorf("parse patch: %w", err)
	}
	for _, fd := range mfd {
		orig := strings.TrimPrefix(fd.OrigName, "a/")
		newer := strings.TrimPrefix(fd.NewName, "b/")

		switch {
		case fd.NewName != "/dev/null" && fd.OrigName == "/dev/null":
			var buf bytes.Buffer
			if err := applyHunks(nil, fd.Hunks, &buf); err != nil {
				return err
			}
			if err := s.Add(newer, buf.Bytes()); err != nil {
				return err
			}
		case fd.NewName == "/dev/null" && fd.OrigName != "/dev/null":
			if err := s.Delete(orig); err != nil {
				return err
			}
		case orig != newer && len(fd.Hunks) == 0:
			if err := s.Move(orig, newer); err != nil {
				return err
			}
		default:
			oldData, err := os.ReadFile(s.abs(orig))
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := applyHunks(oldData, fd.Hunks, &buf); err != nil {
				return err
			}
			target := orig
			if orig != newer {
				if err := s.Move(orig, newer); err != nil {
					return err
				}
				target = newer
			}
			if err := s.Update(target, buf.Bytes()); err != nil {
				return err
			}
		}
	}
	return nil
}

// applyHunks applies diff hunks to oldData and writes the patched content to
// w.  It walks the original lines sequentially, verifies every context and
// delete line for consistency, and emits additions.  Any mismatch aborts
// with an error.
func applyHunks(oldData []byte, hunks []*sgdiff.Hunk, w io.Writer) error {
	oldLines := strings.SplitAfter(string(oldData), "\n")
	origIdx := 0 // 0-based index into oldLines

	linesEqual := func(a, b string) bool {
		if a == b {
			return true
		}
		// newline-at-EOF equivalence: SplitAfter leaves an empty string as
		// the last element whereas diff encodes it as a "\n" context line
		if (a == "" && b == "\n") || (a == "\n" && b == "") {
			return true
		}
		return false
	}

	for _, h := range hunks {
		targetIdx := int(h.OrigStartLine) - 1
		for origIdx < targetIdx && origIdx < len(oldLines) {
			if _, err := io.WriteString(w, oldLines[origIdx]); err != nil {
				return err
			}
			origIdx++
		}

		for _, hl := range strings.SplitAfter(string(h.Body), "\n") {
			if hl == "" {
				continue
			}
			tag := hl[0]
			line := hl[1:]

			switch tag {
			case ' ':
				if origIdx >= len(oldLines) || !linesEqual(oldLines[origIdx], line) {
					return fmt.Errorf("patch failed: context mismatch at original line %d", origIdx+1)
				}
				if !(oldLines[origIdx] == "" && line == "\n") {
					if _, err := io.WriteString(w, line); err != nil {
						return err
					}
				}
				origIdx++

			case '-':
				if origIdx >= len(oldLines) || !linesEqual(oldLines[origIdx], line) {
					return fmt.Errorf("patch failed: delete mismatch at original line %d", origIdx+1)
				}
				origIdx++

			case '+':
				if _, err := io.WriteString(w, line); err != nil {
					return err
				}

			case '\\': // "\ No newline at end of file"
				continue

			default:
				return fmt.Errorf("patch failed: unexpected hunk tag %q", tag)
			}
		}
	}

	// copy the untouched remainder
	for ; origIdx < len(oldLines); origIdx++ {
		if oldLines[origIdx] == "" {
			continue
		}
		if _, err := io.WriteString(w, oldLines[origIdx]); err != nil {
			return err
		}
	}
	return nil
}
