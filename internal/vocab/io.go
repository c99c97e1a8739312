package vocab

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// NonPaddedNamespacesFile lists the non-padded patterns of a saved vocabulary.
const NonPaddedNamespacesFile = "non_padded_namespaces.txt"

const (
	namespaceExt   = ".txt"
	newlineEscape  = "@@NEWLINE@@"
	carriageEscape = "@@CARRIAGE_RETURN@@"
)

var (
	// ErrNotVocabDir is returned by LoadFromDir when dir holds no vocabulary.
	ErrNotVocabDir = errors.New("not a vocabulary directory")
	// ErrInvalidNamespace is returned by SaveToDir for namespaces that cannot
	// be stored as a file.
	ErrInvalidNamespace = errors.New("invalid namespace name")
)

var (
	lineEscaper   = strings.NewReplacer("\n", newlineEscape, "\r", carriageEscape)
	lineUnescaper = strings.NewReplacer(newlineEscape, "\n", carriageEscape, "\r")
)

// namespaceFile maps a namespace to its file name. Path separators and other
// unsafe bytes are percent-escaped.
func namespaceFile(ns string) (string, error) {
	name := url.PathEscape(ns) + namespaceExt
	if ns == "" || ns == "." || ns == ".." || name == NonPaddedNamespacesFile {
		return "", fmt.Errorf("%q: %w", ns, ErrInvalidNamespace)
	}
	return name, nil
}

// SaveToDir writes one <namespace>.txt file per namespace plus the
// non-padded pattern list. Implicit padding and OOV entries are not written.
// Namespace files left over from an earlier save are removed.
func (v *Vocabulary) SaveToDir(dir string) error {
	namespaces := v.Namespaces()
	files := make(map[string]string, len(namespaces))
	for _, ns := range namespaces {
		name, err := namespaceFile(ns)
		if err != nil {
			return err
		}
		files[name] = ns
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create vocabulary dir: %w", err)
	}

	if err := writeLines(filepath.Join(dir, NonPaddedNamespacesFile), v.NonPaddedNamespaces()); err != nil {
		return err
	}

	for name, ns := range files {
		tokens := v.Tokens(ns)
		if v.IsPadded(ns) && len(tokens) >= 2 {
			tokens = tokens[2:]
		}
		if err := writeLines(filepath.Join(dir, name), tokens); err != nil {
			return err
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read vocabulary dir: %w", err)
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == NonPaddedNamespacesFile || !strings.HasSuffix(name, namespaceExt) {
			continue
		}
		if _, ok := files[name]; ok {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("remove stale %s: %w", name, err)
		}
	}

	return nil
}

// LoadFromDir reads a vocabulary written by SaveToDir.
func LoadFromDir(dir string) (*Vocabulary, error) {
	patterns, err := readLines(filepath.Join(dir, NonPaddedNamespacesFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", dir, ErrNotVocabDir)
		}
		return nil, err
	}

	v := New(WithNonPaddedNamespaces(patterns...))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary dir: %w", err)
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == NonPaddedNamespacesFile || !strings.HasSuffix(name, namespaceExt) {
			continue
		}
		ns, err := url.PathUnescape(strings.TrimSuffix(name, namespaceExt))
		if err != nil {
			return nil, fmt.Errorf("namespace file %s: %w", name, err)
		}
		tags, err := readLines(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}

		v.mu.Lock()
		n := v.namespaceLocked(ns)
		for _, tag := range tags {
			n.add(tag)
		}
		v.mu.Unlock()
	}

	return v, nil
}

func writeLines(path string, lines []string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", filepath.Base(path), cerr)
		}
	}()

	w := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err := io.WriteString(w, lineEscaper.Replace(line)+"\n"); err != nil {
			return fmt.Errorf("write %s: %w", filepath.Base(path), err)
		}
	}
	return w.Flush()
}

// readLines has no line length limit. Written CRs are always escaped, so a
// raw trailing CR belongs to a CRLF line ending.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer func() { _ = f.Close() }()

	var lines []string
	r := bufio.NewReader(f)
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
			lines = append(lines, lineUnescaper.Replace(line))
		}
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
		}
	}
}
