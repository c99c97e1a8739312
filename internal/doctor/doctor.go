// Package doctor provides preflight checks for nertags.
package doctor

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/example/go-nertags/internal/vocab"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// Config holds injectable dependencies for each doctor check.
type Config struct {
	// IndexerType is the configured indexer name.
	IndexerType string
	// ValidateIndexer resolves IndexerType to its namespace.
	ValidateIndexer func(typ string) (namespace string, err error)
	// VocabDir is the vocabulary directory to load.
	VocabDir string
	// LoadVocab reads VocabDir; defaults to vocab.LoadFromDir.
	LoadVocab func(dir string) (*vocab.Vocabulary, error)
	// PaddingTag must be present in the indexer namespace when non-empty.
	PaddingTag string
	// DataPath is an optional data file to verify on disk.
	DataPath string
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

// AddFailure appends an external failure message to the result.
func (r *Result) AddFailure(msg string) { r.failures = append(r.failures, msg) }

func (r *Result) fail(w io.Writer, check string, err error) {
	r.failures = append(r.failures, fmt.Sprintf("%s: %v", check, err))
	fmt.Fprintf(w, "%s %s: %v\n", FailMark, check, err)
}

// Run executes all configured checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	// ---- indexer ----------------------------------------------------------
	namespace := ""
	if cfg.ValidateIndexer != nil {
		ns, err := cfg.ValidateIndexer(cfg.IndexerType)
		if err != nil {
			res.fail(w, "indexer", err)
		} else {
			namespace = ns
			fmt.Fprintf(w, "%s indexer: %s (namespace %s)\n", PassMark, cfg.IndexerType, ns)
		}
	}

	// ---- vocabulary -------------------------------------------------------
	load := cfg.LoadVocab
	if load == nil {
		load = vocab.LoadFromDir
	}
	v, err := load(cfg.VocabDir)
	if err != nil {
		res.fail(w, "vocabulary "+cfg.VocabDir, err)
	} else {
		fmt.Fprintf(w, "%s vocabulary: %s (%d namespaces)\n", PassMark, cfg.VocabDir, len(v.Namespaces()))
		checkNamespace(&res, w, v, namespace, cfg.PaddingTag)
	}

	// ---- data file --------------------------------------------------------
	if cfg.DataPath == "" {
		fmt.Fprintf(w, "%s data file: skipped (none configured)\n", PassMark)
	} else if _, err := os.Stat(cfg.DataPath); err != nil {
		res.fail(w, "data file "+cfg.DataPath, err)
	} else {
		fmt.Fprintf(w, "%s data file: %s\n", PassMark, cfg.DataPath)
	}

	return res
}

func checkNamespace(res *Result, w io.Writer, v *vocab.Vocabulary, ns, paddingTag string) {
	if ns == "" {
		return
	}
	if !slices.Contains(v.Namespaces(), ns) {
		res.fail(w, "namespace "+ns, fmt.Errorf("not present in vocabulary"))
		return
	}
	fmt.Fprintf(w, "%s namespace %s: %d entries\n", PassMark, ns, v.Size(ns))

	if paddingTag == "" || v.IsPadded(ns) {
		return
	}
	if _, err := v.TokenIndex(ns, paddingTag); err != nil {
		res.fail(w, "padding tag "+paddingTag, err)
		return
	}
	fmt.Fprintf(w, "%s padding tag %s: present\n", PassMark, paddingTag)
}
