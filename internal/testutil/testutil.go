// Package testutil provides shared fixtures and skip helpers for tests.
//
// Skip helpers call t.Skip with a clear human-readable reason when the named
// prerequisite is absent, so integration tests remain runnable in partial
// environments without failing noisily.
//
// Typical usage:
//
//	func TestMyIntegration(t *testing.T) {
//	    path := testutil.RequireCoNLLCorpus(t)
//	    ...
//	}
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/example/go-nertags/internal/vocab"
)

// CorpusEnv names the environment variable pointing at a real CoNLL file.
const CorpusEnv = "NERTAGS_CONLL_PATH"

// SampleCoNLL is a small CoNLL-2003 excerpt: two sentences, tags ORG, MISC
// and PER, and untagged tokens.
const SampleCoNLL = `-DOCSTART- -X- -X- O

EU NNP B-NP B-ORG
rejects VBZ B-VP O
German JJ B-NP B-MISC
call NN I-NP O
. . O O

Peter NNP B-NP B-PER
Blackburn NNP I-NP I-PER
`

// RequireCoNLLCorpus skips the test unless CorpusEnv names a readable file
// and returns its path.
func RequireCoNLLCorpus(tb testing.TB) string {
	tb.Helper()

	path := os.Getenv(CorpusEnv)
	if path == "" {
		tb.Skipf("%s not set; skipping corpus test", CorpusEnv)
	}

	if _, err := os.Stat(path); err != nil {
		tb.Skipf("CoNLL corpus not available at %s=%q: %v", CorpusEnv, path, err)
	}

	return path
}

// WriteFile writes content to name inside a fresh temp dir and returns the path.
func WriteFile(tb testing.TB, name, content string) string {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		tb.Fatalf("write %s: %v", name, err)
	}

	return path
}

// WriteSampleCoNLL writes SampleCoNLL to a temp file.
func WriteSampleCoNLL(tb testing.TB) string {
	tb.Helper()
	return WriteFile(tb, "sample.conll", SampleCoNLL)
}

// WriteVocab saves a vocabulary holding tags, in order, under namespace and
// returns its directory.
func WriteVocab(tb testing.TB, namespace string, tags ...string) string {
	tb.Helper()

	v := vocab.New()
	for _, tag := range tags {
		v.AddToken(namespace, tag)
	}

	dir := filepath.Join(tb.TempDir(), "vocab")
	if err := v.SaveToDir(dir); err != nil {
		tb.Fatalf("save vocabulary: %v", err)
	}

	return dir
}
