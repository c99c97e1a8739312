package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/go-nertags/internal/testutil"
)

func TestVocabBuild_WritesNerTags(t *testing.T) {
	data := testutil.WriteSampleCoNLL(t)
	dir := filepath.Join(t.TempDir(), "vocab")

	out, err := runCLI(t, "vocab", "build", data, "--vocab-dir", dir)
	if err != nil {
		t.Fatalf("vocab build: %v\n%s", err, out)
	}

	if !strings.Contains(out, "ner_tags: 4 entries from 2 sentences") {
		t.Errorf("unexpected output: %q", out)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "ner_tags.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	// NONE x3, PER x2, then MISC and ORG once each.
	if string(raw) != "NONE\nPER\nMISC\nORG\n" {
		t.Errorf("ner_tags.txt = %q", raw)
	}
}

func TestVocabBuild_MinCountAndNamespace(t *testing.T) {
	data := testutil.WriteSampleCoNLL(t)
	dir := filepath.Join(t.TempDir(), "vocab")

	_, err := runCLI(t, "vocab", "build", "--data", data, "--vocab-dir", dir,
		"--namespace", "entity_tags", "--min-count", "2")
	if err != nil {
		t.Fatalf("vocab build: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "entity_tags.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if string(raw) != "NONE\nPER\n" {
		t.Errorf("entity_tags.txt = %q", raw)
	}
}

func TestVocabBuild_RequiresData(t *testing.T) {
	if _, err := runCLI(t, "vocab", "build", "--vocab-dir", t.TempDir()); err == nil {
		t.Error("vocab build without data = nil error; want error")
	}
}

func TestVocabBuild_RejectsUnknownIndexerParams(t *testing.T) {
	data := testutil.WriteSampleCoNLL(t)
	params := testutil.WriteFile(t, "indexer.yaml", "type: ner_tag\nnamespace: x\nlowercase: true\n")

	_, err := runCLI(t, "vocab", "build", data, "--vocab-dir", t.TempDir(), "--indexer-params", params)
	if err == nil || !strings.Contains(err.Error(), "lowercase") {
		t.Errorf("vocab build error = %v; want extra-parameter error naming lowercase", err)
	}
}

func TestVocabShow(t *testing.T) {
	dir := testutil.WriteVocab(t, "ner_tags", "NONE", "PER")

	out, err := runCLI(t, "vocab", "show", "--vocab-dir", dir)
	if err != nil {
		t.Fatalf("vocab show: %v", err)
	}

	if out != "ner_tags\t2\tnon-padded\n" {
		t.Errorf("vocab show = %q", out)
	}

	out, err = runCLI(t, "vocab", "show", "ner_tags", "--vocab-dir", dir)
	if err != nil {
		t.Fatalf("vocab show ner_tags: %v", err)
	}

	if out != "0\tNONE\n1\tPER\n" {
		t.Errorf("vocab show ner_tags = %q", out)
	}

	if _, err := runCLI(t, "vocab", "show", "missing", "--vocab-dir", dir); err == nil {
		t.Error("vocab show missing = nil error; want error")
	}
}

func TestVocabBuild_RebuildReplacesNamespaces(t *testing.T) {
	data := testutil.WriteSampleCoNLL(t)
	dir := filepath.Join(t.TempDir(), "vocab")

	if _, err := runCLI(t, "vocab", "build", data, "--vocab-dir", dir, "--namespace", "entity_tags"); err != nil {
		t.Fatalf("first vocab build: %v", err)
	}
	if _, err := runCLI(t, "vocab", "build", data, "--vocab-dir", dir); err != nil {
		t.Fatalf("second vocab build: %v", err)
	}

	out, err := runCLI(t, "vocab", "show", "--vocab-dir", dir)
	if err != nil {
		t.Fatalf("vocab show: %v", err)
	}

	if out != "ner_tags\t4\tnon-padded\n" {
		t.Errorf("vocab show after rebuild = %q; want only ner_tags", out)
	}
}
