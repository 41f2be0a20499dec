package infra

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSplitSQLSkipsCommentsAndBlanks(t *testing.T) {
	in := "-- header\nCREATE TABLE a (id INT);\n\n  -- inner\nCREATE INDEX i ON a (id);\n;"
	got := SplitSQL(stripSQLComments(in))
	if len(got) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(got), got)
	}
	if got[0] != "CREATE TABLE a (id INT)" {
		t.Errorf("unexpected first statement %q", got[0])
	}
	if got[1] != "CREATE INDEX i ON a (id)" {
		t.Errorf("unexpected second statement %q", got[1])
	}
}

func TestRepoRootFindsGoMod(t *testing.T) {
	root, err := RepoRoot()
	if err != nil {
		t.Fatalf("repo root: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "migrations")); err != nil {
		t.Errorf("expected migrations dir under %s: %v", root, err)
	}
}
