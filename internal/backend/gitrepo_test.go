package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"spyglass/internal/adapter"
	"spyglass/internal/config"
)

// initTestRepo creates a repository with two commits and one tag.
func initTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}

	sig := &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()}
	var last string
	for i, msg := range []string{"initial import", "add readme"} {
		name := filepath.Join(dir, "file"+string(rune('a'+i))+".txt")
		if err := os.WriteFile(name, []byte(msg), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := wt.Add(filepath.Base(name)); err != nil {
			t.Fatalf("add: %v", err)
		}
		hash, err := wt.Commit(msg, &git.CommitOptions{Author: sig})
		if err != nil {
			t.Fatalf("commit: %v", err)
		}
		last = hash.String()
	}
	if _, err := repo.CreateTag("v0.1.0", plumbing.NewHash(last), nil); err != nil {
		t.Fatalf("tag: %v", err)
	}
	return dir
}

func TestGit_Summary(t *testing.T) {
	dir := initTestRepo(t)

	inst, err := gitFactory(config.DefaultConfig())(context.Background(), adapter.ConstructInput{Resource: dir})
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	rec, err := inst.Structure(context.Background())
	if err != nil {
		t.Fatalf("Structure: %v", err)
	}
	if rec.Type != "git_summary" {
		t.Errorf("Type = %q, want git_summary", rec.Type)
	}

	summary := rec.Payload.(GitSummary)
	if summary.Head == "" {
		t.Error("head not resolved")
	}
	if len(summary.Branches) != 1 {
		t.Errorf("branches = %v, want one", summary.Branches)
	}
	if len(summary.Tags) != 1 || summary.Tags[0].Name != "v0.1.0" {
		t.Errorf("tags = %v, want v0.1.0", summary.Tags)
	}
	if len(summary.Commits) != 2 {
		t.Fatalf("commits = %d, want 2", len(summary.Commits))
	}
	// Newest first.
	if summary.Commits[0].Subject != "add readme" {
		t.Errorf("latest commit = %q", summary.Commits[0].Subject)
	}
}

func TestGit_ResolveRef(t *testing.T) {
	dir := initTestRepo(t)

	inst, err := gitFactory(config.DefaultConfig())(context.Background(), adapter.ConstructInput{
		Resource: dir,
		Query:    map[string]string{"ref": "v0.1.0"},
	})
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	rec, err := inst.Structure(context.Background())
	if err != nil {
		t.Fatalf("Structure: %v", err)
	}
	if rec.Type != "git_ref" {
		t.Errorf("Type = %q, want git_ref", rec.Type)
	}
	ref := rec.Payload.(GitRef)
	if ref.Hash == "" || ref.Message != "add readme" {
		t.Errorf("ref = %+v", ref)
	}
}

func TestGit_NotARepository(t *testing.T) {
	_, err := gitFactory(config.DefaultConfig())(context.Background(), adapter.ConstructInput{Resource: t.TempDir()})
	var verr *adapter.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
}
