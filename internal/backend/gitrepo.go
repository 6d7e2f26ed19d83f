package backend

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"spyglass/internal/adapter"
	"spyglass/internal/codec"
	"spyglass/internal/config"
	"spyglass/internal/result"
)

// gitAdapter browses a local repository: head, branches, tags, and
// recent history by default; one resolved revision when ?ref= is given.
type gitAdapter struct {
	repo  *git.Repository
	path  string
	ref   string
	limit int
}

func gitFactory(cfg *config.Config) adapter.Factory {
	return func(_ context.Context, in adapter.ConstructInput) (adapter.Adapter, error) {
		path := in.Resource
		if path == "" {
			return nil, adapter.Validationf("git requires an explicit repository path")
		}

		limit := cfg.RowLimit
		if raw, ok := in.Query["limit"]; ok {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				return nil, adapter.Validationf("invalid limit %q", raw)
			}
			limit = n
		}

		repo, err := git.PlainOpen(path)
		if err != nil {
			return nil, adapter.Validationf("%q is not a git repository: %v", path, err)
		}

		return &gitAdapter{repo: repo, path: path, ref: in.Query["ref"], limit: limit}, nil
	}
}

// RefInfo is one branch or tag.
type RefInfo struct {
	Name string `json:"name"`
	Hash string `json:"hash"`
}

// CommitInfo is one history entry.
type CommitInfo struct {
	Hash    string `json:"hash"`
	Author  string `json:"author"`
	When    string `json:"when"`
	Subject string `json:"subject"`
}

// GitSummary describes a repository.
type GitSummary struct {
	Path     string       `json:"path"`
	Head     string       `json:"head"`
	Branches []RefInfo    `json:"branches"`
	Tags     []RefInfo    `json:"tags,omitempty"`
	Commits  []CommitInfo `json:"commits"`
}

func (s GitSummary) FormatText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "repository: %s\nhead:       %s\n\n", s.Path, s.Head); err != nil {
		return err
	}
	for _, b := range s.Branches {
		if _, err := fmt.Fprintf(w, "branch %-30s %s\n", b.Name, shortHash(b.Hash)); err != nil {
			return err
		}
	}
	for _, t := range s.Tags {
		if _, err := fmt.Fprintf(w, "tag    %-30s %s\n", t.Name, shortHash(t.Hash)); err != nil {
			return err
		}
	}
	if len(s.Commits) > 0 {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	for _, c := range s.Commits {
		if _, err := fmt.Fprintf(w, "%s %s %s\n", shortHash(c.Hash), c.When, c.Subject); err != nil {
			return err
		}
	}
	return nil
}

func (s GitSummary) GrepItems() []codec.GrepItem {
	items := make([]codec.GrepItem, 0, len(s.Branches)+len(s.Tags))
	for i, b := range s.Branches {
		items = append(items, codec.GrepItem{Path: s.Path, Line: i + 1, Name: b.Name})
	}
	for i, t := range s.Tags {
		items = append(items, codec.GrepItem{Path: s.Path, Line: len(s.Branches) + i + 1, Name: t.Name})
	}
	return items
}

// GitRef is one resolved revision.
type GitRef struct {
	Path    string `json:"path"`
	Ref     string `json:"ref"`
	Hash    string `json:"hash"`
	Author  string `json:"author,omitempty"`
	When    string `json:"when,omitempty"`
	Message string `json:"message,omitempty"`
}

func (r GitRef) FormatText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "ref:    %s\nhash:   %s\nauthor: %s\ndate:   %s\n\n%s\n",
		r.Ref, r.Hash, r.Author, r.When, strings.TrimRight(r.Message, "\n"))
	return err
}

func (a *gitAdapter) Structure(_ context.Context) (*result.Record, error) {
	if a.ref != "" {
		return a.resolveRef(a.ref)
	}

	summary := GitSummary{Path: a.path}

	head, err := a.repo.Head()
	if err == nil {
		summary.Head = fmt.Sprintf("%s (%s)", head.Name().Short(), shortHash(head.Hash().String()))
	}

	branches, err := a.repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	defer branches.Close()
	if err := branches.ForEach(func(ref *plumbing.Reference) error {
		summary.Branches = append(summary.Branches, RefInfo{Name: ref.Name().Short(), Hash: ref.Hash().String()})
		return nil
	}); err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}

	tags, err := a.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer tags.Close()
	if err := tags.ForEach(func(ref *plumbing.Reference) error {
		summary.Tags = append(summary.Tags, RefInfo{Name: ref.Name().Short(), Hash: ref.Hash().String()})
		return nil
	}); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	if head != nil {
		log, err := a.repo.Log(&git.LogOptions{From: head.Hash()})
		if err != nil {
			return nil, fmt.Errorf("read history: %w", err)
		}
		defer log.Close()
		for len(summary.Commits) < a.limit {
			commit, err := log.Next()
			if err != nil {
				break
			}
			summary.Commits = append(summary.Commits, CommitInfo{
				Hash:    commit.Hash.String(),
				Author:  commit.Author.Name,
				When:    commit.Author.When.Format("2006-01-02"),
				Subject: firstLine(commit.Message),
			})
		}
	}

	return result.New("git_summary", a.path, summary), nil
}

func (a *gitAdapter) resolveRef(ref string) (*result.Record, error) {
	hash, err := a.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", ref, err)
	}

	payload := GitRef{Path: a.path, Ref: ref, Hash: hash.String()}
	if commit, err := a.repo.CommitObject(*hash); err == nil {
		payload.Author = fmt.Sprintf("%s <%s>", commit.Author.Name, commit.Author.Email)
		payload.When = commit.Author.When.Format("2006-01-02 15:04:05 -0700")
		payload.Message = commit.Message
	}
	return result.New("git_ref", a.path, payload), nil
}

func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}

func firstLine(s string) string {
	if i := strings.Index(s, "\n"); i >= 0 {
		return s[:i]
	}
	return s
}
