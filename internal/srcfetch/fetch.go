// Package srcfetch loads KERA declaration units from a local directory or
// from a git repository cached under the user cache directory, so shared
// capability packages can be checked straight from their source repos.
package srcfetch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Loader reads .kera source files for the check pipeline.
type Loader struct {
	cacheDir string
}

// NewLoader creates a Loader caching git checkouts under the user cache
// directory.
func NewLoader() (*Loader, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return nil, fmt.Errorf("failed to locate user cache directory: %w", err)
	}
	return &Loader{cacheDir: filepath.Join(base, "kera", "src")}, nil
}

// NewLoaderWithCacheDir creates a Loader with an explicit cache directory.
func NewLoaderWithCacheDir(dir string) *Loader {
	return &Loader{cacheDir: dir}
}

// LoadDir returns the contents of every .kera file directly in dir, sorted
// by file name so unit order is deterministic.
func LoadDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read source directory %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".kera" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	var sources []string
	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		sources = append(sources, string(content))
	}
	return sources, nil
}

// LoadGit clones url (shallow, cached) and returns the .kera units at its
// root. ref may be a branch, tag, or commit hash; empty means the default
// branch.
func (l *Loader) LoadGit(url, ref string) ([]string, error) {
	dir, err := l.fetch(url, ref)
	if err != nil {
		return nil, err
	}
	return LoadDir(dir)
}

// fetch ensures a checkout of url@ref exists in the cache and returns its
// path.
func (l *Loader) fetch(url, ref string) (string, error) {
	dir := filepath.Join(l.cacheDir, cacheKey(url, ref))
	if _, err := os.Stat(dir); err == nil {
		return dir, nil
	}
	if err := os.MkdirAll(l.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	repo, err := git.PlainClone(dir, false, &git.CloneOptions{
		URL:   url,
		Depth: 1,
		Tags:  git.AllTags,
	})
	if err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("failed to clone repository %s: %w", url, err)
	}

	if ref != "" {
		if err := checkout(repo, ref); err != nil {
			os.RemoveAll(dir)
			return "", fmt.Errorf("failed to checkout %s: %w", ref, err)
		}
	}
	return dir, nil
}

func checkout(repo *git.Repository, ref string) error {
	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return err
	}
	return wt.Checkout(&git.CheckoutOptions{Hash: *hash})
}

// cacheKey turns a URL and ref into a filesystem-safe directory name.
func cacheKey(url, ref string) string {
	key := url
	if ref != "" {
		key += "@" + ref
	}
	replacer := strings.NewReplacer("://", "_", "/", "_", ":", "_", "@", "_")
	return replacer.Replace(key)
}
