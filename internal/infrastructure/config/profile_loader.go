package config

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/reglet-dev/nova/internal/domain/entities"
	"github.com/reglet-dev/nova/internal/domain/values"
)

// ProfileTreeLoader loads every YAML document below a profile directory.
//
// Each *.yaml or *.yml file becomes a profile keyed by its path relative to
// the directory with the extension stripped, so cis/centos-7.yaml is loaded
// as /cis/centos-7. A document that fails to parse, or whose requires
// constraint rejects the running version, is reported as missing instead.
type ProfileTreeLoader struct {
	logger  *slog.Logger
	version *semver.Version
}

// NewProfileTreeLoader creates a loader for nova build version. A version
// that is not semver (for example "dev") disables requires checks.
func NewProfileTreeLoader(version string, logger *slog.Logger) *ProfileTreeLoader {
	if logger == nil {
		logger = slog.Default()
	}
	l := &ProfileTreeLoader{logger: logger}
	if v, err := semver.NewVersion(version); err == nil {
		l.version = v
	}
	return l
}

// ProfileTree is the outcome of loading a profile directory.
type ProfileTree struct {
	Profiles *entities.ProfileSet
	Missing  []string
}

// Load walks dir. It fails only when dir itself cannot be opened or ctx is
// cancelled; problems with individual documents are collected in Missing.
func (l *ProfileTreeLoader) Load(ctx context.Context, dir string) (*ProfileTree, error) {
	// Security: Use os.OpenRoot to prevent path traversal attacks
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile directory: %w", err)
	}
	defer func() {
		_ = root.Close() // Best-effort cleanup
	}()

	tree := &ProfileTree{Profiles: entities.NewProfileSet()}
	walkErr := fs.WalkDir(root.FS(), ".", func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			l.logger.Warn("skipping unreadable profile path", "path", p, "error", err)
			tree.Missing = append(tree.Missing, p)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !isProfileFile(p) {
			return nil
		}

		key, err := values.NewProfileKey(p)
		if err != nil {
			tree.Missing = append(tree.Missing, p)
			return nil
		}

		data, err := l.loadOne(root, p)
		if err != nil {
			l.logger.Warn("profile not loaded", "profile", key.String(), "error", err)
			tree.Missing = append(tree.Missing, key.String())
			return nil
		}
		tree.Profiles.Put(entities.NewProfile(key, data))
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walking profile directory %q: %w", dir, walkErr)
	}

	sort.Strings(tree.Missing)
	return tree, nil
}

func (l *ProfileTreeLoader) loadOne(root *os.Root, name string) (entities.ProfileData, error) {
	raw, err := readFile(root, name)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile: %w", err)
	}

	doc, err := DecodeDocument(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	data := entities.ProfileData(doc)
	if err := l.checkRequires(data.Requires()); err != nil {
		return nil, err
	}
	return data, nil
}

func (l *ProfileTreeLoader) checkRequires(requires string) error {
	if requires == "" || l.version == nil {
		return nil
	}
	constraint, err := semver.NewConstraint(requires)
	if err != nil {
		return fmt.Errorf("invalid requires constraint %q: %w", requires, err)
	}
	if !constraint.Check(l.version) {
		return fmt.Errorf("requires nova %s, running %s", requires, l.version)
	}
	return nil
}

func isProfileFile(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}
