package modules

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/reglet-dev/nova/internal/application/ports"
	"github.com/reglet-dev/nova/internal/infrastructure/config"

	apperrors "github.com/reglet-dev/nova/internal/application/errors"
)

// NoCatalogMessage is reported when the module or profile directory is missing.
const NoCatalogMessage = "No synced nova modules/profiles found"

// ProfileSource loads the profile tree below a directory.
type ProfileSource interface {
	Load(ctx context.Context, dir string) (*config.ProfileTree, error)
}

// Loader builds catalogs from a module directory and a profile directory.
// Built-in modules are always part of the catalog. Readers get immutable
// snapshots; a failed reload keeps the previous one.
type Loader struct {
	profiles   ProfileSource
	logger     *slog.Logger
	current    atomic.Pointer[ports.Catalog]
	moduleDir  string
	profileDir string
	builtins   []ports.AuditModule
	loadMu     sync.Mutex
}

// NewLoader creates a catalog loader.
func NewLoader(moduleDir, profileDir string, profiles ProfileSource, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		moduleDir:  moduleDir,
		profileDir: profileDir,
		profiles:   profiles,
		logger:     logger,
		builtins:   []ports.AuditModule{NewStatModule(), NewGrepModule()},
	}
}

// WithBuiltins replaces the built-in module set.
func (l *Loader) WithBuiltins(mods ...ports.AuditModule) *Loader {
	l.builtins = mods
	return l
}

// Current implements ports.CatalogProvider.
func (l *Loader) Current() *ports.Catalog {
	return l.current.Load()
}

// Load implements ports.CatalogProvider.
func (l *Loader) Load(ctx context.Context) (*ports.Catalog, error) {
	l.loadMu.Lock()
	defer l.loadMu.Unlock()

	external, missingModules, modErr := l.discoverModules()
	tree, profErr := l.profiles.Load(ctx, l.profileDir)
	if err := errors.Join(modErr, profErr); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, apperrors.NewConfigurationError("catalog", NoCatalogMessage, err)
	}

	cat := &ports.Catalog{
		Profiles:        tree.Profiles,
		MissingModules:  missingModules,
		MissingProfiles: tree.Missing,
	}

	seen := make(map[string]bool)
	for _, m := range l.builtins {
		seen[m.Name()] = true
		cat.Modules = append(cat.Modules, m)
	}
	for _, m := range external {
		if seen[m.Name()] {
			l.logger.Warn("external module shadows a built-in, skipping", "module", m.Name(), "path", m.Path())
			cat.MissingModules = append(cat.MissingModules, m.Name())
			continue
		}
		seen[m.Name()] = true
		cat.Modules = append(cat.Modules, m)
	}
	sort.Slice(cat.Modules, func(i, j int) bool { return cat.Modules[i].Name() < cat.Modules[j].Name() })
	sort.Strings(cat.MissingModules)

	l.current.Store(cat)
	l.logger.Debug("nova catalog built",
		"modules", len(cat.Modules), "profiles", cat.Profiles.Len(),
		"missing_modules", cat.MissingModules, "missing_profiles", cat.MissingProfiles)
	return cat, nil
}

// discoverModules lists executables in the module directory. Regular files
// without an execute bit are reported as missing.
func (l *Loader) discoverModules() ([]*ExternalModule, []string, error) {
	entries, err := os.ReadDir(l.moduleDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read module directory: %w", err)
	}

	var (
		mods    []*ExternalModule
		missing []string
	)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		moduleName := strings.TrimSuffix(name, filepath.Ext(name))

		info, err := entry.Info()
		if err != nil || !info.Mode().IsRegular() || info.Mode().Perm()&0o111 == 0 {
			missing = append(missing, moduleName)
			continue
		}
		mods = append(mods, NewExternalModule(moduleName, filepath.Join(l.moduleDir, name)))
	}
	return mods, missing, nil
}
