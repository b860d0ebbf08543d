package modules

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"

	"github.com/reglet-dev/nova/internal/application/ports"
	"github.com/reglet-dev/nova/internal/domain/execution"
	"github.com/reglet-dev/nova/internal/domain/values"
)

// GrepModuleName is the name and profile section of the grep module.
const GrepModuleName = "grep"

// maxLineBytes bounds a single scanned line.
const maxLineBytes = 1024 * 1024

// GrepCheck asserts that a pattern is (or is not) present in a file.
type GrepCheck struct {
	Present     *bool  `mapstructure:"present"`
	Tag         string `mapstructure:"tag"`
	Description string `mapstructure:"description"`
	Path        string `mapstructure:"path"`
	Pattern     string `mapstructure:"pattern"`
}

func (c GrepCheck) tag() string { return c.Tag }

func (c GrepCheck) validate() error {
	if c.Tag == "" {
		return errors.New("check has no tag")
	}
	if c.Path == "" {
		return errors.New("check has no path")
	}
	if c.Pattern == "" {
		return errors.New("check has no pattern")
	}
	if _, err := regexp.Compile(c.Pattern); err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}
	return nil
}

// GrepModule evaluates grep checks line by line.
type GrepModule struct{}

// NewGrepModule creates the grep module.
func NewGrepModule() *GrepModule {
	return &GrepModule{}
}

// Name implements ports.AuditModule.
func (m *GrepModule) Name() string { return GrepModuleName }

// Audit implements ports.AuditModule.
func (m *GrepModule) Audit(ctx context.Context, req ports.ModuleRequest) (*execution.Envelope, error) {
	return runChecks(ctx, GrepModuleName, GrepModuleName, req, evalGrep,
		func(c GrepCheck) (string, string) { return c.Description, c.Path })
}

func evalGrep(ctx context.Context, c GrepCheck) (values.Class, string) {
	wantPresent := boolOr(c.Present, true)
	re := regexp.MustCompile(c.Pattern) // validated

	found, err := fileContains(ctx, c.Path, re)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !wantPresent {
			return values.ClassSuccess, ""
		}
		return values.ClassFailure, err.Error()
	}

	switch {
	case found && !wantPresent:
		return values.ClassFailure, fmt.Sprintf("pattern %q found", c.Pattern)
	case !found && wantPresent:
		return values.ClassFailure, fmt.Sprintf("pattern %q not found", c.Pattern)
	default:
		return values.ClassSuccess, ""
	}
}

func fileContains(ctx context.Context, path string, re *regexp.Regexp) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer func() {
		_ = f.Close() // Best-effort cleanup
	}()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if re.Match(scanner.Bytes()) {
			return true, nil
		}
	}
	return false, scanner.Err()
}
