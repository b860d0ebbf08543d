package modules

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/reglet-dev/nova/internal/application/ports"
	"github.com/reglet-dev/nova/internal/domain/execution"
	"github.com/reglet-dev/nova/internal/domain/values"
)

// StatModuleName is the name and profile section of the stat module.
const StatModuleName = "stat"

// StatCheck asserts properties of a filesystem path.
//
//	stat:
//	  - tag: CIS-6.1.2
//	    description: /etc/passwd permissions
//	    path: /etc/passwd
//	    type: file
//	    mode: "0644"
type StatCheck struct {
	Exists      *bool  `mapstructure:"exists"`
	Tag         string `mapstructure:"tag"`
	Description string `mapstructure:"description"`
	Path        string `mapstructure:"path"`
	Type        string `mapstructure:"type"`
	Mode        string `mapstructure:"mode"`
}

func (c StatCheck) tag() string { return c.Tag }

func (c StatCheck) validate() error {
	if c.Tag == "" {
		return errors.New("check has no tag")
	}
	if c.Path == "" {
		return errors.New("check has no path")
	}
	switch c.Type {
	case "", "file", "dir":
	default:
		return fmt.Errorf("unknown type %q (want file or dir)", c.Type)
	}
	if c.Mode != "" {
		if _, err := parseMode(c.Mode); err != nil {
			return err
		}
	}
	return nil
}

// StatModule evaluates stat checks.
type StatModule struct{}

// NewStatModule creates the stat module.
func NewStatModule() *StatModule {
	return &StatModule{}
}

// Name implements ports.AuditModule.
func (m *StatModule) Name() string { return StatModuleName }

// Audit implements ports.AuditModule.
func (m *StatModule) Audit(ctx context.Context, req ports.ModuleRequest) (*execution.Envelope, error) {
	return runChecks(ctx, StatModuleName, StatModuleName, req, evalStat,
		func(c StatCheck) (string, string) { return c.Description, c.Path })
}

func evalStat(_ context.Context, c StatCheck) (values.Class, string) {
	wantExists := boolOr(c.Exists, true)

	info, err := os.Stat(c.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if wantExists {
				return values.ClassFailure, "path does not exist"
			}
			return values.ClassSuccess, ""
		}
		return values.ClassFailure, err.Error()
	}
	if !wantExists {
		return values.ClassFailure, "path exists"
	}

	switch c.Type {
	case "file":
		if !info.Mode().IsRegular() {
			return values.ClassFailure, "not a regular file"
		}
	case "dir":
		if !info.IsDir() {
			return values.ClassFailure, "not a directory"
		}
	}

	if c.Mode != "" {
		want, _ := parseMode(c.Mode)
		if got := info.Mode().Perm(); got != want {
			return values.ClassFailure, fmt.Sprintf("mode is %04o, expected %04o", got, want)
		}
	}
	return values.ClassSuccess, ""
}

// parseMode reads an octal permission string such as "644" or "0600".
func parseMode(s string) (fs.FileMode, error) {
	n, err := strconv.ParseUint(s, 8, 32)
	if err != nil || n > 0o777 {
		return 0, fmt.Errorf("invalid mode %q", s)
	}
	return fs.FileMode(n), nil
}
