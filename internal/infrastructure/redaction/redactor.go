// Package redaction scrubs secrets from report data and log output.
package redaction

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/spf13/viper"
	"github.com/zricethezav/gitleaks/v8/config"
	"github.com/zricethezav/gitleaks/v8/detect"

	"github.com/reglet-dev/nova/internal/infrastructure/system"
)

// Marker replaces redacted values outside hash mode.
const Marker = "[REDACTED]"

// Redactor handles sanitization of sensitive data.
// All fields are read-only after construction, making it safe for concurrent use.
type Redactor struct {
	// Gitleaks detector; nil falls back to regex patterns only
	gitleaksDetector *detect.Detector
	salt             string
	patterns         []*regexp.Regexp
	paths            []string
	hashMode         bool
}

// Config holds the configuration for the Redactor.
type Config struct {
	// Salt for hashing. If empty, hash is deterministic but unsalted.
	Salt string
	// Custom patterns to redact (e.g. "INT-[A-Z0-9]{16}")
	Patterns []string
	// Dotted key paths to always redact (e.g. "kwargs.password")
	Paths []string
	// If true, replace with an HMAC instead of the marker
	HashMode bool
	// If true, disable gitleaks detector and use only custom patterns
	DisableGitleaks bool
}

// ConfigFromSystem maps the nova.redaction settings block.
func ConfigFromSystem(rc system.RedactionConfig) Config {
	return Config{
		Patterns:        rc.Patterns,
		Paths:           rc.Paths,
		HashMode:        rc.HashMode.Enabled,
		Salt:            rc.HashMode.Salt,
		DisableGitleaks: rc.DisableGitleaks,
	}
}

// New creates a new Redactor with the given configuration. A gitleaks
// detector that fails to initialize is logged and skipped.
func New(cfg Config, logger ...*slog.Logger) (*Redactor, error) {
	r := &Redactor{
		paths:    cfg.Paths,
		hashMode: cfg.HashMode,
		salt:     cfg.Salt,
		patterns: make([]*regexp.Regexp, 0, len(cfg.Patterns)+len(defaultPatterns)),
	}

	if !cfg.DisableGitleaks {
		detector, err := newGitleaksDetector()
		if err != nil {
			log := slog.Default()
			if len(logger) > 0 && logger[0] != nil {
				log = logger[0]
			}
			log.Warn("gitleaks detector unavailable, using regex patterns only", "error", err)
		} else {
			r.gitleaksDetector = detector
		}
	}

	for _, p := range defaultPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to compile default pattern %s: %w", p, err)
		}
		r.patterns = append(r.patterns, re)
	}

	for _, p := range cfg.Patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to compile custom pattern %s: %w", p, err)
		}
		r.patterns = append(r.patterns, re)
	}

	return r, nil
}

// newGitleaksDetector creates a gitleaks detector with its default rule set.
func newGitleaksDetector() (*detect.Detector, error) {
	v := viper.New()
	v.SetConfigType("toml")
	if err := v.ReadConfig(strings.NewReader(config.DefaultConfig)); err != nil {
		return nil, fmt.Errorf("failed to read gitleaks config: %w", err)
	}

	var vc config.ViperConfig
	if err := v.Unmarshal(&vc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gitleaks config: %w", err)
	}

	cfg, err := vc.Translate()
	if err != nil {
		return nil, fmt.Errorf("failed to translate gitleaks config: %w", err)
	}

	return detect.NewDetector(cfg), nil
}

// Redact returns a scrubbed copy of data. Maps and slices are copied, so
// the input is never modified.
func (r *Redactor) Redact(data any) any {
	return r.walk(data, "")
}

// ScrubString replaces sensitive patterns in a string: gitleaks findings
// first, then the regex patterns.
func (r *Redactor) ScrubString(input string) string {
	if input == "" {
		return ""
	}

	result := input

	if r.gitleaksDetector != nil {
		findings := r.gitleaksDetector.Detect(detect.Fragment{Raw: result})
		for _, finding := range findings {
			if finding.Secret == "" {
				continue
			}
			result = strings.ReplaceAll(result, finding.Secret, r.replacement(finding.Secret))
		}
	}

	for _, re := range r.patterns {
		result = re.ReplaceAllStringFunc(result, r.replacement)
	}

	return result
}

func (r *Redactor) replacement(secret string) string {
	if r.hashMode {
		return r.hash(secret)
	}
	return Marker
}

// walk recursively copies data, scrubbing strings. currentPath is the
// dotted key path of the element; list items keep their parent's path.
func (r *Redactor) walk(data any, currentPath string) any {
	switch v := data.(type) {
	case string:
		if r.isPathMatch(currentPath) {
			return r.replacement(v)
		}
		return r.ScrubString(v)

	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = r.walk(val, joinPath(currentPath, k))
		}
		return out

	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = r.walk(val, currentPath)
		}
		return out

	case []map[string]any:
		out := make([]map[string]any, len(v))
		for i, val := range v {
			out[i], _ = r.walk(val, currentPath).(map[string]any)
		}
		return out

	case []string:
		out := make([]string, len(v))
		for i, val := range v {
			out[i], _ = r.walk(val, currentPath).(string)
		}
		return out

	case error:
		return r.walk(v.Error(), currentPath)

	default:
		return v
	}
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

// isPathMatch checks if the current path matches any of the configured redact paths.
//
// Matching rules:
// - Exact match: path="kwargs.password" matches "kwargs.password"
// - Suffix match: path="password" matches "any.nested.password"
func (r *Redactor) isPathMatch(path string) bool {
	if path == "" {
		return false
	}
	for _, p := range r.paths {
		if p == path || strings.HasSuffix(path, "."+p) {
			return true
		}
	}
	return false
}

// hash returns a truncated HMAC-SHA256 of the secret, keyed with the salt.
// Format: [hmac:a1b2c3d4e5f6a7b8]
func (r *Redactor) hash(secret string) string {
	mac := hmac.New(sha256.New, []byte(r.salt))
	mac.Write([]byte(secret))
	sum := mac.Sum(nil)

	// First 8 bytes (16 hex chars) are enough for correlation
	return fmt.Sprintf("[hmac:%s]", hex.EncodeToString(sum)[:16])
}

// defaultPatterns contains regexes for common secrets.
var defaultPatterns = []string{
	// AWS Access Key ID
	`\b((?:AKIA|ABIA|ACCA|ASIA)[0-9A-Z]{16})\b`,
	// Generic Private Key Header
	`-----BEGIN [A-Z ]+ PRIVATE KEY-----`,
	// Github Token
	`gh[pousr]_[A-Za-z0-9_]{36,255}`,
	// Slack Token
	`xox[baprs]-([0-9a-zA-Z]{10,48})?`,
}
