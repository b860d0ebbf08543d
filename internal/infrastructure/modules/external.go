package modules

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/reglet-dev/nova/internal/application/ports"
	"github.com/reglet-dev/nova/internal/domain/execution"
	"github.com/reglet-dev/nova/internal/version"
)

// externalRequest is the document written to an external module's stdin.
type externalRequest struct {
	ports.ModuleRequest
	Contract string `json:"contract"`
}

// ExternalModule runs an executable from the module directory. The request
// is written to stdin as JSON; stdout must hold a JSON or YAML result
// envelope.
type ExternalModule struct {
	name string
	path string
}

// NewExternalModule creates a module named name backed by the executable
// at path.
func NewExternalModule(name, path string) *ExternalModule {
	return &ExternalModule{name: name, path: path}
}

// Name implements ports.AuditModule.
func (m *ExternalModule) Name() string { return m.name }

// Path returns the executable backing the module.
func (m *ExternalModule) Path() string { return m.path }

// Audit implements ports.AuditModule.
func (m *ExternalModule) Audit(ctx context.Context, req ports.ModuleRequest) (*execution.Envelope, error) {
	payload, err := json.Marshal(externalRequest{ModuleRequest: req, Contract: version.ModuleContract})
	if err != nil {
		return nil, fmt.Errorf("encoding module request: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, m.path)
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		// The last stderr line is what ends up in the Errors entry.
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w\n%s", err, msg)
		}
		return nil, err
	}

	var raw any
	if err := yaml.Unmarshal(stdout.Bytes(), &raw); err != nil {
		return nil, &execution.ContractViolationError{
			Value:  execution.LastLine(strings.TrimSpace(stdout.String())),
			Reason: fmt.Sprintf("output is not JSON or YAML: %v", err),
		}
	}
	return execution.DecodeModuleOutput(raw)
}
