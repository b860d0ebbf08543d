package services

import (
	"fmt"

	"github.com/reglet-dev/nova/internal/domain/execution"
)

// Compliance scores a result set as floor((success+controlled)*100/total)
// rendered "<n>%". The second result is false when there is nothing to score.
func Compliance(success, failure, controlled int) (string, bool) {
	total := success + failure + controlled
	if total <= 0 {
		return "", false
	}
	return fmt.Sprintf("%d%%", (success+controlled)*100/total), true
}

// ComplianceOf scores an envelope by its entry counts.
func ComplianceOf(env *execution.Envelope) (string, bool) {
	return Compliance(len(env.Success), len(env.Failure), len(env.Controlled))
}
