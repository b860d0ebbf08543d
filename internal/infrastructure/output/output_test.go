package output

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/nova/internal/application/dto"
	"github.com/reglet-dev/nova/internal/domain/values"
)

func terseReport() *dto.Report {
	return &dto.Report{
		Metadata: dto.ReportMetadata{
			RunID:     values.NewExecutionID(),
			StartTime: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			Duration:  1500 * time.Millisecond,
		},
		Failure:    []map[string]any{{"CIS-1": "root login disabled"}},
		Success:    []map[string]any{{"CIS-2": "passwd mode"}, {"CIS-3": "shadow mode"}},
		Controlled: []map[string]any{{"CIS-4": "accepted risk"}},
		Compliance: "75%",
		Errors:     []map[string]any{{"pkg": map[string]any{"error": "exception occurred", "data": "KeyError: x"}}},
	}
}

func verboseReport() *dto.Report {
	return &dto.Report{
		Failure: []map[string]any{{"CIS-1": map[string]any{
			"tag": "CIS-1", "description": "root login disabled", "path": "/etc/ssh/sshd_config", "reason": "pattern not found",
		}}},
		Controlled: []map[string]any{{"CIS-4": map[string]any{
			"tag": "CIS-4", "description": "firewall", "control": "accepted risk",
		}}},
	}
}

func TestTableFormatter_Terse(t *testing.T) {
	var buf bytes.Buffer
	f := NewTableFormatter(&buf)
	f.EnableColor = false

	require.NoError(t, f.Format(terseReport()))
	out := buf.String()

	assert.Contains(t, out, "Run: ")
	assert.Contains(t, out, "Duration: 1.5s")
	assert.Contains(t, out, "Failure:\n  ✗ CIS-1: root login disabled")
	assert.Contains(t, out, "  ✓ CIS-2: passwd mode")
	assert.Contains(t, out, "  ~ CIS-4: accepted risk")
	assert.Contains(t, out, "Compliance: 75%")
	assert.Contains(t, out, "  ! pkg: exception occurred\n      KeyError: x")
	assert.Contains(t, out, "Summary: 1 failed, 2 passed, 1 controlled, 1 errors")
	assert.Less(t, strings.Index(out, "Failure:"), strings.Index(out, "Success:"))
	assert.NotContains(t, out, "\033[")
}

func TestTableFormatter_Verbose(t *testing.T) {
	var buf bytes.Buffer
	f := NewTableFormatter(&buf)
	f.EnableColor = false

	require.NoError(t, f.Format(verboseReport()))
	out := buf.String()

	assert.NotContains(t, out, "Run: ", "no header without run metadata")
	assert.Contains(t, out, "  ✗ CIS-1: root login disabled\n      path: /etc/ssh/sshd_config\n      reason: pattern not found")
	assert.Contains(t, out, "  ~ CIS-4: firewall (accepted risk)")
}

func TestTableFormatter_Messages(t *testing.T) {
	var buf bytes.Buffer
	f := NewTableFormatter(&buf)
	f.EnableColor = false

	require.NoError(t, f.Format(&dto.Report{Messages: dto.NoAuditsMessage}))
	assert.Equal(t, "Messages: "+dto.NoAuditsMessage+"\n", buf.String())
}

func TestJSONFormatter_KeyOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(&buf, false).Format(terseReport()))
	out := buf.String()

	order := []string{`"Failure"`, `"Success"`, `"Controlled"`, `"Compliance"`, `"Errors"`}
	last := -1
	for _, key := range order {
		idx := strings.Index(out, key)
		require.Greater(t, idx, last, "key %s out of order", key)
		last = idx
	}
	assert.NotContains(t, out, "Metadata")
	assert.NotContains(t, out, "Messages")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "75%", decoded["Compliance"])
}

func TestJSONFormatter_Indented(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(&buf, true).Format(&dto.Report{Compliance: "0%"}))
	assert.Equal(t, "{\n  \"Compliance\": \"0%\"\n}\n", buf.String())
}

func TestYAMLFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLFormatter(&buf).Format(terseReport()))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "75%", decoded["Compliance"])
	assert.Len(t, decoded["Success"], 2)
	assert.True(t, strings.HasPrefix(buf.String(), "Failure:"))
}

func TestYAMLFormatter_FormatValue(t *testing.T) {
	var buf bytes.Buffer
	summary := &dto.LoadSummary{Loaded: []string{"grep", "stat"}, Data: []string{"/cis"}}
	require.NoError(t, NewYAMLFormatter(&buf).FormatValue(summary))
	assert.Contains(t, buf.String(), "loaded:\n")
	assert.Contains(t, buf.String(), "missing_data:")
}

func TestJSONFormatter_FormatValue(t *testing.T) {
	var buf bytes.Buffer
	summary := &dto.LoadSummary{Loaded: []string{"stat"}, Missing: []string{}, Data: []string{}, MissingData: []string{"/broken"}}
	require.NoError(t, NewJSONFormatter(&buf, false).FormatValue(summary))
	assert.JSONEq(t, `{"loaded":["stat"],"missing":[],"data":[],"missing_data":["/broken"]}`, buf.String())
}

func TestJUnitFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJUnitFormatter(&buf).Format(terseReport()))

	assert.True(t, strings.HasPrefix(buf.String(), xml.Header))

	var suites JUnitTestSuites
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &suites))
	require.Len(t, suites.TestSuites, 1)

	suite := suites.TestSuites[0]
	assert.Equal(t, 5, suite.Tests)
	assert.Equal(t, 1, suite.Failures)
	assert.Equal(t, 1, suite.Errors)
	assert.Equal(t, 1, suite.Skipped)
	require.Len(t, suite.TestCases, 5)
	assert.Equal(t, "CIS-1", suite.TestCases[0].Name)
	require.NotNil(t, suite.TestCases[0].Failure)
	assert.Equal(t, "root login disabled", suite.TestCases[0].Failure.Message)
	require.NotNil(t, suite.TestCases[3].Skipped)
	assert.Equal(t, "accepted risk", suite.TestCases[3].Skipped.Message)
	require.NotNil(t, suite.TestCases[4].Error)
	assert.Equal(t, "pkg", suite.TestCases[4].Name)
	assert.Equal(t, "KeyError: x", suite.TestCases[4].Error.Content)
	require.Len(t, suite.Properties, 1)
	assert.Equal(t, "75%", suite.Properties[0].Value)
}

func TestClassRows_MultiKeyEntriesSorted(t *testing.T) {
	rows := classRows([]map[string]any{{"b": "second", "a": "first"}, {"c": nil}})
	require.Len(t, rows, 3)
	assert.Equal(t, "a", rows[0].Tag)
	assert.Equal(t, "b", rows[1].Tag)
	assert.Empty(t, rows[2].Text)
}
