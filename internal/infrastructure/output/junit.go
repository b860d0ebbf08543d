package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/reglet-dev/nova/internal/application/dto"
)

// JUnitFormatter formats reports as JUnit XML. Every check is a test case;
// controlled checks are skipped and module errors are test errors.
type JUnitFormatter struct {
	writer io.Writer
}

// NewJUnitFormatter creates a new JUnit formatter.
func NewJUnitFormatter(w io.Writer) *JUnitFormatter {
	return &JUnitFormatter{
		writer: w,
	}
}

// JUnitTestSuites JUnit XML structures
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
}

type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Time       float64         `xml:"time,attr"`
}

type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
}

type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Content string `xml:",chardata"`
}

type JUnitError struct {
	Message string `xml:"message,attr"`
	Content string `xml:",chardata"`
}

type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// Format writes the report as JUnit XML.
func (f *JUnitFormatter) Format(report *dto.Report) error {
	counts := countReport(report)
	total := counts.Success + counts.Failure + counts.Controlled + counts.Errors

	suite := JUnitTestSuite{
		Name:     "nova",
		Tests:    total,
		Failures: counts.Failure,
		Errors:   counts.Errors,
		Skipped:  counts.Controlled,
		Time:     report.Metadata.Duration.Seconds(),
	}
	if report.Compliance != "" {
		suite.Properties = append(suite.Properties, JUnitProperty{Name: "compliance", Value: report.Compliance})
	}

	for _, row := range classRows(report.Failure) {
		c := testCase(row, "Failure")
		c.Failure = &JUnitFailure{Message: row.Text, Content: describeFields(row)}
		suite.TestCases = append(suite.TestCases, c)
	}
	for _, row := range classRows(report.Success) {
		suite.TestCases = append(suite.TestCases, testCase(row, "Success"))
	}
	for _, row := range classRows(report.Controlled) {
		c := testCase(row, "Controlled")
		c.Skipped = &JUnitSkipped{Message: row.Text}
		suite.TestCases = append(suite.TestCases, c)
	}
	for _, row := range errorRows(report.Errors) {
		suite.TestCases = append(suite.TestCases, JUnitTestCase{
			Name:      row.Source,
			ClassName: "Errors",
			Error:     &JUnitError{Message: row.Message, Content: dataText(row.Data)},
		})
	}

	suites := JUnitTestSuites{
		Name:       "nova audit",
		Tests:      total,
		Failures:   counts.Failure,
		Errors:     counts.Errors,
		Time:       report.Metadata.Duration.Seconds(),
		TestSuites: []JUnitTestSuite{suite},
	}

	_, err := f.writer.Write([]byte(xml.Header))
	if err != nil {
		return err
	}

	encoder := xml.NewEncoder(f.writer)
	encoder.Indent("", "  ")
	if err := encoder.Encode(suites); err != nil {
		return err
	}

	_, err = f.writer.Write([]byte("\n"))
	return err
}

func testCase(row entryRow, class string) JUnitTestCase {
	return JUnitTestCase{Name: row.Tag, ClassName: class}
}

func describeFields(row entryRow) string {
	var b strings.Builder
	for _, k := range sortedKeys(row.Fields) {
		fmt.Fprintf(&b, "%s: %v\n", k, row.Fields[k])
	}
	return b.String()
}

func dataText(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
