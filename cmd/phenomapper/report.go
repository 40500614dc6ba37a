package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gofhir/phenomapper"
	"github.com/gofhir/phenomapper/pkg/issue"
	"github.com/gofhir/phenomapper/stream"
)

// Report formats.
const (
	formatText = "text"
	formatJSON = "json"
)

// report is the output of one validate run.
type report struct {
	Source  string               `json:"source"`
	Schema  string               `json:"schema"`
	Result  *phenomapper.Result  `json:"result"`
	Metrics phenomapper.Snapshot `json:"metrics"`
	Error   string               `json:"error,omitempty"`
}

func (r report) write(w io.Writer, format string, quiet bool) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	r.writeText(w, quiet)
	return nil
}

func (r report) writeText(w io.Writer, quiet bool) {
	res := r.Result
	status := "VALID"
	if !res.Valid || r.Error != "" {
		status = "INVALID"
	}

	fmt.Fprintf(w, "== %s (%s) ==\n", r.Source, res.Model)
	fmt.Fprintf(w, "Status: %s\n", status)
	fmt.Fprintf(w, "Compliance: %s\n", res.Compliance)
	fmt.Fprintf(w, "Rows: %d, Valid: %d\n", res.Rows, res.ValidRows)
	fmt.Fprintf(w, "Errors: %d, Warnings: %d\n", res.ErrorCount(), res.WarningCount())
	fmt.Fprintf(w, "Duration: %s\n", res.Duration.Round(time.Microsecond))
	if r.Error != "" {
		fmt.Fprintf(w, "Stopped: %s\n", r.Error)
	}

	if len(res.Issues) > 0 {
		fmt.Fprintln(w, "\nIssues:")
		for _, iss := range res.Issues {
			if quiet && !iss.IsError() {
				continue
			}
			fmt.Fprintf(w, "  %s [%s] %s%s\n", severityLabel(iss.Severity), iss.Code, iss.Diagnostics, location(iss))
		}
		if res.Truncated {
			fmt.Fprintln(w, "  ... further issues omitted")
		}
	}

	if codes := r.Metrics.IssueCodes; len(codes) > 0 && !quiet {
		fmt.Fprintln(w, "\nBy code:")
		for _, c := range codes {
			fmt.Fprintf(w, "  %-24s %d\n", c.Code, c.Count)
		}
	}
	fmt.Fprintln(w)
}

func severityLabel(s issue.Severity) string {
	switch s {
	case issue.SeverityError:
		return "ERROR"
	case issue.SeverityWarning:
		return "WARN "
	default:
		return "     "
	}
}

func location(iss issue.Issue) string {
	switch {
	case iss.Row >= 0 && iss.Field != "":
		return fmt.Sprintf(" @ row %d, %s", iss.Row, iss.Field)
	case iss.Row >= 0:
		return fmt.Sprintf(" @ row %d", iss.Row)
	case iss.Field != "":
		return " @ " + iss.Field
	default:
		return ""
	}
}

// streamReport is the output of a streaming validate run.
type streamReport struct {
	Source  string               `json:"source"`
	Summary *stream.Summary      `json:"summary"`
	Metrics phenomapper.Snapshot `json:"metrics"`
	Errors  []string             `json:"readErrors,omitempty"`
}

func (r streamReport) write(w io.Writer, format string) error {
	if format == formatJSON {
		for _, err := range r.Summary.ReadErrors {
			r.Errors = append(r.Errors, err.Error())
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	s := r.Summary
	status := "VALID"
	if s.HasErrors() {
		status = "INVALID"
	}
	fmt.Fprintf(w, "\n== %s (streamed) ==\n", r.Source)
	fmt.Fprintf(w, "Status: %s\n", status)
	fmt.Fprintf(w, "Rows: %d, Valid: %d\n", s.Rows, s.ValidRows)
	fmt.Fprintf(w, "Average row time: %s\n", time.Duration(r.Metrics.AvgRowTimeNs))
	for _, err := range s.ReadErrors {
		fmt.Fprintf(w, "Read error: %v\n", err)
	}
	fmt.Fprintln(w)
	return nil
}
