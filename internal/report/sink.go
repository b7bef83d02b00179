// Package report serializes a DiagnosticReport. Sinks write to an
// io.Writer handed in by the shell layer; nothing here opens files.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"aisdiag/internal/domain"
)

// Sink writes one finished report to a destination.
type Sink interface {
	Write(rep *domain.DiagnosticReport) error
}

// JSONSink emits the report as indented JSON, the machine-readable
// artifact an investigator attaches to an issue.
type JSONSink struct {
	Out io.Writer
}

func (s *JSONSink) Write(rep *domain.DiagnosticReport) error {
	enc := json.NewEncoder(s.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// TextSink renders a sectioned human-readable summary.
type TextSink struct {
	Out io.Writer
}

func (s *TextSink) Write(rep *domain.DiagnosticReport) error {
	fmt.Fprintf(s.Out, "Diagnostic run %s (%s)\n", rep.RunID, rep.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(s.Out, "\nVerdict: %s\n", rep.Verdict)
	for _, line := range rep.Rationale {
		fmt.Fprintf(s.Out, "  - %s\n", line)
	}

	fmt.Fprintf(s.Out, "\nProbe results\n")
	tw := tabwriter.NewWriter(s.Out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  PROBE\tSTATUS\tHTTP\tLATENCY\tDETAIL")
	for _, r := range rep.Results {
		httpCol := "-"
		if r.HTTPStatus != 0 {
			httpCol = fmt.Sprintf("%d", r.HTTPStatus)
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%.1fms\t%s\n", r.ProbeID, r.Status, httpCol, r.LatencyMS, r.Detail)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(s.Out, "\nBrowser network events (%d)\n", len(rep.Events))
	for _, e := range rep.Events {
		switch {
		case e.Failed:
			fmt.Fprintf(s.Out, "  FAIL %s %s: %s\n", e.Method, e.URL, e.ErrorText)
		case e.Status == 0:
			fmt.Fprintf(s.Out, "  .... %s %s: no response before window closed\n", e.Method, e.URL)
		default:
			fmt.Fprintf(s.Out, "  %4d %s %s\n", e.Status, e.Method, e.URL)
		}
	}

	if len(rep.ConsoleErrors) > 0 {
		fmt.Fprintf(s.Out, "\nConsole errors (%d)\n", len(rep.ConsoleErrors))
		for _, msg := range rep.ConsoleErrors {
			fmt.Fprintf(s.Out, "  - %s\n", msg)
		}
	}
	return nil
}
