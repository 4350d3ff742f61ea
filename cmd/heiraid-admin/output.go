package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/heiraid/heiraid-api/internal/service"
)

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func printIngestReport(w io.Writer, report *service.IngestReport, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	if err := writef(w, "Run: %s\nContainers: %v\nIndexed: %d  Cataloged: %d  Skipped: %d  Failed: %d\n",
		report.RunID, report.Containers, report.Indexed, report.Cataloged,
		len(report.Skipped), len(report.Failed)); err != nil {
		return err
	}
	if len(report.Failed) == 0 {
		return nil
	}

	if err := writef(w, "\nFailures:\n"); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writef(tw, "CONTAINER\tBLOB\tERROR\n"); err != nil {
		return err
	}
	for _, f := range report.Failed {
		if err := writef(tw, "%s\t%s\t%s\n", f.Container, f.Name, f.Error); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func printContainers(w io.Writer, containers []string) error {
	if err := writef(w, "Storage reachable, %d container(s)\n", len(containers)); err != nil {
		return err
	}
	for _, c := range containers {
		if err := writef(w, "  %s\n", c); err != nil {
			return err
		}
	}
	return nil
}

func printSearchResult(w io.Writer, result *service.SearchResult) error {
	if result == nil || result.Count == 0 {
		return writef(w, "No documents found.\n")
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writef(tw, "SCORE\tID\tTYPE\tTITLE\n"); err != nil {
		return err
	}
	for _, d := range result.Results {
		if err := writef(tw, "%.2f\t%s\t%s\t%s\n", d.Score, d.ID, d.DocumentType, d.Title); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return writef(w, "%d result(s)\n", result.Count)
}
