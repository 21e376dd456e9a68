package report

import (
	"bufio"
	"fmt"
	"io"

	"trumetrapla/internal/storage"
)

// WriteText prints the report as the plain Italian summary used by the
// command line.
func WriteText(w io.Writer, r storage.Report) error {
	bw := bufio.NewWriter(w)

	if r.Summary.RecordCount == 0 {
		fmt.Fprintln(bw, "Nessun dato trovato nel file specificato.")
		writeRowErrors(bw, r.RowErrors)
		return bw.Flush()
	}

	s := r.Summary
	fmt.Fprintln(bw, "=== Riepilogo generale ===")
	fmt.Fprintf(bw, "Totale pezzi: %d\n", s.TotalQuantity)
	fmt.Fprintf(bw, "Ore lavorate: %.2f\n", s.TotalHours())
	fmt.Fprintf(bw, "Produttività media: %.2f pezzi/ora\n", s.AverageProductivity)
	fmt.Fprintf(bw, "Dipendenti coinvolti: %d\n", s.Employees)
	fmt.Fprintf(bw, "Processi analizzati: %d\n", s.Processes)
	if s.Machines > 0 {
		fmt.Fprintf(bw, "Macchine: %d\n", s.Machines)
	}
	if s.ProcessTypes > 0 {
		fmt.Fprintf(bw, "Tipologie di processo: %d\n", s.ProcessTypes)
	}
	fmt.Fprintln(bw)

	writeKeyed(bw, "=== Performance per dipendente ===", r.ByEmployee)
	writeKeyed(bw, "=== Performance per processo ===", r.ByProcess)
	if len(r.ByGroup) > 0 {
		writeKeyed(bw, "=== Performance per raggruppamento ===", r.ByGroup)
	}

	fmt.Fprintln(bw, "=== Andamento giornaliero ===")
	for _, d := range r.Daily {
		fmt.Fprintf(bw, "- %s: %d pezzi in %.2f h (%.2f pezzi/ora)\n",
			d.Date.Format("02/01/2006"), d.TotalQuantity, d.TotalHours(), d.AverageProductivity)
	}

	writeRowErrors(bw, r.RowErrors)
	return bw.Flush()
}

func writeKeyed(w io.Writer, title string, groups []storage.KeyedSummary) {
	fmt.Fprintln(w, title)
	for _, g := range groups {
		fmt.Fprintf(w, "- %s: %d pezzi, %.2f h, %.2f pezzi/ora\n",
			g.Key, g.TotalQuantity, g.TotalHours(), g.AverageProductivity)
	}
	fmt.Fprintln(w)
}

func writeRowErrors(w io.Writer, errs []storage.ReportRowError) {
	if len(errs) == 0 {
		return
	}
	fmt.Fprintf(w, "\n=== Righe scartate (%d) ===\n", len(errs))
	for _, e := range errs {
		fmt.Fprintf(w, "- %s, riga %d: %s %q: %s\n", e.Source, e.Line, e.Field, e.Value, e.Reason)
	}
}
