package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/getmockd/mockhost/pkg/endpoint"
	"github.com/getmockd/mockhost/pkg/requestlog"
)

var (
	successColor   = color.New(color.FgGreen, color.Bold)
	redirectColor  = color.New(color.FgYellow, color.Bold)
	clientErrColor = color.New(color.FgRed, color.Bold)
	serverErrColor = color.New(color.FgRed, color.Bold, color.BgWhite)
	methodColor    = color.New(color.FgMagenta, color.Bold)
	urlColor       = color.New(color.FgBlue)
	dimColor       = color.New(color.Faint)
)

func statusColor(code int) *color.Color {
	switch {
	case code >= 200 && code < 300:
		return successColor
	case code >= 300 && code < 400:
		return redirectColor
	case code >= 400 && code < 500:
		return clientErrColor
	default:
		return serverErrColor
	}
}

// printResult writes data as JSON when --json is set, otherwise calls textFn.
// In JSON mode only the encoded data goes to stdout.
func (a *app) printResult(data any, textFn func(w io.Writer)) error {
	if a.jsonOutput {
		return writeJSON(a.stdout, data)
	}
	textFn(a.stdout)
	return nil
}

func writeJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func printEndpointTable(w io.Writer, list []*endpoint.Endpoint) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No endpoints defined.")
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Method", "Path", "Status", "Delay", "Enabled", "Name"})
	for _, e := range list {
		delay := "-"
		if e.DelayMs > 0 {
			delay = strconv.Itoa(e.DelayMs) + "ms"
		}
		t.AppendRow(table.Row{e.ID, e.Method, e.Path, e.StatusCode, delay, yesNo(e.Enabled), e.Name})
	}
	t.Render()
	fmt.Fprintf(w, "%d endpoint(s)\n", len(list))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// requestPrinter writes one line per handled request. Lines from concurrent
// requests are not interleaved.
type requestPrinter struct {
	mu sync.Mutex
	w  io.Writer
}

// OnRequest implements requestlog.Listener.
func (p *requestPrinter) OnRequest(rec *requestlog.Record) {
	p.mu.Lock()
	defer p.mu.Unlock()

	dimColor.Fprintf(p.w, "%s ", rec.Timestamp.Format("15:04:05"))
	methodColor.Fprintf(p.w, "%-7s ", rec.Method)
	urlColor.Fprintf(p.w, "%s ", rec.Path)
	statusColor(rec.Status).Fprintf(p.w, "%d", rec.Status)
	dimColor.Fprintf(p.w, " %dms", rec.DurationMs)
	if !rec.Matched() {
		dimColor.Fprint(p.w, " (no match)")
	}
	fmt.Fprintln(p.w)
}
