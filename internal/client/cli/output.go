package cli

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

// output serialises writes from the REPL and from background notifications.
type output struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
	// width is the terminal width; 0 disables truncation.
	width int
}

func newOutput(w io.Writer, colored bool) *output {
	if w == nil {
		w = io.Discard
	}
	return &output{w: w, color: colored}
}

func (o *output) write(s string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, _ = io.WriteString(o.w, s)
}

func (o *output) Println(a ...any) { o.write(fmt.Sprintln(a...)) }

func (o *output) Printf(format string, a ...any) { o.write(fmt.Sprintf(format, a...)) }

func (o *output) Successf(format string, a ...any) {
	o.write(o.paint(color.Green, fmt.Sprintf(format, a...)))
}

func (o *output) Warnf(format string, a ...any) {
	o.write(o.paint(color.Yellow, fmt.Sprintf(format, a...)))
}

func (o *output) Failf(format string, a ...any) {
	o.write(o.paint(color.Red, fmt.Sprintf(format, a...)))
}

func (o *output) paint(c color.Color, s string) string {
	if !o.color {
		return s
	}
	return c.Render(s)
}

func (o *output) Table(header []string, rows [][]string) {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.AppendBulk(rows)
	table.Render()

	o.write(buf.String())
}

// truncate shortens s to fit a share of the terminal width.
func (o *output) truncate(s string) string {
	limit := o.width / 3
	if limit < 8 {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}

func progressBar(percent int) string {
	const cells = 20
	percent = max(0, min(percent, 100))
	filled := percent * cells / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", cells-filled) + "]" + fmt.Sprintf(" %3d%%", percent)
}
