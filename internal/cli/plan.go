package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/fpang/photo-slideshow/internal/filehandler"
	"github.com/fpang/photo-slideshow/internal/slideshow"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

var planHeaders = []string{"#", "Image", "Type", "Size", "Orientation", "Frames", "Shown", "Status"}

// right-aligned columns of the plan table
var planNumeric = map[int]bool{1: true, 6: true, 7: true}

// RenderPlan writes a dry-run summary followed by one table row per image.
func RenderPlan(w io.Writer, plan *slideshow.Plan) error {
	if _, err := fmt.Fprintf(w, "Length: %s\nGeometry: %s  Codec: %s\n\n",
		FormatLength(plan.AudioSeconds, plan.Frames, plan.FrameRate), plan.Geometry, plan.Codec); err != nil {
		return err
	}

	rows := make([][]string, 0, len(plan.Entries))
	for _, e := range plan.Entries {
		size, status := fmt.Sprintf("%dx%d", e.Width, e.Height), "ok"
		if e.Err != nil {
			size, status = "-", "unreadable, will be skipped"
		}
		mimeType, err := filehandler.GetMIMEType(filepath.Ext(e.Source.Path))
		if err != nil {
			mimeType = "-"
		}
		rows = append(rows, []string{
			strconv.Itoa(e.Position),
			filepath.Base(e.Source.Path),
			mimeType,
			size,
			strconv.Itoa(e.Orientation),
			fmt.Sprintf("%d-%d", e.Run.Start, e.Run.End-1),
			fmt.Sprintf("%.2fs", e.ShownFor.Seconds()),
			status,
		})
	}

	_, err := fmt.Fprintln(w, renderTable(planHeaders, rows, planNumeric))
	return err
}

func renderTable(headers []string, rows [][]string, right map[int]bool) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if right[i+1] {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
