package cmd

import (
	"io"

	gkcolor "github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/skt-inc/quicklink-infra/internal/synth"
)

// renderManifest prints the output manifest as a table, one row per output
// in declaration order. Values stay uncolored so they can be copied as-is.
func renderManifest(w io.Writer, manifest []synth.Output) error {
	grey := gkcolor.RGB(138, 138, 138)

	table := tablewriter.NewTable(w, tablewriter.WithHeaderAutoFormat(tw.Off))
	table.Header(
		gkcolor.HiBlue.Sprint("Output"),
		"Value",
		grey.Sprint("Description"),
	)

	data := make([][]any, len(manifest))
	for i, out := range manifest {
		data[i] = []any{gkcolor.HiBlue.Sprint(out.Name), out.Value, grey.Sprint(out.Description)}
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
