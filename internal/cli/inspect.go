package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/archviz/pkg/architecture"
	"github.com/matzehuels/archviz/pkg/diagram"
	"github.com/matzehuels/archviz/pkg/io"
	"github.com/matzehuels/archviz/pkg/pipeline"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		opts   pipeline.Options
		export string
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List the clusters, nodes and edges of a diagram",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), opts, export)
		},
	}

	cmd.Flags().StringVarP(&opts.Diagram, "diagram", "d", architecture.DefaultName, "built-in diagram to inspect")
	cmd.Flags().StringVar(&opts.File, "file", "", "diagram definition file (.toml or .json)")
	cmd.Flags().StringVar(&export, "export", "", "also write the definition to this .toml or .json file")
	_ = cmd.RegisterFlagCompletionFunc("diagram", completeDiagrams)

	return cmd
}

// runInspect prints the diagram's structure. A non-empty export path writes
// the loaded definition there, which turns a built-in diagram into an
// editable --file.
func (c *CLI) runInspect(ctx context.Context, opts pipeline.Options, export string) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	d, err := pipeline.NewRunner(nil, nil, c.Logger).Load(ctx, opts)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, StyleTitle.Render(d.Name))
	printKeyValue("Filename", d.Filename)
	printKeyValue("Direction", string(d.Direction))
	printKeyValue("Source", opts.Source())
	fmt.Fprintln(stdout)

	fmt.Fprintln(stdout, renderTable([]string{"Cluster", "Label", "Parent", "Nodes"}, clusterRows(d)))
	fmt.Fprintln(stdout, renderTable([]string{"Node", "Kind", "Cluster", "Label"}, nodeRows(d)))
	fmt.Fprintln(stdout, renderTable([]string{"#", "From", "To", "Label", "Color", "Style"}, edgeRows(d)))

	if export != "" {
		if err := io.ExportFile(d, export); err != nil {
			return err
		}
		printFile(export)
	}
	return nil
}

func clusterRows(d *diagram.Diagram) [][]string {
	rows := make([][]string, 0, d.ClusterCount())
	for _, cl := range d.Clusters() {
		rows = append(rows, []string{
			strings.Repeat("  ", d.Depth(cl.ID)-1) + cl.ID,
			cl.Label,
			dash(cl.Parent),
			strconv.Itoa(len(d.Members(cl.ID))),
		})
	}
	return rows
}

func nodeRows(d *diagram.Diagram) [][]string {
	rows := make([][]string, 0, d.NodeCount())
	for _, n := range d.Nodes() {
		rows = append(rows, []string{n.ID, string(n.Kind), dash(n.Cluster), oneLine(n.DisplayLabel())})
	}
	return rows
}

func edgeRows(d *diagram.Diagram) [][]string {
	edges := d.Edges()
	rows := make([][]string, 0, len(edges))
	for i, e := range edges {
		rows = append(rows, []string{strconv.Itoa(i + 1), e.From, e.To, dash(e.Label), dash(e.Color), dash(e.Style)})
	}
	return rows
}

func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleTableBorder).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleTableHeader.Padding(0, 1)
			}
			return styleTableCell
		})
	return t.Render()
}

func oneLine(s string) string {
	return strings.ReplaceAll(s, "\n", " / ")
}

func dash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
