package preview

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/labelsmith/labelsmith/pkg/geom"
	"github.com/labelsmith/labelsmith/pkg/item"
	"github.com/labelsmith/labelsmith/pkg/render"
)

// pointsPerInch converts canvas points to the inch units DOT expects
// for node width and height.
const pointsPerInch = 72.0

// DOT converts measured bounds to Graphviz DOT for the debug view.
// Every measured item becomes a pinned box node at its canvas position,
// the canvas itself a dashed outline, and overlapping items are joined
// by red edges. The resulting string can be rendered with [DebugSVG] or
// [DebugPNG].
//
// Neato keeps the pinned positions; DOT's y axis points up, so
// positions are flipped against the canvas height.
func DOT(items item.List, frame render.Frame) string {
	var buf bytes.Buffer
	buf.WriteString("graph bounds {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  splines=none;\n")
	buf.WriteString("  node [shape=box, fontsize=10, margin=\"0,0\"];\n")
	buf.WriteString("\n")

	canvas := frame.Canvas
	fmt.Fprintf(&buf, "  \"canvas\" [label=%q, pos=\"%.1f,%.1f!\", width=%.3f, height=%.3f, fixedsize=true, style=dashed, color=grey];\n",
		fmt.Sprintf("canvas %.0fx%.0f", canvas.Width, canvas.Height),
		canvas.Width/2, canvas.Height/2,
		canvas.Width/pointsPerInch, canvas.Height/pointsPerInch)
	buf.WriteString("\n")

	measured := make(item.List, 0, len(items))
	for _, it := range items {
		b, ok := frame.Bounds[it.ID]
		if !ok {
			continue
		}
		measured = append(measured, it)

		c := b.Center()
		fmt.Fprintf(&buf, "  %q [label=%q, pos=\"%.1f,%.1f!\", width=%.3f, height=%.3f, fixedsize=true];\n",
			it.ID, boundsLabel(it, b),
			c.X, canvas.Height-c.Y,
			b.Width/pointsPerInch, b.Height/pointsPerInch)
	}

	buf.WriteString("\n")
	for i := 0; i < len(measured); i++ {
		for j := i + 1; j < len(measured); j++ {
			a := frame.Bounds[measured[i].ID]
			b := frame.Bounds[measured[j].ID]
			if a.Overlaps(b) {
				fmt.Fprintf(&buf, "  %q -- %q [color=red, penwidth=2];\n",
					measured[i].ID, measured[j].ID)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func boundsLabel(it *item.Item, b geom.Rect) string {
	return fmt.Sprintf("%s\n%.0fx%.0f @ (%.0f,%.0f)", it.Label(), b.Width, b.Height, b.X, b.Y)
}

// DebugSVG renders the [DOT] debug view to SVG using Graphviz.
func DebugSVG(ctx context.Context, items item.List, frame render.Frame) ([]byte, error) {
	return renderDOT(ctx, DOT(items, frame), graphviz.SVG)
}

// DebugPNG renders the [DOT] debug view to PNG using Graphviz.
func DebugPNG(ctx context.Context, items item.List, frame render.Frame) ([]byte, error) {
	return renderDOT(ctx, DOT(items, frame), graphviz.PNG)
}

func renderDOT(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
