package layout

import (
	"github.com/gclm/flowgraph/pkg/dag/transform"
	"github.com/gclm/flowgraph/pkg/workflow"
)

// Position is the top-left corner of a node glyph.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Placement is one positioned node. Layer and Index locate it in the
// layering it was computed from.
type Placement struct {
	Ref   string `json:"ref"`
	Layer int    `json:"layer"`
	Index int    `json:"index"`
	Position

	// Node is the position of the placed node in the list that was layered,
	// or -1 when the layout was computed from refs alone.
	Node int `json:"-"`
}

// Layout is a set of positioned nodes together with the canvas size needed
// to draw them.
type Layout struct {
	Profile    Profile     `json:"profile"`
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	Placements []Placement `json:"placements"`

	// Positions maps each ref to its position. When a ref occurs more than
	// once the last placement wins; Placements keeps all of them.
	Positions map[string]Position `json:"-"`
}

// Empty reports whether nothing was placed.
func (l Layout) Empty() bool { return len(l.Placements) == 0 }

// Compute places layers top to bottom, one row per layer.
//
// Within a row, nodes run left to right at a stride of NodeWidth+SpacingX.
// Every row is centered against the widest one: a row of n nodes spans
// n*NodeWidth + (n-1)*SpacingX and starts at half the difference between the
// widest span and its own. Row i sits at y = i*(NodeHeight+SpacingY).
//
// The canvas is the rightmost x plus NodeWidth+SpacingX wide and
// len(layers)*(NodeHeight+SpacingY) + SpacingY tall. The result depends only
// on its arguments.
func Compute(layers []transform.Layer, p Profile) Layout {
	stride := p.NodeWidth + p.SpacingX

	widths := make([]float64, len(layers))
	maxWidth := 0.0
	for i, l := range layers {
		widths[i] = spanWidth(len(l), p)
		maxWidth = max(maxWidth, widths[i])
	}

	out := Layout{Profile: p, Positions: make(map[string]Position)}
	maxX := 0.0
	for i, l := range layers {
		offset := (maxWidth - widths[i]) / 2
		y := float64(i) * (p.NodeHeight + p.SpacingY)
		for j, ref := range l {
			pos := Position{X: offset + float64(j)*stride, Y: y}
			out.Placements = append(out.Placements, Placement{Ref: ref, Layer: i, Index: j, Position: pos, Node: -1})
			out.Positions[ref] = pos
			maxX = max(maxX, pos.X)
		}
	}

	out.Width = maxX + p.NodeWidth + p.SpacingX
	out.Height = float64(len(layers))*(p.NodeHeight+p.SpacingY) + p.SpacingY
	return out
}

// Place is Compute for a layering result. Each placement also records the
// node it was made for, so nodes sharing a ref keep their own slots.
func Place(res transform.Result, p Profile) Layout {
	out := Compute(res.Layers, p)
	k := 0
	for i, layer := range res.Layers {
		for j := range layer {
			if i < len(res.Indices) && j < len(res.Indices[i]) {
				out.Placements[k].Node = res.Indices[i][j]
			}
			k++
		}
	}
	return out
}

// NodePositions returns the position of every node in nodes, which must be
// the list the layout was computed for. placed[i] is false for nodes
// without a slot.
//
// Placements that recorded their node are matched by index. The others are
// matched by ref: the k-th node with a given ref takes the k-th placement
// of that ref.
func (l Layout) NodePositions(nodes []workflow.Node) (pos []Position, placed []bool) {
	pos = make([]Position, len(nodes))
	placed = make([]bool, len(nodes))

	byRef := make(map[string][]Position)
	for _, pl := range l.Placements {
		if pl.Node >= 0 && pl.Node < len(nodes) && nodes[pl.Node].Ref == pl.Ref {
			pos[pl.Node], placed[pl.Node] = pl.Position, true
			continue
		}
		byRef[pl.Ref] = append(byRef[pl.Ref], pl.Position)
	}
	for i, n := range nodes {
		if placed[i] {
			continue
		}
		if queue := byRef[n.Ref]; len(queue) > 0 {
			pos[i], placed[i] = queue[0], true
			byRef[n.Ref] = queue[1:]
		}
	}
	return pos, placed
}

// Linear places refs in a single row starting one spacing in from the top
// left corner, with no centering. It is used when only a flat phase list is
// available. The canvas is len(refs)*(NodeWidth+SpacingX) + SpacingX wide and
// NodeHeight + 2*SpacingY tall.
func Linear(refs []string, p Profile) Layout {
	stride := p.NodeWidth + p.SpacingX
	out := Layout{Profile: p, Positions: make(map[string]Position, len(refs))}
	for i, ref := range refs {
		pos := Position{X: p.SpacingX + float64(i)*stride, Y: p.SpacingY}
		out.Placements = append(out.Placements, Placement{Ref: ref, Index: i, Position: pos, Node: i})
		out.Positions[ref] = pos
	}
	out.Width = float64(len(refs))*stride + p.SpacingX
	out.Height = p.NodeHeight + 2*p.SpacingY
	return out
}

func spanWidth(n int, p Profile) float64 {
	if n == 0 {
		return 0
	}
	return float64(n)*p.NodeWidth + float64(n-1)*p.SpacingX
}
