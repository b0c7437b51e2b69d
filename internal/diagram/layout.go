package diagram

// layout computes pixel positions for a parsed diagram. Flow, class, and
// state diagrams get layered ranks (BFS from the roots); sequence
// diagrams get lifeline columns with one row per message.

const (
	nodeHeight = 44
	rankGap    = 70
	nodeGap    = 40

	lifelineGap   = 200
	messageGap    = 56
	lifelineTop   = 60
	canvasPadding = 30
)

type placedNode struct {
	Node
	X, Y          float64 // center
	Width, Height float64
}

type placedEdge struct {
	Edge
	X1, Y1, X2, Y2 float64
	LabelX, LabelY float64
}

type layoutResult struct {
	Nodes         []placedNode
	Edges         []placedEdge
	Width, Height float64
	Sequence      bool
}

func nodeWidth(label string) float64 {
	w := float64(len(label))*8.5 + 28
	if w < 70 {
		w = 70
	}
	return w
}

func layout(d *Diagram) *layoutResult {
	if d.Kind == KindSequence {
		return layoutSequence(d)
	}
	return layoutLayered(d)
}

// layoutLayered assigns each node a rank via BFS over the edge relation
// and spreads ranks along the flow direction
func layoutLayered(d *Diagram) *layoutResult {
	rank := make(map[string]int, len(d.Nodes))
	incoming := make(map[string]int, len(d.Nodes))
	adjacent := make(map[string][]string, len(d.Nodes))
	for _, e := range d.Edges {
		if e.From == e.To {
			continue
		}
		incoming[e.To]++
		adjacent[e.From] = append(adjacent[e.From], e.To)
	}

	var queue []string
	for _, n := range d.Nodes {
		if incoming[n.ID] == 0 {
			rank[n.ID] = 0
			queue = append(queue, n.ID)
		}
	}
	if len(queue) == 0 && len(d.Nodes) > 0 {
		// Fully cyclic; anchor at the first declared node
		rank[d.Nodes[0].ID] = 0
		queue = append(queue, d.Nodes[0].ID)
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range adjacent[id] {
			if r, seen := rank[next]; !seen || rank[id]+1 > r {
				// Re-ranking keeps a node below its deepest parent
				if !seen {
					queue = append(queue, next)
				}
				rank[next] = rank[id] + 1
			}
		}
	}
	// Unreachable nodes (cycles off the roots) land on rank 0
	for _, n := range d.Nodes {
		if _, ok := rank[n.ID]; !ok {
			rank[n.ID] = 0
		}
	}

	// Group by rank, preserving declaration order
	maxRank := 0
	byRank := map[int][]Node{}
	for _, n := range d.Nodes {
		r := rank[n.ID]
		byRank[r] = append(byRank[r], n)
		if r > maxRank {
			maxRank = r
		}
	}

	res := &layoutResult{}
	centers := make(map[string]placedNode, len(d.Nodes))

	for r := 0; r <= maxRank; r++ {
		row := byRank[r]
		// Total extent of this rank perpendicular to the flow direction
		var extent float64
		for _, n := range row {
			extent += nodeWidth(n.Label) + nodeGap
		}
		extent -= nodeGap

		cursor := -extent / 2
		for _, n := range row {
			w := nodeWidth(n.Label)
			var p placedNode
			p.Node = n
			p.Width, p.Height = w, nodeHeight
			if d.Direction == "LR" {
				p.X = float64(r) * (rankGap + 120)
				p.Y = cursor + nodeHeight/2
				cursor += nodeHeight + nodeGap
			} else {
				p.X = cursor + w/2
				p.Y = float64(r) * (rankGap + nodeHeight)
				cursor += w + nodeGap
			}
			centers[n.ID] = p
			res.Nodes = append(res.Nodes, p)
		}
	}

	for _, e := range d.Edges {
		from, to := centers[e.From], centers[e.To]
		pe := placedEdge{Edge: e}
		if d.Direction == "LR" {
			pe.X1, pe.Y1 = from.X+from.Width/2, from.Y
			pe.X2, pe.Y2 = to.X-to.Width/2, to.Y
		} else {
			pe.X1, pe.Y1 = from.X, from.Y+from.Height/2
			pe.X2, pe.Y2 = to.X, to.Y-to.Height/2
		}
		pe.LabelX = (pe.X1 + pe.X2) / 2
		pe.LabelY = (pe.Y1+pe.Y2)/2 - 6
		res.Edges = append(res.Edges, pe)
	}

	normalize(res)
	return res
}

// layoutSequence places one lifeline per participant and one row per message
func layoutSequence(d *Diagram) *layoutResult {
	res := &layoutResult{Sequence: true}

	lifelineX := make(map[string]float64, len(d.Nodes))
	for i, n := range d.Nodes {
		x := float64(i) * lifelineGap
		lifelineX[n.ID] = x
		res.Nodes = append(res.Nodes, placedNode{
			Node:  n,
			X:     x,
			Y:     0,
			Width: nodeWidth(n.Label), Height: nodeHeight,
		})
	}

	for i, e := range d.Edges {
		y := lifelineTop + float64(i+1)*messageGap
		pe := placedEdge{
			Edge: e,
			X1:   lifelineX[e.From], Y1: y,
			X2: lifelineX[e.To], Y2: y,
		}
		pe.LabelX = (pe.X1 + pe.X2) / 2
		pe.LabelY = y - 8
		res.Edges = append(res.Edges, pe)
	}

	// Lifelines extend one row past the last message
	res.Height = lifelineTop + float64(len(d.Edges)+1)*messageGap
	normalize(res)
	return res
}

// normalize shifts everything into positive coordinates and computes the
// canvas size
func normalize(res *layoutResult) {
	if len(res.Nodes) == 0 {
		res.Width, res.Height = canvasPadding*2, canvasPadding*2
		return
	}

	minX, minY := res.Nodes[0].X, res.Nodes[0].Y
	maxX, maxY := minX, minY
	for _, n := range res.Nodes {
		minX = min(minX, n.X-n.Width/2)
		maxX = max(maxX, n.X+n.Width/2)
		minY = min(minY, n.Y-n.Height/2)
		maxY = max(maxY, n.Y+n.Height/2)
	}

	dx, dy := canvasPadding-minX, canvasPadding-minY
	for i := range res.Nodes {
		res.Nodes[i].X += dx
		res.Nodes[i].Y += dy
	}
	for i := range res.Edges {
		res.Edges[i].X1 += dx
		res.Edges[i].X2 += dx
		res.Edges[i].Y1 += dy
		res.Edges[i].Y2 += dy
		res.Edges[i].LabelX += dx
		res.Edges[i].LabelY += dy
	}

	res.Width = maxX - minX + canvasPadding*2
	if res.Sequence {
		res.Height += canvasPadding
	} else {
		res.Height = maxY - minY + canvasPadding*2
	}
}
