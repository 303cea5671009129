package pipeline

import "math"

type point struct{ x, y float64 }

const (
	springIterations = 50
	springK          = 0.5
	springScale      = 2.0
)

// layout positions the subgraph. x comes from the chosen layout; y is always
// the node's level normalised to [0, 1].
func layout(sg subgraph, levels map[string]int, kind string) map[string]point {
	var pos map[string]point
	if kind == LayoutLayered {
		pos = layeredLayout(sg, levels)
	} else {
		pos = springLayout(sg)
	}

	maxLevel := 0
	for _, l := range levels {
		maxLevel = max(maxLevel, l)
	}
	for id, p := range pos {
		if maxLevel > 0 {
			p.y = float64(levels[id]) / float64(maxLevel)
		} else {
			p.y = 0
		}
		pos[id] = p
	}
	return pos
}

// layeredLayout spreads the nodes of each level evenly across [0, 1].
func layeredLayout(sg subgraph, levels map[string]int) map[string]point {
	byLevel := make(map[int][]string)
	for _, id := range sg.ids {
		byLevel[levels[id]] = append(byLevel[levels[id]], id)
	}
	pos := make(map[string]point, len(sg.ids))
	for _, ids := range byLevel {
		for i, id := range ids {
			pos[id] = point{x: float64(i+1) / float64(len(ids)+1)}
		}
	}
	return pos
}

// springLayout is a Fruchterman-Reingold force layout started from a circle,
// so the same graph always lands in the same place.
func springLayout(sg subgraph) map[string]point {
	n := len(sg.ids)
	pos := make(map[string]point, n)
	if n == 0 {
		return pos
	}
	if n == 1 {
		pos[sg.ids[0]] = point{}
		return pos
	}

	p := make([]point, n)
	index := make(map[string]int, n)
	for i, id := range sg.ids {
		angle := 2 * math.Pi * float64(i) / float64(n)
		p[i] = point{math.Cos(angle), math.Sin(angle)}
		index[id] = i
	}

	temp := 0.1
	cool := temp / float64(springIterations+1)
	disp := make([]point, n)
	for iter := 0; iter < springIterations; iter++ {
		for i := range disp {
			disp[i] = point{}
		}
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				dx, dy := p[i].x-p[j].x, p[i].y-p[j].y
				d := math.Max(math.Hypot(dx, dy), 0.01)
				f := springK * springK / d
				disp[i].x += dx / d * f
				disp[i].y += dy / d * f
				disp[j].x -= dx / d * f
				disp[j].y -= dy / d * f
			}
		}
		for _, from := range sg.ids {
			i := index[from]
			for _, to := range sg.succ[from] {
				j := index[to]
				dx, dy := p[i].x-p[j].x, p[i].y-p[j].y
				d := math.Max(math.Hypot(dx, dy), 0.01)
				f := d * d / springK
				disp[i].x -= dx / d * f
				disp[i].y -= dy / d * f
				disp[j].x += dx / d * f
				disp[j].y += dy / d * f
			}
		}
		for i := range p {
			l := math.Max(math.Hypot(disp[i].x, disp[i].y), 0.01)
			step := math.Min(l, temp)
			p[i].x += disp[i].x / l * step
			p[i].y += disp[i].y / l * step
		}
		temp -= cool
	}

	// Centre on the origin and scale the widest extent to springScale.
	var cx, cy float64
	for _, q := range p {
		cx += q.x
		cy += q.y
	}
	cx /= float64(n)
	cy /= float64(n)
	extent := 0.0
	for i := range p {
		p[i].x -= cx
		p[i].y -= cy
		extent = math.Max(extent, math.Max(math.Abs(p[i].x), math.Abs(p[i].y)))
	}
	for i, id := range sg.ids {
		q := p[i]
		if extent > 0 {
			q.x = q.x / extent * springScale
		}
		pos[id] = q
	}
	return pos
}
