package voxel

import "sort"

// BlockCount is one palette entry's share of a grid.
type BlockCount struct {
	ID      int32
	Name    string
	Count   int
	Percent float64
}

// Stats summarizes the occupancy of a voxel grid.
type Stats struct {
	Shape        [3]int
	TotalBlocks  int
	UniqueBlocks int
	AirBlocks    int
	SolidBlocks  int
	AirPercent   float64
	TopBlocks    []BlockCount
}

// ComputeStats tallies block usage in the grid. TopBlocks lists the ten
// most frequent entries in descending order.
func ComputeStats(g *Grid, p *Palette) Stats {
	counts := make(map[int32]int)
	for _, id := range g.data {
		counts[id]++
	}

	air := make(map[int32]bool)
	for _, id := range p.AirIDs() {
		air[id] = true
	}

	s := Stats{
		Shape:        [3]int{g.W, g.H, g.D},
		TotalBlocks:  g.Len(),
		UniqueBlocks: len(counts),
	}
	for id, n := range counts {
		if air[id] {
			s.AirBlocks += n
		}
	}
	s.SolidBlocks = s.TotalBlocks - s.AirBlocks
	s.AirPercent = float64(s.AirBlocks) / float64(s.TotalBlocks) * 100

	for id, n := range counts {
		name, _ := p.Name(id)
		s.TopBlocks = append(s.TopBlocks, BlockCount{
			ID:      id,
			Name:    name,
			Count:   n,
			Percent: float64(n) / float64(s.TotalBlocks) * 100,
		})
	}
	sort.Slice(s.TopBlocks, func(i, j int) bool {
		if s.TopBlocks[i].Count != s.TopBlocks[j].Count {
			return s.TopBlocks[i].Count > s.TopBlocks[j].Count
		}
		return s.TopBlocks[i].ID < s.TopBlocks[j].ID
	})
	if len(s.TopBlocks) > 10 {
		s.TopBlocks = s.TopBlocks[:10]
	}
	return s
}
