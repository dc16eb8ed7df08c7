package diagram

import (
	"math"
	"sort"
	"strings"
)

const (
	unvisited = 0
	noise     = -1
)

// Cluster groups fragments by density over their top-left corners and
// returns one concept per cluster. Within a cluster fragments are read top to
// bottom, then left to right, and joined with single spaces. Clusters are
// emitted in order of their first fragment in the input.
//
// Fragments with blank text are ignored. When MinSamples > 1 leaves noise
// points, each becomes a concept of its own so no fragment is lost.
func Cluster(fragments []Fragment, cfg Config) []Concept {
	pts := make([]Fragment, 0, len(fragments))
	for _, f := range fragments {
		if strings.TrimSpace(f.Text) != "" {
			pts = append(pts, f)
		}
	}
	if len(pts) == 0 {
		return nil
	}

	labels := dbscan(pts, cfg.Epsilon, cfg.MinSamples)

	// Group indexes by label, keeping first-seen label order.
	var order []int
	groups := make(map[int][]int)
	nextNoise := -2
	for i, l := range labels {
		if l == noise {
			l = nextNoise
			nextNoise--
		}
		if _, ok := groups[l]; !ok {
			order = append(order, l)
		}
		groups[l] = append(groups[l], i)
	}

	concepts := make([]Concept, 0, len(order))
	for _, l := range order {
		idx := groups[l]
		sort.SliceStable(idx, func(a, b int) bool {
			pa, pb := pts[idx[a]].Box, pts[idx[b]].Box
			if pa.YMin != pb.YMin {
				return pa.YMin < pb.YMin
			}
			return pa.XMin < pb.XMin
		})
		words := make([]string, 0, len(idx))
		for _, i := range idx {
			words = append(words, strings.TrimSpace(pts[i].Text))
		}
		concepts = append(concepts, Concept{Text: strings.Join(words, " ")})
	}
	return concepts
}

// dbscan labels each point with a cluster id starting at 1, or noise.
func dbscan(pts []Fragment, eps float64, minSamples int) []int {
	labels := make([]int, len(pts))
	cluster := 0
	for i := range pts {
		if labels[i] != unvisited {
			continue
		}
		nbrs := neighbors(pts, i, eps)
		if len(nbrs) < minSamples {
			labels[i] = noise
			continue
		}
		cluster++
		labels[i] = cluster

		queue := append([]int(nil), nbrs...)
		for len(queue) > 0 {
			j := queue[0]
			queue = queue[1:]
			if labels[j] == noise {
				labels[j] = cluster // border point
			}
			if labels[j] != unvisited {
				continue
			}
			labels[j] = cluster
			if jn := neighbors(pts, j, eps); len(jn) >= minSamples {
				queue = append(queue, jn...)
			}
		}
	}
	return labels
}

// neighbors returns every point within eps of pts[i], including i.
func neighbors(pts []Fragment, i int, eps float64) []int {
	var out []int
	p := pts[i].Box
	for j := range pts {
		q := pts[j].Box
		if math.Hypot(p.XMin-q.XMin, p.YMin-q.YMin) <= eps {
			out = append(out, j)
		}
	}
	return out
}
