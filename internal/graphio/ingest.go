package graphio

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/distlabel/coretree/pkg/apperr"
	"github.com/distlabel/coretree/pkg/logger"
)

// ParseEdgeList reads a whitespace-separated "u v" edge list, one edge per
// line. Blank lines and lines starting with '#' are skipped, as are
// self-loops and edges with a negative endpoint. Malformed lines
// are logged and skipped rather than treated as fatal, per the ingester's
// tolerance for messy real-world input.
func ParseEdgeList(r io.Reader, log logger.Logger) ([]Edge, int32, error) {
	if log == nil {
		log = &logger.NullLogger{}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var edges []Edge
	var maxID int32 = -1
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			log.Warn("graphio: skipping malformed line %d: %q", lineNo, line)
			continue
		}
		u, errU := strconv.ParseInt(fields[0], 10, 32)
		v, errV := strconv.ParseInt(fields[1], 10, 32)
		if errU != nil || errV != nil {
			log.Warn("graphio: skipping malformed line %d: %q", lineNo, line)
			continue
		}
		if u == v {
			continue // self-loops carry no shortest-path information
		}
		if u < 0 || v < 0 {
			continue // negative ids are dropped
		}
		edges = append(edges, Edge{U: int32(u), V: int32(v)})
		if int32(u) > maxID {
			maxID = int32(u)
		}
		if int32(v) > maxID {
			maxID = int32(v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, apperr.Wrap(apperr.CodeMalformedInput, "graphio: failed to read edge list", err)
	}
	if len(edges) == 0 {
		return nil, 0, apperr.New(apperr.CodeMalformedInput, "graphio: edge list contained no usable edges")
	}
	return edges, maxID + 1, nil
}

// Dedup removes duplicate and anti-parallel edges, returning a sorted
// per-vertex adjacency list over the original (pre-rank) vertex ids.
func Dedup(edges []Edge, n int32) [][]int32 {
	seen := make([]map[int32]struct{}, n)
	for i := range seen {
		seen[i] = make(map[int32]struct{})
	}
	for _, e := range edges {
		if _, ok := seen[e.U][e.V]; ok {
			continue
		}
		seen[e.U][e.V] = struct{}{}
		seen[e.V][e.U] = struct{}{}
	}

	adj := make([][]int32, n)
	for u, nbrs := range seen {
		list := make([]int32, 0, len(nbrs))
		for v := range nbrs {
			list = append(list, v)
		}
		sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
		adj[u] = list
	}
	return adj
}

// neighborSet builds a hashable key for a sorted neighbor slice, used by
// EquivalenceClasses to detect vertices with identical neighborhoods.
func neighborSet(nbrs []int32) string {
	var sb strings.Builder
	for _, v := range nbrs {
		fmt.Fprintf(&sb, "%d,", v)
	}
	return sb.String()
}

// EquivalenceClasses folds vertices with identical closed neighborhoods
// (rule 1: N[u] == N[v], always true twins, distance 1 apart) or identical
// open neighborhoods (rule 2: N(u) == N(v) with u,v non-adjacent, false
// twins, distance 2 apart) into a single representative, returning the raw
// nid encoding for every original vertex (see Encode/Resolve) plus the
// reduced adjacency list containing only kept representatives.
func EquivalenceClasses(adj [][]int32) ([]int32, [][]int32) {
	n := int32(len(adj))
	nid := make([]int32, n)
	for i := range nid {
		nid[i] = -2 // unassigned sentinel, replaced below
	}

	closedKey := make(map[string]int32, n) // N[u] -> representative
	openKey := make(map[string]int32, n)    // N(u) -> representative

	kept := make([]int32, 0, n)
	keptAdj := make(map[int32][]int32, n)

	adjSet := make([]map[int32]struct{}, n)
	for u := int32(0); u < n; u++ {
		s := make(map[int32]struct{}, len(adj[u]))
		for _, v := range adj[u] {
			s[v] = struct{}{}
		}
		adjSet[u] = s
	}

	isAdjacent := func(u, v int32) bool {
		_, ok := adjSet[u][v]
		return ok
	}

	for u := int32(0); u < n; u++ {
		if nid[u] != -2 {
			continue
		}

		closed := append(append([]int32{}, adj[u]...), u)
		sort.Slice(closed, func(i, j int) bool { return closed[i] < closed[j] })
		ckey := neighborSet(closed)
		okey := neighborSet(adj[u])

		if rep, ok := closedKey[ckey]; ok && rep != u {
			nid[u] = Encode(rep, Rule1)
			continue
		}
		if rep, ok := openKey[okey]; ok && rep != u && !isAdjacent(u, rep) {
			nid[u] = Encode(rep, Rule2)
			continue
		}

		// u becomes a representative for this iteration; fold in any later
		// vertex that matches its neighborhood.
		rep := u
		nid[rep] = -2 // placeholder, fixed to dense id in the second pass below
		closedKey[ckey] = rep
		openKey[okey] = rep
		kept = append(kept, rep)
		keptAdj[rep] = adj[rep]

		for v := u + 1; v < n; v++ {
			if nid[v] != -2 {
				continue
			}
			vClosed := append(append([]int32{}, adj[v]...), v)
			sort.Slice(vClosed, func(i, j int) bool { return vClosed[i] < vClosed[j] })
			if neighborSet(vClosed) == ckey {
				nid[v] = Encode(rep, Rule1)
				continue
			}
			if neighborSet(adj[v]) == okey && !isAdjacent(rep, v) {
				nid[v] = Encode(rep, Rule2)
			}
		}
	}

	// Second pass: assign dense ids 0..k-1 to kept representatives in
	// original-id order, then rewrite their adjacency to only reference
	// other kept representatives (folded vertices are dropped from the
	// adjacency and recovered at query time through the remap rules).
	sort.Slice(kept, func(i, j int) bool { return kept[i] < kept[j] })
	denseOf := make(map[int32]int32, len(kept))
	isRep := make(map[int32]bool, len(kept))
	for i, rep := range kept {
		denseOf[rep] = int32(i)
		isRep[rep] = true
	}
	for v := int32(0); v < n; v++ {
		if isRep[v] {
			nid[v] = denseOf[v]
			continue
		}
		rep, class := resolveRaw(nid[v])
		nid[v] = Encode(denseOf[rep], class)
	}

	// nid is now fully dense-encoded, so Resolve(nid[w]) gives w's final
	// representative dense id directly.
	reduced := make([][]int32, len(kept))
	for i, rep := range kept {
		var out []int32
		repSeen := map[int32]struct{}{int32(i): {}}
		for _, w := range keptAdj[rep] {
			dense, _ := Resolve(nid[w])
			if _, dup := repSeen[dense]; !dup {
				repSeen[dense] = struct{}{}
				out = append(out, dense)
			}
		}
		sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
		reduced[i] = out
	}

	return nid, reduced
}

// resolveRaw decodes an in-progress nid value that may still hold the raw
// representative vertex id (pre-dense-remap) instead of a final dense id.
func resolveRaw(nid int32) (rep int32, class EquivClass) {
	return Resolve(nid)
}

// Rank orders the reduced-graph vertices by descending degree, breaking ties
// by ascending original id, matching the "most-connected first" heuristic
// the peeling reducer relies on for a good bit-parallel root selection.
func Rank(adj [][]int32) []int32 {
	n := len(adj)
	order := make([]int32, n)
	for i := range order {
		order[i] = int32(i)
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if len(adj[a]) != len(adj[b]) {
			return len(adj[a]) > len(adj[b])
		}
		return a < b
	})

	// rankOf[original] = position in descending-degree order
	rankOf := make([]int32, n)
	for pos, v := range order {
		rankOf[v] = int32(pos)
	}
	return rankOf
}

// BuildRemap renumbers a reduced adjacency list by the given rank assignment
// (rankOf[original vertex] = new dense id) and returns the renumbered Graph.
func BuildRemap(adj [][]int32, rankOf []int32) *Graph {
	n := len(adj)
	byRank := make([][]int32, n)
	for orig, nbrs := range adj {
		newID := rankOf[orig]
		renum := make([]int32, len(nbrs))
		for i, w := range nbrs {
			renum[i] = rankOf[w]
		}
		sort.Slice(renum, func(i, j int) bool { return renum[i] < renum[j] })
		byRank[newID] = renum
	}
	return NewGraph(byRank)
}

// ComposeNID rewrites a per-original-vertex remap table so every entry's
// representative id points at its final rank-renumbered dense id instead of
// its pre-rank fold-dense id. EquivalenceClasses and Rank/BuildRemap operate
// on two different dense-id spaces (fold order, then rank order); this is
// the glue step the ingest pipeline runs between them.
func ComposeNID(nid []int32, rankOf []int32) []int32 {
	out := make([]int32, len(nid))
	for v, raw := range nid {
		rep, class := Resolve(raw)
		out[v] = Encode(rankOf[rep], class)
	}
	return out
}
