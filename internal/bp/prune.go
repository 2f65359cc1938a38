package bp

// Prune reports whether the core labeler can skip adding a candidate
// landmark v to u's label at distance dis because the bit-parallel sketch
// already certifies a path of length <= dis between a shared root layer.
// This mirrors Query's layer-distance logic but only needs a yes/no answer,
// so it stops at the first root that proves it.
func Prune(t *Table, u, v int32, dis int) bool {
	lu, lv := &t.Labels[u], &t.Labels[v]
	for i := 0; i < R; i++ {
		td := int(lu.D[i]) + int(lv.D[i])
		if td-2 > dis {
			continue
		}
		if lu.S[i][0]&lv.S[i][0] != 0 {
			td -= 2
		} else if (lu.S[i][0]&lv.S[i][1])|(lu.S[i][1]&lv.S[i][0]) != 0 {
			td -= 1
		}
		if td <= dis {
			return true
		}
	}
	return false
}
