package sparse

import "sort"

// RCM returns a reverse Cuthill-McKee ordering of the symmetric sparsity
// pattern of a. perm[new] is the original index placed at position new.
// Each connected component starts from its lowest degree vertex.
func RCM(a *CSR) []int {
	n, _ := a.Dims()
	degree := make([]int, n)
	for i := 0; i < n; i++ {
		a.Row(i, func(j int, _ float64) {
			if j != i {
				degree[i]++
			}
		})
	}
	visited := make([]bool, n)
	order := make([]int, 0, n)
	var nbrs []int
	for len(order) < n {
		start := -1
		for i := 0; i < n; i++ {
			if !visited[i] && (start < 0 || degree[i] < degree[start]) {
				start = i
			}
		}
		visited[start] = true
		order = append(order, start)
		for head := len(order) - 1; head < len(order); head++ {
			v := order[head]
			nbrs = nbrs[:0]
			a.Row(v, func(j int, _ float64) {
				if !visited[j] {
					visited[j] = true
					nbrs = append(nbrs, j)
				}
			})
			sort.Slice(nbrs, func(x, y int) bool {
				if degree[nbrs[x]] != degree[nbrs[y]] {
					return degree[nbrs[x]] < degree[nbrs[y]]
				}
				return nbrs[x] < nbrs[y]
			})
			order = append(order, nbrs...)
		}
	}
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}

// Bandwidth returns the half bandwidth of a after symmetric permutation by
// perm, as returned by RCM. A nil perm measures a as is.
func Bandwidth(a *CSR, perm []int) int {
	n, _ := a.Dims()
	pos := make([]int, n)
	for i := range pos {
		pos[i] = i
	}
	for newIdx, old := range perm {
		pos[old] = newIdx
	}
	k := 0
	for i := 0; i < n; i++ {
		a.Row(i, func(j int, _ float64) {
			d := pos[i] - pos[j]
			if d < 0 {
				d = -d
			}
			if d > k {
				k = d
			}
		})
	}
	return k
}
