package belief

import (
	"container/heap"
	"sort"
)

// ranked is a hypothesis with its position in the generation it came from.
type ranked struct {
	Hypothesis
	order int
}

// worstFirst is a min-heap whose root is the hypothesis to evict next: the
// lowest weight, and among equal weights the latest inserted.
type worstFirst []ranked

func (h worstFirst) Len() int { return len(h) }
func (h worstFirst) Less(i, j int) bool {
	if h[i].Weight != h[j].Weight {
		return h[i].Weight < h[j].Weight
	}
	return h[i].order > h[j].order
}
func (h worstFirst) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *worstFirst) Push(x any)   { *h = append(*h, x.(ranked)) }
func (h *worstFirst) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// topK keeps the k heaviest hypotheses, earlier ones winning ties, and
// returns them in their original order along with the number dropped.
func topK(hyps []Hypothesis, k int) ([]Hypothesis, int) {
	if k <= 0 || len(hyps) <= k {
		return hyps, 0
	}
	h := make(worstFirst, 0, k+1)
	for i, hyp := range hyps {
		heap.Push(&h, ranked{Hypothesis: hyp, order: i})
		if h.Len() > k {
			heap.Pop(&h)
		}
	}
	sort.Slice(h, func(i, j int) bool { return h[i].order < h[j].order })
	kept := make([]Hypothesis, len(h))
	for i, r := range h {
		kept[i] = r.Hypothesis
	}
	return kept, len(hyps) - k
}
