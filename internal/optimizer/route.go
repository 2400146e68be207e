package optimizer

// RouteSequencer orders store visits with the classic nearest-neighbor
// heuristic: start at the origin and always travel to the closest unvisited
// store next. Not optimal, but O(n²), deterministic, and fine for the 3-5
// stops of a typical weekly shop; exact TSP is deliberately out of scope.
type RouteSequencer struct{}

// NewRouteSequencer creates a route sequencer.
func NewRouteSequencer() *RouteSequencer {
	return &RouteSequencer{}
}

// Sequence computes the visit order over a travel-time matrix where index 0
// is the origin and index i+1 is store i. It returns the store indexes in
// visit order and, aligned with them, the leg time from the previous stop.
// Ties choose the lower index, which is the lower store ID when the matrix
// was built over an ID-sorted store slice.
func (r *RouteSequencer) Sequence(matrix [][]float64) (order []int, legs []float64) {
	n := len(matrix) - 1
	if n <= 0 {
		return nil, nil
	}

	visited := make([]bool, n)
	current := 0 // matrix row of the previous stop; 0 is the origin

	for len(order) < n {
		next := -1
		var nextTime float64
		for j := 0; j < n; j++ {
			if visited[j] {
				continue
			}
			t := matrix[current][j+1]
			if next < 0 || t < nextTime {
				next = j
				nextTime = t
			}
		}
		visited[next] = true
		order = append(order, next)
		legs = append(legs, nextTime)
		current = next + 1
	}
	return order, legs
}
