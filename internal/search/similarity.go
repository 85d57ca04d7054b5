package search

// Neighbor is another document and its similarity to the row's document.
type Neighbor struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// SimilarityMatrix holds the dense pairwise cosine similarities of every
// document in a vector space. Scores are clamped to [0,1] and the diagonal is
// 1.0. It is read-only after construction.
type SimilarityMatrix struct {
	n     int
	cells []float64
}

// NewSimilarityMatrix computes all pairwise similarities. Only the upper
// triangle is computed; the lower triangle mirrors it so the matrix is exactly
// symmetric.
func NewSimilarityMatrix(space *VectorSpace) *SimilarityMatrix {
	n := len(space.Vectors)
	m := &SimilarityMatrix{
		n:     n,
		cells: make([]float64, n*n),
	}

	for i := 0; i < n; i++ {
		m.cells[i*n+i] = 1.0
		for j := i + 1; j < n; j++ {
			score := clamp(space.Vectors[i].Dot(space.Vectors[j]))
			m.cells[i*n+j] = score
			m.cells[j*n+i] = score
		}
	}

	return m
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// Size returns the number of documents.
func (m *SimilarityMatrix) Size() int {
	return m.n
}

// At returns the similarity between documents i and j.
func (m *SimilarityMatrix) At(i, j int) float64 {
	return m.cells[i*m.n+j]
}

// Row returns the similarity of document i to every other document, in
// document order. The document itself is excluded. Out-of-range rows are nil.
func (m *SimilarityMatrix) Row(i int) []Neighbor {
	if i < 0 || i >= m.n {
		return nil
	}

	row := make([]Neighbor, 0, m.n-1)
	base := i * m.n
	for j := 0; j < m.n; j++ {
		if j == i {
			continue
		}
		row = append(row, Neighbor{Index: j, Score: m.cells[base+j]})
	}
	return row
}

// Mean returns the average off-diagonal similarity, or 0 for fewer than two
// documents.
func (m *SimilarityMatrix) Mean() float64 {
	if m.n < 2 {
		return 0
	}
	var sum float64
	for i := 0; i < m.n; i++ {
		for j := i + 1; j < m.n; j++ {
			sum += m.cells[i*m.n+j]
		}
	}
	pairs := float64(m.n*(m.n-1)) / 2
	return sum / pairs
}
