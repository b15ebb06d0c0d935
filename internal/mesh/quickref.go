package mesh

// QuickRef summarizes the elements by type. When every type's elements sit
// contiguously in Elements, Start holds the position of each type's first
// element; otherwise Index lists the positions per type. Exactly one of the
// two is populated.
type QuickRef struct {
	Count         map[ElementType]int
	UseStartIndex bool
	Start         map[ElementType]int
	Index         map[ElementType][]int
}

// Positions returns the positions in Elements of the elements of one type
func (q QuickRef) Positions(t ElementType) []int {
	n := q.Count[t]
	if n == 0 {
		return nil
	}
	if !q.UseStartIndex {
		return q.Index[t]
	}
	out := make([]int, n)
	for i := range out {
		out[i] = q.Start[t] + i
	}
	return out
}

// UpdateQuickRef recomputes the quick reference from Elements
func (m *Mesh) UpdateQuickRef() {
	q := QuickRef{Count: make(map[ElementType]int)}
	first := make(map[ElementType]int)
	contiguous := true
	prev := UnknownElement
	for i, e := range m.Elements {
		if _, seen := first[e.Type]; !seen {
			first[e.Type] = i
		} else if e.Type != prev {
			contiguous = false
		}
		q.Count[e.Type]++
		prev = e.Type
	}

	if contiguous {
		q.UseStartIndex = true
		q.Start = first
	} else {
		q.Index = make(map[ElementType][]int, len(q.Count))
		for i, e := range m.Elements {
			q.Index[e.Type] = append(q.Index[e.Type], i)
		}
	}
	m.QuickRef = q
}
