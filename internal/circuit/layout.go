package circuit

// Layers groups operation indices into time steps. An operation lands one
// step after the latest operation sharing any of its qubits, so operations in
// the same layer touch disjoint qubits and can be drawn in one column.
func (c *Circuit) Layers() [][]int {
	// Track the last layer used on each qubit
	lastLayer := make(map[Qubit]int)
	var layers [][]int

	for i, op := range c.ops {
		layer := 0
		for _, q := range op.Qubits {
			if l, ok := lastLayer[q]; ok {
				layer = max(layer, l+1)
			}
		}
		// Controlled ops also block the qubits they span in a diagram
		if lo, hi, ok := span(op); ok {
			for q := lo; q <= hi; q++ {
				if l, ok := lastLayer[q]; ok {
					layer = max(layer, l+1)
				}
			}
			for q := lo; q <= hi; q++ {
				lastLayer[q] = layer
			}
		}
		for len(layers) <= layer {
			layers = append(layers, nil)
		}
		layers[layer] = append(layers[layer], i)
		for _, q := range op.Qubits {
			lastLayer[q] = layer
		}
	}
	return layers
}

// Depth returns the number of layers.
func (c *Circuit) Depth() int {
	return len(c.Layers())
}

// Dependencies returns, for each operation, the indices of the operations it
// must follow: the previous operation on each of its qubits.
func (c *Circuit) Dependencies() [][]int {
	lastOnQubit := make(map[Qubit]int)
	deps := make([][]int, len(c.ops))
	for i, op := range c.ops {
		seen := make(map[int]bool)
		for _, q := range op.Qubits {
			if j, ok := lastOnQubit[q]; ok && !seen[j] {
				seen[j] = true
				deps[i] = append(deps[i], j)
			}
		}
		for _, q := range op.Qubits {
			lastOnQubit[q] = i
		}
	}
	return deps
}

// span returns the lowest and highest qubit of a multi-qubit operation.
func span(op Operation) (Qubit, Qubit, bool) {
	if len(op.Qubits) < 2 {
		return 0, 0, false
	}
	lo, hi := op.Qubits[0], op.Qubits[0]
	for _, q := range op.Qubits[1:] {
		lo = min(lo, q)
		hi = max(hi, q)
	}
	return lo, hi, true
}
