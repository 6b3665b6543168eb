package compare

// structural decomposes a sequence that has no usable common run by looking
// at the shape of its units.
func (e *engine) structural(l, r []*Unit) []*Sequence {
	if mixed(l, r) {
		return kindRuns(l, r)
	}
	switch l[0].Kind {
	case UnitTable:
		if len(l) == 1 && len(r) == 1 {
			return tables(l[0], r[0])
		}
		return pairByStructure(l, r)
	case UnitRow:
		if len(l) == 1 && len(r) == 1 {
			return rows(l[0], r[0])
		}
		return pairByStructure(l, r)
	case UnitParagraph, UnitCell, UnitTextbox:
		if len(l) == 1 && len(r) == 1 {
			return unknown(l[0].Children, r[0].Children)
		}
		return unknown(children(l), children(r))
	}
	return replaced(l, r)
}

func mixed(l, r []*Unit) bool {
	k := l[0].Kind
	for _, side := range [][]*Unit{l, r} {
		for _, u := range side {
			if u.Kind != k {
				return true
			}
		}
	}
	return false
}

func children(units []*Unit) []*Unit {
	var out []*Unit
	for _, u := range units {
		out = append(out, u.Children...)
	}
	return out
}

// kindRuns splits both sides into runs of one unit kind and pairs the runs
// by a common subsequence of their kinds. Unpaired runs are replaced.
func kindRuns(l, r []*Unit) []*Sequence {
	runsL, runsR := splitKinds(l), splitKinds(r)
	pairs := lcsPairs(len(runsL), len(runsR), func(i, j int) bool {
		return runsL[i][0].Kind == runsR[j][0].Kind
	})
	var out []*Sequence
	pi, pj := 0, 0
	for _, p := range pairs {
		out = append(out, replaced(flat(runsL[pi:p[0]]), flat(runsR[pj:p[1]]))...)
		out = append(out, unknown(runsL[p[0]], runsR[p[1]])...)
		pi, pj = p[0]+1, p[1]+1
	}
	return append(out, replaced(flat(runsL[pi:]), flat(runsR[pj:]))...)
}

func splitKinds(units []*Unit) [][]*Unit {
	var runs [][]*Unit
	for i := 0; i < len(units); {
		j := i + 1
		for j < len(units) && units[j].Kind == units[i].Kind {
			j++
		}
		runs = append(runs, units[i:j])
		i = j
	}
	return runs
}

func flat(runs [][]*Unit) []*Unit {
	var out []*Unit
	for _, r := range runs {
		out = append(out, r...)
	}
	return out
}

// tables compares two tables. Tables of identical row shapes are compared
// row by row; tables without merged cells fall back to row alignment; tables
// whose merged cells differ are replaced wholesale.
func tables(a, b *Unit) []*Sequence {
	rowsA, rowsB := a.Children, b.Children
	if len(rowsA) == len(rowsB) && sameStructure(rowsA, rowsB) {
		var out []*Sequence
		for k := range rowsA {
			out = append(out, pair(rowsA[k], rowsB[k])...)
		}
		return out
	}
	if a.StructureHash == b.StructureHash || (!hasMergedCells(a.Element) && !hasMergedCells(b.Element)) {
		return unknown(rowsA, rowsB)
	}
	return replaced([]*Unit{a}, []*Unit{b})
}

func sameStructure(a, b []*Unit) bool {
	for k := range a {
		if a[k].StructureHash != b[k].StructureHash {
			return false
		}
	}
	return true
}

// rows pairs the cells of two rows when their counts agree.
func rows(a, b *Unit) []*Sequence {
	if len(a.Children) != len(b.Children) {
		return unknown(a.Children, b.Children)
	}
	var out []*Sequence
	for k := range a.Children {
		out = append(out, pair(a.Children[k], b.Children[k])...)
	}
	return out
}

// pairByStructure aligns several tables or rows by their shapes.
func pairByStructure(l, r []*Unit) []*Sequence {
	pairs := lcsPairs(len(l), len(r), func(i, j int) bool {
		return l[i].StructureHash == r[j].StructureHash
	})
	var out []*Sequence
	pi, pj := 0, 0
	for _, p := range pairs {
		out = append(out, replaced(l[pi:p[0]], r[pj:p[1]])...)
		out = append(out, pair(l[p[0]], r[p[1]])...)
		pi, pj = p[0]+1, p[1]+1
	}
	return append(out, replaced(l[pi:], r[pj:])...)
}
