package compare

// Sequence is a run of units from both sides with a correlation status.
// Equal sequences pair Left and Right unit by unit; Deleted sequences only
// have Left and Inserted sequences only Right.
type Sequence struct {
	Status Status
	Left   []*Unit
	Right  []*Unit
}

// correlate decomposes the two unit lists until no Unknown sequence is left.
// The worklist is a stack whose top is always the leftmost pending sequence,
// so the result comes out in document order.
func (e *engine) correlate(left, right []*Unit) []*Sequence {
	var out []*Sequence
	work := []*Sequence{{Status: Unknown, Left: left, Right: right}}
	top := true
	for len(work) > 0 {
		s := work[len(work)-1]
		work = work[:len(work)-1]
		if s.Status != Unknown {
			out = append(out, s)
			continue
		}
		next := e.step(s, top)
		top = false
		if stalled(s, next) {
			next = replaced(s.Left, s.Right)
		}
		for i := len(next) - 1; i >= 0; i-- {
			work = append(work, next[i])
		}
	}
	return out
}

// step replaces one Unknown sequence by the first decomposition that applies.
func (e *engine) step(s *Sequence, top bool) []*Sequence {
	l, r := s.Left, s.Right
	if len(l) == 0 || len(r) == 0 {
		return unknown(l, r)
	}
	if top && unrelated(l, r) {
		return replaced(l, r)
	}
	if next := e.commonEnds(l, r); next != nil {
		return next
	}
	if next := e.correlatedRun(l, r); next != nil {
		return next
	}
	if next := e.longestRun(l, r); next != nil {
		return next
	}
	return e.structural(l, r)
}

func stalled(s *Sequence, next []*Sequence) bool {
	if len(next) != 1 || next[0].Status != Unknown {
		return false
	}
	n := next[0]
	return sameUnits(n.Left, s.Left) && sameUnits(n.Right, s.Right)
}

func sameUnits(a, b []*Unit) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// unknown returns a pending sequence, or the definite one when a side is empty.
func unknown(l, r []*Unit) []*Sequence {
	switch {
	case len(l) == 0 && len(r) == 0:
		return nil
	case len(l) == 0:
		return []*Sequence{{Status: Inserted, Right: r}}
	case len(r) == 0:
		return []*Sequence{{Status: Deleted, Left: l}}
	}
	return []*Sequence{{Status: Unknown, Left: l, Right: r}}
}

func equal(l, r []*Unit) []*Sequence {
	if len(l) == 0 {
		return nil
	}
	return []*Sequence{{Status: Equal, Left: l, Right: r}}
}

// replaced marks l deleted and r inserted.
func replaced(l, r []*Unit) []*Sequence {
	var out []*Sequence
	if len(l) > 0 {
		out = append(out, &Sequence{Status: Deleted, Left: l})
	}
	if len(r) > 0 {
		out = append(out, &Sequence{Status: Inserted, Right: r})
	}
	return out
}

// pair matches two single units: Equal when their content agrees.
func pair(l, r *Unit) []*Sequence {
	if l.Hash == r.Hash {
		return equal([]*Unit{l}, []*Unit{r})
	}
	return []*Sequence{{Status: Unknown, Left: []*Unit{l}, Right: []*Unit{r}}}
}

func concat(parts ...[]*Sequence) []*Sequence {
	var out []*Sequence
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// unrelated reports two documents that share no block at all. Both sides
// need at least four groups.
func unrelated(l, r []*Unit) bool {
	if len(l) < 4 || len(r) < 4 {
		return false
	}
	hashes := make(map[string]bool, len(l))
	for _, u := range l {
		if u.Kind == UnitWord {
			return false
		}
		hashes[u.Hash] = true
	}
	for _, u := range r {
		if u.Kind == UnitWord || hashes[u.Hash] {
			return false
		}
	}
	return true
}

// significant applies the detail threshold to a run of n units.
func (e *engine) significant(n, n1, n2 int) bool {
	shorter := min(n1, n2)
	if shorter == 0 {
		return false
	}
	return float64(n)/float64(shorter) >= e.settings.DetailThreshold
}

// commonEnds matches a common prefix or, failing that, a common suffix.
// Leading paragraph marks are cut off a prefix unless nothing else matches.
func (e *engine) commonEnds(l, r []*Unit) []*Sequence {
	n1, n2 := len(l), len(r)

	p := 0
	for p < n1 && p < n2 && l[p].Hash == r[p].Hash {
		p++
	}
	lead := 0
	for lead < p-1 && l[lead].isMark() {
		lead++
	}
	if p > 0 && e.significant(p-lead, n1, n2) {
		return concat(unknown(l[:lead], r[:lead]), equal(l[lead:p], r[lead:p]), splitAtMark(l[p:], r[p:]))
	}

	s := 0
	for s < n1 && s < n2 && l[n1-1-s].Hash == r[n2-1-s].Hash {
		s++
	}
	for s > 1 && l[n1-s].isMark() {
		s--
	}
	if s == 0 {
		return nil
	}
	if markOnly(l[n1-s:]) || e.significant(s, n1, n2) {
		return concat(unknown(l[:n1-s], r[:n2-s]), equal(l[n1-s:], r[n2-s:]))
	}
	return nil
}

// markOnly reports a suffix that is a paragraph mark, alone or after one
// other unit.
func markOnly(run []*Unit) bool {
	switch len(run) {
	case 1:
		return run[0].isMark()
	case 2:
		return run[1].isMark()
	}
	return false
}

// splitAtMark splits remainders after the first paragraph mark on each side,
// so that a pending sequence does not straddle paragraphs needlessly.
func splitAtMark(l, r []*Unit) []*Sequence {
	i, j := firstMark(l), firstMark(r)
	if i < 0 || j < 0 || (i == len(l)-1 && j == len(r)-1) {
		return unknown(l, r)
	}
	return concat(unknown(l[:i+1], r[:j+1]), unknown(l[i+1:], r[j+1:]))
}

func firstMark(units []*Unit) int {
	for i, u := range units {
		if u.isMark() {
			return i
		}
	}
	return -1
}

// correlatedRun matches the longest run of paragraphs, tables or rows whose
// correlated hashes agree. Short runs must carry enough atoms to be trusted.
func (e *engine) correlatedRun(l, r []*Unit) []*Sequence {
	if len(l) < 3 || len(r) < 3 || !correlatable(l) || !correlatable(r) {
		return nil
	}
	i, j, n := longestCommon(len(l), len(r), func(a, b int) bool {
		return l[a].Kind == r[b].Kind && l[a].CorrelatedHash != "" &&
			l[a].CorrelatedHash == r[b].CorrelatedHash
	})
	if n == 0 {
		return nil
	}
	atoms := 0
	for _, u := range l[i : i+n] {
		atoms += len(u.Descendants())
	}
	if (n == 1 && atoms <= 16) || (n > 1 && n <= 3 && atoms <= 32) {
		return nil
	}
	out := unknown(l[:i], r[:j])
	for k := 0; k < n; k++ {
		out = append(out, pair(l[i+k], r[j+k])...)
	}
	return append(out, unknown(l[i+n:], r[j+n:])...)
}

func correlatable(units []*Unit) bool {
	for _, u := range units {
		switch u.Kind {
		case UnitParagraph, UnitTable, UnitRow:
		default:
			return false
		}
	}
	return true
}

// longestRun accepts the longest common run of equal units unless it is
// noise: a run led by a paragraph mark, a lone separator, a short run of
// breaks and separators, or a run below the detail threshold.
func (e *engine) longestRun(l, r []*Unit) []*Sequence {
	ids := map[string]int{}
	key := func(u *Unit) int {
		id, ok := ids[u.Hash]
		if !ok {
			id = len(ids)
			ids[u.Hash] = id
		}
		return id
	}
	lk, rk := make([]int, len(l)), make([]int, len(r))
	for i, u := range l {
		lk[i] = key(u)
	}
	for j, u := range r {
		rk[j] = key(u)
	}
	i, j, n := longestCommon(len(l), len(r), func(a, b int) bool { return lk[a] == rk[b] })
	if n == 0 {
		return nil
	}
	for n > 1 && l[i].isMark() {
		i, j, n = i+1, j+1, n-1
	}
	if n == 1 && l[i].isMark() && (i != len(l)-1 || j != len(r)-1) {
		return nil
	}
	if n == 1 && l[i].isSeparator(e.separators) {
		return nil
	}
	if n <= 3 && e.onlyBreaks(l[i:i+n]) {
		return nil
	}
	if !e.significant(n, len(l), len(r)) {
		return nil
	}
	return concat(unknown(l[:i], r[:j]), equal(l[i:i+n], r[j:j+n]), unknown(l[i+n:], r[j+n:]))
}

func (e *engine) onlyBreaks(units []*Unit) bool {
	for _, u := range units {
		if !u.isBreak() && !u.isSeparator(e.separators) {
			return false
		}
	}
	return true
}

// longestCommon finds the first longest run of positions where eq holds
// pairwise, in O(n·m) time and O(m) space.
func longestCommon(n, m int, eq func(i, j int) bool) (int, int, int) {
	prev, cur := make([]int, m+1), make([]int, m+1)
	bi, bj, best := 0, 0, 0
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			if !eq(i-1, j-1) {
				cur[j] = 0
				continue
			}
			cur[j] = prev[j-1] + 1
			if cur[j] > best {
				best = cur[j]
				bi, bj = i-best, j-best
			}
		}
		prev, cur = cur, prev
	}
	return bi, bj, best
}

// lcsPairs returns index pairs of a longest common subsequence under eq.
func lcsPairs(n, m int, eq func(i, j int) bool) [][2]int {
	table := make([][]int, n+1)
	for i := range table {
		table[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if eq(i, j) {
				table[i][j] = table[i+1][j+1] + 1
			} else {
				table[i][j] = max(table[i+1][j], table[i][j+1])
			}
		}
	}
	var pairs [][2]int
	for i, j := 0, 0; i < n && j < m; {
		switch {
		case eq(i, j):
			pairs = append(pairs, [2]int{i, j})
			i++
			j++
		case table[i+1][j] >= table[i][j+1]:
			i++
		default:
			j++
		}
	}
	return pairs
}
