package layout

// This file implements the lattice queries over a finalized registry:
// LessEqual, Join, Meet, and LeastLiveableAncestor. Before the registry is
// finalized, LessEqual/Join/Meet answer only a Top-vs-Top query and fail
// with ErrNotFinalized otherwise, and LeastLiveableAncestor returns Top;
// full answers need Layout::FinalizeHierarchy() to have run.
//
// The closure helpers below walk the covering-edge DAG breadth-first, in
// the same allocation-light style as mmr.Ancestors: no recursion, a plain
// slice-backed queue, and a map only where membership testing is the goal.

// Ancestors returns every proper ancestor of l (not including l itself), in
// no particular order.
func Ancestors(l *Layout) []*Layout {
	return closure(l, func(n *Layout) []*Layout { return n.parents })
}

// Descendants returns every proper descendant of l (not including l
// itself), in no particular order.
func Descendants(l *Layout) []*Layout {
	return closure(l, func(n *Layout) []*Layout { return n.children })
}

func closure(start *Layout, next func(*Layout) []*Layout) []*Layout {
	seen := map[*Layout]bool{start: true}
	var out []*Layout
	queue := append([]*Layout(nil), next(start)...)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
		queue = append(queue, next(n)...)
	}
	return out
}

func ancestorSet(l *Layout) map[*Layout]bool {
	set := map[*Layout]bool{l: true}
	for _, a := range Ancestors(l) {
		set[a] = true
	}
	return set
}

func descendantSet(l *Layout) map[*Layout]bool {
	set := map[*Layout]bool{l: true}
	for _, d := range Descendants(l) {
		set[d] = true
	}
	return set
}

// LessEqual reports whether a is less-than-or-equal-to b in the lattice
// order, i.e. whether b is a (possibly non-proper) ancestor of a. Before
// finalization, only the degenerate Top-vs-Top query is answerable; any
// other query fails loudly.
func LessEqual(r *Registry, a, b *Layout) (bool, error) {
	if !r.finalized && !(a == r.top && b == r.top) {
		return false, ErrNotFinalized
	}
	if a == b {
		return true, nil
	}
	return ancestorSet(a)[b], nil
}

// Join returns the least upper bound of a and b: the unique layout that is
// an ancestor of both and whose own ancestor set equals the intersection of
// a's and b's ancestor sets. Top is always a common ancestor, so Join never
// fails to find a candidate; in debug mode the result is cross-checked for
// uniqueness. Before finalization, only a Top-vs-Top query is answerable;
// any other query fails loudly.
func Join(r *Registry, a, b *Layout) (*Layout, error) {
	if !r.finalized && !(a == r.top && b == r.top) {
		return nil, ErrNotFinalized
	}
	return leastOfIntersection(r, ancestorSet(a), ancestorSet(b), r.Debug, ErrJoinNotUnique)
}

// Meet returns the greatest lower bound of a and b, if one exists: the
// unique layout that is a descendant of both and whose own descendant set
// equals the intersection of a's and b's descendant sets. Unlike Join, Meet
// may legitimately have no answer: callers get a nil layout and a nil
// error when a and b share no descendant. Before finalization, only a
// Top-vs-Top query is answerable; any other query fails loudly.
func Meet(r *Registry, a, b *Layout) (*Layout, error) {
	if !r.finalized && !(a == r.top && b == r.top) {
		return nil, ErrNotFinalized
	}
	da, db := descendantSet(a), descendantSet(b)
	common := intersect(da, db)
	if len(common) == 0 {
		return nil, nil
	}
	return greatestOfIntersection(r, common, r.Debug, ErrMeetNotUnique)
}

func intersect(a, b map[*Layout]bool) map[*Layout]bool {
	out := map[*Layout]bool{}
	for l := range a {
		if b[l] {
			out[l] = true
		}
	}
	return out
}

// leastOfIntersection finds the element of the intersection of two ancestor
// sets whose own ancestor set (restricted to the intersection) is the
// whole intersection, i.e. the element every other member of the
// intersection is an ancestor of. That element is the join.
func leastOfIntersection(r *Registry, sa, sb map[*Layout]bool, crossCheck bool, uniqueErr error) (*Layout, error) {
	common := intersect(sa, sb)
	var found *Layout
	count := 0
	for candidate := range common {
		isLeast := true
		candidateAncestors := ancestorSet(candidate)
		for other := range common {
			if other == candidate {
				continue
			}
			// candidate is the least upper bound iff every other common
			// ancestor lies on candidate's own path up to Top.
			if !candidateAncestors[other] {
				isLeast = false
				break
			}
		}
		if isLeast {
			found = candidate
			count++
			if !crossCheck {
				break
			}
		}
	}
	if found == nil {
		// Several minimal common ancestors and none below all the others:
		// the join is not unique.
		if crossCheck {
			return nil, uniqueErr
		}
		return nil, nil
	}
	if crossCheck && count > 1 {
		return nil, uniqueErr
	}
	return found, nil
}

// greatestOfIntersection is Meet's analogue of leastOfIntersection: the
// element of a descendant-set intersection that every other member of the
// intersection is a descendant of.
func greatestOfIntersection(r *Registry, common map[*Layout]bool, crossCheck bool, uniqueErr error) (*Layout, error) {
	var found *Layout
	count := 0
	for candidate := range common {
		isGreatest := true
		candidateDescendants := descendantSet(candidate)
		for other := range common {
			if other == candidate {
				continue
			}
			// candidate is the greatest lower bound iff every other common
			// descendant lies below candidate in the lattice.
			if !candidateDescendants[other] {
				isGreatest = false
				break
			}
		}
		if isGreatest {
			found = candidate
			count++
			if !crossCheck {
				break
			}
		}
	}
	// common is non-empty here, so no greatest element means several
	// maximal common descendants: the meet is not unique.
	if crossCheck && (found == nil || count > 1) {
		return nil, uniqueErr
	}
	return found, nil
}

// LeastLiveableAncestor returns the nearest liveable ancestor of l
// (including l itself if it is liveable): the layout a vanilla-array
// escalation decision uses to pick which type to guard a live translation
// against. Liveability is independent of concreteness, so the result is a
// plain *Layout, not a *ConcreteLayout: an abstract (non-concrete) layout
// can still be the answer. Before finalization, this returns Top itself,
// since a profiling tracelet may need to type-check against Top before the
// hierarchy is final. checkUniqueLiveableParent at registration time
// guarantees the post-finalization answer is well-defined; in debug mode
// the level-order search also verifies no second liveable ancestor exists
// at the same BFS depth.
func LeastLiveableAncestor(r *Registry, l *Layout) (*Layout, error) {
	if !r.finalized {
		return r.top, nil
	}
	if l.liveable {
		return l, nil
	}
	seen := map[*Layout]bool{l: true}
	frontier := append([]*Layout(nil), l.parents...)
	for len(frontier) > 0 {
		var found *Layout
		var next []*Layout
		for _, n := range frontier {
			if seen[n] {
				continue
			}
			seen[n] = true
			if n.liveable {
				if found != nil && r.Debug {
					return nil, ErrAmbiguousLiveable
				}
				if found == nil {
					found = n
				}
				continue
			}
			next = append(next, n.parents...)
		}
		if found != nil {
			return found, nil
		}
		frontier = next
	}
	return nil, nil
}
