package layout

import "fmt"

// Layout is a node in the join-semilattice of array representations. Every
// layout except Top has at least one parent; Top has none. A layout is
// "liveable" if it is general enough to be used as a guard type for a live
// translation, independent of whether it is concrete: an abstract layout
// (a union of concrete layouts, with no vtable of its own) can be liveable,
// and a concrete layout need not be.
type Layout struct {
	index       LayoutIndex
	description string
	liveable    bool
	concrete    bool
	asConcrete  *ConcreteLayout

	parents  []*Layout
	children []*Layout

	registry *Registry
}

// ConcreteLayout is a Layout that also carries an operation vtable and a
// JIT emission vtable, for a layout that real arrays actually materialize
// at. Liveability is tracked separately; the split keeps Layout as the
// plain lattice node and ConcreteLayout as the thing that adds dispatch
// machinery on top of it.
type ConcreteLayout struct {
	*Layout
	fns     Functions
	emitter Emitter
}

func (l *Layout) Index() LayoutIndex  { return l.index }
func (l *Layout) Description() string { return l.description }
func (l *Layout) Liveable() bool      { return l.liveable }
func (l *Layout) Concrete() bool      { return l.concrete }
func (l *Layout) Parents() []*Layout  { return append([]*Layout(nil), l.parents...) }
func (l *Layout) Children() []*Layout { return append([]*Layout(nil), l.children...) }
func (l *Layout) String() string      { return l.description }

// AsConcrete returns the ConcreteLayout view of l, or nil if l is not
// concrete.
func (l *Layout) AsConcrete() *ConcreteLayout { return l.asConcrete }

// NewTop creates the registry's single root layout. It must be called
// exactly once per registry, before any other layout is created.
func NewTop(r *Registry) (*Layout, error) {
	if r.top != nil {
		return nil, fmt.Errorf("top already created: %w", ErrRootHasParents)
	}
	idx, err := r.ReserveIndices(1)
	if err != nil {
		return nil, err
	}
	l := &Layout{
		index:       idx.Base(),
		description: "Top",
		registry:    r,
	}
	if err := r.register(l); err != nil {
		return nil, err
	}
	r.top = l
	log.Debugf("layout: registered Top at index %d", l.index)
	return l, nil
}

// NewLayout creates a non-concrete (purely structural) layout at idx with
// the given parents. liveable is independent of concreteness: a layout can
// be abstract (a union of concrete layouts with no vtable of its own) and
// still liveable, general enough to be used as a guard type in a live
// translation. Every non-root layout needs at least one parent, and no
// supplied parent may itself be an ancestor of another supplied parent
// (only immediate parents may be given).
func NewLayout(r *Registry, idx LayoutIndex, description string, liveable bool, parents ...*Layout) (*Layout, error) {
	l, err := newLayout(r, idx, description, false, liveable, parents)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// NewConcreteLayout creates a layout with the supplied operation and
// emission vtables. liveable is independent of concreteness: most concrete
// layouts are also liveable, but a concrete layout that is too narrow or
// too short-lived to be worth guarding against in the JIT can be created
// with liveable false.
func NewConcreteLayout(r *Registry, idx LayoutIndex, description string, liveable bool, fns Functions, emitter Emitter, parents ...*Layout) (*ConcreteLayout, error) {
	l, err := newLayout(r, idx, description, true, liveable, parents)
	if err != nil {
		return nil, err
	}
	cl := &ConcreteLayout{Layout: l, fns: fns, emitter: emitter}
	l.asConcrete = cl
	return cl, nil
}

func newLayout(r *Registry, idx LayoutIndex, description string, concrete, liveable bool, parents []*Layout) (*Layout, error) {
	if r.finalized {
		return nil, ErrAlreadyFinalized
	}
	if r.top == nil {
		return nil, fmt.Errorf("registry has no Top layout yet: %w", ErrNoParents)
	}
	if len(parents) == 0 {
		return nil, ErrNoParents
	}
	for _, p := range parents {
		if p.registry != r {
			return nil, ErrParentNotRegistered
		}
	}
	if err := checkImmediateParents(parents); err != nil {
		return nil, err
	}

	l := &Layout{
		index:       idx,
		description: description,
		liveable:    liveable,
		concrete:    concrete,
		parents:     append([]*Layout(nil), parents...),
		registry:    r,
	}
	if err := r.register(l); err != nil {
		return nil, err
	}
	for _, p := range parents {
		p.children = append(p.children, l)
	}
	log.Debugf("layout: registered %q at index %d (concrete=%v, liveable=%v)", description, idx, concrete, liveable)
	if err := checkUniqueLiveableParent(l); err != nil {
		// Roll back registration so the registry is left consistent for a
		// caller that wants to retry with a corrected parent set.
		delete(r.byIndex, l.index)
		delete(r.byDesc, l.description)
		for _, p := range parents {
			p.children = p.children[:len(p.children)-1]
		}
		return nil, err
	}
	return l, nil
}

// checkImmediateParents rejects any parents slice where one element is a
// (possibly indirect) ancestor of another, since that would make the
// ancestor redundant to state as a parent.
func checkImmediateParents(parents []*Layout) error {
	for i, a := range parents {
		for j, b := range parents {
			if i == j {
				continue
			}
			if isAncestorOf(a, b) {
				return fmt.Errorf("%q is an ancestor of %q: %w", a.description, b.description, ErrParentNotImmediate)
			}
		}
	}
	return nil
}

func isAncestorOf(a, b *Layout) bool {
	visited := map[*Layout]bool{}
	queue := append([]*Layout(nil), b.parents...)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n == a {
			return true
		}
		if visited[n] {
			continue
		}
		visited[n] = true
		queue = append(queue, n.parents...)
	}
	return false
}

// checkUniqueLiveableParent rejects a non-liveable layout with more than
// one liveable parent, because that would make LeastLiveableAncestor
// ambiguous for it. Since this only needs to examine l's own immediate
// parents, it is a cheap local check rather than a global graph walk.
func checkUniqueLiveableParent(l *Layout) error {
	if l.liveable {
		return nil
	}
	liveableParents := 0
	for _, p := range l.parents {
		if p.liveable {
			liveableParents++
		}
	}
	if liveableParents > 1 {
		return ErrAmbiguousLiveable
	}
	return nil
}

// FinalizeHierarchy locks the registry against further registration and
// enables lattice queries on non-Top layouts. Before it runs, only
// Top-vs-Top queries succeed and LeastLiveableAncestor returns Top.
func FinalizeHierarchy(r *Registry) error {
	if r.finalized {
		return ErrAlreadyFinalized
	}
	if r.top == nil {
		return ErrNoParents
	}
	r.finalized = true
	log.Infof("layout: hierarchy finalized with %d registered layouts", len(r.byIndex))
	return nil
}
