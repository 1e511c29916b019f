package layout

import "fmt"

// ArrayData is the minimal surface this package needs from a bespoke array:
// enough to recover which layout tagged it, so the debug dispatcher can
// validate a call before forwarding it. The real representation's fields
// are a caller's concern; callers satisfy this with their own array type.
type ArrayData interface {
	LayoutIndex() LayoutIndex
}

// Functions is the per-layout operation vtable: one function pointer per
// array primitive, grounded on BESPOKE_LAYOUT_FUNCTIONS. Every concrete
// layout supplies a complete Functions value; there is no partial vtable.
type Functions struct {
	HeapSize           func(ad ArrayData) int64
	Scan               func(ad ArrayData, visit func(uintptr))
	EscalateToVanilla  func(ad ArrayData, reason string) ArrayData
	ConvertToUncounted func(ad ArrayData) ArrayData
	ReleaseUncounted   func(ad ArrayData)
	Release            func(ad ArrayData)
	IsVectorData       func(ad ArrayData) bool

	GetInt func(ad ArrayData, key int64) (value any, ok bool)
	GetStr func(ad ArrayData, key string) (value any, ok bool)
	GetKey func(ad ArrayData, pos int) (key any, ok bool)
	GetVal func(ad ArrayData, pos int) (value any, ok bool)

	GetIntPos func(ad ArrayData, key int64) (pos int, ok bool)
	GetStrPos func(ad ArrayData, key string) (pos int, ok bool)

	IterBegin   func(ad ArrayData) int
	IterLast    func(ad ArrayData) int
	IterEnd     func(ad ArrayData) int
	IterAdvance func(ad ArrayData, pos int) int
	IterRewind  func(ad ArrayData, pos int) int

	LvalInt func(ad ArrayData, key int64) (ArrayData, any)
	LvalStr func(ad ArrayData, key string) (ArrayData, any)

	ElemInt func(ad ArrayData, key int64, throwOnMiss bool) any
	ElemStr func(ad ArrayData, key string, throwOnMiss bool) any

	SetInt     func(ad ArrayData, key int64, value any) ArrayData
	SetStr     func(ad ArrayData, key string, value any) ArrayData
	SetIntMove func(ad ArrayData, key int64, value any) ArrayData
	SetStrMove func(ad ArrayData, key string, value any) ArrayData

	RemoveInt func(ad ArrayData, key int64) ArrayData
	RemoveStr func(ad ArrayData, key string) ArrayData

	Append     func(ad ArrayData, value any) ArrayData
	AppendMove func(ad ArrayData, value any) ArrayData
	Pop        func(ad ArrayData) (ArrayData, any)

	ToDVArray func(ad ArrayData, isVArray bool) ArrayData
	ToHackArr func(ad ArrayData, isDict bool) ArrayData

	PreSort      func(ad ArrayData, flags int) ArrayData
	PostSort     func(ad ArrayData, vad ArrayData) ArrayData
	SetLegacyArray func(ad ArrayData, isLegacy bool) ArrayData
}

// dispatcher is returned by Dispatch and invoked per call-site; in debug
// mode every method call validates the array's layout index against the
// concrete layout it was obtained from before forwarding, matching
// LayoutFunctionDispatcher's Cast/As check. In release mode it is a direct
// wrapper with no validation overhead.
type dispatcher struct {
	cl    *ConcreteLayout
	debug bool
}

// Dispatch returns a validated view of cl's vtable for ad. If the
// registry is in debug mode and ad's layout index doesn't match cl,
// methods invoked through the returned dispatcher panic with
// ErrDispatchMismatch.
func (cl *ConcreteLayout) Dispatch(r *Registry, ad ArrayData) *dispatcher {
	return &dispatcher{cl: cl, debug: r.Debug}
}

func (d *dispatcher) check(ad ArrayData) {
	if d.debug && ad.LayoutIndex() != d.cl.index {
		panic(fmt.Errorf("%w: array has index %d, dispatcher is for %q (index %d)",
			ErrDispatchMismatch, ad.LayoutIndex(), d.cl.description, d.cl.index))
	}
}

func (d *dispatcher) HeapSize(ad ArrayData) int64 {
	d.check(ad)
	return d.cl.fns.HeapSize(ad)
}

func (d *dispatcher) Scan(ad ArrayData, visit func(uintptr)) {
	d.check(ad)
	d.cl.fns.Scan(ad, visit)
}

// EscalateToVanilla is the universal fallback: convert ad to a vanilla
// representation because the current layout can't serve the requested
// operation in place. Every concrete layout must supply this; there is no
// default.
func (d *dispatcher) EscalateToVanilla(ad ArrayData, reason string) ArrayData {
	d.check(ad)
	return d.cl.fns.EscalateToVanilla(ad, reason)
}

func (d *dispatcher) ConvertToUncounted(ad ArrayData) ArrayData {
	d.check(ad)
	return d.cl.fns.ConvertToUncounted(ad)
}

func (d *dispatcher) ReleaseUncounted(ad ArrayData) {
	d.check(ad)
	d.cl.fns.ReleaseUncounted(ad)
}

func (d *dispatcher) Release(ad ArrayData) {
	d.check(ad)
	d.cl.fns.Release(ad)
}

func (d *dispatcher) IsVectorData(ad ArrayData) bool {
	d.check(ad)
	return d.cl.fns.IsVectorData(ad)
}

func (d *dispatcher) GetInt(ad ArrayData, key int64) (any, bool) {
	d.check(ad)
	return d.cl.fns.GetInt(ad, key)
}

func (d *dispatcher) GetStr(ad ArrayData, key string) (any, bool) {
	d.check(ad)
	return d.cl.fns.GetStr(ad, key)
}

func (d *dispatcher) GetKey(ad ArrayData, pos int) (any, bool) {
	d.check(ad)
	return d.cl.fns.GetKey(ad, pos)
}

func (d *dispatcher) GetVal(ad ArrayData, pos int) (any, bool) {
	d.check(ad)
	return d.cl.fns.GetVal(ad, pos)
}

func (d *dispatcher) GetIntPos(ad ArrayData, key int64) (int, bool) {
	d.check(ad)
	return d.cl.fns.GetIntPos(ad, key)
}

func (d *dispatcher) GetStrPos(ad ArrayData, key string) (int, bool) {
	d.check(ad)
	return d.cl.fns.GetStrPos(ad, key)
}

func (d *dispatcher) IterBegin(ad ArrayData) int {
	d.check(ad)
	return d.cl.fns.IterBegin(ad)
}

func (d *dispatcher) IterLast(ad ArrayData) int {
	d.check(ad)
	return d.cl.fns.IterLast(ad)
}

func (d *dispatcher) IterEnd(ad ArrayData) int {
	d.check(ad)
	return d.cl.fns.IterEnd(ad)
}

func (d *dispatcher) IterAdvance(ad ArrayData, pos int) int {
	d.check(ad)
	return d.cl.fns.IterAdvance(ad, pos)
}

func (d *dispatcher) IterRewind(ad ArrayData, pos int) int {
	d.check(ad)
	return d.cl.fns.IterRewind(ad, pos)
}

func (d *dispatcher) LvalInt(ad ArrayData, key int64) (ArrayData, any) {
	d.check(ad)
	return d.cl.fns.LvalInt(ad, key)
}

func (d *dispatcher) LvalStr(ad ArrayData, key string) (ArrayData, any) {
	d.check(ad)
	return d.cl.fns.LvalStr(ad, key)
}

func (d *dispatcher) ElemInt(ad ArrayData, key int64, throwOnMiss bool) any {
	d.check(ad)
	return d.cl.fns.ElemInt(ad, key, throwOnMiss)
}

func (d *dispatcher) ElemStr(ad ArrayData, key string, throwOnMiss bool) any {
	d.check(ad)
	return d.cl.fns.ElemStr(ad, key, throwOnMiss)
}

func (d *dispatcher) SetInt(ad ArrayData, key int64, value any) ArrayData {
	d.check(ad)
	return d.cl.fns.SetInt(ad, key, value)
}

func (d *dispatcher) SetStr(ad ArrayData, key string, value any) ArrayData {
	d.check(ad)
	return d.cl.fns.SetStr(ad, key, value)
}

func (d *dispatcher) SetIntMove(ad ArrayData, key int64, value any) ArrayData {
	d.check(ad)
	return d.cl.fns.SetIntMove(ad, key, value)
}

func (d *dispatcher) SetStrMove(ad ArrayData, key string, value any) ArrayData {
	d.check(ad)
	return d.cl.fns.SetStrMove(ad, key, value)
}

func (d *dispatcher) RemoveInt(ad ArrayData, key int64) ArrayData {
	d.check(ad)
	return d.cl.fns.RemoveInt(ad, key)
}

func (d *dispatcher) RemoveStr(ad ArrayData, key string) ArrayData {
	d.check(ad)
	return d.cl.fns.RemoveStr(ad, key)
}

func (d *dispatcher) Append(ad ArrayData, value any) ArrayData {
	d.check(ad)
	return d.cl.fns.Append(ad, value)
}

func (d *dispatcher) AppendMove(ad ArrayData, value any) ArrayData {
	d.check(ad)
	return d.cl.fns.AppendMove(ad, value)
}

func (d *dispatcher) Pop(ad ArrayData) (ArrayData, any) {
	d.check(ad)
	return d.cl.fns.Pop(ad)
}

func (d *dispatcher) ToDVArray(ad ArrayData, isVArray bool) ArrayData {
	d.check(ad)
	return d.cl.fns.ToDVArray(ad, isVArray)
}

func (d *dispatcher) ToHackArr(ad ArrayData, isDict bool) ArrayData {
	d.check(ad)
	return d.cl.fns.ToHackArr(ad, isDict)
}

func (d *dispatcher) PreSort(ad ArrayData, flags int) ArrayData {
	d.check(ad)
	return d.cl.fns.PreSort(ad, flags)
}

func (d *dispatcher) PostSort(ad ArrayData, vad ArrayData) ArrayData {
	d.check(ad)
	return d.cl.fns.PostSort(ad, vad)
}

func (d *dispatcher) SetLegacyArray(ad ArrayData, isLegacy bool) ArrayData {
	d.check(ad)
	return d.cl.fns.SetLegacyArray(ad, isLegacy)
}
