package layout

// IRBlock is the minimal surface this package needs from the JIT's IR
// builder to describe an emission hook's effect: enough to let a default
// implementation record "this op escalates to vanilla and retries" without
// this package knowing anything about real IR instructions. internal/testshim
// supplies a concrete IRBlock for tests.
type IRBlock interface {
	EmitCall(op string, args ...any)
	EmitPunt(reason string)
}

// Emitter is the JIT-emission vtable: one method per array primitive the
// JIT knows how to specialize. Unlike Functions, not every method needs a
// layout-specific implementation — most primitives have a reasonable
// shared default, so Emitter is a Go interface with a DefaultEmitter
// implementation a concrete layout embeds and overrides selectively, the
// idiomatic stand-in for C++ virtual methods with base-class defaults.
type Emitter interface {
	EmitGet(b IRBlock, keyIsString bool)
	EmitElem(b IRBlock, keyIsString, throwOnMiss bool)
	EmitSet(b IRBlock, keyIsString bool)
	EmitAppend(b IRBlock)

	// The iterator family lowers a foreach loop's position-based cursor
	// protocol: FirstPos/LastPos bracket the loop, Pos/AdvancePos move the
	// cursor, and Elm/GetKey/GetVal read from it once positioned.
	EmitIterFirstPos(b IRBlock)
	EmitIterLastPos(b IRBlock)
	EmitIterPos(b IRBlock, idx int)
	EmitIterAdvancePos(b IRBlock, pos int)
	EmitIterElm(b IRBlock, pos int)
	EmitIterGetKey(b IRBlock, elm int)
	EmitIterGetVal(b IRBlock, elm int)

	EmitEscalateToVanilla(b IRBlock, reason string)
}

// DefaultEmitter implements Emitter with the shared defaults a concrete
// layout starts from: Get/Elem/iteration lower to a generic helper call,
// EscalateToVanilla lowers to a direct call into the vtable entry of the
// same name, and Set/Append punt (bail out of specialized codegen and fall
// back to the vanilla, unspecialized path) because, unlike read paths, a
// mutation's effect on the layout is layout-specific and has no safe
// generic lowering.
//
// A concrete layout embeds DefaultEmitter and overrides only the methods
// it can do better than the default, exactly the pattern used throughout
// this pack for "mostly-shared behavior, occasional specialization."
type DefaultEmitter struct {
	Layout *ConcreteLayout
}

func (e DefaultEmitter) EmitGet(b IRBlock, keyIsString bool) {
	b.EmitCall("bespokeGet", e.Layout.index, keyIsString)
}

func (e DefaultEmitter) EmitElem(b IRBlock, keyIsString, throwOnMiss bool) {
	b.EmitCall("bespokeElem", e.Layout.index, keyIsString, throwOnMiss)
}

func (e DefaultEmitter) EmitSet(b IRBlock, keyIsString bool) {
	b.EmitPunt("set is not specialized for " + e.Layout.description)
}

func (e DefaultEmitter) EmitAppend(b IRBlock) {
	b.EmitPunt("append is not specialized for " + e.Layout.description)
}

func (e DefaultEmitter) EmitIterFirstPos(b IRBlock) {
	b.EmitCall("bespokeIterFirstPos", e.Layout.index)
}

func (e DefaultEmitter) EmitIterLastPos(b IRBlock) {
	b.EmitCall("bespokeIterLastPos", e.Layout.index)
}

func (e DefaultEmitter) EmitIterPos(b IRBlock, idx int) {
	b.EmitCall("bespokeIterPos", e.Layout.index, idx)
}

func (e DefaultEmitter) EmitIterAdvancePos(b IRBlock, pos int) {
	b.EmitCall("bespokeIterAdvancePos", e.Layout.index, pos)
}

func (e DefaultEmitter) EmitIterElm(b IRBlock, pos int) {
	b.EmitCall("bespokeIterElm", e.Layout.index, pos)
}

func (e DefaultEmitter) EmitIterGetKey(b IRBlock, elm int) {
	b.EmitCall("bespokeIterGetKey", e.Layout.index, elm)
}

func (e DefaultEmitter) EmitIterGetVal(b IRBlock, elm int) {
	b.EmitCall("bespokeIterGetVal", e.Layout.index, elm)
}

func (e DefaultEmitter) EmitEscalateToVanilla(b IRBlock, reason string) {
	b.EmitCall("bespokeEscalateToVanilla", e.Layout.index, reason)
}
