package interp

import "fmt"

// FrameID addresses a frame in an Environment.
type FrameID int

// Global is the frame of the global scope. It is created with the
// environment and never popped.
const Global FrameID = 0

const noParent FrameID = -1

type slot struct {
	value Value
	ref   Ref
}

type frame struct {
	parent FrameID
	slots  []slot
}

// Environment is the runtime storage of a program: a stack of frames kept in
// an arena. Every frame links to the frame of its lexically enclosing scope
// by index. Frames are pushed on call entry and popped on call exit in strict
// LIFO order.
type Environment struct {
	frames []frame
}

// NewEnvironment creates an environment holding only the global frame with
// the given number of slots.
func NewEnvironment(globalSlots int) *Environment {
	return &Environment{
		frames: []frame{{parent: noParent, slots: make([]slot, globalSlots)}},
	}
}

// Depth returns the number of live frames, including the global frame.
func (e *Environment) Depth() int {
	return len(e.frames)
}

// Push creates a frame with size slots whose enclosing frame is parent.
func (e *Environment) Push(parent FrameID, size int) FrameID {
	e.check(parent)
	e.frames = append(e.frames, frame{parent: parent, slots: make([]slot, size)})
	return FrameID(len(e.frames) - 1)
}

// Pop releases frame id, which must be the most recently pushed frame.
func (e *Environment) Pop(id FrameID) {
	if id == Global || int(id) != len(e.frames)-1 {
		panic(fmt.Sprintf("interp: pop of frame %d, top frame is %d", id, len(e.frames)-1))
	}
	e.frames[id] = frame{}
	e.frames = e.frames[:id]
}

// Lookup walks exactly depth enclosing-frame links starting at from.
func (e *Environment) Lookup(from FrameID, depth int) FrameID {
	id := from
	for ; depth > 0; depth-- {
		e.check(id)
		id = e.frames[id].parent
	}
	e.check(id)
	return id
}

// resize grows or shrinks the slots of a frame, keeping existing values.
func (e *Environment) resize(id FrameID, size int) {
	e.check(id)
	f := &e.frames[id]
	if size <= len(f.slots) {
		f.slots = f.slots[:size]
		return
	}
	f.slots = append(f.slots, make([]slot, size-len(f.slots))...)
}

// Get returns the value of a slot, following a reference if the slot holds
// one.
func (e *Environment) Get(id FrameID, idx int) Value {
	s := e.slot(id, idx)
	if s.ref != nil {
		return s.ref.Load()
	}
	return s.value
}

// Set stores v into a slot, or into the referenced location if the slot
// holds a reference.
func (e *Environment) Set(id FrameID, idx int, v Value) {
	s := e.slot(id, idx)
	if s.ref != nil {
		s.ref.Store(v)
		return
	}
	s.value = v
}

// Bind makes a slot an alias for the location ref refers to.
func (e *Environment) Bind(id FrameID, idx int, ref Ref) {
	s := e.slot(id, idx)
	s.value = nil
	s.ref = ref
}

// SlotRef returns a reference to a slot. If the slot is itself an alias, the
// aliased location is returned so that references never chain.
func (e *Environment) SlotRef(id FrameID, idx int) Ref {
	if s := e.slot(id, idx); s.ref != nil {
		return s.ref
	}
	return &slotRef{env: e, frame: id, idx: idx}
}

func (e *Environment) slot(id FrameID, idx int) *slot {
	e.check(id)
	return &e.frames[id].slots[idx]
}

func (e *Environment) check(id FrameID) {
	if id < 0 || int(id) >= len(e.frames) {
		panic(fmt.Sprintf("interp: access to dead frame %d (%d live frames)", id, len(e.frames)))
	}
}

// Ref is a storable location: a frame slot, an array element or a record
// field.
type Ref interface {
	Load() Value
	Store(v Value)
}

type slotRef struct {
	env   *Environment
	frame FrameID
	idx   int
}

func (r *slotRef) Load() Value {
	return r.env.slot(r.frame, r.idx).value
}

func (r *slotRef) Store(v Value) {
	r.env.slot(r.frame, r.idx).value = v
}

type elementRef struct {
	array *Array
	idx   int
}

func (r *elementRef) Load() Value {
	return r.array.Elems[r.idx]
}

func (r *elementRef) Store(v Value) {
	r.array.Elems[r.idx] = v
}

type fieldRef struct {
	record *Record
	idx    int
}

func (r *fieldRef) Load() Value {
	return r.record.Fields[r.idx]
}

func (r *fieldRef) Store(v Value) {
	r.record.Fields[r.idx] = v
}
