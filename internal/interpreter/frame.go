package interpreter

import "sync"

// Frame is one lexical scope of local variables: a single script
// invocation's top-level frame, plus one nested frame per block, loop
// body and lambda. Lookups chase Outer the way the teacher's
// evaluator.Environment chases its outer pointer, adapted to the named
// vocabulary spec §4.2.1 uses for JEXL's Scope/Frame pair — this
// implementation folds both into one chained, map-backed structure
// rather than the slot-indexed vector JEXL itself uses, trading a little
// lookup speed for a representation that is straightforward to get right
// by hand (see DESIGN.md).
type Frame struct {
	mu     sync.RWMutex
	vars   map[string]interface{}
	outer  *Frame
	isCall bool // true at a lambda/script call boundary: var hoisting under non-lexical mode stops here, see CallRoot

	// closureBoundary marks the call frame a Closure creates for each
	// invocation, when Interpreter.ConstCapture is set: Set rejects writes
	// that cross this frame to reach a binding declared further out, in
	// the frame chain the closure captured.
	closureBoundary bool
}

// NewFrame creates a root frame with no parent — one per top-level
// Script evaluation or Engine.newInstance call.
func NewFrame() *Frame {
	return &Frame{vars: make(map[string]interface{}), isCall: true}
}

// Child pushes a new block-scoped frame (spec's LexicalFrame push/pop on
// entering `{ ... }`, a loop body, or a try/catch block).
func (f *Frame) Child() *Frame {
	return &Frame{vars: make(map[string]interface{}), outer: f}
}

// Declare introduces name in this frame, shadowing any outer binding for
// the remainder of the block (spec §4.2.1 shadow rule).
func (f *Frame) Declare(name string, value interface{}) {
	f.mu.Lock()
	f.vars[name] = value
	f.mu.Unlock()
}

// HasLocal reports whether name is declared directly in this frame,
// without walking to outer frames — used to detect a same-block
// re-declaration under Interpreter.Lexical.
func (f *Frame) HasLocal(name string) bool {
	f.mu.RLock()
	_, ok := f.vars[name]
	f.mu.RUnlock()
	return ok
}

// CallRoot walks outward to the nearest enclosing call-boundary frame
// (the top-level frame of the current script/lambda invocation). Under
// non-lexical `var` declaration (the JEXL default), a name declared
// inside a `{ }` block is hoisted here instead of staying block-scoped,
// so it remains visible for the rest of the call (spec §4.1 "lexical":
// false is JEXL's historical, non-block-scoped default).
func (f *Frame) CallRoot() *Frame {
	fr := f
	for !fr.isCall && fr.outer != nil {
		fr = fr.outer
	}
	return fr
}

// Get resolves name by walking outward; ok is false if no frame in the
// chain has declared it (the caller then falls back to context/ant-ish
// resolution).
func (f *Frame) Get(name string) (interface{}, bool) {
	for fr := f; fr != nil; fr = fr.outer {
		fr.mu.RLock()
		v, ok := fr.vars[name]
		fr.mu.RUnlock()
		if ok {
			return v, true
		}
	}
	return nil, false
}

// Set assigns to the nearest frame that already declared name, or
// declares it fresh in the current frame if no ancestor has it — this
// matches JEXL's implicit-declaration-on-first-assignment behavior for
// unscoped scripts (spec §4.2.5). If the declaring frame lies across a
// closure-capture boundary (Interpreter.ConstCapture set, spec §4.1
// "constCapture"), the write is rejected with a *ConstCaptureError
// instead.
func (f *Frame) Set(name string, value interface{}) error {
	blocked := false
	for fr := f; fr != nil; fr = fr.outer {
		fr.mu.Lock()
		if _, ok := fr.vars[name]; ok {
			if blocked {
				fr.mu.Unlock()
				return &ConstCaptureError{Name: name}
			}
			fr.vars[name] = value
			fr.mu.Unlock()
			return nil
		}
		if fr.closureBoundary {
			blocked = true
		}
		fr.mu.Unlock()
	}
	f.Declare(name, value)
	return nil
}

// Has reports whether name is declared anywhere in the chain.
func (f *Frame) Has(name string) bool {
	_, ok := f.Get(name)
	return ok
}

// Names returns every variable name visible from this frame, innermost
// declarations winning over outer ones of the same name — used by
// Script variable-collection (spec §6).
func (f *Frame) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for fr := f; fr != nil; fr = fr.outer {
		fr.mu.RLock()
		for k := range fr.vars {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
		fr.mu.RUnlock()
	}
	return names
}
