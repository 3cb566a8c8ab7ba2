package interpreter

import "github.com/jexl-go/jexl/internal/ast"

// execStatement runs one statement node and returns the value an
// expression-statement produced (so a Script's trailing bare expression
// still contributes the script's overall result) or nil for statements
// with no value. Control-flow signals propagate as errors per
// signals.go.
func (in *Interpreter) execStatement(node ast.Node, frame *Frame, st *evalState) (interface{}, error) {
	if err := in.checkBudget(st); err != nil {
		return nil, err
	}
	defer func() { st.depth-- }()

	switch n := node.(type) {
	case *ast.Block:
		return in.execBlock(n, frame, st)
	case *ast.VarDecl:
		return in.execVarDecl(n, frame, st)
	case *ast.IfStmt:
		return in.execIf(n, frame, st)
	case *ast.WhileStmt:
		return nil, in.execWhile(n, frame, st)
	case *ast.DoWhileStmt:
		return nil, in.execDoWhile(n, frame, st)
	case *ast.ForStmt:
		return nil, in.execFor(n, frame, st)
	case *ast.ForEachStmt:
		return nil, in.execForEach(n, frame, st)
	case *ast.TryStmt:
		return in.execTry(n, frame, st)
	case *ast.ThrowStmt:
		return nil, in.execThrow(n, frame, st)
	case *ast.ReturnStmt:
		return nil, in.execReturn(n, frame, st)
	case *ast.BreakStmt:
		return nil, &breakSignal{label: n.Label}
	case *ast.ContinueStmt:
		return nil, &continueSignal{label: n.Label}
	case *ast.AnnotatedStatement:
		return in.execAnnotated(n, frame, st)
	case *ast.Pragma:
		return nil, nil // pragmas are processed before interpretation (spec §4.1); no-op at runtime
	}
	return in.evalNode(node, frame, st)
}

func (in *Interpreter) execBlock(n *ast.Block, frame *Frame, st *evalState) (interface{}, error) {
	child := frame.Child()
	var result interface{}
	for _, stmt := range n.Statements {
		v, err := in.execStatement(stmt, child, st)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}

// execVarDecl declares n.Name, choosing where per Interpreter.Lexical
// (spec §4.1 "lexical"/"lexicalShade", §7 LexicalRedeclaration/
// LexicalShade). Non-lexical (JEXL's historical default) hoists the
// declaration to the nearest script/lambda call frame rather than the
// immediate block, so the name stays visible for the rest of the call.
// Lexical mode keeps ordinary block scoping and additionally rejects a
// same-block re-declaration, and — with LexicalShade on top — rejects
// shadowing a name already visible in an outer scope.
func (in *Interpreter) execVarDecl(n *ast.VarDecl, frame *Frame, st *evalState) (interface{}, error) {
	var value interface{}
	if n.Init != nil {
		v, err := in.evalNode(n.Init, frame, st)
		if err != nil {
			return nil, err
		}
		value = v
	}

	if !in.Lexical {
		frame.CallRoot().Declare(n.Name, value)
		return value, nil
	}

	if frame.HasLocal(n.Name) {
		return nil, &LexicalError{Name: n.Name, Redeclare: true}
	}
	if in.LexicalShade && frame.Has(n.Name) {
		return nil, &LexicalError{Name: n.Name, Redeclare: false}
	}
	frame.Declare(n.Name, value)
	return value, nil
}

func (in *Interpreter) execIf(n *ast.IfStmt, frame *Frame, st *evalState) (interface{}, error) {
	cond, err := in.evalNode(n.Cond, frame, st)
	if err != nil {
		return nil, err
	}
	if in.Arith.ToBoolean(cond) {
		return in.execStatement(n.Then, frame, st)
	}
	if n.Else != nil {
		return in.execStatement(n.Else, frame, st)
	}
	return nil, nil
}

// loopLabel reports whether a break/continue carrying sigLabel is one
// the loop labeled label should handle (unlabeled, or labeled with this
// loop's own label), versus one that should keep propagating outward to
// an enclosing labeled loop (spec §4.2.2 labeled break/continue).
func loopLabel(label, sigLabel string) bool {
	return sigLabel == "" || sigLabel == label
}

func (in *Interpreter) execWhile(n *ast.WhileStmt, frame *Frame, st *evalState) error {
	for {
		cond, err := in.evalNode(n.Cond, frame, st)
		if err != nil {
			return err
		}
		if !in.Arith.ToBoolean(cond) {
			return nil
		}
		_, err = in.execStatement(n.Body, frame.Child(), st)
		if err != nil {
			if b, ok := err.(*breakSignal); ok && loopLabel(n.Label, b.label) {
				return nil
			}
			if c, ok := err.(*continueSignal); ok && loopLabel(n.Label, c.label) {
				continue
			}
			return err
		}
	}
}

func (in *Interpreter) execDoWhile(n *ast.DoWhileStmt, frame *Frame, st *evalState) error {
	for {
		_, err := in.execStatement(n.Body, frame.Child(), st)
		if err != nil {
			if b, ok := err.(*breakSignal); ok && loopLabel(n.Label, b.label) {
				return nil
			}
			if c, ok := err.(*continueSignal); !ok || !loopLabel(n.Label, c.label) {
				return err
			}
		}
		cond, err := in.evalNode(n.Cond, frame, st)
		if err != nil {
			return err
		}
		if !in.Arith.ToBoolean(cond) {
			return nil
		}
	}
}

func (in *Interpreter) execFor(n *ast.ForStmt, frame *Frame, st *evalState) error {
	loopFrame := frame.Child()
	if n.Init != nil {
		if _, err := in.execStatement(n.Init, loopFrame, st); err != nil {
			return err
		}
	}
	for {
		if n.Cond != nil {
			cond, err := in.evalNode(n.Cond, loopFrame, st)
			if err != nil {
				return err
			}
			if !in.Arith.ToBoolean(cond) {
				return nil
			}
		}
		_, err := in.execStatement(n.Body, loopFrame.Child(), st)
		if err != nil {
			if b, ok := err.(*breakSignal); ok && loopLabel(n.Label, b.label) {
				return nil
			}
			if c, ok := err.(*continueSignal); !ok || !loopLabel(n.Label, c.label) {
				return err
			}
		}
		if n.Step != nil {
			if _, err := in.evalNode(n.Step, loopFrame, st); err != nil {
				return err
			}
		}
	}
}

func (in *Interpreter) execForEach(n *ast.ForEachStmt, frame *Frame, st *evalState) error {
	iterable, err := in.evalNode(n.Iterable, frame, st)
	if err != nil {
		return err
	}

	var next func() (interface{}, bool)
	if r, ok := iterable.(jexlRange); ok {
		items := r.Slice()
		i := 0
		next = func() (interface{}, bool) {
			if i >= len(items) {
				return nil, false
			}
			v := items[i]
			i++
			return v, true
		}
	} else if iterable == nil {
		next = func() (interface{}, bool) { return nil, false }
	} else {
		next, err = in.Introspect.GetIterator(iterable)
		if err != nil {
			return in.errorAt(n, "%v", err)
		}
	}

	for {
		v, ok := next()
		if !ok {
			return nil
		}
		iterFrame := frame.Child()
		iterFrame.Declare(n.VarName, v)
		_, err := in.execStatement(n.Body, iterFrame, st)
		if err != nil {
			if b, ok := err.(*breakSignal); ok && loopLabel(n.Label, b.label) {
				return nil
			}
			if c, ok := err.(*continueSignal); ok && loopLabel(n.Label, c.label) {
				continue
			}
			return err
		}
	}
}

// execTry implements try/catch/finally with try-with-resources (spec
// §4.2.7): resources are declared in a child frame before Body runs and
// closed (via a "close" method, if present) in reverse declaration order
// regardless of how Body exits; Finally always runs, and an error raised
// while it runs replaces whatever was propagating.
func (in *Interpreter) execTry(n *ast.TryStmt, frame *Frame, st *evalState) (interface{}, error) {
	tryFrame := frame.Child()
	var opened []interface{}
	for _, res := range n.Resources {
		v, err := in.evalNode(res.Init, tryFrame, st)
		if err != nil {
			return nil, err
		}
		tryFrame.Declare(res.Name, v)
		opened = append(opened, v)
	}

	result, bodyErr := in.execStatement(n.Body, tryFrame, st)

	for i := len(opened) - 1; i >= 0; i-- {
		in.closeResource(opened[i])
	}

	if bodyErr != nil {
		if value, ok := catchableValue(bodyErr); ok && n.CatchBody != nil {
			catchFrame := frame.Child()
			if n.CatchVar != "" {
				catchFrame.Declare(n.CatchVar, value)
			}
			result, bodyErr = in.execStatement(n.CatchBody, catchFrame, st)
		}
	}

	if n.Finally != nil {
		if _, ferr := in.execStatement(n.Finally, frame.Child(), st); ferr != nil {
			return nil, ferr
		}
	}

	return result, bodyErr
}

// catchableValue reports whether err is something a `catch` clause
// should intercept, and the value to bind the catch variable to.
// Return/break/continue unwind past try/catch entirely (they are not
// JEXL exceptions), and Cancel/StackOverflow are engine-level aborts a
// script cannot recover from — everything else (a user `throw`, or a
// RuntimeError from a bad operation) is catchable, matching the
// source's single JexlException hierarchy (spec §4.2.7).
func catchableValue(err error) (interface{}, bool) {
	switch e := err.(type) {
	case *ThrowError:
		return e.Value, true
	case *returnSignal, *breakSignal, *continueSignal, *CancelError, *StackOverflowError:
		return nil, false
	}
	return err.Error(), true
}

func (in *Interpreter) closeResource(v interface{}) {
	if v == nil {
		return
	}
	if m, ok := in.Introspect.GetMethod(v, "Close", nil); ok {
		_, _ = in.Introspect.Invoke(m, nil)
	}
}

func (in *Interpreter) execThrow(n *ast.ThrowStmt, frame *Frame, st *evalState) error {
	v, err := in.evalNode(n.Expr, frame, st)
	if err != nil {
		return err
	}
	return &ThrowError{Value: v}
}

func (in *Interpreter) execReturn(n *ast.ReturnStmt, frame *Frame, st *evalState) error {
	var v interface{}
	if n.Expr != nil {
		value, err := in.evalNode(n.Expr, frame, st)
		if err != nil {
			return err
		}
		v = value
	}
	return &returnSignal{value: v}
}

// execAnnotated runs an @Name(args)-decorated statement through the
// host's Annotate hook, outermost annotation first (spec §4.2.8); with
// no hook configured the annotations are inert and the body just runs.
func (in *Interpreter) execAnnotated(n *ast.AnnotatedStatement, frame *Frame, st *evalState) (interface{}, error) {
	run := func() (interface{}, error) {
		return in.execStatement(n.Body, frame, st)
	}
	if in.Annotate == nil {
		return run()
	}
	for i := len(n.Annotations) - 1; i >= 0; i-- {
		ann := n.Annotations[i]
		args := make([]interface{}, len(ann.Args))
		for j, a := range ann.Args {
			v, err := in.evalNode(a, frame, st)
			if err != nil {
				return nil, err
			}
			args[j] = v
		}
		next := run
		name := ann.Name
		annArgs := args
		run = func() (interface{}, error) {
			return in.Annotate(name, annArgs, next)
		}
	}
	return run()
}
