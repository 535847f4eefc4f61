// builtins_io.go implements the suspending I/O built-ins: display, newline,
// read-line. Each routes through the scheduler's async I/O backend rather
// than calling the backend directly, so the calling fiber suspends and is
// resumed once its operation completes instead of blocking a worker thread.
package twine

func registerIOBuiltins(ip *Interpreter) {
	ip.RegisterBuiltin("display", 1, 1, builtinDisplay)
	ip.RegisterBuiltin("newline", 0, 0, builtinNewline)
	ip.RegisterBuiltin("read-line", 0, 0, builtinReadLine)
}

func builtinDisplay(ip *Interpreter, fc *FiberContext, args []Value, pos SourcePos) Value {
	text := WriteOut(args[0])
	fc.Scheduler.SubmitIO(fc.Fiber, func() (Value, error) {
		if err := fc.Scheduler.io.Write(text); err != nil {
			return Value{}, err
		}
		return Nil, nil
	})
	return Nil
}

func builtinNewline(ip *Interpreter, fc *FiberContext, args []Value, pos SourcePos) Value {
	fc.Scheduler.SubmitIO(fc.Fiber, func() (Value, error) {
		if err := fc.Scheduler.io.Write("\n"); err != nil {
			return Value{}, err
		}
		return Nil, nil
	})
	return Nil
}

func builtinReadLine(ip *Interpreter, fc *FiberContext, args []Value, pos SourcePos) Value {
	return fc.Scheduler.SubmitIO(fc.Fiber, func() (Value, error) {
		line, eof, err := fc.Scheduler.io.ReadLine()
		if err != nil {
			return Value{}, err
		}
		if eof {
			return Nil, nil
		}
		return String(line), nil
	})
}
