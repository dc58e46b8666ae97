package script

import (
	lua "github.com/yuin/gopher-lua"
)

// Entry point names a script may define. Only EntryRender is mandatory.
const (
	EntryIOPorts = "node_io_ports"
	EntryParams  = "node_params"
	EntryPrepare = "node_prepare"
	EntryRender  = "node_render"
	EntryRelease = "node_release"
)

// Runtime owns one interpreter instance and is the only place dynamic
// dispatch into Lua happens. All calls are protected: an error raised by the
// script surfaces as an *InterpreterError, never as a panic.
type Runtime struct {
	state *lua.LState
}

// newRuntime creates an interpreter with a restricted capability set: the
// base and string libraries only, with every file-loading function removed.
// Scripts get no filesystem, process or network access.
func newRuntime() (*Runtime, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage}, // must be opened first
		{lua.BaseLibName, lua.OpenBase},
		{lua.StringLibName, lua.OpenString},
	} {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.fn),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			L.Close()
			return nil, &InterpreterError{Op: "open " + lib.name, Err: err}
		}
	}
	// base ships dofile/loadfile and the package library ships require with
	// a file loader; all of those reach the filesystem.
	L.SetGlobal("dofile", lua.LNil)
	L.SetGlobal("loadfile", lua.LNil)
	L.SetGlobal("require", lua.LNil)
	L.SetGlobal("package", lua.LNil)
	return &Runtime{state: L}, nil
}

// Close shuts the interpreter down. The Runtime must not be used afterwards.
func (r *Runtime) Close() {
	if r.state != nil {
		r.state.Close()
		r.state = nil
	}
}

// Exec runs a chunk of script text at the top level, registering whatever
// globals it defines.
func (r *Runtime) Exec(text string) error {
	if err := r.state.DoString(text); err != nil {
		return &InterpreterError{Op: "load", Err: err}
	}
	return nil
}

// Global returns the value bound to a global name.
func (r *Runtime) Global(name string) lua.LValue {
	return r.state.GetGlobal(name)
}

// Function returns the global bound to name if it is callable.
func (r *Runtime) Function(name string) (*lua.LFunction, bool) {
	fn, ok := r.state.GetGlobal(name).(*lua.LFunction)
	return fn, ok
}

// TryInvoke calls the named global function under a protected call and
// returns its first result. A missing or non-callable global is not an
// error: the call is skipped and (nil, false, nil) is returned, which lets
// optional entry points stay optional.
func (r *Runtime) TryInvoke(name string, args ...lua.LValue) (lua.LValue, bool, error) {
	fn, ok := r.Function(name)
	if !ok {
		return lua.LNil, false, nil
	}
	if err := r.state.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		return lua.LNil, true, &InterpreterError{Op: name, Err: err}
	}
	ret := r.state.Get(-1)
	r.state.Pop(1)
	return ret, true, nil
}

// CollectGarbage forces an interpreter collection pass. It is called after
// prepare and release so per-lifecycle allocations are reclaimed off the
// render path; it must never run during Render.
func (r *Runtime) CollectGarbage() {
	_, _, _ = r.TryInvoke("collectgarbage", lua.LString("collect"))
}

// tableToMap converts a Lua table's string-keyed fields into a Go map with
// scalar values, the shape mapstructure decodes parameter specs from.
func tableToMap(t *lua.LTable) map[string]any {
	m := make(map[string]any)
	t.ForEach(func(k, v lua.LValue) {
		key, ok := k.(lua.LString)
		if !ok {
			return
		}
		switch val := v.(type) {
		case lua.LString:
			m[string(key)] = string(val)
		case lua.LNumber:
			m[string(key)] = float64(val)
		case lua.LBool:
			m[string(key)] = bool(val)
		}
	})
	return m
}
