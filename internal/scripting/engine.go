package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/l1jgo/itemdb/internal/data"
)

// Engine wraps a single gopher-lua VM running item validation hooks.
// Single-goroutine access only.
type Engine struct {
	vm  *lua.LState
	reg *data.Registry
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads every script in scriptsDir,
// then in its "items" subdirectory. Missing directories are skipped.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	e.registerAPI()

	for _, dir := range []string{scriptsDir, filepath.Join(scriptsDir, "items")} {
		if err := e.loadDir(dir); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load scripts: %w", err)
		}
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// DoString runs a chunk of Lua in the engine's VM.
func (e *Engine) DoString(src string) error {
	return e.vm.DoString(src)
}

// registerAPI exposes registry queries to scripts. They see the registry
// passed to the running Validate call, or nothing outside of one.
func (e *Engine) registerAPI() {
	e.vm.SetGlobal("items_count", e.vm.NewFunction(func(L *lua.LState) int {
		n := 0
		if e.reg != nil {
			n = e.reg.Count()
		}
		L.Push(lua.LNumber(n))
		return 1
	}))
	e.vm.SetGlobal("item_exists", e.vm.NewFunction(func(L *lua.LState) int {
		id := L.CheckInt(1)
		ok := e.reg != nil && id >= 0 && id <= 0xFFFF && e.reg.Exists(uint16(id))
		L.Push(lua.LBool(ok))
		return 1
	}))
	e.vm.SetGlobal("item_get", e.vm.NewFunction(func(L *lua.LState) int {
		id := L.CheckInt(1)
		if e.reg == nil || id < 0 || id > 0xFFFF {
			L.Push(lua.LNil)
			return 1
		}
		t, ok := e.reg.Lookup(uint16(id))
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(e.itemTable(t))
		return 1
	}))
}

func (e *Engine) itemTable(t *data.ItemType) *lua.LTable {
	tbl := e.vm.NewTable()
	tbl.RawSetString("id", lua.LNumber(t.ID))
	tbl.RawSetString("client_id", lua.LNumber(t.ClientID))
	tbl.RawSetString("name", lua.LString(t.Name))
	tbl.RawSetString("group", lua.LString(t.Group.String()))
	tbl.RawSetString("kind", lua.LString(t.Kind.String()))
	tbl.RawSetString("weight", lua.LNumber(t.Weight))
	tbl.RawSetString("slots", lua.LNumber(t.SlotPosition))
	tbl.RawSetString("meta", lua.LBool(t.IsMetaItem))
	tbl.RawSetString("stackable", lua.LBool(t.Stackable))
	tbl.RawSetString("pickupable", lua.LBool(t.Pickupable))
	tbl.RawSetString("moveable", lua.LBool(t.Moveable))
	tbl.RawSetString("readable", lua.LBool(t.CanReadText))
	tbl.RawSetString("writeable", lua.LBool(t.CanWriteText))
	tbl.RawSetString("floor_change", lua.LBool(t.IsFloorChange()))
	tbl.RawSetString("chargeable", lua.LBool(t.IsChargeable()))
	return tbl
}

// Validate calls the Lua validate_item function for every record in
// ascending id order. A string result becomes a warning; nil means the
// record passed. Without validate_item it returns no warnings.
func (e *Engine) Validate(reg *data.Registry) data.Warnings {
	fn := e.vm.GetGlobal("validate_item")
	if fn == lua.LNil {
		e.log.Debug("lua function validate_item not defined, skipping validation")
		return nil
	}

	e.reg = reg
	defer func() { e.reg = nil }()

	var warns data.Warnings
	reg.Each(func(t *data.ItemType) {
		if err := e.vm.CallByParam(lua.P{
			Fn:      fn,
			NRet:    1,
			Protect: true,
		}, e.itemTable(t)); err != nil {
			e.log.Error("lua validate_item error", zap.Uint16("id", t.ID), zap.Error(err))
			warns = append(warns, fmt.Sprintf("script: item %d: %v", t.ID, err))
			return
		}

		result := e.vm.Get(-1)
		e.vm.Pop(1)
		if s, ok := result.(lua.LString); ok {
			warns = append(warns, fmt.Sprintf("script: item %d: %s", t.ID, string(s)))
		}
	})

	e.log.Info("item scripts validated", zap.Int("items", reg.Count()), zap.Int("warnings", len(warns)))
	return warns
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
