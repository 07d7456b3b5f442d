package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/l1jgo/itemdb/internal/data"
)

func testRegistry() *data.Registry {
	reg := data.NewRegistry()
	for _, id := range []uint16{100, 101, 102} {
		t := data.NewItemType()
		t.ID = id
		t.ClientID = id
		reg.Put(t)
	}
	reg.Get(101).Name = "torch"
	return reg
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(t.TempDir(), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func TestValidateWithoutHook(t *testing.T) {
	e := newTestEngine(t)
	assert.Empty(t, e.Validate(testRegistry()))
}

func TestValidateCollectsMessages(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.DoString(`
		function validate_item(item)
			if item.name == "" then
				return "has no name"
			end
			return nil
		end
	`))

	warns := e.Validate(testRegistry())
	assert.Equal(t, data.Warnings{
		"script: item 100: has no name",
		"script: item 102: has no name",
	}, warns)
}

func TestValidateRegistryAPI(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.DoString(`
		function validate_item(item)
			if item.id == 100 then
				local next = item_get(item.id + 1)
				return string.format("%d %s %s %s", items_count(), tostring(item_exists(102)), tostring(item_exists(900)), next.name)
			end
		end
	`))

	warns := e.Validate(testRegistry())
	require.Len(t, warns, 1)
	assert.Equal(t, "script: item 100: 3 true false torch", warns[0])
}

func TestValidateScriptError(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.DoString(`
		function validate_item(item)
			if item.id == 101 then
				error("boom")
			end
		end
	`))

	warns := e.Validate(testRegistry())
	require.Len(t, warns, 1)
	assert.Contains(t, warns[0], "script: item 101:")
	assert.Contains(t, warns[0], "boom")
}

func TestNewEngineLoadsScripts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "items"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "items", "names.lua"), []byte(`
		function validate_item(item)
			if item.id == 102 then return "checked" end
		end
	`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("not lua"), 0o644))

	e, err := NewEngine(dir, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer e.Close()

	assert.Equal(t, data.Warnings{"script: item 102: checked"}, e.Validate(testRegistry()))
}

func TestNewEngineReportsSyntaxErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.lua"), []byte(`function (`), 0o644))

	_, err := NewEngine(dir, zaptest.NewLogger(t))
	assert.Error(t, err)
}
