package data

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDumpYAML(t *testing.T) {
	reg := registryWith(2, 1)
	reg.SetVersion(Version{Major: 3, Minor: 57, Build: 62})
	sword := reg.Get(2)
	sword.Name = "sword"
	sword.WeaponType = WeaponSword
	sword.Stackable = true

	var buf bytes.Buffer
	require.NoError(t, DumpYAML(reg, &buf))

	var got dumpFile
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, uint32(3), got.Version.Major)
	assert.Equal(t, uint16(2), got.MaxID)
	require.Len(t, got.Items, 2)
	assert.Equal(t, uint16(1), got.Items[0].ID)
	assert.Equal(t, "sword", got.Items[1].Name)
	assert.Equal(t, "sword", got.Items[1].WeaponType)
	assert.Equal(t, []string{"replaceable", "stackable", "moveable"}, got.Items[1].Flags)
}

func TestItemFlagNamesMatchBits(t *testing.T) {
	assert.Zero(t, (&ItemType{}).FlagBits())

	first := newDumpItem(&ItemType{IsMetaItem: true})
	assert.Equal(t, []string{"meta"}, first.Flags)

	last := newDumpItem(&ItemType{HasElevation: true})
	assert.Equal(t, []string{"elevation"}, last.Flags)
}
