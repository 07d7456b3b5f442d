package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ClientVersion describes one client release and the file formats it ships.
type ClientVersion struct {
	Name         string    `yaml:"name"`
	Version      int       `yaml:"version"` // 1098 for 10.98
	OTBMajor     uint32    `yaml:"otb_major"`
	OTBMinor     uint32    `yaml:"otb_minor"`
	DatSignature uint32    `yaml:"dat_signature"`
	DatFormatRaw string    `yaml:"dat_format"`
	DatFormat    DatFormat `yaml:"-"`
}

// LoadOptions returns the options for loading this client's files.
func (c *ClientVersion) LoadOptions(checkSignatures, preferClientID bool) LoadOptions {
	return LoadOptions{
		CheckSignatures:      checkSignatures,
		ExpectedOTBVersion:   c.OTBMajor,
		ExpectedDatSignature: c.DatSignature,
		PreferClientID:       preferClientID,
		ClientVersion:        c.Version,
		DatFormat:            c.DatFormat,
	}
}

type clientListFile struct {
	Clients []ClientVersion `yaml:"clients"`
}

// ClientCatalog holds the known client versions by name.
type ClientCatalog struct {
	clients map[string]*ClientVersion
	order   []string
}

// LoadClientCatalog loads clients.yaml.
func LoadClientCatalog(path string) (*ClientCatalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read client catalog: %w", err)
	}
	return ParseClientCatalog(raw)
}

func ParseClientCatalog(raw []byte) (*ClientCatalog, error) {
	var f clientListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse client catalog: %w", err)
	}
	c := &ClientCatalog{clients: make(map[string]*ClientVersion, len(f.Clients))}
	for i := range f.Clients {
		cv := &f.Clients[i]
		if cv.Name == "" {
			return nil, fmt.Errorf("client catalog entry %d has no name", i+1)
		}
		if _, dup := c.clients[cv.Name]; dup {
			return nil, fmt.Errorf("client catalog: duplicate client %q", cv.Name)
		}
		if cv.DatFormatRaw != "" {
			df, err := ParseDatFormat(cv.DatFormatRaw)
			if err != nil {
				return nil, fmt.Errorf("client catalog: client %q: %w", cv.Name, err)
			}
			cv.DatFormat = df
		}
		c.clients[cv.Name] = cv
		c.order = append(c.order, cv.Name)
	}
	return c, nil
}

// Get returns a client by name, or nil if not found.
func (c *ClientCatalog) Get(name string) *ClientVersion {
	return c.clients[name]
}

// Names returns client names in file order.
func (c *ClientCatalog) Names() []string {
	return append([]string(nil), c.order...)
}

// Count returns total loaded clients.
func (c *ClientCatalog) Count() int {
	return len(c.clients)
}
