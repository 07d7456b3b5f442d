package data

import "fmt"

// Source modes for the primary item file.
const (
	SourceOTB = "otb"
	SourceDAT = "dat"
)

// Sources names the files of one client load. Empty XML or Meta paths are
// skipped.
type Sources struct {
	Mode string // SourceOTB or SourceDAT
	OTB  string
	DAT  string
	XML  string
	Meta string
}

// LoadAll runs the primary decoder, then the items.xml overlay, then the
// meta item list. Warnings from every stage are returned in order; the first
// fatal error stops the load.
func (l *Loader) LoadAll(src Sources) (Warnings, error) {
	var all Warnings

	var (
		warns Warnings
		err   error
	)
	switch src.Mode {
	case SourceOTB:
		warns, err = l.LoadOTB(src.OTB)
	case SourceDAT:
		warns, err = l.LoadDAT(src.DAT)
	default:
		return nil, fmt.Errorf("unknown source mode %q", src.Mode)
	}
	all = append(all, warns...)
	if err != nil {
		return all, err
	}

	if src.XML != "" {
		warns, err = l.LoadXML(src.XML)
		all = append(all, warns...)
		if err != nil {
			return all, err
		}
	}

	if src.Meta != "" {
		warns, err = l.LoadMetaItems(src.Meta)
		all = append(all, warns...)
		if err != nil {
			return all, err
		}
	}
	return all, nil
}
