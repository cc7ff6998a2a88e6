package alignment

import (
	"fmt"
	"strings"
)

// Marker is the delimiter convention used to build a composite
// species/gene label in a CDS file.
type Marker int

const (
	MarkerNone Marker = iota
	MarkerCDS         // "<species>_cds_<gene>"
	MarkerPEG         // "<species>.peg.<gene>"
)

const (
	cdsMarker = "_cds_"
	pegMarker = ".peg."
)

func (m Marker) String() string {
	switch m {
	case MarkerCDS:
		return "cds"
	case MarkerPEG:
		return "peg"
	default:
		return "none"
	}
}

// GenePrefix is the tag re-attached to the gene half of a label.
func (m Marker) GenePrefix() string {
	switch m {
	case MarkerCDS:
		return "cds_"
	case MarkerPEG:
		return "peg."
	default:
		return ""
	}
}

// Label is a parsed composite identifier.
type Label struct {
	Species string
	Gene    string
	Marker  Marker
}

// ParseLabel splits label on whichever marker occurs first. The gene half is
// re-prefixed with the tag of the marker actually found, so
// "Ecoli_cds_WP_1.1_7" yields ("Ecoli", "cds_WP_1.1_7") and
// "Bfrag.peg.12" yields ("Bfrag", "peg.12").
func ParseLabel(label string) (Label, error) {
	ci := strings.Index(label, cdsMarker)
	pi := strings.Index(label, pegMarker)

	m, at, width := MarkerNone, -1, 0
	switch {
	case ci >= 0 && (pi < 0 || ci <= pi):
		m, at, width = MarkerCDS, ci, len(cdsMarker)
	case pi >= 0:
		m, at, width = MarkerPEG, pi, len(pegMarker)
	}
	if m == MarkerNone {
		return Label{}, fmt.Errorf("label %q has neither %q nor %q marker", label, cdsMarker, pegMarker)
	}
	return Label{
		Species: label[:at],
		Gene:    m.GenePrefix() + label[at+width:],
		Marker:  m,
	}, nil
}

// SpeciesPrefix returns the part of label before the first '-', which is how
// strain labels are collapsed to a species in group mode. Labels without a
// '-' fall back to the parsed species.
func SpeciesPrefix(label string) string {
	if i := strings.IndexByte(label, '-'); i >= 0 {
		return label[:i]
	}
	if l, err := ParseLabel(label); err == nil {
		return l.Species
	}
	return label
}
