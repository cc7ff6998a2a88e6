// pkg/api/primers_v1.go
package api

// PrimerPairV1 is the stable JSON/JSONL schema for one designed primer pair.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type PrimerPairV1 struct {
	Species      string  `json:"species"`
	Gene         string  `json:"gene"`
	GeneSequence string  `json:"gene_sequence,omitempty"`
	PairIndex    int     `json:"primer_option"`
	PairPenalty  float64 `json:"pair_penalty_score"`
	AmpliconSize int     `json:"amplicon_size"`
	Forward      string  `json:"f_primer"`
	Reverse      string  `json:"r_primer"`
	ForwardLen   int     `json:"f_length"`
	ReverseLen   int     `json:"r_length"`
	ForwardTm    float64 `json:"f_tm"`
	ReverseTm    float64 `json:"r_tm"`
	ForwardGC    float64 `json:"f_gc"`
	ReverseGC    float64 `json:"r_gc"`
}

// GroupGeneV1 is the stable schema for a classified group-mode gene.
type GroupGeneV1 struct {
	Species        string   `json:"species"`
	Gene           string   `json:"gene"`
	Length         int      `json:"gene_length"`
	Tier           string   `json:"tier"` // "ideal" | "secondary" | "undesired"
	Targets        []string `json:"targets"`
	TargetsMissing []string `json:"missing_targets,omitempty"`
	Unintended     []string `json:"unintended_targets,omitempty"`
	UnintendedRows int      `json:"unintended_alignments"`
	Rationale      []string `json:"comments"`
}

// UniqueGeneV1 is the stable schema for a catalog row.
type UniqueGeneV1 struct {
	Species string `json:"species"`
	Gene    string `json:"gene"`
	Length  int    `json:"gene_length"`
}
