package classify

import "fmt"

// Tier is the group-mode desirability bucket.
type Tier int

const (
	Ideal Tier = iota
	Secondary
	Undesired
)

var tierNames = [...]string{"ideal", "secondary", "undesired"}

func (t Tier) String() string {
	if t < Ideal || t > Undesired {
		return fmt.Sprintf("tier(%d)", int(t))
	}
	return tierNames[t]
}

// Tiers lists every tier in priority order.
var Tiers = []Tier{Ideal, Secondary, Undesired}

// Judgments shown in the rationale column. Each block starts with its
// heading line.
const (
	countExact       = "NUMBER OF ALIGNMENTS:\nThis gene has exactly 1 alignment to each intended target."
	countExtra       = "NUMBER OF ALIGNMENTS:\nThis gene has more than 1 alignment to at least one intended target."
	countExtraMissed = "NUMBER OF ALIGNMENTS:\nThis gene has more than 1 alignment to at least one intended target and it does not amplify all targets."
	countShort       = "NUMBER OF ALIGNMENTS:\nThis gene does not amplify all the intended targets."
	countBad         = "NUMBER OF ALIGNMENTS:\nThis gene is not a good target to amplify the target group."

	unintendedNone = "UNINTENDED AMPLIFICATION:\nThis gene only amplifies intended species in the defined community."
	unintendedSome = "UNINTENDED AMPLIFICATION:\nWARNING - This gene amplifies unintended species in the defined community!"

	identityPerfect = "ALIGNMENTS %ID:\nThis gene aligns perfectly (100% ID) to each target gene."
	identityPartial = "ALIGNMENTS %ID:\nThis gene does not align perfectly to at least one target gene."

	qcovFull    = "QUERY COVERAGE:\nThe entire length of this gene (i.e. 100% query coverage) aligns to each target gene."
	qcovPartial = "QUERY COVERAGE:\nOnly a portion of this gene (i.e. <100% query coverage) aligns to at least one target gene."

	tcovFull    = "TARGET COVERAGE:\nThis gene aligns to the entire sequence of each target gene (i.e. 100% target coverage)."
	tcovPartial = "TARGET COVERAGE:\nThis gene does not align to the entire sequence of at least one target gene."
)
