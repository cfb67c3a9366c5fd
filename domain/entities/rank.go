package entities

// Rank is the prize tier a combination achieved for a round. Zero means no prize.
type Rank int

const (
	RankNone   Rank = 0
	RankFirst  Rank = 1
	RankSecond Rank = 2
	RankThird  Rank = 3
	RankFourth Rank = 4
	RankFifth  Rank = 5
)

// Labels used in the ticket store
const (
	LabelAwaiting = "waiting"
	LabelChecked  = "checked"

	LabelNoWin  = "no-win"
	LabelFirst  = "1st"
	LabelSecond = "2nd"
	LabelThird  = "3rd"
	LabelFourth = "4th"
	LabelFifth  = "5th"
)

// rankOrder lists rank labels best first
var rankOrder = []string{LabelFirst, LabelSecond, LabelThird, LabelFourth, LabelFifth, LabelNoWin}

// Label maps a rank to its label. Every value outside 1-5 is a loss.
func (r Rank) Label() string {
	switch r {
	case RankFirst:
		return LabelFirst
	case RankSecond:
		return LabelSecond
	case RankThird:
		return LabelThird
	case RankFourth:
		return LabelFourth
	case RankFifth:
		return LabelFifth
	default:
		return LabelNoWin
	}
}

// IsWin returns true for ranks 1 through 5
func (r Rank) IsWin() bool {
	return r >= RankFirst && r <= RankFifth
}

// RankFromMatches computes a Lotto 6/45 rank from the count of matched main
// numbers and whether the bonus number was matched
func RankFromMatches(matches int, bonus bool) Rank {
	switch {
	case matches == 6:
		return RankFirst
	case matches == 5 && bonus:
		return RankSecond
	case matches == 5:
		return RankThird
	case matches == 4:
		return RankFourth
	case matches == 3:
		return RankFifth
	default:
		return RankNone
	}
}

// RankLabels returns the deduplicated labels for the given ranks, best rank first
func RankLabels(ranks []Rank) []string {
	present := make(map[string]bool, len(ranks))
	for _, r := range ranks {
		present[r.Label()] = true
	}

	labels := make([]string, 0, len(present))
	for _, label := range rankOrder {
		if present[label] {
			labels = append(labels, label)
		}
	}
	return labels
}

// LabelSpec describes a label in the store's taxonomy
type LabelSpec struct {
	Name        string
	Color       string
	Description string
}

// LabelTaxonomy returns every label the ticket store must provide
func LabelTaxonomy() []LabelSpec {
	return []LabelSpec{
		{Name: LabelAwaiting, Color: "fbca04", Description: "Ticket waiting for the draw result"},
		{Name: LabelChecked, Color: "0e8a16", Description: "Ticket checked against the draw result"},
		{Name: LabelFirst, Color: "b60205", Description: "1st prize"},
		{Name: LabelSecond, Color: "d93f0b", Description: "2nd prize"},
		{Name: LabelThird, Color: "e99695", Description: "3rd prize"},
		{Name: LabelFourth, Color: "f9d0c4", Description: "4th prize"},
		{Name: LabelFifth, Color: "fef2c0", Description: "5th prize"},
		{Name: LabelNoWin, Color: "c5def5", Description: "No prize"},
	}
}
