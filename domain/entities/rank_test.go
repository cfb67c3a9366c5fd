package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRank_Label(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rank Rank
		want string
	}{
		{rank: RankNone, want: LabelNoWin},
		{rank: RankFirst, want: LabelFirst},
		{rank: RankSecond, want: LabelSecond},
		{rank: RankThird, want: LabelThird},
		{rank: RankFourth, want: LabelFourth},
		{rank: RankFifth, want: LabelFifth},
		{rank: Rank(-1), want: LabelNoWin},
		{rank: Rank(6), want: LabelNoWin},
	}

	for _, tt := range tests {
		// Same rank always yields the same label
		assert.Equal(t, tt.want, tt.rank.Label())
		assert.Equal(t, tt.rank.Label(), tt.rank.Label())
	}
}

func TestRankLabels_Deduplicates(t *testing.T) {
	t.Parallel()

	labels := RankLabels([]Rank{RankFifth, RankFifth, RankThird})

	assert.Len(t, labels, 2)
	assert.ElementsMatch(t, []string{LabelFifth, LabelThird}, labels)
	// Best rank first
	assert.Equal(t, []string{LabelThird, LabelFifth}, labels)
}

func TestRankLabels_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, RankLabels(nil))
	assert.Equal(t, []string{LabelNoWin}, RankLabels([]Rank{RankNone, RankNone}))
}

func TestRankFromMatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		matches int
		bonus   bool
		want    Rank
	}{
		{name: "all six", matches: 6, want: RankFirst},
		{name: "five with bonus", matches: 5, bonus: true, want: RankSecond},
		{name: "five without bonus", matches: 5, want: RankThird},
		{name: "four", matches: 4, bonus: true, want: RankFourth},
		{name: "three", matches: 3, want: RankFifth},
		{name: "two with bonus is still a loss", matches: 2, bonus: true, want: RankNone},
		{name: "none", matches: 0, want: RankNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, RankFromMatches(tt.matches, tt.bonus))
		})
	}
}

func TestLabelTaxonomy_CoversEveryLabel(t *testing.T) {
	t.Parallel()

	names := make([]string, 0)
	for _, spec := range LabelTaxonomy() {
		names = append(names, spec.Name)
		assert.NotEmpty(t, spec.Color)
	}
	assert.ElementsMatch(t, append([]string{LabelAwaiting, LabelChecked}, rankOrder...), names)
}
