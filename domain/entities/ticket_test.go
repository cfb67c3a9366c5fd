package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want int
	}{
		{name: "zero is raised to minimum", raw: "0", want: 1},
		{name: "above maximum is lowered", raw: "7", want: 5},
		{name: "non numeric uses default", raw: "abc", want: 5},
		{name: "empty uses default", raw: "", want: 5},
		{name: "in range is kept", raw: "3", want: 3},
		{name: "negative is raised to minimum", raw: "-2", want: 1},
		{name: "surrounding whitespace is ignored", raw: " 2 ", want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ClampAmount(tt.raw))
		})
	}
}

func TestCombination_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		combo   Combination
		wantErr bool
	}{
		{name: "valid combination", combo: Combination{1, 7, 13, 22, 38, 45}},
		{name: "too few numbers", combo: Combination{1, 2, 3}, wantErr: true},
		{name: "number above range", combo: Combination{1, 2, 3, 4, 5, 46}, wantErr: true},
		{name: "zero is out of range", combo: Combination{0, 2, 3, 4, 5, 6}, wantErr: true},
		{name: "duplicate number", combo: Combination{1, 1, 3, 4, 5, 6}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.combo.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCombination_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "01 07 13 22 38 45", Combination{1, 7, 13, 22, 38, 45}.String())
	assert.Equal(t, Combination{1, 7, 45}, Combination{45, 1, 7}.Sorted())
}

func TestTicket_MarkChecked(t *testing.T) {
	t.Parallel()

	ticket := &Ticket{ID: 12, Status: TicketStatusAwaiting}
	assert.True(t, ticket.IsAwaiting())

	assert.NoError(t, ticket.MarkChecked([]string{LabelFifth}))
	assert.False(t, ticket.IsAwaiting())
	assert.Equal(t, []string{LabelFifth}, ticket.RankLabels)

	// Second transition is rejected and keeps the first label set
	assert.Error(t, ticket.MarkChecked([]string{LabelFirst}))
	assert.Equal(t, []string{LabelFifth}, ticket.RankLabels)
}
