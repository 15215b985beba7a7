package matching

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewSelfMatchResult_CorrectTopMatch(t *testing.T) {
	owner := uuid.New()

	tests := []struct {
		name      string
		queryID   int64
		matchedID int64
		rank      int
		want      bool
	}{
		{"self at rank one", 7, 7, 1, true},
		{"other at rank one", 7, 8, 1, false},
		{"self below rank one", 7, 7, 2, false},
		{"sentinel matched id", 7, -1, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewSelfMatchResult(owner, tt.queryID, tt.matchedID, tt.rank, 0.9, "p.jpg")
			assert.Equal(t, tt.want, r.IsCorrectTopMatch())
		})
	}
}

func TestAccuracy(t *testing.T) {
	owner := uuid.New()

	row := func(queryID, matchedID int64, rank int) SelfMatchResult {
		return NewSelfMatchResult(owner, queryID, matchedID, rank, 0.5, "p.jpg")
	}

	tests := []struct {
		name        string
		results     []SelfMatchResult
		k           int
		wantQueries int
		wantTop1    int
		wantTopK    int
	}{
		{
			name:    "no results",
			results: nil,
			k:       10,
		},
		{
			name: "self at rank one",
			results: []SelfMatchResult{
				row(1, 1, 1),
				row(1, 2, 2),
			},
			k:           10,
			wantQueries: 1,
			wantTop1:    1,
			wantTopK:    1,
		},
		{
			name: "self at rank three",
			results: []SelfMatchResult{
				row(1, 4, 1),
				row(1, 5, 2),
				row(1, 1, 3),
			},
			k:           10,
			wantQueries: 1,
			wantTop1:    0,
			wantTopK:    1,
		},
		{
			name: "self beyond k",
			results: []SelfMatchResult{
				row(1, 4, 1),
				row(1, 5, 2),
				row(1, 1, 3),
			},
			k:           2,
			wantQueries: 1,
			wantTop1:    0,
			wantTopK:    0,
		},
		{
			name: "mixed queries",
			results: []SelfMatchResult{
				row(1, 1, 1),
				row(2, 9, 1),
				row(2, 2, 2),
				row(3, 8, 1),
			},
			k:           10,
			wantQueries: 3,
			wantTop1:    1,
			wantTopK:    2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Accuracy(tt.results, tt.k)
			assert.Equal(t, tt.wantQueries, report.Queries())
			assert.Equal(t, tt.wantTop1, report.Top1Correct())
			assert.Equal(t, tt.wantTopK, report.TopKCorrect())
			assert.Equal(t, tt.k, report.K())
		})
	}
}

func TestReport_AccuracyFractions(t *testing.T) {
	owner := uuid.New()
	results := []SelfMatchResult{
		NewSelfMatchResult(owner, 1, 1, 1, 1.0, "a.jpg"),
		NewSelfMatchResult(owner, 2, 1, 1, 1.0, "b.jpg"),
		NewSelfMatchResult(owner, 2, 2, 2, 0.9, "b.jpg"),
	}

	report := Accuracy(results, 10)
	assert.InDelta(t, 0.5, report.Top1Accuracy(), 1e-9)
	assert.InDelta(t, 1.0, report.TopKAccuracy(), 1e-9)

	empty := Accuracy(nil, 10)
	assert.Zero(t, empty.Top1Accuracy())
	assert.Zero(t, empty.TopKAccuracy())
}
