package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssembly_IncludedChunkIDs(t *testing.T) {
	asm := Assembly{
		Included: []Evidence{
			{Chunk: Chunk{ID: "a#0000"}, Score: 0.8},
			{Chunk: Chunk{ID: "b#0001"}, Score: 0.5},
		},
	}
	assert.Equal(t, []string{"a#0000", "b#0001"}, asm.IncludedChunkIDs())
}

func TestRetrievalResult_ChunkIDs(t *testing.T) {
	r := RetrievalResult{
		Evidence: []Evidence{
			{Chunk: Chunk{ID: "doc#0001"}},
			{Chunk: Chunk{ID: "doc#0000"}},
		},
	}
	assert.Equal(t, []string{"doc#0001", "doc#0000"}, r.ChunkIDs())
	assert.Equal(t, 2, r.Len())
}

func TestWarningCategory_IsValid(t *testing.T) {
	for _, c := range []WarningCategory{
		WarningConvenienceLanguage,
		WarningNonPatientUse,
		WarningPreferenceLanguage,
		WarningCostArgument,
		WarningVagueWellbeing,
	} {
		assert.True(t, c.IsValid(), c)
	}
	assert.False(t, WarningCategory("profanity").IsValid())
}

func TestStakeholders_Order(t *testing.T) {
	assert.Equal(t,
		[]Stakeholder{StakeholderProvider, StakeholderPatient, StakeholderInsurer},
		Stakeholders())
}

func TestRequiredElements_Count(t *testing.T) {
	assert.Len(t, RequiredElements(), 5)
}
