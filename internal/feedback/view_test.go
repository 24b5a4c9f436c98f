package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFeedback() *Feedback {
	return &Feedback{
		ToneAndStyle: &Category{Score: 72, Tips: []Tip{
			{Type: TipGood, Tip: "Confident voice", Explanation: "Active verbs throughout."},
			{Type: TipImprove, Tip: "Trim jargon", Explanation: "Several acronyms are unexplained."},
		}},
		Content:   &Category{Score: 40},
		Structure: &Category{Score: 39, Tips: []Tip{{Type: TipImprove, Tip: "Add headings"}}},
	}
}

func TestBuildDetailsSectionsInOrder(t *testing.T) {
	d := BuildDetails(sampleFeedback())

	require.True(t, d.Accordion.AllowMultiple)
	require.Len(t, d.Accordion.Items, 4)

	wantIDs := []string{KeyToneAndStyle, KeyContent, KeyStructure, KeySkills}
	wantTitles := []string{"Tone & Style", "Content", "Structure", "Skills"}
	wantTiers := []Tier{TierGood, TierWarning, TierPoor, TierPoor}
	for i, item := range d.Accordion.Items {
		assert.Equal(t, wantIDs[i], item.ID)
		assert.Equal(t, wantTitles[i], item.Header.Title)
		assert.Equal(t, wantTiers[i], item.Header.Badge.Tier)
	}
	assert.Equal(t, "72/100", d.Accordion.Items[0].Header.Badge.Label)
	assert.Nil(t, d.OverallScore)
}

func TestBuildDetailsMissingCategoryDegrades(t *testing.T) {
	d := BuildDetails(sampleFeedback())
	skills := d.Accordion.Items[3]

	assert.Equal(t, 0.0, skills.Header.Badge.Score)
	assert.Equal(t, "0/100", skills.Header.Badge.Label)
	assert.True(t, skills.Content.Empty)
}

func TestBuildDetailsNilFeedback(t *testing.T) {
	d := BuildDetails(nil)
	require.Len(t, d.Accordion.Items, 4)
	for _, item := range d.Accordion.Items {
		assert.Equal(t, TierPoor, item.Header.Badge.Tier)
		assert.True(t, item.Content.Empty)
	}
}

func TestBuildDetailsOptionalSections(t *testing.T) {
	fb := sampleFeedback()
	fb.OverallScore = 81
	fb.ATS = &Category{Score: 55}

	d := BuildDetails(fb)
	require.Len(t, d.Accordion.Items, 4)
	ids := make([]string, 0, 4)
	for _, item := range d.Accordion.Items {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []string{KeyToneAndStyle, KeyContent, KeyStructure, KeySkills}, ids)
	require.NotNil(t, d.ATS)
	assert.Equal(t, TierWarning, d.ATS.Badge.Tier)
	assert.True(t, d.ATS.Content.Empty)
	require.NotNil(t, d.OverallScore)
	assert.Equal(t, TierGood, d.OverallScore.Tier)
}

func TestBuildContentEmpty(t *testing.T) {
	for _, tips := range [][]Tip{nil, {}} {
		c := BuildContent(tips)
		assert.Equal(t, CategoryContent{Empty: true, Placeholder: "No tips available."}, c)
	}
}

func TestBuildContentPreservesOrderInBothPasses(t *testing.T) {
	tips := []Tip{
		{Type: TipGood, Tip: "a", Explanation: "ea"},
		{Type: TipImprove, Tip: "b", Explanation: "eb"},
		{Type: TipGood, Tip: "c", Explanation: "ec"},
	}
	c := BuildContent(tips)

	require.False(t, c.Empty)
	require.Len(t, c.Grid, len(tips))
	require.Len(t, c.Explanations, len(tips))
	for i, tip := range tips {
		assert.Equal(t, i, c.Grid[i].Key)
		assert.Equal(t, tip.Tip, c.Grid[i].Text)
		assert.Equal(t, tip.Type, c.Grid[i].Type)
		assert.Equal(t, tip.Explanation, c.Explanations[i].Explanation)
		assert.Equal(t, TipStyle(tip.Type), c.Explanations[i].Style)
	}
	assert.Equal(t, "ex-1", c.Explanations[1].Key)
}
