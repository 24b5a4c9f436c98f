package feedback

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderStringAccordionMarkup(t *testing.T) {
	out, err := RenderString(sampleFeedback())
	require.NoError(t, err)

	assert.Contains(t, out, `data-allow-multiple="true"`)
	assert.Equal(t, 4, strings.Count(out, `<details class="accordion-item"`))
	for _, id := range []string{KeyToneAndStyle, KeyContent, KeyStructure, KeySkills} {
		// item, header slot and content slot share the key
		assert.Equal(t, 3, strings.Count(out, `data-item-id="`+id+`"`), "id %s", id)
	}
	assert.Contains(t, out, "Tone &amp; Style")
	assert.Contains(t, out, "72/100")
	assert.Contains(t, out, "tier-good")
	assert.Contains(t, out, "tier-warning")
	assert.Contains(t, out, "tier-poor")
	assert.Contains(t, out, "Why this works")
	assert.Contains(t, out, "What&#39;s the issue")
	assert.Equal(t, 2, strings.Count(out, "No tips available."))
}

func TestRenderEscapesTipText(t *testing.T) {
	fb := &Feedback{Skills: &Category{Score: 90, Tips: []Tip{{Type: TipGood, Tip: "<script>alert(1)</script>"}}}}
	out, err := RenderString(fb)
	require.NoError(t, err)

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestRenderTipsAppearTwiceInOrder(t *testing.T) {
	fb := &Feedback{Content: &Category{Score: 50, Tips: []Tip{
		{Type: TipGood, Tip: "first-tip", Explanation: "first-why"},
		{Type: TipImprove, Tip: "second-tip", Explanation: "second-why"},
	}}}
	out, err := RenderString(fb)
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(out, `class="tip-cell`))
	assert.Equal(t, 2, strings.Count(out, `class="tip-explanation`))
	assert.Less(t, strings.Index(out, "first-tip"), strings.Index(out, "second-tip"))
	assert.Less(t, strings.Index(out, "first-why"), strings.Index(out, "second-why"))
}

func TestRenderATSSummaryOutsideAccordion(t *testing.T) {
	fb := sampleFeedback()
	fb.ATS = &Category{Score: 88, Tips: []Tip{{Type: TipGood, Tip: "Parseable layout"}}}

	out, err := RenderString(fb)
	require.NoError(t, err)

	assert.Equal(t, 4, strings.Count(out, `<details class="accordion-item"`))
	ats := strings.Index(out, `class="ats-summary"`)
	accordion := strings.Index(out, `class="accordion w-full"`)
	require.GreaterOrEqual(t, ats, 0)
	assert.Less(t, ats, accordion)
	assert.Contains(t, out, "ATS Compatibility")
	assert.Contains(t, out, "88/100")
	assert.NotContains(t, out, `data-item-id="ats"`)
}
