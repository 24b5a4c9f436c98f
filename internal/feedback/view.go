package feedback

import "strconv"

// Details is the view tree for a feedback record: one accordion whose items
// are always the four scored categories. The overall score and the ATS
// summary sit outside the accordion.
type Details struct {
	OverallScore *ScoreBadge
	ATS          *ATSSummary
	Accordion    Accordion
}

// ATSSummary is the optional ATS compatibility block.
type ATSSummary struct {
	Title   string
	Badge   ScoreBadge
	Content CategoryContent
}

// Accordion is an expandable-sections container. Header and content slots of
// an item share the item's ID.
type Accordion struct {
	AllowMultiple bool
	Items         []AccordionItem
}

// AccordionItem is one keyed section.
type AccordionItem struct {
	ID      string
	Header  CategoryHeader
	Content CategoryContent
}

// CategoryHeader is the title row of a section.
type CategoryHeader struct {
	Title string
	Badge ScoreBadge
}

// ScoreBadge shows score/100 in the tier's colors.
type ScoreBadge struct {
	Score float64
	Label string
	Tier  Tier
	Style Style
}

// CategoryContent is the body of a section. When Empty is set, Grid and
// Explanations are nil and the placeholder is shown instead.
type CategoryContent struct {
	Empty        bool
	Placeholder  string
	Grid         []GridTip
	Explanations []ExplanationTip
}

// GridTip is the compact cell for a tip.
type GridTip struct {
	Key   int
	Type  TipType
	Text  string
	Style TipPresentation
}

// ExplanationTip is the expanded block for a tip.
type ExplanationTip struct {
	Key         string
	Type        TipType
	Explanation string
	Style       TipPresentation
}

const noTipsPlaceholder = "No tips available."

type section struct {
	key   string
	title string
	pick  func(*Feedback) *Category
}

var sections = []section{
	{key: KeyToneAndStyle, title: "Tone & Style", pick: func(f *Feedback) *Category { return f.ToneAndStyle }},
	{key: KeyContent, title: "Content", pick: func(f *Feedback) *Category { return f.Content }},
	{key: KeyStructure, title: "Structure", pick: func(f *Feedback) *Category { return f.Structure }},
	{key: KeySkills, title: "Skills", pick: func(f *Feedback) *Category { return f.Skills }},
}

// BuildDetails maps feedback into its view tree. Nil feedback or a missing
// category renders as score 0 with no tips.
func BuildDetails(fb *Feedback) Details {
	if fb == nil {
		fb = &Feedback{}
	}

	items := make([]AccordionItem, 0, len(sections))
	for _, s := range sections {
		items = append(items, buildItem(s.key, s.title, s.pick(fb)))
	}

	out := Details{
		Accordion: Accordion{AllowMultiple: true, Items: items},
	}
	if fb.OverallScore != 0 {
		badge := NewScoreBadge(fb.OverallScore)
		out.OverallScore = &badge
	}
	if fb.ATS != nil {
		out.ATS = &ATSSummary{
			Title:   "ATS Compatibility",
			Badge:   NewScoreBadge(fb.ATS.Score),
			Content: BuildContent(fb.ATS.Tips),
		}
	}
	return out
}

func buildItem(key, title string, cat *Category) AccordionItem {
	var score float64
	var tips []Tip
	if cat != nil {
		score = cat.Score
		tips = cat.Tips
	}
	return AccordionItem{
		ID: key,
		Header: CategoryHeader{
			Title: title,
			Badge: NewScoreBadge(score),
		},
		Content: BuildContent(tips),
	}
}

// NewScoreBadge builds the badge for a score.
func NewScoreBadge(score float64) ScoreBadge {
	tier := TierFor(score)
	return ScoreBadge{
		Score: score,
		Label: formatScore(score) + "/100",
		Tier:  tier,
		Style: TierStyle(tier),
	}
}

// BuildContent renders each tip twice, once as a grid cell and once as an
// explanation block, both in input order.
func BuildContent(tips []Tip) CategoryContent {
	if len(tips) == 0 {
		return CategoryContent{Empty: true, Placeholder: noTipsPlaceholder}
	}

	grid := make([]GridTip, 0, len(tips))
	explanations := make([]ExplanationTip, 0, len(tips))
	for i, t := range tips {
		style := TipStyle(t.Type)
		grid = append(grid, GridTip{Key: i, Type: t.Type, Text: t.Tip, Style: style})
		explanations = append(explanations, ExplanationTip{
			Key:         "ex-" + strconv.Itoa(i),
			Type:        t.Type,
			Explanation: t.Explanation,
			Style:       style,
		})
	}
	return CategoryContent{Grid: grid, Explanations: explanations}
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}
