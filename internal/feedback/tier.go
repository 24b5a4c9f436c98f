package feedback

// Tier is the severity band derived from a category score.
type Tier string

const (
	TierGood    Tier = "good"
	TierWarning Tier = "warning"
	TierPoor    Tier = "poor"
)

// TierFor maps a 0-100 score to its tier: above 69 is good, above 39 is
// warning, everything else is poor.
func TierFor(score float64) Tier {
	switch {
	case score > 69:
		return TierGood
	case score > 39:
		return TierWarning
	default:
		return TierPoor
	}
}

// Style holds the presentation attributes for a tier or tip type.
type Style struct {
	Background string
	Text       string
	Border     string
	Icon       string
}

// TipPresentation extends Style with the tip-specific labels.
type TipPresentation struct {
	Style
	Label   string
	Heading string
}

var tierStyles = map[Tier]Style{
	TierGood:    {Background: "bg-green-100", Text: "text-green-700", Border: "border-green-100", Icon: "check"},
	TierWarning: {Background: "bg-amber-100", Text: "text-amber-700", Border: "border-amber-100", Icon: "info"},
	TierPoor:    {Background: "bg-red-100", Text: "text-red-700", Border: "border-red-100", Icon: "warning"},
}

var tipStyles = map[TipType]TipPresentation{
	TipGood: {
		Style:   Style{Background: "bg-green-50", Text: "text-green-800", Border: "border-green-100", Icon: "check"},
		Label:   "Good",
		Heading: "Why this works",
	},
	TipImprove: {
		Style:   Style{Background: "bg-red-50", Text: "text-red-800", Border: "border-red-100", Icon: "info"},
		Label:   "Improve",
		Heading: "What's the issue",
	},
}

// TierStyle returns the badge style for a tier. Unknown tiers get the poor style.
func TierStyle(t Tier) Style {
	if s, ok := tierStyles[t]; ok {
		return s
	}
	return tierStyles[TierPoor]
}

// TipStyle returns the style for a tip type. Anything that is not
// explicitly good is shown as an improvement.
func TipStyle(t TipType) TipPresentation {
	if s, ok := tipStyles[t]; ok {
		return s
	}
	return tipStyles[TipImprove]
}
