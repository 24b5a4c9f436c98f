package feedback

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// TipType classifies a tip. Anything other than TipGood is treated as an
// improvement item when displayed.
type TipType string

const (
	TipGood    TipType = "good"
	TipImprove TipType = "improve"
)

// Category keys in display order.
const (
	KeyToneAndStyle = "toneAndStyle"
	KeyContent      = "content"
	KeyStructure    = "structure"
	KeySkills       = "skills"
)

// Feedback is the scored resume feedback produced by the analysis collaborator.
type Feedback struct {
	OverallScore float64   `json:"overallScore,omitempty"`
	ATS          *Category `json:"ats,omitempty"`
	ToneAndStyle *Category `json:"toneAndStyle,omitempty"`
	Content      *Category `json:"content,omitempty"`
	Structure    *Category `json:"structure,omitempty"`
	Skills       *Category `json:"skills,omitempty"`
}

// Category is one scored feedback area.
type Category struct {
	Score float64 `json:"score"`
	Tips  []Tip   `json:"tips"`
}

// Tip is a single feedback item.
type Tip struct {
	Type        TipType `json:"type"`
	Tip         string  `json:"tip"`
	Explanation string  `json:"explanation,omitempty"`
}

// Record is a stored feedback entry.
type Record struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	DocumentID string    `json:"documentId,omitempty"`
	Feedback   Feedback  `json:"feedback"`
	CreatedAt  time.Time `json:"createdAt"`
}

// UnmarshalJSON tolerates malformed fields: a score that is not a number
// becomes 0 and tips that are not an array become empty.
func (c *Category) UnmarshalJSON(data []byte) error {
	var raw struct {
		Score json.RawMessage `json:"score"`
		Tips  json.RawMessage `json:"tips"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		*c = Category{}
		return nil
	}
	c.Score = lenientNumber(raw.Score)
	c.Tips = lenientTips(raw.Tips)
	return nil
}

func lenientNumber(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return parsed
		}
	}
	return 0
}

func lenientTips(raw json.RawMessage) []Tip {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	tips := make([]Tip, 0, len(items))
	for _, item := range items {
		var t struct {
			Type        any `json:"type"`
			Tip         any `json:"tip"`
			Explanation any `json:"explanation"`
		}
		if err := json.Unmarshal(item, &t); err != nil {
			continue
		}
		tips = append(tips, Tip{
			Type:        TipType(asString(t.Type)),
			Tip:         asString(t.Tip),
			Explanation: asString(t.Explanation),
		})
	}
	return tips
}

func asString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
