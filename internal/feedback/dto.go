package feedback

type submitRequest struct {
	DocumentID string   `json:"documentId"`
	Feedback   Feedback `json:"feedback"`
}

type recordSummary struct {
	ID           string   `json:"id"`
	DocumentID   string   `json:"documentId,omitempty"`
	OverallScore float64  `json:"overallScore"`
	Scores       []scored `json:"scores"`
	CreatedAt    string   `json:"createdAt"`
}

type scored struct {
	Key   string  `json:"key"`
	Score float64 `json:"score"`
	Tier  Tier    `json:"tier"`
}

func toSummary(rec Record) recordSummary {
	details := BuildDetails(&rec.Feedback)
	scores := make([]scored, 0, len(details.Accordion.Items))
	for _, item := range details.Accordion.Items {
		scores = append(scores, scored{
			Key:   item.ID,
			Score: item.Header.Badge.Score,
			Tier:  item.Header.Badge.Tier,
		})
	}
	return recordSummary{
		ID:           rec.ID,
		DocumentID:   rec.DocumentID,
		OverallScore: rec.Feedback.OverallScore,
		Scores:       scores,
		CreatedAt:    rec.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
