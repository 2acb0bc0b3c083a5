package model

// WeightedScore is one scorer's contribution to a toot.
type WeightedScore struct {
	Raw      float64 `json:"raw"`
	Weighted float64 `json:"weighted"`
}

/*

ScoreInfo is the result of one scoring pass over a toot. Nothing here is
ground truth, every field can be recomputed from the toot, the scorers and the
weights.

Scores: per scorer raw and weighted values
RawScore: 1 + sum of raw values
WeightedScore: 1 + sum of weighted (and dampened) values
TimeDecayMultiplier: multiplier derived from the toot's age
TrendingMultiplier: multiplier applied to trending scorers in this pass
Score: WeightedScore * TimeDecayMultiplier, the value the feed is sorted by

*/
type ScoreInfo struct {
	Scores              map[ScoreName]WeightedScore `json:"scores"`
	RawScore            float64                     `json:"raw_score"`
	WeightedScore       float64                     `json:"weighted_score"`
	TimeDecayMultiplier float64                     `json:"time_decay_multiplier"`
	TrendingMultiplier  float64                     `json:"trending_multiplier"`
	Score               float64                     `json:"score"`
}

// Raw returns the last raw value recorded for name.
func (s *ScoreInfo) Raw(name ScoreName) (float64, bool) {
	if s == nil || s.Scores == nil {
		return 0, false
	}
	ws, ok := s.Scores[name]
	return ws.Raw, ok
}
