package ranker

import (
	"github.com/Luismorlan/tootmux/model"
)

// ScoreExplanation is one scorer's part in a toot's final score.
type ScoreExplanation struct {
	Name        model.ScoreName `json:"name"`
	Description string          `json:"description"`
	Raw         float64         `json:"raw"`
	Weighted    float64         `json:"weighted"`
}

// Explain lists the latest per scorer values of toot in registry order.
// Scorers missing from the toot's last pass are left out, so an unscored toot
// explains to nothing.
func (r *Ranker) Explain(toot *model.Toot) []ScoreExplanation {
	res := []ScoreExplanation{}
	info := toot.Real().ScoreInfo()
	if info == nil {
		return res
	}
	for _, s := range r.registry.All() {
		ws, ok := info.Scores[s.Name()]
		if !ok {
			continue
		}
		res = append(res, ScoreExplanation{
			Name:        s.Name(),
			Description: s.Description(),
			Raw:         ws.Raw,
			Weighted:    ws.Weighted,
		})
	}
	return res
}
