package app_setting

import (
	"io/ioutil"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	DefaultScoringBatchSize                       = 100
	DefaultTimeDecayExponent                      = 1.2
	DefaultDiversityMinTrendingTagTootsForPenalty = 1
	DefaultDiversityReshareMultiplier             = 0.5
)

// This is the ranker config for a scoring pass. Zero values fall back to the
// defaults above, see WithDefaults.
type RankerAppSetting struct {
	// Number of toots scored concurrently before pausing.
	SCORING_BATCH_SIZE int `yaml:"SCORING_BATCH_SIZE"`
	// Pause between two scoring batches in milliseconds, so a UI sharing the
	// process can stay responsive. 0 means no pause.
	SCORING_BATCH_PAUSE_MS int64 `yaml:"SCORING_BATCH_PAUSE_MS"`
	// Exponent applied to a toot's age in hours before it goes into the time
	// decay. Larger values make decay accelerate with age.
	TIME_DECAY_EXPONENT float64 `yaml:"TIME_DECAY_EXPONENT"`
	// Number of toots carrying the same trending tag that are let through
	// before the diversity scorer starts penalizing that tag.
	DIVERSITY_MIN_TRENDING_TAG_TOOTS_FOR_PENALTY int `yaml:"DIVERSITY_MIN_TRENDING_TAG_TOOTS_FOR_PENALTY"`
	// Diversity score of a reshare is multiplied by this value.
	DIVERSITY_RESHARE_MULTIPLIER float64 `yaml:"DIVERSITY_RESHARE_MULTIPLIER"`
	// Trending tags used by fewer accounts than this are ignored by the
	// trending tag scorer.
	TRENDING_TAG_MIN_ACCOUNTS float64 `yaml:"TRENDING_TAG_MIN_ACCOUNTS"`
}

func DefaultRankerAppSetting() RankerAppSetting {
	return RankerAppSetting{
		DIVERSITY_RESHARE_MULTIPLIER: DefaultDiversityReshareMultiplier,
	}.WithDefaults()
}

// WithDefaults fills unset values. A zero batch pause, a zero minimum account
// count and a zero reshare multiplier are meaningful and kept, only a negative
// reshare multiplier is replaced by the default. Settings read from a file
// start from DefaultRankerAppSetting, so an absent key gets its default.
func (s RankerAppSetting) WithDefaults() RankerAppSetting {
	if s.SCORING_BATCH_SIZE <= 0 {
		s.SCORING_BATCH_SIZE = DefaultScoringBatchSize
	}
	if s.SCORING_BATCH_PAUSE_MS < 0 {
		s.SCORING_BATCH_PAUSE_MS = 0
	}
	if s.TIME_DECAY_EXPONENT <= 0 {
		s.TIME_DECAY_EXPONENT = DefaultTimeDecayExponent
	}
	if s.DIVERSITY_MIN_TRENDING_TAG_TOOTS_FOR_PENALTY <= 0 {
		s.DIVERSITY_MIN_TRENDING_TAG_TOOTS_FOR_PENALTY = DefaultDiversityMinTrendingTagTootsForPenalty
	}
	if s.DIVERSITY_RESHARE_MULTIPLIER < 0 {
		s.DIVERSITY_RESHARE_MULTIPLIER = DefaultDiversityReshareMultiplier
	}
	return s
}

func (s RankerAppSetting) BatchPause() time.Duration {
	return time.Duration(s.SCORING_BATCH_PAUSE_MS) * time.Millisecond
}

func ParseRankerAppSetting(path string) (RankerAppSetting, error) {
	c := DefaultRankerAppSetting()
	yamlFile, err := ioutil.ReadFile(path)
	if err != nil {
		return c, errors.Wrap(err, "fail to read ranker setting "+path)
	}
	if err = yaml.Unmarshal(yamlFile, &c); err != nil {
		return c, errors.Wrap(err, "fail to unmarshal ranker setting "+path)
	}
	return c.WithDefaults(), nil
}
