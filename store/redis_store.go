// Package store persists per user ranking state: weight sliders and how often
// each toot was shown.
package store

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Luismorlan/tootmux/model"
	. "github.com/Luismorlan/tootmux/utils/log"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	weightsKeySuffix = "weights"
	shownKeySuffix   = "shown"
)

type WeightsStore interface {
	// GetWeights returns the user's weights with every unset weight taken
	// from the defaults.
	GetWeights(ctx context.Context, userId string) (model.Weights, error)
	SetWeights(ctx context.Context, userId string, weights model.Weights) error
}

// ShownStore counts how many times each toot was put in front of a user.
type ShownStore interface {
	MarkShown(ctx context.Context, userId string, uris []string) error
	TimesShown(ctx context.Context, userId string, uris []string) ([]int, error)
}

type RedisStore struct {
	inner     *redis.Client
	keyParser RedisKeyParser
}

// GetRedisStore connects using REDIS_HOST, REDIS_PORT and REDIS_PASSWD.
func GetRedisStore(ctx context.Context) (*RedisStore, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")),
		Password: os.Getenv("REDIS_PASSWD"),
		DB:       0, // use default DB
	})
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		return nil, errors.Wrap(err, "fail to ping redis")
	}
	return NewRedisStore(redisClient), nil
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		inner:     client,
		keyParser: RedisKeyParser{delimiter: "__"},
	}
}

type RedisKeyParser struct {
	delimiter string
}

func (r RedisKeyParser) DecodeKey(key string) (string, string, error) {
	splits := strings.Split(key, r.delimiter)
	if (len(splits)) != 2 {
		return "", "", fmt.Errorf("invalid key: %s", key)
	}
	return splits[0], splits[1], nil
}

func (r RedisKeyParser) ValidateId(id string) bool {
	return id != "" && !strings.Contains(id, r.delimiter)
}

func (r RedisKeyParser) EncodeKey(userId string, suffix string) (string, error) {
	if !r.ValidateId(userId) || !r.ValidateId(suffix) {
		return "", fmt.Errorf("invalid userId or key suffix: %s, %s", userId, suffix)
	}
	return fmt.Sprintf("%s%s%s", userId, r.delimiter, suffix), nil
}

func (r *RedisStore) GetWeights(ctx context.Context, userId string) (model.Weights, error) {
	key, err := r.keyParser.EncodeKey(userId, weightsKeySuffix)
	if err != nil {
		return nil, err
	}
	res, err := r.inner.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrap(err, "fail to get weights of user "+userId)
	}
	weights, err := DecodeWeights(res)
	if err != nil {
		return nil, errors.Wrap(err, "fail to decode weights of user "+userId)
	}
	return weights.WithDefaults(), nil
}

func (r *RedisStore) SetWeights(ctx context.Context, userId string, weights model.Weights) error {
	key, err := r.keyParser.EncodeKey(userId, weightsKeySuffix)
	if err != nil {
		return err
	}
	if len(weights) == 0 {
		return nil
	}
	if err := r.inner.HSet(ctx, key, EncodeWeights(weights)).Err(); err != nil {
		return errors.Wrap(err, "fail to set weights of user "+userId)
	}
	Log.WithFields(logrus.Fields{"user_id": userId, "num_weights": len(weights)}).Debug("weights stored")
	return nil
}

func (r *RedisStore) MarkShown(ctx context.Context, userId string, uris []string) error {
	key, err := r.keyParser.EncodeKey(userId, shownKeySuffix)
	if err != nil {
		return err
	}
	_, err = r.inner.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, uri := range uris {
			pipe.HIncrBy(ctx, key, uri, 1)
		}
		return nil
	})
	return errors.Wrap(err, "fail to mark toots shown for user "+userId)
}

// TimesShown returns one count per uri, 0 for toots never shown.
func (r *RedisStore) TimesShown(ctx context.Context, userId string, uris []string) ([]int, error) {
	if len(uris) == 0 {
		return []int{}, nil
	}
	key, err := r.keyParser.EncodeKey(userId, shownKeySuffix)
	if err != nil {
		return nil, err
	}
	res, err := r.inner.HMGet(ctx, key, uris...).Result()
	if err != nil {
		return nil, errors.Wrap(err, "fail to get times shown for user "+userId)
	}
	return decodeCounts(res), nil
}

// ApplyTimesShown copies stored counts onto toots. Counts only grow, a toot
// already carrying a larger count keeps it.
func ApplyTimesShown(ctx context.Context, s ShownStore, userId string, toots []*model.Toot) error {
	uris := make([]string, len(toots))
	for i, t := range toots {
		uris[i] = t.CanonicalURI()
	}
	counts, err := s.TimesShown(ctx, userId, uris)
	if err != nil {
		return err
	}
	for i, t := range toots {
		if i < len(counts) && counts[i] > t.NumTimesShown {
			t.NumTimesShown = counts[i]
		}
	}
	return nil
}

// EncodeWeights turns weights into a redis hash. Redis only stores strings.
func EncodeWeights(weights model.Weights) map[string]interface{} {
	res := make(map[string]interface{}, len(weights))
	for name, v := range weights {
		res[name.String()] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return res
}

// DecodeWeights parses a redis hash back into weights. Names that are no
// longer known are skipped with a warning, since a scorer may have been
// removed after the user saved their sliders.
func DecodeWeights(hash map[string]string) (model.Weights, error) {
	res := model.Weights{}
	for k, v := range hash {
		name, err := model.ParseWeightName(k)
		if err != nil {
			Log.WithField("weight_name", k).Warn("ignoring unknown stored weight")
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, errors.Wrap(err, "fail to parse weight "+k)
		}
		res[name] = f
	}
	return res, nil
}

func decodeCounts(values []interface{}) []int {
	res := make([]int, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			Log.WithField("value", s).Warn("ignoring unparsable times shown count")
			continue
		}
		res[i] = n
	}
	return res
}
