package store

import (
	"context"
	"os"
	"testing"

	"github.com/Luismorlan/tootmux/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisKeyParser(t *testing.T) {
	p := &RedisKeyParser{delimiter: "_"}
	validUserId := "valid-user-id"
	expectedKey := "valid-user-id_weights"

	assert.True(t, p.ValidateId(validUserId))
	assert.False(t, p.ValidateId("invalid_user_id"))
	assert.False(t, p.ValidateId(""))

	k, err := p.EncodeKey(validUserId, "weights")
	assert.Nil(t, err)
	assert.Equal(t, expectedKey, k)

	_, err = p.EncodeKey("invalid_user_id", "weights")
	assert.NotNil(t, err)

	uId, suffix, err := p.DecodeKey(expectedKey)
	assert.Nil(t, err)
	assert.Equal(t, validUserId, uId)
	assert.Equal(t, "weights", suffix)

	_, _, err = p.DecodeKey("no-delimiter")
	assert.NotNil(t, err)
}

func TestEncodeDecodeWeights(t *testing.T) {
	weights := model.Weights{
		model.WeightName(model.ScoreNameChaos): 0.25,
		model.WeightNameOutlierDampener:        1.6,
		model.WeightNameTimeDecay:              0,
	}
	hash := map[string]string{}
	for k, v := range EncodeWeights(weights) {
		hash[k] = v.(string)
	}
	assert.Equal(t, "0.25", hash["Chaos"])

	decoded, err := DecodeWeights(hash)
	require.NoError(t, err)
	assert.Equal(t, weights, decoded)
}

func TestDecodeWeights_SkipsUnknownNames(t *testing.T) {
	decoded, err := DecodeWeights(map[string]string{"Chaos": "2", "Removed": "3"})
	require.NoError(t, err)
	assert.Equal(t, model.Weights{model.WeightName(model.ScoreNameChaos): 2}, decoded)

	_, err = DecodeWeights(map[string]string{"Chaos": "lots"})
	assert.Error(t, err)
}

func TestDecodeCounts(t *testing.T) {
	assert.Equal(t, []int{3, 0, 0}, decodeCounts([]interface{}{"3", nil, "x"}))
}

type fakeShownStore map[string]int

func (f fakeShownStore) MarkShown(_ context.Context, _ string, uris []string) error {
	for _, u := range uris {
		f[u]++
	}
	return nil
}

func (f fakeShownStore) TimesShown(_ context.Context, _ string, uris []string) ([]int, error) {
	res := []int{}
	for _, u := range uris {
		res = append(res, f[u])
	}
	return res, nil
}

func TestApplyTimesShown(t *testing.T) {
	s := fakeShownStore{"orig": 2, "seen": 1}
	toots := []*model.Toot{
		{URI: "reshare", Reblog: &model.Toot{URI: "orig"}},
		{URI: "seen", NumTimesShown: 4},
		{URI: "new"},
	}
	require.NoError(t, ApplyTimesShown(context.Background(), s, "user", toots))
	assert.Equal(t, 2, toots[0].NumTimesShown)
	assert.Equal(t, 4, toots[1].NumTimesShown)
	assert.Equal(t, 0, toots[2].NumTimesShown)
}

func TestRedisStore(t *testing.T) {
	if os.Getenv("REDIS_HOST") == "" {
		t.Skip("REDIS_HOST not set")
	}
	ctx := context.Background()
	r, err := GetRedisStore(ctx)
	require.Nil(t, err)

	userId := "store-test-user"
	require.Nil(t, r.SetWeights(ctx, userId, model.Weights{model.WeightName(model.ScoreNameChaos): 7}))
	weights, err := r.GetWeights(ctx, userId)
	assert.Nil(t, err)
	assert.Equal(t, 7.0, weights.ScoreWeight(model.ScoreNameChaos))
	assert.Equal(t, model.DefaultWeights().TimeDecay(), weights.TimeDecay())

	before, err := r.TimesShown(ctx, userId, []string{"uri-a"})
	require.Nil(t, err)
	require.Nil(t, r.MarkShown(ctx, userId, []string{"uri-a"}))
	after, err := r.TimesShown(ctx, userId, []string{"uri-a", "uri-never"})
	assert.Nil(t, err)
	assert.Equal(t, []int{before[0] + 1, 0}, after)
}
