package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Luismorlan/tootmux/app_setting"
	"github.com/Luismorlan/tootmux/bus"
	"github.com/Luismorlan/tootmux/mastodon"
	"github.com/Luismorlan/tootmux/model"
	"github.com/Luismorlan/tootmux/ranker"
	"github.com/Luismorlan/tootmux/reconciler"
	"github.com/Luismorlan/tootmux/scorer/instances"
	"github.com/Luismorlan/tootmux/store"
	"github.com/Luismorlan/tootmux/utils/dotenv"
	. "github.com/Luismorlan/tootmux/utils/log"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

var (
	AppSettingPath *string
	SnapshotPath   *string
	UserId         *string
	Top            *int
	Schedule       *string
	MetricsAddr    *string

	// Configuration of every scoring pass.
	AppSetting app_setting.RankerAppSetting
)

// init() will always be called on before the execution of main function.
func init() {
	AppSettingPath = flag.String("app_setting_path", "cmd/ranker/config.yaml", "path to ranker app setting")
	SnapshotPath = flag.String("snapshot_path", "", "path to a JSON snapshot of timelines and user history")
	UserId = flag.String("user_id", "default", "user whose weights and shown counts are used")
	Top = flag.Int("top", 20, "number of ranked toots to print")
	Schedule = flag.String("schedule", "", "cron spec to re-rank the snapshot on, empty to rank once and exit")
	MetricsAddr = flag.String("metrics_addr", "", "address to serve prometheus metrics on, e.g. :9090")
	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}
}

func main() {
	flag.Parse()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	AppSetting, err = app_setting.ParseRankerAppSetting(*AppSettingPath)
	if err != nil {
		Log.WithError(err).Warn("using default ranker setting")
		AppSetting = app_setting.DefaultRankerAppSetting()
	}
	if *SnapshotPath == "" {
		Log.Fatal("-snapshot_path is required")
	}

	var redisStore *store.RedisStore
	if os.Getenv("REDIS_HOST") != "" {
		if redisStore, err = store.GetRedisStore(ctx); err != nil {
			Log.Fatal(err)
		}
	}

	if *MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(*MetricsAddr, mux); err != nil {
				Log.WithError(err).Error("metrics server stopped")
			}
		}()
	}

	eventBus := bus.NewEventBus()
	defer eventBus.Close()
	events, err := bus.SubscribeFeedScored(ctx, eventBus)
	if err != nil {
		Log.Fatal(err)
	}
	go func() {
		for e := range events {
			Log.WithFields(logrus.Fields{"pass_id": e.PassID, "num_toots": e.NumToots}).Info("feed scored")
		}
	}()

	run := func() {
		if err := rankSnapshot(ctx, eventBus, redisStore); err != nil {
			Log.WithError(err).Error("fail to rank snapshot")
		}
	}

	if *Schedule == "" {
		run()
		return
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(*Schedule, run); err != nil {
		Log.Fatal(errors.Wrap(err, "invalid -schedule"))
	}
	c.Start()
	Log.WithField("schedule", *Schedule).Info("ranking on schedule")
	<-ctx.Done()
	<-c.Stop().Done()
}

// rankSnapshot reloads the snapshot and logs its ranked feed, so a schedule
// picks up snapshots rewritten in place.
func rankSnapshot(ctx context.Context, publisher message.Publisher, redisStore *store.RedisStore) error {
	snapshot, err := mastodon.LoadSnapshot(*SnapshotPath)
	if err != nil {
		return err
	}
	userData, err := snapshot.UserData()
	if err != nil {
		return err
	}

	now := time.Now()
	toots := snapshot.Toots()
	mastodon.MarkFollowed(toots, userData.Followed)
	toots = reconciler.Reconcile(toots)
	followedTags := snapshot.FollowedTagsByName()
	trendingTags := snapshot.TrendingTagsByName()
	participatedTags := snapshot.ParticipatedTagsByName()
	for _, t := range toots {
		t.Complete(followedTags, trendingTags, participatedTags, now)
	}

	weights := model.DefaultWeights()
	if redisStore != nil {
		if weights, err = redisStore.GetWeights(ctx, *UserId); err != nil {
			return err
		}
		if err := store.ApplyTimesShown(ctx, redisStore, *UserId, toots); err != nil {
			Log.WithError(err).Warn("fail to load times shown, AlreadyShown will score 0")
		}
	}

	r := ranker.NewRanker(
		instances.NewDefaultRegistry(userData, AppSetting),
		AppSetting,
		bus.NewFeedScoredPublisher(publisher),
	)
	r.PrepareScorers(ctx)
	for _, d := range r.Registry().Describe() {
		Log.WithFields(logrus.Fields{"scorer": d.Name, "ready": d.IsReady, "feed_scorer": d.IsFeedScorer}).
			Debug(d.Description)
	}
	ranked := r.ScoreAndSort(ctx, toots, weights, true)

	shown := []string{}
	for i, t := range ranked {
		if i >= *Top {
			break
		}
		fields := logrus.Fields{
			"rank":   i + 1,
			"uri":    t.CanonicalURI(),
			"author": t.Author().Key(),
			"score":  t.Score(),
		}
		for _, e := range r.Explain(t) {
			if e.Weighted != 0 {
				fields[e.Name.String()] = e.Weighted
			}
		}
		Log.WithFields(fields).Info("ranked toot")
		shown = append(shown, t.CanonicalURI())
	}

	if redisStore != nil {
		if err := redisStore.MarkShown(ctx, *UserId, shown); err != nil {
			Log.WithError(err).Warn("fail to mark toots shown")
		}
	}
	return nil
}
