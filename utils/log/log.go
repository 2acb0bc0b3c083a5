package log

import (
	"os"
	"time"

	"github.com/Luismorlan/tootmux/utils/dotenv"
	ddhook "github.com/bin3377/logrus-datadog-hook"
	"github.com/sirupsen/logrus"
)

const (
	datadogUSHost    = "http-intake.logs.datadoghq.com"
	syncFrequencySec = 30
	syncRetry        = 3

	defaultServiceName = "tootmux"
)

// global accessible logger
var (
	logger *logrus.Logger
	Log    *logrus.Entry
)

// This init function is only for testing cases, where the entry point is not
// main function. Unit test will fail with nil pointer dereference if we don't
// init here.
func init() {
	InitLogger()
}

func InitLogger() {
	logger = logrus.New()

	// Datadog only receives logs from production, and only when a key is
	// provisioned for this deployment.
	if apiKey := os.Getenv("DATADOG_API_KEY"); dotenv.IsProdEnv() && apiKey != "" {
		hook := ddhook.NewHook(
			datadogUSHost,
			apiKey,
			syncFrequencySec*time.Second,
			syncRetry,
			logrus.InfoLevel,
			&logrus.JSONFormatter{},
			ddhook.Options{},
		)
		logger.Hooks.Add(hook)
	}

	if lvl, err := logrus.ParseLevel(os.Getenv("TOOTMUX_LOG_LEVEL")); err == nil {
		logger.SetLevel(lvl)
	}

	// Also send log to stderr, without json formatter for better readability
	logger.SetOutput(os.Stderr)

	Log = logger.WithFields(
		logrus.Fields{"service": serviceName(), "is_development": !dotenv.IsProdEnv()},
	)
}

func serviceName() string {
	if s := os.Getenv("TOOTMUX_SERVICE"); s != "" {
		return s
	}
	return defaultServiceName
}
