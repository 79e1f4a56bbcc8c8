package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/daemon"
	"github.com/hatstand/oregontx"
	"github.com/hatstand/oregontx/beacon"
	"github.com/hatstand/oregontx/cc1101"
	"github.com/hatstand/oregontx/config"
	"github.com/hatstand/oregontx/rf"
	"github.com/hatstand/oregontx/telemetry"
	"github.com/jonstaryuk/gcloudzap"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var configPath = flag.String("config", "", "Path to YAML config file")
var dryRun = flag.Bool("n", false, "Records pulses instead of driving the pin")
var once = flag.Bool("once", false, "Sends a single reading and exits")
var gcloudProject = flag.String("gcloud-project", "", "Logs to Stackdriver in this project if set")

func newLogger(level zapcore.Level, project string, name string) (*zap.Logger, error) {
	if project != "" {
		logger, err := gcloudzap.NewProduction(project, name)
		if err != nil {
			return nil, fmt.Errorf("Failed to create Stackdriver logger: %v", err)
		}
		return logger.WithOptions(zap.IncreaseLevel(level)), nil
	}
	cfg := zap.NewProductionConfig()
	if level == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

// dryRunTransmitter keeps one transmission in the recorder at a time and logs
// its pulse trace.
type dryRunTransmitter struct {
	sender   *oregontx.Sender
	recorder *rf.Recorder
	logger   *zap.Logger
}

func (t *dryRunTransmitter) Send(humidity byte, temperature float32, batteryOK bool) {
	t.recorder.Reset()
	t.sender.Send(humidity, temperature, batteryOK)
	t.logger.Debug("Recorded transmission",
		zap.Stringer("frame", t.sender.Frame()),
		zap.Duration("airtime", t.recorder.Elapsed()),
		zap.Stringer("pulses", t.recorder))
}

func main() {
	failed := false
	defer func() {
		if failed {
			os.Exit(1)
		}
	}()
	flag.Parse()

	conf := config.Default()
	if *configPath != "" {
		var err error
		conf, err = config.New(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	logger, err := newLogger(conf.GetLogLevel(), *gcloudProject, conf.Name)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src, closeSource, err := newSource(ctx, conf.Source, logger)
	if err != nil {
		logger.Fatal("Failed to create source", zap.String("kind", conf.Source.Kind), zap.Error(err))
	}
	defer closeSource()

	b := &beacon.Beacon{
		Name:     conf.Name,
		Source:   src,
		Interval: conf.GetInterval(),
		Logger:   logger,
	}
	var sender *oregontx.Sender
	if *dryRun {
		rec := rf.NewRecorder()
		sender = oregontx.NewSender(rec, logger)
		sender.Configure(rec, conf.GetChannelCode(), byte(conf.SensorID), conf.Humidity)
		b.Transmitter = &dryRunTransmitter{sender: sender, recorder: rec, logger: logger}
		b.Pin = rec
	} else {
		pin, err := rf.Open(conf.Pin, logger)
		if err != nil {
			logger.Fatal("Failed to open pin", zap.String("pin", conf.Pin), zap.Error(err))
		}
		defer pin.Close()
		sender = oregontx.NewSender(rf.Spin{}, logger)
		sender.Configure(pin, conf.GetChannelCode(), byte(conf.SensorID), conf.Humidity)
		b.Transmitter = sender
		b.Pin = pin

		if conf.Radio == config.CC1101 {
			radio, closeRadio, err := openRadio(conf, logger)
			if err != nil {
				logger.Fatal("Failed to open CC1101", zap.Error(err))
			}
			defer closeRadio()
			tx := &cc1101.Transmitter{Radio: radio, Sender: sender, Pin: pin}
			b.Transmitter = tx
			b.Pin = tx
		}
	}

	logger.Info("Configured sensor",
		zap.String("name", conf.Name),
		zap.String("pin", conf.Pin),
		zap.String("radio", conf.Radio),
		zap.Stringer("variant", sender.Variant()),
		zap.Uint8("channel", conf.GetChannelCode()),
		zap.Int("id", conf.SensorID),
		zap.Duration("interval", b.Interval),
		zap.Bool("dry_run", *dryRun))

	if *once {
		if err := b.Tick(ctx); err != nil {
			logger.Fatal("Failed to send", zap.Error(err))
		}
		return
	}

	b.Publisher = telemetry.NewPublisher(prometheus.DefaultRegisterer)
	var srv *http.Server
	if conf.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv = &http.Server{Addr: conf.MetricsAddress, Handler: mux}
		go func() {
			logger.Info("Serving metrics", zap.String("address", conf.MetricsAddress))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Metrics server failed", zap.Error(err))
			}
		}()
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ch
		logger.Info("Shutting down...")
		cancel()
	}()

	if _, err := daemon.SdNotify(false, "READY=1"); err != nil {
		logger.Warn("Failed to notify systemd", zap.Error(err))
	}
	err = b.Run(ctx)
	daemon.SdNotify(false, "STOPPING=1")

	if srv != nil {
		timeout, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer httpCancel()
		srv.Shutdown(timeout)
	}
	if err != nil && err != context.Canceled {
		logger.Error("Beacon stopped", zap.Error(err))
		failed = true
	}
}
