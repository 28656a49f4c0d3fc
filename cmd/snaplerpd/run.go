package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/halvardsen/snaplerp"
	snapmetrics "github.com/halvardsen/snaplerp/metrics"
	"github.com/halvardsen/snaplerp/transform"
)

func newRunCmd() *cobra.Command {
	cfg := config{
		BufferTime:        0.1,
		CatchupThreshold:  10,
		CatchupMultiplier: 0.1,
		TickRate:          60,
		JitterMillis:      40,
		MetricsAddr:       ":9100",
		LogLevel:          "info",
	}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulated producer/consumer demo",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := initConfig()
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return fmt.Errorf("snaplerpd: could not bind flags: %w", err)
			}

			cfg.BufferTime = v.GetFloat64("buffer-time")
			cfg.CatchupThreshold = v.GetInt("catchup-threshold")
			cfg.CatchupMultiplier = v.GetFloat64("catchup-multiplier")
			cfg.TickRate = v.GetFloat64("tick-rate")
			cfg.JitterMillis = v.GetInt("jitter-millis")
			cfg.MetricsAddr = v.GetString("metrics-addr")
			cfg.LogLevel = v.GetString("log-level")

			return runDemo(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&cfg.BufferTime, "buffer-time", cfg.BufferTime, "jitter buffer depth in seconds")
	flags.IntVar(&cfg.CatchupThreshold, "catchup-threshold", cfg.CatchupThreshold, "buffer length above which catch-up engages")
	flags.Float64Var(&cfg.CatchupMultiplier, "catchup-multiplier", cfg.CatchupMultiplier, "per-excess-entry catch-up speed-up")
	flags.Float64Var(&cfg.TickRate, "tick-rate", cfg.TickRate, "consumer ticks per second")
	flags.IntVar(&cfg.JitterMillis, "jitter-millis", cfg.JitterMillis, "maximum simulated producer jitter, in milliseconds")
	flags.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "address to serve /metrics on")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "logrus log level")

	return cmd
}

// syncedBuffer guards a Buffer shared between the producer goroutine
// (which admits snapshots) and the consumer tick loop (which drives
// Compute). The core package assumes serial access; this is the external
// mutual exclusion the Buffer and Engine docs call for.
type syncedBuffer struct {
	mu  sync.Mutex
	buf *snaplerp.Buffer[transform.Transform]
}

func (s *syncedBuffer) insert(tr transform.Transform) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.InsertIfNewEnough(tr)
}

func (s *syncedBuffer) compute(e *snaplerp.Engine[transform.Transform], localTime, deltaTime float64) (bool, transform.Transform) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return e.Compute(localTime, deltaTime, s.buf)
}

func (s *syncedBuffer) metrics(e *snaplerp.Engine[transform.Transform]) snaplerp.Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return e.Metrics(s.buf)
}

func runDemo(ctx context.Context, cfg config) error {
	log := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	shared := &syncedBuffer{buf: snaplerp.NewBuffer[transform.Transform](
		snaplerp.WithBufferLogger[transform.Transform](log),
	)}

	engine := snaplerp.NewEngine[transform.Transform](
		snaplerp.WithBufferTime[transform.Transform](cfg.BufferTime),
		snaplerp.WithCatchupThreshold[transform.Transform](cfg.CatchupThreshold),
		snaplerp.WithCatchupMultiplier[transform.Transform](cfg.CatchupMultiplier),
		snaplerp.WithEngineLogger[transform.Transform](log),
	)

	recorder := snapmetrics.NewRecorder("snaplerpd", func() snaplerp.Metrics {
		return shared.metrics(engine)
	})

	metricsSrv := serveMetrics(cfg.MetricsAddr, recorder, log)
	defer metricsSrv.Close()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("snaplerpd: shutdown signal received")
		cancel()
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		simulateProducer(runCtx, shared, cfg)
	}()

	consumeTicks(runCtx, shared, engine, cfg)
	wg.Wait()

	m := shared.metrics(engine)
	log.WithFields(logrus.Fields{
		"admitted":        m.Admitted,
		"rejected":        m.Rejected,
		"computed":        m.Computed,
		"underfull":       m.Underfull,
		"warming":         m.Warming,
		"segments_popped": m.SegmentsPopped,
		"catchup_engaged": m.CatchupEngaged,
		"overshoots":      m.Overshoots,
	}).Info("snaplerpd: final metrics")

	return nil
}

func serveMetrics(addr string, recorder *snapmetrics.Recorder, log logrus.FieldLogger) *http.Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(recorder)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Warn("snaplerpd: metrics server stopped")
		}
	}()
	return srv
}

// simulateProducer mints a new transform on a jittery schedule and admits
// it through the shared buffer, standing in for a network receive
// thread.
func simulateProducer(ctx context.Context, shared *syncedBuffer, cfg config) {
	start := time.Now()
	remote := 0.0

	for {
		jitter := time.Duration(rand.Intn(cfg.JitterMillis+1)) * time.Millisecond
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second/20 + jitter):
		}

		remote += 0.05
		local := time.Since(start).Seconds()

		tr := transform.New(
			[3]float64{remote, 0, 0},
			[4]float64{0, 0, 0, 1},
			remote,
			local,
		)
		shared.insert(tr)
	}
}

// consumeTicks drives the engine once per fixed-rate local tick until ctx
// is cancelled.
func consumeTicks(ctx context.Context, shared *syncedBuffer, engine *snaplerp.Engine[transform.Transform], cfg config) {
	interval := time.Duration(float64(time.Second) / cfg.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()
	var last time.Duration

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			elapsed := now.Sub(start)
			localTime := elapsed.Seconds()
			deltaTime := (elapsed - last).Seconds()
			last = elapsed

			applied, computed := shared.compute(engine, localTime, deltaTime)
			if !applied {
				continue
			}

			fmt.Printf("t=%.3f position=%.3f\n", localTime, computed.Position[0])
		}
	}
}
