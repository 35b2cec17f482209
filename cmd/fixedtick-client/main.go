// Command fixedtick-client runs a headless instance of the predicting,
// interpolating netcode client. It has no real input device or renderer
// wired up: those live on the other side of client.Sink, which is this
// module's boundary with a presentation layer. This binary exists to drive
// and observe the netcode against a live server (connectivity checks,
// latency/loss soak tests), logging the rendered world state instead of
// drawing it.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/time/rate"

	"github.com/alexokonski/fixedtick/client"
	"github.com/alexokonski/fixedtick/shared/entity"
	"github.com/alexokonski/fixedtick/transport"
)

var opt struct {
	IP   string
	Port uint16
	Bind string
	Seed int64

	SendLatencyMS  uint32
	SendJitterMS   uint32
	SendLossChance float32
	RecvLatencyMS  uint32
	RecvJitterMS   uint32
	RecvLossChance float32

	DisablePrediction bool

	MetricsAddr string
	LogLevel    string
	LogPretty   bool

	Help bool
}

func init() {
	pflag.StringVar(&opt.IP, "ip", "127.0.0.1", "server IP address to connect to")
	pflag.Uint16Var(&opt.Port, "port", 7001, "server UDP port to connect to")
	pflag.StringVar(&opt.Bind, "bind", "0.0.0.0:0", "local UDP address to bind (not used: the client socket always binds an ephemeral port on all interfaces)")
	pflag.Int64Var(&opt.Seed, "seed", time.Now().UnixNano(), "seed for the transport PRNG")

	pflag.Uint32Var(&opt.SendLatencyMS, "send-sim-latency-ms", 0, "base simulated outbound latency in milliseconds")
	pflag.Uint32Var(&opt.SendJitterMS, "send-jitter-stddev-ms", 0, "outbound latency jitter standard deviation in milliseconds")
	pflag.Float32Var(&opt.SendLossChance, "send-loss-chance", 0, "outbound packet loss chance, 0 to 1")
	pflag.Uint32Var(&opt.RecvLatencyMS, "recv-sim-latency-ms", 0, "base simulated inbound latency in milliseconds")
	pflag.Uint32Var(&opt.RecvJitterMS, "recv-jitter-stddev-ms", 0, "inbound latency jitter standard deviation in milliseconds")
	pflag.Float32Var(&opt.RecvLossChance, "recv-loss-chance", 0, "inbound packet loss chance, 0 to 1")

	pflag.BoolVar(&opt.DisablePrediction, "disable-client-prediction", false, "render only interpolated state for the local player, for A/B comparison")

	pflag.StringVar(&opt.MetricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics on this address")
	pflag.StringVar(&opt.LogLevel, "log-level", "info", "log level: debug, info, warn, error")
	pflag.BoolVar(&opt.LogPretty, "log-pretty", false, "use a human-readable console log writer instead of JSON")

	pflag.BoolVarP(&opt.Help, "help", "h", false, "show this help text")
}

func main() {
	pflag.Parse()
	if opt.Help {
		fmt.Printf("usage: %s [options]\n\noptions:\n%s", os.Args[0], pflag.CommandLine.FlagUsages())
		os.Exit(0)
	}

	log, err := configureLogging(opt.LogLevel, opt.LogPretty)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: configure logging: %v\n", err)
		os.Exit(1)
	}

	serverAddr := fmt.Sprintf("%s:%d", opt.IP, opt.Port)
	cfg := client.Config{
		ServerAddr:        serverAddr,
		BindAddr:          opt.Bind,
		Seed:              opt.Seed,
		DisablePrediction: opt.DisablePrediction,
		Sim: transport.Settings{
			Send: transport.Profile{
				Latency: transport.Latency{BaseMS: opt.SendLatencyMS, JitterStddevMS: opt.SendJitterMS},
				Loss:    transport.Loss{Chance: opt.SendLossChance},
			},
			Receive: transport.Profile{
				Latency: transport.Latency{BaseMS: opt.RecvLatencyMS, JitterStddevMS: opt.RecvJitterMS},
				Loss:    transport.Loss{Chance: opt.RecvLossChance},
			},
		},
	}

	c, err := client.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create client")
	}
	defer c.Close()

	log.Info().Str("server", serverAddr).Msg("connecting")

	if opt.MetricsAddr != "" {
		go serveMetrics(log, opt.MetricsAddr, c.Metrics().Set())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink := newLogSink(log)
	if err := c.Run(ctx, sink); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("client run failed")
	}
}

// logSink is the headless stand-in for a real presentation layer: it logs a
// rate-limited summary of what it's given instead of drawing anything, and
// reports no input (key mask 0), since there's no keyboard behind it.
type logSink struct {
	log     zerolog.Logger
	limiter *rate.Limiter
}

func newLogSink(log zerolog.Logger) *logSink {
	return &logSink{log: log, limiter: rate.NewLimiter(rate.Every(time.Second), 1)}
}

func (s *logSink) Render(ws entity.WorldState) {
	if !s.limiter.Allow() {
		return
	}
	s.log.Debug().Uint32("frame", ws.Frame).Int("entities", len(ws.Entities)).Msg("render")
}

func (s *logSink) KeyMask() uint8 {
	return 0
}

func configureLogging(level string, pretty bool) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("parse log level %q: %w", level, err)
	}

	var l zerolog.Logger
	if pretty {
		l = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		l = zerolog.New(os.Stderr)
	}
	return l.Level(lvl).With().Timestamp().Logger(), nil
}

func serveMetrics(log zerolog.Logger, addr string, set *metrics.Set) {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		set.WritePrometheus(w)
	})
	log.Info().Str("addr", addr).Msg("serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("metrics server failed")
	}
}
