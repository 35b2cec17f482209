// Command fixedtickd runs the authoritative game server.
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

	"github.com/alexokonski/fixedtick/server"
	"github.com/alexokonski/fixedtick/transport"
)

var opt struct {
	Bind string
	Seed int64

	SendLatencyMS  uint32
	SendJitterMS   uint32
	SendLossChance float32
	RecvLatencyMS  uint32
	RecvJitterMS   uint32
	RecvLossChance float32

	MetricsAddr string
	LogLevel    string
	LogPretty   bool

	Help bool
}

func init() {
	pflag.StringVar(&opt.Bind, "bind", "0.0.0.0:7001", "UDP address to listen on")
	pflag.Int64Var(&opt.Seed, "seed", time.Now().UnixNano(), "seed for the simulation and transport PRNGs")

	pflag.Uint32Var(&opt.SendLatencyMS, "send-sim-latency-ms", 0, "base simulated outbound latency in milliseconds")
	pflag.Uint32Var(&opt.SendJitterMS, "send-jitter-stddev-ms", 0, "outbound latency jitter standard deviation in milliseconds")
	pflag.Float32Var(&opt.SendLossChance, "send-loss-chance", 0, "outbound packet loss chance, 0 to 1")
	pflag.Uint32Var(&opt.RecvLatencyMS, "recv-sim-latency-ms", 0, "base simulated inbound latency in milliseconds")
	pflag.Uint32Var(&opt.RecvJitterMS, "recv-jitter-stddev-ms", 0, "inbound latency jitter standard deviation in milliseconds")
	pflag.Float32Var(&opt.RecvLossChance, "recv-loss-chance", 0, "inbound packet loss chance, 0 to 1")

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

	cfg := server.Config{
		BindAddr: opt.Bind,
		Seed:     opt.Seed,
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

	srv, err := server.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create server")
	}
	defer srv.Close()

	log.Info().Str("addr", srv.LocalAddr().String()).Msg("listening")

	if opt.MetricsAddr != "" {
		go serveMetrics(log, opt.MetricsAddr, srv.Metrics().Set())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("server run failed")
	}
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
