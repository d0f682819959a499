// Program logbridge serves the log procedures over gRPC.
package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"

	"logbridge"
	"logbridge/internal/config"
	"logbridge/internal/level"
	"logbridge/internal/logger"
	obs "logbridge/internal/observability"
	"logbridge/internal/rpc"
)

func main() {
	cfgPath := flag.String("config", "", "config file")
	flag.Parse()

	const (
		msgConfig = "config"
		msgLevel  = "level"
		msgFormat = "format"
		msgListen = "listen"
		msgServe  = "serve"
		msgGRPC   = "grpc_listen"
		msgMetric = "metrics_listen"
		msgWatch  = "watch"
		msgReload = "reload"
		msgStop   = "shutdown"
	)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		obs.Logger.Fatal().Err(err).Msg(msgConfig)
	}
	lv, err := level.Parse(cfg.Level)
	if err != nil {
		obs.Logger.Fatal().Err(err).Msg(msgLevel)
	}
	format, err := logger.ParseFormat(cfg.Format)
	if err != nil {
		obs.Logger.Fatal().Err(err).Msg(msgFormat)
	}
	logbridge.SetLogger(logger.New(logger.Config{
		Level:      lv,
		Context:    cfg.Context,
		Transports: []logger.Transport{logger.Console(format)},
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Apply level changes from the config file without a restart.
	watchPath := *cfgPath
	if watchPath == "" {
		watchPath = os.Getenv(config.EnvConfig)
	}
	if watchPath != "" {
		go func() {
			err := config.Watch(ctx, watchPath, func(c config.Config) {
				next, err := level.Parse(c.Level)
				if err != nil {
					obs.Logger.Warn().Err(err).Msg(msgReload)
					return
				}
				logbridge.GetLogger().SetLevel(next)
				obs.Logger.Info().Str(obs.FieldLevel, next.String()).Msg(msgReload)
			}, func(err error) {
				obs.Logger.Warn().Err(err).Msg(msgReload)
			})
			if err != nil {
				obs.Logger.Error().Err(err).Msg(msgWatch)
			}
		}()
	}

	// Register metrics and start HTTP server.
	obs.Register()
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		obs.Logger.Info().Str(obs.FieldAddress, cfg.Metrics).Msg(msgMetric)
		if err := http.ListenAndServe(cfg.Metrics, mux); err != nil {
			obs.Logger.Fatal().Err(err).Msg(msgMetric)
		}
	}()

	lis, err := net.Listen("tcp", cfg.GRPC)
	if err != nil {
		obs.Logger.Fatal().Err(err).Msg(msgListen)
	}
	s := grpc.NewServer(grpc.UnaryInterceptor(rpc.UnaryLogger(obs.Logger)))
	rpc.NewServer(rpc.Default).Register(s)
	go func() {
		<-ctx.Done()
		obs.Logger.Info().Msg(msgStop)
		s.GracefulStop()
	}()
	obs.Logger.Info().Str(obs.FieldAddress, cfg.GRPC).Msg(msgGRPC)
	if err := s.Serve(lis); err != nil {
		obs.Logger.Fatal().Err(err).Msg(msgServe)
	}
}
