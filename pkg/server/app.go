package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	drepo "TickPulse/internal/domain/repository"
	"TickPulse/internal/usecase"
	"TickPulse/pkg/config"
	xhttp "TickPulse/pkg/http"
	pkgkafka "TickPulse/pkg/kafka"
	applogger "TickPulse/pkg/logger"
)

// App encapsulates the application lifecycle: tick collection, signal
// polling, optional tick replay, and the HTTP API.
type App struct {
	cfg       *config.Config
	log       *applogger.Logger
	collector *usecase.TickCollector
	poller    *usecase.SignalPoller
	consumer  *pkgkafka.Consumer
	replay    *usecase.TickReplayHandler
	handler   xhttp.Handler
	stream    drepo.MarketStream
	sink      drepo.SignalSink
	store     drepo.SignalStore

	httpServer *xhttp.Server
}

type Params struct {
	Config    *config.Config
	Log       *applogger.Logger
	Collector *usecase.TickCollector
	Poller    *usecase.SignalPoller
	Consumer  *pkgkafka.Consumer
	Replay    *usecase.TickReplayHandler
	Handler   xhttp.Handler
	Stream    drepo.MarketStream
	Sink      drepo.SignalSink
	Store     drepo.SignalStore
}

func New(p Params) *App {
	return &App{
		cfg:       p.Config,
		log:       p.Log,
		collector: p.Collector,
		poller:    p.Poller,
		consumer:  p.Consumer,
		replay:    p.Replay,
		handler:   p.Handler,
		stream:    p.Stream,
		sink:      p.Sink,
		store:     p.Store,
	}
}

// Run starts every component and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.stream.Connect(ctx); err != nil {
		return err
	}
	if err := a.stream.Subscribe(ctx); err != nil {
		return err
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	go func() {
		if err := a.collector.Run(ctx); err != nil && ctx.Err() == nil {
			a.log.Error("collector stopped", applogger.Error(err))
		}
	}()
	a.log.Info("tick collector started", applogger.Strings("symbols", a.cfg.Broker.Symbols))

	go func() {
		if err := a.poller.Run(ctx); err != nil && ctx.Err() == nil {
			a.log.Error("poller stopped", applogger.Error(err))
		}
	}()
	a.log.Info("signal poller started", applogger.Duration("interval", a.cfg.PollInterval()))

	if a.consumer != nil && a.replay != nil {
		a.consumer.RegisterHandler(a.replay)
		if err := a.consumer.Start(); err != nil {
			a.log.Error("replay consumer start failed", applogger.Error(err))
		} else {
			a.log.Info("tick replay consumer started", applogger.String("topic", a.replay.Topic()))
		}
	}

	if err := a.httpServer.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// shutdown stops components in reverse dependency order.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("replay consumer stop error", applogger.Error(err))
		}
	}

	if err := a.stream.Close(); err != nil {
		a.log.Warn("stream close error", applogger.Error(err))
	}
	if err := a.sink.Close(); err != nil {
		a.log.Warn("sink close error", applogger.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn("store close error", applogger.Error(err))
	}

	a.log.Info("shutdown complete")
	return nil
}
