package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mosaicnetworks/reflector/src/config"
	"github.com/mosaicnetworks/reflector/src/emulator"
	"github.com/mosaicnetworks/reflector/src/events"
	"github.com/mosaicnetworks/reflector/src/history"
	"github.com/mosaicnetworks/reflector/src/relay"
	"github.com/mosaicnetworks/reflector/src/resolve"
	"github.com/mosaicnetworks/reflector/src/session"
)

const eventsDialTimeout = 10 * time.Second

// engine bundles the session manager with the resources it was built from.
type engine struct {
	manager *session.Manager
	store   history.Store
	router  *events.Router
	wamp    []*events.WampSink
}

// newEngine builds the notification sinks, the history store and the session
// manager described by conf.
func newEngine(conf *config.Config) (*engine, error) {
	logger := conf.Logger()
	e := &engine{}

	sinks := events.Multi{events.NewLogSink(logger)}

	if conf.EventsListen != "" {
		router, err := events.NewRouter(conf.EventsRealm, logger)
		if err != nil {
			return nil, err
		}
		if err := router.Listen(conf.EventsListen); err != nil {
			router.Close()
			return nil, err
		}
		e.router = router

		sink, err := router.Sink()
		if err != nil {
			e.close()
			return nil, err
		}
		e.wamp = append(e.wamp, sink)
		sinks = append(sinks, sink)
	}

	if conf.EventsURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), eventsDialTimeout)
		sink, err := events.DialWampSink(ctx, conf.EventsURL, conf.EventsRealm, logger)
		cancel()
		if err != nil {
			e.close()
			return nil, err
		}
		e.wamp = append(e.wamp, sink)
		sinks = append(sinks, sink)
	}

	if conf.Store {
		store, err := history.NewBadgerStore(conf.DatabaseDir, logger)
		if err != nil {
			e.close()
			return nil, err
		}
		e.store = store
	} else {
		e.store = history.NewInmemStore(conf.CacheSize)
	}

	deps := relay.Deps{
		Sink: sinks,
		Launcher: &emulator.ExecLauncher{
			Stdout: os.Stdout,
			Stderr: os.Stderr,
		},
		Resolver: resolve.NewResolver(conf.ResourceDir, conf.DataDir, logger),
	}

	e.manager = session.NewManager(conf, deps, e.store)

	return e, nil
}

func (e *engine) close() {
	if e.manager != nil {
		e.manager.Shutdown()
	}
	if e.store != nil {
		e.store.Close()
	}
	for _, s := range e.wamp {
		s.Close()
	}
	if e.router != nil {
		e.router.Close()
	}
}

func interrupted() <-chan os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	return sigCh
}
