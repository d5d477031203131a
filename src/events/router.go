package events

import (
	"context"
	"net"
	"net/http"

	"github.com/gammazero/nexus/v3/client"
	"github.com/gammazero/nexus/v3/router"
	"github.com/gammazero/nexus/v3/wamp"
	"github.com/sirupsen/logrus"
)

// Router is an embedded WAMP router to which user interfaces connect over
// websockets to receive notifications.
type Router struct {
	realm      string
	router     router.Router
	httpServer *http.Server
	listener   net.Listener
	logger     *logrus.Entry
}

// NewRouter creates a router with a single realm that accepts anonymous
// clients.
func NewRouter(realm string, logger *logrus.Entry) (*Router, error) {
	routerConfig := &router.Config{
		RealmConfigs: []*router.RealmConfig{
			{
				URI:           wamp.URI(realm),
				AnonymousAuth: true,
			},
		},
	}

	nxr, err := router.NewRouter(routerConfig, logger)
	if err != nil {
		return nil, err
	}

	return &Router{
		realm:  realm,
		router: nxr,
		logger: logger,
	}, nil
}

// Listen starts serving websocket clients on address. It returns once the
// listener is bound.
func (r *Router) Listen(address string) error {
	l, err := net.Listen("tcp", address)
	if err != nil {
		return err
	}

	r.listener = l
	r.httpServer = &http.Server{
		Handler: router.NewWebsocketServer(r.router),
	}

	go func() {
		err := r.httpServer.Serve(l)
		if err != nil && err != http.ErrServerClosed {
			r.logger.WithError(err).Error("Events router")
		}
	}()

	r.logger.WithField("addr", l.Addr().String()).Info("Events router listening")

	return nil
}

// Addr returns the bound websocket address, or an empty string if Listen was
// not called.
func (r *Router) Addr() string {
	if r.listener == nil {
		return ""
	}
	return r.listener.Addr().String()
}

// Connect returns an in-process client of the router.
func (r *Router) Connect() (*client.Client, error) {
	return client.ConnectLocal(r.router, client.Config{
		Realm:  r.realm,
		Logger: r.logger,
	})
}

// Sink returns a WampSink publishing through an in-process client.
func (r *Router) Sink() (*WampSink, error) {
	cli, err := r.Connect()
	if err != nil {
		return nil, err
	}
	return NewWampSink(cli, r.logger), nil
}

// Close stops the websocket server and the router.
func (r *Router) Close() {
	defer r.router.Close()

	if r.httpServer != nil {
		if err := r.httpServer.Shutdown(context.Background()); err != nil {
			r.logger.WithError(err).Error("Shutting down events router")
		}
	}
}
