package coap

import (
	"bytes"
	"fmt"
	"net"
	"time"

	"github.com/plgd-dev/go-coap/v3/message"
	"github.com/plgd-dev/go-coap/v3/message/codes"
	"github.com/plgd-dev/go-coap/v3/mux"
	coapnet "github.com/plgd-dev/go-coap/v3/net"
	"github.com/plgd-dev/go-coap/v3/options"
	"github.com/plgd-dev/go-coap/v3/udp"
	udpserver "github.com/plgd-dev/go-coap/v3/udp/server"
	"github.com/rs/zerolog"
)

type Options struct {
	Delay time.Duration
}

// Server accepts device data on a single catch-all CoAP resource.
type Server struct {
	handler  *Handler
	listener *coapnet.UDPConn
	server   *udpserver.Server
	log      zerolog.Logger
}

func NewServer(handler *Handler, opts Options, log zerolog.Logger) *Server {
	s := &Server{handler: handler, log: log}

	r := mux.NewRouter()
	r.Use(s.logging)
	if opts.Delay > 0 {
		r.Use(delay(opts.Delay))
	}
	r.DefaultHandle(mux.HandlerFunc(s.serveCOAP))
	s.server = udp.NewServer(options.WithMux(r))
	return s
}

// Listen binds the UDP socket. Call it before Serve.
func (s *Server) Listen(addr string) error {
	l, err := coapnet.NewListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("listen coap %s: %w", addr, err)
	}
	s.listener = l
	return nil
}

// Addr is the bound address, nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.LocalAddr()
}

// Serve blocks until Stop is called.
func (s *Server) Serve() error {
	return s.server.Serve(s.listener)
}

func (s *Server) Stop() {
	s.server.Stop()
	if s.listener != nil {
		_ = s.listener.Close()
	}
}

func (s *Server) serveCOAP(w mux.ResponseWriter, r *mux.Message) {
	req := Request{Code: r.Code()}
	if path, err := r.Path(); err == nil {
		req.Path = path
	}
	if cf, err := r.ContentFormat(); err == nil {
		req.ContentFormat = cf
		req.HasFormat = true
	}
	if r.Body() != nil {
		payload, err := r.ReadBody()
		if err != nil {
			s.respond(w, Response{Code: codes.BadRequest, Body: "Invalid payload: " + err.Error()})
			return
		}
		req.Payload = payload
	}

	s.respond(w, s.handler.Handle(r.Context(), req))
}

func (s *Server) respond(w mux.ResponseWriter, resp Response) {
	var err error
	if resp.Body == "" {
		err = w.SetResponse(resp.Code, message.TextPlain, nil)
	} else {
		err = w.SetResponse(resp.Code, message.TextPlain, bytes.NewReader([]byte(resp.Body)))
	}
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to set CoAP response")
	}
}

func (s *Server) logging(next mux.Handler) mux.Handler {
	return mux.HandlerFunc(func(w mux.ResponseWriter, r *mux.Message) {
		started := time.Now()
		next.ServeCOAP(w, r)

		event := s.log.Info().
			Str("method", r.Code().String()).
			Dur("duration", time.Since(started))
		if path, err := r.Path(); err == nil {
			event = event.Str("path", path)
		}
		if resp := w.Message(); resp != nil {
			event = event.Str("status", resp.Code().String())
		}
		event.Str("remote", w.Conn().RemoteAddr().String()).Msg("CoAP ingestion request")
	})
}

func delay(d time.Duration) mux.MiddlewareFunc {
	return func(next mux.Handler) mux.Handler {
		return mux.HandlerFunc(func(w mux.ResponseWriter, r *mux.Message) {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-t.C:
				next.ServeCOAP(w, r)
			case <-r.Context().Done():
			}
		})
	}
}
