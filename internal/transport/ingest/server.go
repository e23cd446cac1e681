package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/mabenj/IoT-Platform/internal/domain"
)

const maxBodyBytes = 1 << 20

// Ingester is the shared ingestion contract of both front ends.
type Ingester interface {
	Ingest(ctx context.Context, token string, protocol domain.Protocol, payload []byte) (domain.IngestResult, error)
}

type Options struct {
	AllowedOrigins []string
	Delay          time.Duration
}

type Handler struct {
	ingester Ingester
	log      zerolog.Logger
}

func NewHandler(ingester Ingester, log zerolog.Logger) *Handler {
	return &Handler{ingester: ingester, log: log}
}

// NewRouter serves POST /{accessToken}. Middleware runs outermost first:
// recover, delay, request log.
func NewRouter(h *Handler, opts Options) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/{accessToken}", h.Ingest).Methods(http.MethodPost)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	r.NotFoundHandler = http.HandlerFunc(unmatched)

	c := cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodPost},
		AllowedHeaders: []string{"Content-Type", "Content-Encoding"},
	})

	var handler http.Handler = c.Handler(r)
	handler = requestLogger(h.log, handler)
	handler = delay(opts.Delay, handler)
	return recoverer(h.log, handler)
}

func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["accessToken"]

	body, err := readBody(w, r)
	if err != nil {
		writeText(w, http.StatusBadRequest, "Invalid payload: "+err.Error())
		return
	}

	result, err := h.ingester.Ingest(r.Context(), token, domain.ProtocolHTTP, body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !result.IsCreated() {
		writeText(w, http.StatusBadRequest, result.Message)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	var body io.Reader = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if strings.EqualFold(r.Header.Get("Content-Encoding"), "gzip") {
		zr, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("bad gzip stream: %w", err)
		}
		defer zr.Close()
		body = io.LimitReader(zr, maxBodyBytes)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not found"})
		return
	}
	h.log.Error().Err(err).Str("path", r.URL.Path).Msg("Ingestion failed")
	writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Something went wrong"})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method '%s' is not supported", r.Method))
}

// unmatched answers paths other than /{accessToken}: a bare POST / lacks a
// token, deeper paths name no resource.
func unmatched(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method != http.MethodPost:
		methodNotAllowed(w, r)
	case strings.Trim(r.URL.Path, "/") == "":
		writeText(w, http.StatusBadRequest, "No access token specified")
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not found"})
	}
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, msg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
