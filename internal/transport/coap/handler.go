package coap

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/plgd-dev/go-coap/v3/message"
	"github.com/plgd-dev/go-coap/v3/message/codes"
	"github.com/rs/zerolog"

	"github.com/mabenj/IoT-Platform/internal/domain"
)

// Ingester is the shared ingestion contract of both front ends.
type Ingester interface {
	Ingest(ctx context.Context, token string, protocol domain.Protocol, payload []byte) (domain.IngestResult, error)
}

// Request is the part of a CoAP message the handler looks at.
type Request struct {
	Code          codes.Code
	Path          string
	ContentFormat message.MediaType
	HasFormat     bool
	Payload       []byte
}

type Response struct {
	Code codes.Code
	Body string
}

// cborDecoder decodes maps as map[string]any so the result can be re-encoded as JSON.
var cborDecoder cbor.DecMode

func init() {
	var err error
	cborDecoder, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("coap: CBOR decoder initialization failed: " + err.Error())
	}
}

type Handler struct {
	ingester Ingester
	log      zerolog.Logger
}

func NewHandler(ingester Ingester, log zerolog.Logger) *Handler {
	return &Handler{ingester: ingester, log: log}
}

// Handle maps one CoAP request onto the ingestion contract.
func (h *Handler) Handle(ctx context.Context, req Request) Response {
	if req.Code != codes.POST {
		return Response{Code: codes.MethodNotAllowed, Body: fmt.Sprintf("Method '%s' is not supported", req.Code)}
	}

	token := firstSegment(req.Path)
	if token == "" {
		return Response{Code: codes.BadRequest, Body: "No access token specified"}
	}

	payload := req.Payload
	if req.HasFormat && req.ContentFormat == message.AppCBOR && len(payload) > 0 {
		converted, err := cborToJSON(payload)
		if err != nil {
			return Response{Code: codes.BadRequest, Body: "Invalid payload: " + err.Error()}
		}
		payload = converted
	}

	result, err := h.ingester.Ingest(ctx, token, domain.ProtocolCoAP, payload)
	if err != nil {
		h.log.Error().Err(err).Msg("CoAP ingestion failed")
		return Response{Code: codes.InternalServerError, Body: "Something went wrong"}
	}
	if !result.IsCreated() {
		return Response{Code: codes.BadRequest, Body: result.Message}
	}
	return Response{Code: codes.Created}
}

func firstSegment(path string) string {
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			return seg
		}
	}
	return ""
}

func cborToJSON(data []byte) ([]byte, error) {
	var v any
	if err := cborDecoder.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("malformed CBOR: %w", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("CBOR value has no JSON form: %w", err)
	}
	return out, nil
}
