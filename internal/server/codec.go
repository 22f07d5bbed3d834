package server

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// Media types accepted and produced by the API.
const (
	MediaTypeJSON = "application/json"
	MediaTypeCBOR = "application/cbor"
)

type codec interface {
	mediaType() string
	decode(r io.Reader, v any) error
	encode(w io.Writer, v any) error
}

type jsonCodec struct{}

func (jsonCodec) mediaType() string { return MediaTypeJSON }

func (jsonCodec) decode(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (jsonCodec) encode(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

type cborCodec struct{}

var cborDecMode = func() cbor.DecMode {
	dm, err := cbor.DecOptions{ExtraReturnErrors: cbor.ExtraDecErrorUnknownField}.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}()

func (cborCodec) mediaType() string { return MediaTypeCBOR }

func (cborCodec) decode(r io.Reader, v any) error {
	return cborDecMode.NewDecoder(r).Decode(v)
}

func (cborCodec) encode(w io.Writer, v any) error {
	return cbor.NewEncoder(w).Encode(v)
}

// requestCodec picks the body codec from Content-Type. A missing
// Content-Type is treated as JSON.
func requestCodec(r *http.Request) (codec, error) {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return jsonCodec{}, nil
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return nil, fmt.Errorf("invalid Content-Type %q", ct)
	}
	switch mt {
	case MediaTypeJSON:
		return jsonCodec{}, nil
	case MediaTypeCBOR:
		return cborCodec{}, nil
	}
	return nil, fmt.Errorf("unsupported Content-Type %q", mt)
}

// responseCodec picks the reply codec: CBOR when Accept asks for it,
// otherwise the request's codec, otherwise JSON.
func responseCodec(r *http.Request, fallback codec) codec {
	for part := range strings.SplitSeq(r.Header.Get("Accept"), ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		switch mt {
		case MediaTypeCBOR:
			return cborCodec{}
		case MediaTypeJSON:
			return jsonCodec{}
		}
	}
	if fallback != nil {
		return fallback
	}
	return jsonCodec{}
}

func respond(w http.ResponseWriter, c codec, status int, v any) {
	w.Header().Set("Content-Type", c.mediaType())
	w.WriteHeader(status)
	_ = c.encode(w, v)
}
