package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/xdg/sslexec/internal/clog"
	"github.com/xdg/sslexec/internal/openssl"
)

// auditSource labels an API call in the audit log with its request ID.
func auditSource(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return "api:" + id
	}
	return "api"
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respond(w, responseCodec(r, nil), http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: s.Version,
		Binary:  s.Client.Binary(),
	})
}

func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	patterns := s.Client.Patterns()
	resp := ActionsResponse{Actions: []ActionPattern{}}
	for _, action := range patterns.Actions() {
		resp.Actions = append(resp.Actions, ActionPattern{
			Action:  string(action),
			Pattern: patterns.Source(action),
		})
	}
	respond(w, responseCodec(r, nil), http.StatusOK, resp)
}

// handleExec processes POST /v1/exec.
func (s *Server) handleExec(w http.ResponseWriter, r *http.Request) {
	in, err := requestCodec(r)
	if err != nil {
		respond(w, responseCodec(r, nil), http.StatusUnsupportedMediaType, ErrorResponse{Error: err.Error()})
		return
	}
	out := responseCodec(r, in)

	var req ExecRequest
	if err := in.decode(r.Body, &req); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		respond(w, out, status, ErrorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	call, timeout, err := buildCall(&req)
	if err != nil {
		respond(w, out, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	call.Source = auditSource(r.Context())

	ctx := r.Context()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	proc, err := s.Client.Invoke(ctx, openssl.Action(req.Action), call)
	if err != nil {
		respond(w, out, statusFor(err), ExecResponse{
			ExitCode: openssl.ExitCode(err),
			Error:    err.Error(),
			Kind:     kindOf(err),
		})
		return
	}

	res := proc.Wait()
	resp := ExecResponse{
		OK:       res.Err == nil,
		ExitCode: res.ExitCode,
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
	}
	if res.Err != nil {
		resp.Error = res.Err.Error()
		resp.Kind = kindOf(res.Err)
	}
	respond(w, out, statusFor(res.Err), resp)
}

func buildCall(req *ExecRequest) (openssl.Call, time.Duration, error) {
	if req.Action == "" {
		return openssl.Call{}, 0, errMissingAction
	}
	opts, err := OptionsFromEntries(req.Options)
	if err != nil {
		return openssl.Call{}, 0, err
	}

	var timeout time.Duration
	if req.Timeout != "" {
		timeout, err = time.ParseDuration(req.Timeout)
		if err != nil || timeout <= 0 {
			return openssl.Call{}, 0, fmt.Errorf("invalid timeout %q", req.Timeout)
		}
	}

	return openssl.Call{
		Input:   req.Input,
		Options: opts,
	}, timeout, nil
}

// statusFor maps a classified error to an HTTP status. Tool failures are
// results, not transport errors, so they keep 200.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, openssl.ErrSpawn):
		return http.StatusBadGateway
	case errors.Is(err, openssl.ErrTerminated):
		return http.StatusGatewayTimeout
	case errors.Is(err, openssl.ErrNonZeroExit), errors.Is(err, openssl.ErrPatternMismatch):
		return http.StatusOK
	}
	clog.Error("api: unclassified error: %v", err)
	return http.StatusInternalServerError
}

func kindOf(err error) string {
	var e *openssl.Error
	if errors.As(err, &e) {
		return e.Kind.String()
	}
	return ""
}
