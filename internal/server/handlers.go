package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gclm/flowgraph/pkg/buildinfo"
	"github.com/gclm/flowgraph/pkg/errors"
	"github.com/gclm/flowgraph/pkg/pipeline"
	"github.com/gclm/flowgraph/pkg/source"
	"github.com/gclm/flowgraph/pkg/workflow"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 4 << 20

// Response headers describing how an artifact was produced.
const (
	HeaderFallback   = "X-Flowgraph-Fallback"
	HeaderCache      = "X-Flowgraph-Cache"
	HeaderUnresolved = "X-Flowgraph-Unresolved"
)

type renderRequest struct {
	Workflow *workflow.Workflow     `json:"workflow" validate:"required"`
	Phases   []workflow.PhaseStatus `json:"phases"`
	Size     string                 `json:"size" validate:"omitempty,oneof=compact normal"`
	Format   string                 `json:"format" validate:"omitempty,oneof=svg json dot png"`
}

type taskRequest struct {
	WorkflowType string                 `json:"workflowType" validate:"required,max=128"`
	Phases       []workflow.PhaseStatus `json:"phases"`
	Size         string                 `json:"size" validate:"omitempty,oneof=compact normal"`
	Format       string                 `json:"format" validate:"omitempty,oneof=svg json dot png"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// handleWorkflow renders a workflow definition with every node pending.
func (s *Server) handleWorkflow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	workflowType := chi.URLParam(r, "workflowType")
	opts := pipeline.Options{
		Size:   r.URL.Query().Get("size"),
		Format: r.URL.Query().Get("format"),
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.fail(w, r, err)
		return
	}

	wf, err := source.Fetch(ctx, s.Runner.Source, workflowType)
	if err != nil {
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeSourceUnavailable, err, "workflow %q is unavailable", workflowType)
		}
		s.fail(w, r, err)
		return
	}
	res, err := s.Runner.RenderWorkflow(ctx, wf, nil, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeResult(w, res)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.Runner.RenderWorkflow(r.Context(), *req.Workflow, req.Phases, pipeline.Options{
		Size:   req.Size,
		Format: req.Format,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeResult(w, res)
}

func (s *Server) handleTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.Runner.RenderTask(r.Context(), req.WorkflowType, req.Phases, pipeline.Options{
		Size:   req.Size,
		Format: req.Format,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeResult(w, res)
}

// decode reads and validates a JSON body. On failure it writes the error
// response and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		s.fail(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid JSON body"))
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		s.fail(w, r, validationError(err))
		return false
	}
	return true
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request")
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		if fe.Param() != "" {
			msgs[i] = fmt.Sprintf("%s: failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
		} else {
			msgs[i] = fmt.Sprintf("%s: failed %s", fe.Field(), fe.Tag())
		}
	}
	return errors.New(errors.ErrCodeInvalidInput, "invalid request: %s", strings.Join(msgs, "; "))
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.Logger.Error("request failed", "path", r.URL.Path, "request_id", RequestIDFromContext(r.Context()), "err", err)
	}
	code := string(errors.GetCode(err))
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}
	writeError(w, status, code, errors.UserMessage(err))
}

func writeResult(w http.ResponseWriter, res *pipeline.Result) {
	h := w.Header()
	h.Set("Content-Type", res.ContentType)
	h.Set(HeaderFallback, strconv.FormatBool(res.Fallback))
	if res.CacheHit {
		h.Set(HeaderCache, "hit")
	} else {
		h.Set(HeaderCache, "miss")
	}
	if len(res.Unresolved) > 0 {
		h.Set(HeaderUnresolved, strconv.Itoa(len(res.Unresolved)))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
