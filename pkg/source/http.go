package source

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gclm/flowgraph/pkg/errors"
	"github.com/gclm/flowgraph/pkg/httputil"
	"github.com/gclm/flowgraph/pkg/workflow"
)

// HTTPSource fetches definitions from the task engine API:
//
//	GET {BaseURL}/api/v1/workflows/type/{workflowType}
//	{"workflow": {"name": ..., "nodes": [...]}}
//
// Network errors and 5xx responses are retried with exponential backoff.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client

	// Attempts and Delay tune the retry loop. Zero values mean 3 attempts
	// starting at 500ms.
	Attempts int
	Delay    time.Duration
}

// NewHTTPSource returns an HTTPSource with a 10 second request timeout.
func NewHTTPSource(baseURL string) (*HTTPSource, error) {
	if err := errors.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (s *HTTPSource) Name() string { return "http:" + s.BaseURL }

type workflowEnvelope struct {
	Workflow *workflow.Workflow `json:"workflow"`
}

func (s *HTTPSource) Workflow(ctx context.Context, workflowType string) (workflow.Workflow, error) {
	endpoint := strings.TrimRight(s.BaseURL, "/") + "/api/v1/workflows/type/" + url.PathEscape(workflowType)

	var env workflowEnvelope
	fetch := func() error {
		env = workflowEnvelope{}
		return httputil.GetJSON(ctx, s.Client, endpoint, &env)
	}

	var err error
	if s.Attempts <= 0 && s.Delay <= 0 {
		err = httputil.RetryWithBackoff(ctx, fetch)
	} else {
		attempts, delay := s.Attempts, s.Delay
		if attempts <= 0 {
			attempts = 3
		}
		if delay <= 0 {
			delay = 500 * time.Millisecond
		}
		err = httputil.Retry(ctx, attempts, delay, fetch)
	}
	if err != nil {
		var serr *httputil.StatusError
		switch {
		case stderrors.As(err, &serr) && serr.Code == http.StatusNotFound:
			return workflow.Workflow{}, notFound(workflowType, s.BaseURL)
		case stderrors.Is(err, context.DeadlineExceeded):
			return workflow.Workflow{}, errors.Wrap(errors.ErrCodeTimeout, err, "fetch workflow %q", workflowType)
		}
		return workflow.Workflow{}, errors.Wrap(errors.ErrCodeSourceUnavailable, err, "fetch workflow %q", workflowType)
	}
	if env.Workflow == nil {
		return workflow.Workflow{}, notFound(workflowType, s.BaseURL)
	}
	return *env.Workflow, nil
}
