package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strings"
	"time"
)

// maxBodyBytes caps how much of a resource is kept. Longer bodies keep
// their tail, so an untrimmed log still shows the newest lines.
const maxBodyBytes = 4 << 20

// Resource is a readable feed location.
type Resource interface {
	Read(ctx context.Context) ([]byte, error)
	Location() string
}

// NewResource returns an HTTP resource for http(s) URLs and a file resource
// for anything else.
func NewResource(location string, timeout time.Duration) Resource {
	if isURL(location) {
		return &httpResource{
			url:    location,
			client: &http.Client{Timeout: timeout},
		}
	}
	return &fileResource{path: location}
}

// IsLocal reports whether the location refers to a local file.
func IsLocal(location string) bool {
	return location != "" && !isURL(location)
}

func isURL(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

type httpResource struct {
	url    string
	client *http.Client
}

func (r *httpResource) Location() string { return r.url }

func (r *httpResource) Read(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request for %s: %v", ErrUnavailable, r.url, err)
	}
	// The agent rewrites the files in place; never serve a cached copy.
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrUnavailable, r.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: GET %s: status %d", ErrUnavailable, r.url, resp.StatusCode)
	}

	body, err := readTail(resp.Body, maxBodyBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrUnavailable, r.url, err)
	}
	return body, nil
}

type fileResource struct {
	path string
}

func (r *fileResource) Location() string { return r.path }

func (r *fileResource) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer f.Close()

	data, err := readTail(f, maxBodyBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrUnavailable, r.path, err)
	}
	return data, nil
}

// readTail reads r to EOF and returns at most the last limit bytes.
// Memory stays bounded by twice the limit however long the body is.
func readTail(r io.Reader, limit int) ([]byte, error) {
	buf := make([]byte, 0, 64<<10)
	chunk := make([]byte, 32<<10)
	for {
		n, err := r.Read(chunk)
		buf = append(buf, chunk[:n]...)
		if len(buf) > 2*limit {
			buf = append(buf[:0], buf[len(buf)-limit:]...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	if len(buf) > limit {
		buf = buf[len(buf)-limit:]
	}
	return buf, nil
}

// Feed reads the status and log resources published by the scoring agent.
type Feed struct {
	status Resource
	logs   Resource
}

// New creates a Feed from the two resource locations.
func New(statusLocation, logsLocation string, timeout time.Duration) *Feed {
	return &Feed{
		status: NewResource(statusLocation, timeout),
		logs:   NewResource(logsLocation, timeout),
	}
}

// NewFromResources creates a Feed from already constructed resources.
func NewFromResources(status, logs Resource) *Feed {
	return &Feed{status: status, logs: logs}
}

// StatusLocation returns where the status snapshot is read from.
func (f *Feed) StatusLocation() string { return f.status.Location() }

// LogsLocation returns where the log text is read from.
func (f *Feed) LogsLocation() string { return f.logs.Location() }

// FetchStatus reads and validates the current risk snapshot.
func (f *Feed) FetchStatus(ctx context.Context) (*RiskStatus, error) {
	body, err := f.status.Read(ctx)
	if err != nil {
		return nil, err
	}
	return DecodeStatus(body)
}

// FetchLogs reads the agent log text verbatim.
func (f *Feed) FetchLogs(ctx context.Context) (string, error) {
	body, err := f.logs.Read(ctx)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// rawStatus uses pointers so absent fields can be told apart from zeros.
type rawStatus struct {
	Validator *string    `json:"validator"`
	Score     *float64   `json:"score"`
	Details   *Details   `json:"details"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// DecodeStatus parses a status body. Anything other than an object with a
// non-empty validator and a whole-number score in [0, 100] is ErrMalformed.
// Integral floats such as 20.0 are accepted.
func DecodeStatus(body []byte) (*RiskStatus, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformed)
	}

	var raw rawStatus
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if raw.Validator == nil || strings.TrimSpace(*raw.Validator) == "" {
		return nil, fmt.Errorf("%w: missing validator", ErrMalformed)
	}
	if raw.Score == nil {
		return nil, fmt.Errorf("%w: missing score", ErrMalformed)
	}
	score := *raw.Score
	if score != math.Trunc(score) {
		return nil, fmt.Errorf("%w: score %v is not a whole number", ErrMalformed, score)
	}
	if score < 0 || score > 100 {
		return nil, fmt.Errorf("%w: score %v out of range 0-100", ErrMalformed, score)
	}

	return &RiskStatus{
		Validator: *raw.Validator,
		Score:     int(score),
		Details:   raw.Details,
		UpdatedAt: raw.UpdatedAt,
	}, nil
}
