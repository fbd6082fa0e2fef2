package apply

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"job-board-go/internal/ratelimit"
	"job-board-go/pkg/httpclient"
)

// GenericFailure is reported when the server gives no message.
const GenericFailure = "Something went wrong"

// SubmitError is a rejected or failed submission.
type SubmitError struct {
	StatusCode int
	Message    string
}

func (e *SubmitError) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// Receipt describes an accepted submission.
type Receipt struct {
	JobID     string `json:"job_id"`
	RequestID string `json:"request_id"`
	Status    int    `json:"status"`
}

// Options configures a Client.
type Options struct {
	ApplyURL       string
	RateLimit      int // requests per minute, 0 disables
	MaxResumeBytes int
}

// Client posts applications to the job portal.
type Client struct {
	httpClient *httpclient.HttpClient
	limiter    *ratelimit.Limiter
	opts       Options
	logger     *log.Logger
}

// NewClient creates a client; limiter may be nil.
func NewClient(httpClient *httpclient.HttpClient, limiter *ratelimit.Limiter, opts Options, logger *log.Logger) *Client {
	opts.ApplyURL = strings.TrimRight(opts.ApplyURL, "/")
	if opts.MaxResumeBytes <= 0 {
		opts.MaxResumeBytes = MaxResumeBytes
	}
	return &Client{
		httpClient: httpClient,
		limiter:    limiter,
		opts:       opts,
		logger:     logger,
	}
}

// MaxResumeBytes returns the configured resume size limit.
func (c *Client) MaxResumeBytes() int {
	return c.opts.MaxResumeBytes
}

// Submit validates the form and posts it for jobID.
func (c *Client) Submit(ctx context.Context, jobID string, form Form) (*Receipt, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, &ValidationError{Fields: map[string]string{"JobID": "is required"}}
	}
	if err := form.validate(c.opts.MaxResumeBytes); err != nil {
		return nil, err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, "apply", c.opts.RateLimit); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	body, contentType, err := encodeForm(form)
	if err != nil {
		return nil, fmt.Errorf("failed to encode application: %w", err)
	}

	requestID := uuid.NewString()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.ApplyURL+"/"+url.PathEscape(jobID), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Printf("Application %s for job %s failed: %v", requestID, jobID, err)
		return nil, &SubmitError{Message: GenericFailure}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := httpclient.ErrorMessage(resp)
		if strings.HasPrefix(msg, "status ") {
			msg = GenericFailure
		}
		c.logger.Printf("Application %s for job %s rejected: %s", requestID, jobID, msg)
		return nil, &SubmitError{StatusCode: resp.StatusCode, Message: msg}
	}

	c.logger.Printf("Application %s for job %s submitted", requestID, jobID)
	return &Receipt{JobID: jobID, RequestID: requestID, Status: resp.StatusCode}, nil
}

func encodeForm(form Form) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	fields := []struct{ name, value string }{
		{"fullname", form.FullName},
		{"email", form.Email},
		{"mobile", form.Phone},
		{"coverLetter", form.CoverLetter},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}

	contentType, err := ResumeContentType(form.Resume)
	if err != nil {
		return nil, "", err
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="resume"; filename=%q`, form.Resume.Filename))
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(form.Resume.Data); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
