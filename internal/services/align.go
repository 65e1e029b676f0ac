package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/batchalign/internal/models"
)

// DefaultTimeout is the per-item ceiling for one alignment request.
const DefaultTimeout = 5 * time.Minute

// Multipart field names expected by the alignment endpoint.
const (
	FieldAudio         = "audio"
	FieldTranscription = "transcription"
)

// Failure messages shown in reports.
const (
	MessageInvalidResponse = "invalid server response"
	MessageNetworkError    = "network connection error"
	MessageTimeout         = "timeout: processing took too long"
)

var _ Submitter = (*AlignService)(nil)

// AlignService submits work items to the alignment endpoint.
type AlignService struct {
	url        string
	timeout    time.Duration
	headers    http.Header
	httpClient *http.Client
}

// NewAlignService creates a submitter posting to url.
// A non-positive timeout falls back to [DefaultTimeout].
func NewAlignService(url string, timeout time.Duration, client *http.Client) *AlignService {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &AlignService{
		url:        url,
		timeout:    timeout,
		headers:    http.Header{},
		httpClient: client,
	}
}

// WithHeaders sets extra headers sent with every request.
func (a *AlignService) WithHeaders(h http.Header) *AlignService {
	a.headers = h.Clone()
	if a.headers == nil {
		a.headers = http.Header{}
	}
	return a
}

// URL returns the endpoint requests are posted to.
func (a *AlignService) URL() string {
	return a.url
}

// Timeout returns the per-item deadline.
func (a *AlignService) Timeout() time.Duration {
	return a.timeout
}

// Submit posts item as one multipart request and classifies the response.
func (a *AlignService) Submit(ctx context.Context, item models.WorkItem) models.Outcome {
	body, contentType, err := encodeWorkItem(item)
	if err != nil {
		return models.Failed(models.FailureNetwork, fmt.Sprintf("failed to encode request: %v", err))
	}

	reqCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, a.url, body)
	if err != nil {
		return models.Failed(models.FailureNetwork, fmt.Sprintf("failed to create request: %v", err))
	}
	for k, v := range a.headers {
		req.Header[k] = append([]string(nil), v...)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return transportFailure(ctx, reqCtx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportFailure(ctx, reqCtx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.Failed(models.FailureHTTP, httpErrorMessage(resp, data))
	}

	payload, err := models.NewPayload(data)
	if err != nil {
		return models.Failed(models.FailureInvalidResponse, MessageInvalidResponse)
	}
	return models.Succeeded(payload)
}

func encodeWorkItem(item models.WorkItem) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	parts := []struct {
		field string
		file  models.InputFile
	}{
		{FieldAudio, item.Audio},
		{FieldTranscription, item.Transcript},
	}

	for _, p := range parts {
		fw, err := w.CreateFormFile(p.field, p.file.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := fw.Write(p.file.Content); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// transportFailure distinguishes caller cancellation, the per-item deadline,
// and connectivity errors.
func transportFailure(parent, reqCtx context.Context, err error) models.Outcome {
	switch {
	case parent.Err() != nil:
		return models.Skipped(models.MessageCancelled)
	case errors.Is(reqCtx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return models.Failed(models.FailureTimeout, MessageTimeout)
	default:
		return models.Failed(models.FailureNetwork, MessageNetworkError)
	}
}

func httpErrorMessage(resp *http.Response, body []byte) string {
	var errBody struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &errBody); err == nil && errBody.Error != "" {
		return errBody.Error
	}

	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", resp.StatusCode, text)
}
