package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

const defaultBaseURL = "http://127.0.0.1:4000"

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// Client talks to the study-quiz backend. It covers only the collaborator
// surface the session engine consumes: question fetch, view-count telemetry
// and remote answer evaluation.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        zerolog.Logger
}

func NewClient(baseURL, token string, httpClient *http.Client, log zerolog.Logger) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: httpClient,
		log:        log,
	}
}

// GetQuestions fetches the ordered question records of a quiz set.
func (c *Client) GetQuestions(ctx context.Context, setID int64) ([]QuestionItem, error) {
	var questions []QuestionItem
	if err := c.doJSON(ctx, http.MethodGet, "/quiz/"+strconv.FormatInt(setID, 10), nil, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// IncrementViewCount bumps the set's view counter. Callers treat a failure as
// non-fatal telemetry.
func (c *Client) IncrementViewCount(ctx context.Context, setID int64) error {
	path := "/quiz/" + strconv.FormatInt(setID, 10) + "/increment-count"
	return c.doJSON(ctx, http.MethodPatch, path, nil, nil)
}

// EvaluateAnswer asks the backend to grade userAnswer semantically. The
// user's input is sent exactly as typed.
func (c *Client) EvaluateAnswer(ctx context.Context, question, expectedAnswer, userAnswer string) (Evaluation, error) {
	payload := evaluateRequest{
		Question:   question,
		Answer:     expectedAnswer,
		UserAnswer: userAnswer,
	}

	var evaluation Evaluation
	if err := c.doJSON(ctx, http.MethodPost, "/evaluate", payload, &evaluation); err != nil {
		return Evaluation{}, err
	}
	return evaluation, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.decodeError(path, resp)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) decodeError(path string, resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var payload errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		if payload.Error != "" {
			apiErr.Message = payload.Error
		} else {
			apiErr.Message = payload.Message
		}
	}

	c.log.Debug().
		Int("status", resp.StatusCode).
		Str("path", path).
		Msg("backend request failed")
	return apiErr
}
