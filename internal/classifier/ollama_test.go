package classifier

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lockedin/go-focus-monitor/internal/core/model"
)

func testCapture() model.Capture {
	return model.Capture{
		Sequence:    7,
		Timestamp:   time.Now(),
		Payload:     []byte("fake-png-bytes"),
		Process:     "chrome.exe",
		WindowTitle: "YouTube - Watch Videos",
	}
}

func testProfile() model.ProfileSnapshot {
	return model.ProfileSnapshot{
		Name:     "developer",
		Criteria: []string{"Writing Go code", "Reading documentation"},
		TakenAt:  time.Now(),
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *OllamaClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewOllamaClient(OllamaConfig{BaseURL: server.URL, Model: "test-model", Timeout: 5 * time.Second})
	require.NoError(t, err)
	return client
}

func TestClassifyDistracted(t *testing.T) {
	var gotReq generateRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, sonic.Unmarshal(body, &gotReq))
		w.Write([]byte(`{"response":"Distracted","done":true}`))
	})

	verdict, err := client.Classify(context.Background(), testCapture(), testProfile())
	require.NoError(t, err)

	assert.Equal(t, int64(7), verdict.Sequence, "verdict must carry the capture sequence")
	assert.Equal(t, model.VerdictDistracted, verdict.Label)
	assert.True(t, verdict.Distracted())
	assert.False(t, verdict.ReceivedAt.IsZero())

	// The request must carry the screenshot and the profile criteria.
	assert.Equal(t, "test-model", gotReq.Model)
	assert.Len(t, gotReq.Images, 1)
	assert.Contains(t, gotReq.Prompt, "Writing Go code")
	assert.Contains(t, gotReq.Prompt, "YouTube - Watch Videos")
	assert.False(t, gotReq.Stream)
}

func TestClassifyProductive(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":" Normal\n","done":true}`))
	})

	verdict, err := client.Classify(context.Background(), testCapture(), testProfile())
	require.NoError(t, err)
	assert.Equal(t, model.VerdictProductive, verdict.Label)
}

func TestClassifyTextOnlyOmitsImage(t *testing.T) {
	var gotReq generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		sonic.Unmarshal(body, &gotReq)
		w.Write([]byte(`{"response":"Normal","done":true}`))
	}))
	t.Cleanup(server.Close)

	client, err := NewOllamaClient(OllamaConfig{BaseURL: server.URL, TextOnly: true})
	require.NoError(t, err)

	_, err = client.Classify(context.Background(), testCapture(), testProfile())
	require.NoError(t, err)
	assert.Empty(t, gotReq.Images)
}

func TestClassifyMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "{broken"},
		{"unrecognized label", `{"response":"I cannot tell","done":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})

			_, err := client.Classify(context.Background(), testCapture(), testProfile())
			assert.True(t, errors.Is(err, ErrMalformed), "expected ErrMalformed, got %v", err)
		})
	}
}

func TestClassifyUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Classify(context.Background(), testCapture(), testProfile())
	assert.True(t, errors.Is(err, ErrUnavailable), "expected ErrUnavailable, got %v", err)
}

func TestClassifyServerDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client, err := NewOllamaClient(OllamaConfig{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Classify(context.Background(), testCapture(), testProfile())
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestHealthy(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		w.Write([]byte(`{"models":[]}`))
	})
	assert.NoError(t, client.Healthy(context.Background()))
}

func TestParseLabel(t *testing.T) {
	tests := []struct {
		in      string
		want    model.VerdictLabel
		wantErr bool
	}{
		{"Distracted", model.VerdictDistracted, false},
		{"  normal ", model.VerdictProductive, false},
		{"The user looks productive to me.", model.VerdictProductive, false},
		{"DISTRACTED!", model.VerdictDistracted, false},
		{"maybe?", "", true},
	}

	for _, tt := range tests {
		got, err := parseLabel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestPromptMentionsAttachmentOnlyWithPayload(t *testing.T) {
	withImage := buildPrompt(testCapture(), testProfile())
	assert.Contains(t, withImage, "screenshot")

	c := testCapture()
	c.Payload = nil
	withoutImage := buildPrompt(c, testProfile())
	assert.True(t, !strings.Contains(withoutImage, "screenshot of the screen is attached"))
}
