package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/w-h-a/recall"
	countermem "github.com/w-h-a/recall/counter/memory"
	"github.com/w-h-a/recall/generator"
	"github.com/w-h-a/recall/server"
	storermem "github.com/w-h-a/recall/storer/memory"
)

type stubGenerator struct {
	reply string
}

func (g *stubGenerator) Complete(ctx context.Context, messages []generator.Message) (string, error) {
	return g.reply, nil
}

type stubEmbedder struct{}

func (e *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vectors = append(vectors, []float32{float32(len(text)), 1, 2, 3})
	}
	return vectors, nil
}

func newTestServer(t *testing.T, reply string) (*httptest.Server, *recall.Service) {
	t.Helper()

	service := recall.New(
		recall.WithGenerator(&stubGenerator{reply: reply}),
		recall.WithEmbedder(&stubEmbedder{}),
		recall.WithStorer(storermem.NewStorer()),
		recall.WithCounter(countermem.NewCounter()),
	)

	srv := NewServer(
		service,
		server.WithAddress(":0"),
		WithStreamInterval(time.Millisecond),
		WithMiddleware(RequestID),
	)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return ts, service
}

func postJSON(t *testing.T, url string, body string) *http.Response {
	t.Helper()

	rsp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)

	return rsp
}

func decode[T any](t *testing.T, rsp *http.Response) T {
	t.Helper()

	defer rsp.Body.Close()

	var out T
	require.NoError(t, json.NewDecoder(rsp.Body).Decode(&out))

	return out
}

func TestUnmatchedRoutesReturn404(t *testing.T) {
	ts, _ := newTestServer(t, "unused")

	for _, path := range []string{"/nonexistent", "/favicon.ico", "/api/unknown"} {
		rsp, err := http.Get(ts.URL + path)
		require.NoError(t, err)

		body, _ := io.ReadAll(rsp.Body)
		rsp.Body.Close()

		require.Equal(t, http.StatusNotFound, rsp.StatusCode, path)
		require.Equal(t, "Not found", string(body), path)
	}

	// unmatched method on a matched path is also a 404
	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/chat", nil)
	require.NoError(t, err)

	rsp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	rsp.Body.Close()
	require.Equal(t, http.StatusNotFound, rsp.StatusCode)
}

func TestIndexServesUI(t *testing.T) {
	ts, _ := newTestServer(t, "unused")

	rsp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer rsp.Body.Close()

	require.Equal(t, http.StatusOK, rsp.StatusCode)
	require.Contains(t, rsp.Header.Get("Content-Type"), "text/html")
	require.NotEmpty(t, rsp.Header.Get("X-Request-Id"))

	body, err := io.ReadAll(rsp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "<!DOCTYPE html>")
}

func TestChatRespondsWithCompletion(t *testing.T) {
	ts, _ := newTestServer(t, "the answer is 42")

	rsp := postJSON(t, ts.URL+"/api/chat", `{"message":"what is the answer?"}`)
	require.Equal(t, http.StatusOK, rsp.StatusCode)
	require.Contains(t, rsp.Header.Get("Content-Type"), "application/json")

	out := decode[chatResponse](t, rsp)
	require.Equal(t, "the answer is 42", out.Message)
	require.True(t, out.Success)
}

func TestChatAcceptsTextField(t *testing.T) {
	ts, _ := newTestServer(t, "hello")

	rsp := postJSON(t, ts.URL+"/api/chat", `{"text":"hi"}`)
	require.Equal(t, http.StatusOK, rsp.StatusCode)

	out := decode[chatResponse](t, rsp)
	require.Equal(t, "hello", out.Message)
}

func TestChatRejectsBadInput(t *testing.T) {
	ts, _ := newTestServer(t, "unused")

	for name, body := range map[string]string{
		"empty message": `{"message":""}`,
		"empty text":    `{"text":""}`,
		"missing field": `{}`,
		"invalid json":  `{"message":`,
	} {
		rsp := postJSON(t, ts.URL+"/api/chat", body)

		out := decode[errorResponse](t, rsp)
		require.Equal(t, http.StatusBadRequest, rsp.StatusCode, name)
		require.NotEmpty(t, out.Error, name)
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	ts, service := newTestServer(t, "a summary of the conversation")

	// write a summary memory
	rsp := postJSON(t, ts.URL+"/api/memory", `{"conversationHistory":["user: hi","assistant: hello"]}`)
	require.Equal(t, http.StatusOK, rsp.StatusCode)

	stored := decode[memorizeResponse](t, rsp)
	require.Equal(t, 2, stored.ConversationLength)

	// list it back
	rsp, err := http.Get(ts.URL + "/api/memory")
	require.NoError(t, err)

	listed := decode[listMemoriesResponse](t, rsp)
	require.Equal(t, 1, listed.Count)
	require.EqualValues(t, 1, listed.Total)
	require.Len(t, listed.Memories, 1)
	require.EqualValues(t, 1, listed.Memories[0].Id)
	require.Equal(t, "a summary of the conversation", listed.Memories[0].Message)

	_, err = time.Parse(time.RFC3339, listed.Memories[0].Timestamp)
	require.NoError(t, err)

	// delete everything
	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/memory", nil)
	require.NoError(t, err)

	rsp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)

	wiped := decode[forgetResponse](t, rsp)
	require.Equal(t, 1, wiped.DeletedCount)
	require.Equal(t, []int64{1}, wiped.DeletedIds)

	// the list is empty again
	rsp, err = http.Get(ts.URL + "/api/memory")
	require.NoError(t, err)

	listed = decode[listMemoriesResponse](t, rsp)
	require.Equal(t, 0, listed.Count)
	require.EqualValues(t, 0, listed.Total)

	// and the next memory is minted with id 1 again
	rsp = postJSON(t, ts.URL+"/api/memory", `{"conversationHistory":["user: round two"]}`)
	require.Equal(t, http.StatusOK, rsp.StatusCode)
	rsp.Body.Close()

	rsp, err = http.Get(ts.URL + "/api/memory")
	require.NoError(t, err)

	listed = decode[listMemoriesResponse](t, rsp)
	require.Len(t, listed.Memories, 1)
	require.EqualValues(t, 1, listed.Memories[0].Id)

	require.NoError(t, service.Close())
}

func TestMemorizeRejectsEmptyHistory(t *testing.T) {
	ts, _ := newTestServer(t, "unused")

	rsp := postJSON(t, ts.URL+"/api/memory", `{"conversationHistory":[]}`)

	out := decode[errorResponse](t, rsp)
	require.Equal(t, http.StatusBadRequest, rsp.StatusCode)
	require.NotEmpty(t, out.Error)
}

func TestLoggerWritesThroughInjectedLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := RequestID(Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/memory", nil))

	require.Equal(t, http.StatusNoContent, rec.Code)

	logged := buf.String()
	require.Contains(t, logged, "request handled")
	require.Contains(t, logged, "/api/memory")
	require.Contains(t, logged, "request_id")
}

func TestChatStreamsTokensAsSSE(t *testing.T) {
	ts, _ := newTestServer(t, "one two three four")

	rsp := postJSON(t, ts.URL+"/api/chat", `{"message":"count for me","stream":true}`)
	defer rsp.Body.Close()

	require.Equal(t, http.StatusOK, rsp.StatusCode)
	require.Contains(t, rsp.Header.Get("Content-Type"), "text/event-stream")

	raw, err := io.ReadAll(rsp.Body)
	require.NoError(t, err)

	body := string(raw)

	// the terminator is the last frame and appears exactly once
	require.Equal(t, 1, strings.Count(body, "event: done"))
	require.True(t, strings.HasSuffix(body, "event: done\ndata: [DONE]\n\n"))

	var tokens []string
	for frame := range strings.SplitSeq(strings.TrimSuffix(body, "\n\n"), "\n\n") {
		if strings.Contains(frame, "event: done") {
			continue
		}
		for line := range strings.SplitSeq(frame, "\n") {
			if token, ok := strings.CutPrefix(line, "data: "); ok {
				tokens = append(tokens, token)
			}
		}
	}

	require.Equal(t, "one two three four", strings.Join(tokens, " "))
}
