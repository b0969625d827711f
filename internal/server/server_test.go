// internal/server/server_test.go
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csv-chat/internal/common/config"
	apperrors "csv-chat/internal/common/errors"
	"csv-chat/internal/common/logger"
	"csv-chat/internal/dataset"
	"csv-chat/internal/engine"
	"csv-chat/internal/session"
)

type stubEngine struct {
	result *engine.Result
	err    error
	calls  int
}

func (s *stubEngine) Ask(_ context.Context, _ *dataset.Dataset, _ string) (*engine.Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newTestServer(t *testing.T, eng engine.Engine) *httptest.Server {
	t.Helper()
	fe := session.NewFrontEnd(session.NewMemoryStore(0), eng, logger.NewTestLogger(t), nil)
	srv := New(fe, config.ServerConfig{MaxUploadMB: 8}, 0, logger.NewTestLogger(t))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func createSession(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	res, err := http.Post(ts.URL+"/api/sessions", "application/json", nil)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusCreated, res.StatusCode)

	var body struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.NotEmpty(t, body.ID)
	return body.ID
}

func uploadCSV(t *testing.T, ts *httptest.Server, sessionID, filename, content string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	res, err := http.Post(
		fmt.Sprintf("%s/api/sessions/%s/dataset", ts.URL, sessionID),
		mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	return res
}

func ask(t *testing.T, ts *httptest.Server, sessionID, question string) *http.Response {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"question": question})
	res, err := http.Post(
		fmt.Sprintf("%s/api/sessions/%s/query", ts.URL, sessionID),
		"application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return res
}

func decodeError(t *testing.T, res *http.Response) errorBody {
	t.Helper()
	defer res.Body.Close()
	var body errorResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	return body.Error
}

func TestServer_UploadAndQuery(t *testing.T) {
	answer := 27.5
	eng := &stubEngine{result: &engine.Result{Kind: engine.KindNumber, Number: &answer}}
	ts := newTestServer(t, eng)

	id := createSession(t, ts)

	res := uploadCSV(t, ts, id, "people.csv", "name,age\nAlice,30\nBob,25\n")
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var prev datasetPreview
	require.NoError(t, json.NewDecoder(res.Body).Decode(&prev))
	assert.Equal(t, "people", prev.Name)
	assert.Equal(t, 2, prev.RowCount)
	require.Len(t, prev.Columns, 2)
	assert.Equal(t, "name", prev.Columns[0].Name)
	assert.Equal(t, dataset.TypeInteger, prev.Columns[1].Type)

	qres := ask(t, ts, id, "what is the average age?")
	defer qres.Body.Close()
	require.Equal(t, http.StatusOK, qres.StatusCode)

	var result engine.Result
	require.NoError(t, json.NewDecoder(qres.Body).Decode(&result))
	assert.Equal(t, engine.KindNumber, result.Kind)
	require.NotNil(t, result.Number)
	assert.InDelta(t, 27.5, *result.Number, 1e-9)
}

func TestServer_GetDatasetPreview(t *testing.T) {
	ts := newTestServer(t, &stubEngine{})
	id := createSession(t, ts)

	res := uploadCSV(t, ts, id, "people.csv", "name,age\nAlice,30\n")
	res.Body.Close()

	getRes, err := http.Get(fmt.Sprintf("%s/api/sessions/%s/dataset", ts.URL, id))
	require.NoError(t, err)
	defer getRes.Body.Close()
	require.Equal(t, http.StatusOK, getRes.StatusCode)

	var prev datasetPreview
	require.NoError(t, json.NewDecoder(getRes.Body).Decode(&prev))
	assert.Equal(t, 1, prev.RowCount)
}

func TestServer_UploadMalformedCSV(t *testing.T) {
	ts := newTestServer(t, &stubEngine{})
	id := createSession(t, ts)

	res := uploadCSV(t, ts, id, "bad.csv", "a,b\n1,2,3\n")
	require.Equal(t, http.StatusBadRequest, res.StatusCode)

	errBody := decodeError(t, res)
	assert.Equal(t, string(apperrors.ErrCodeMalformedCSV), errBody.Code)
	assert.Equal(t, string(apperrors.KindLoad), errBody.Kind)
}

func TestServer_EmptyQuestion(t *testing.T) {
	eng := &stubEngine{}
	ts := newTestServer(t, eng)
	id := createSession(t, ts)

	res := uploadCSV(t, ts, id, "people.csv", "name,age\nAlice,30\n")
	res.Body.Close()

	qres := ask(t, ts, id, "   ")
	require.Equal(t, http.StatusBadRequest, qres.StatusCode)

	errBody := decodeError(t, qres)
	assert.Equal(t, string(apperrors.ErrCodeEmptyQuery), errBody.Code)
	assert.Equal(t, 0, eng.calls)
}

func TestServer_MalformedQueryBody(t *testing.T) {
	eng := &stubEngine{}
	ts := newTestServer(t, eng)
	id := createSession(t, ts)

	res := uploadCSV(t, ts, id, "people.csv", "name,age\nAlice,30\n")
	res.Body.Close()

	qres, err := http.Post(fmt.Sprintf("%s/api/sessions/%s/query", ts.URL, id),
		"application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, qres.StatusCode)

	errBody := decodeError(t, qres)
	assert.Equal(t, string(apperrors.ErrCodeInvalidRequest), errBody.Code)
	assert.Equal(t, 0, eng.calls)
}

func TestServer_QueryWithoutDataset(t *testing.T) {
	ts := newTestServer(t, &stubEngine{})
	id := createSession(t, ts)

	qres := ask(t, ts, id, "anything?")
	require.Equal(t, http.StatusBadRequest, qres.StatusCode)

	errBody := decodeError(t, qres)
	assert.Equal(t, string(apperrors.ErrCodeNoDataset), errBody.Code)
}

func TestServer_UnknownSession(t *testing.T) {
	ts := newTestServer(t, &stubEngine{})

	qres := ask(t, ts, "no-such-session", "q")
	require.Equal(t, http.StatusNotFound, qres.StatusCode)

	errBody := decodeError(t, qres)
	assert.Equal(t, string(apperrors.ErrCodeSessionNotFound), errBody.Code)
}

func TestServer_EngineErrorsMapToBadGateway(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code apperrors.ErrorCode
	}{
		{"auth", apperrors.NewEngineAuthFailedError("bad key"), apperrors.ErrCodeEngineAuthFailed},
		{"rate limit", apperrors.NewEngineRateLimitedError("slow down"), apperrors.ErrCodeEngineRateLimited},
		{"bad answer", apperrors.NewEngineBadAnswerError("nonsense"), apperrors.ErrCodeEngineBadAnswer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, &stubEngine{err: tt.err})
			id := createSession(t, ts)

			res := uploadCSV(t, ts, id, "people.csv", "name,age\nAlice,30\n")
			res.Body.Close()

			qres := ask(t, ts, id, "q")
			require.Equal(t, http.StatusBadGateway, qres.StatusCode)

			errBody := decodeError(t, qres)
			assert.Equal(t, string(tt.code), errBody.Code)
			assert.Equal(t, string(apperrors.KindEngine), errBody.Kind)
		})
	}
}

func TestServer_Health(t *testing.T) {
	ts := newTestServer(t, &stubEngine{})

	res, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestServer_IndexPage(t *testing.T) {
	ts := newTestServer(t, &stubEngine{})

	res, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, strings.HasPrefix(res.Header.Get("Content-Type"), "text/html"))
}

func TestServer_MetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, &stubEngine{})

	res, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
