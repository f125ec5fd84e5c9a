package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	auth "github.com/mind-engage/cefr-assess/internal/auth/middleware"
	"github.com/mind-engage/cefr-assess/internal/content"
	"github.com/mind-engage/cefr-assess/internal/grading"
	"github.com/mind-engage/cefr-assess/internal/metrics"
	"github.com/mind-engage/cefr-assess/internal/rbac"
	"github.com/mind-engage/cefr-assess/internal/session"
	"github.com/mind-engage/cefr-assess/internal/speech"
	"github.com/mind-engage/cefr-assess/internal/storage"
)

type fakeSpeaker struct{ err error }

func (f fakeSpeaker) DataURI(_ context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", speech.ErrEmptyText
	}
	if f.err != nil {
		return "", f.err
	}
	return "data:audio/wav;base64,UklGRg==", nil
}

type env struct {
	srv     *httptest.Server
	metrics *metrics.Metrics
	logs    *observer.ObservedLogs
	token   string
}

func newEnv(t *testing.T, sp Speaker) *env {
	t.Helper()
	ctx := context.Background()
	sets := content.NewInMemoryStore()
	builtin, err := content.Builtin(ctx)
	require.NoError(t, err)
	_, err = content.Seed(ctx, sets, builtin)
	require.NoError(t, err)

	blobs, err := storage.NewFSStore(t.TempDir())
	require.NoError(t, err)
	_, err = blobs.Put(ctx, "audio/aunt.mp3", strings.NewReader("ID3"), "audio/mpeg")
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)

	grader := grading.NewGrader()
	m := metrics.New(nil)
	a := auth.NewAuthService("test-secret", time.Hour)
	core, logs := observer.New(zap.InfoLevel)
	r := NewRouter(Deps{
		Log:         zap.New(core),
		Auth:        a,
		Accounts:    auth.Accounts{"author": {Username: "author", PasswordHash: string(hash), Role: rbac.RoleAuthor}},
		Sets:        sets,
		Sessions:    session.NewStore(sets, grader, session.WithSubmitHook(m.ObserveSubmit)),
		Comparators: grader.Comparators(),
		Speech:      sp,
		Blobs:       blobs,
		Metrics:     m,
		CORSOrigins: []string{"http://localhost:3000"},
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	tok, err := a.IssueJWT("author", rbac.RoleAuthor)
	require.NoError(t, err)
	return &env{srv: srv, metrics: m, logs: logs, token: tok}
}

func (e *env) do(t *testing.T, method, path string, body interface{}, token string) (int, []byte) {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		buf, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	out, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, out
}

func TestPlacementFlow(t *testing.T) {
	e := newEnv(t, nil)

	code, body := e.do(t, http.MethodGet, "/sets", nil, "")
	require.Equal(t, http.StatusOK, code)
	var sums []content.Summary
	require.NoError(t, json.Unmarshal(body, &sums))
	assert.Len(t, sums, 5)

	code, body = e.do(t, http.MethodGet, "/sets/quick-assessment", nil, "")
	require.Equal(t, http.StatusOK, code)
	var view content.Set
	require.NoError(t, json.Unmarshal(body, &view))
	require.Len(t, view.Questions, 20)
	for _, q := range view.Questions {
		if q.FreeText != nil {
			assert.Empty(t, q.FreeText.Accept, q.ID)
			continue
		}
		require.NotNil(t, q.MultipleChoice)
		assert.Nil(t, q.MultipleChoice.Answer, q.ID)
	}

	var s session.State
	code, body = e.do(t, http.MethodPost, "/sessions", map[string]string{"set_id": "quick-assessment"}, "")
	require.Equal(t, http.StatusCreated, code, string(body))
	require.NoError(t, json.Unmarshal(body, &s))
	id := s.ID

	code, _ = e.do(t, http.MethodPost, "/sessions/"+id+"/submit", nil, "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = e.do(t, http.MethodPost, "/sessions/"+id+"/start", nil, "")
	require.Equal(t, http.StatusOK, code)

	set, err := content.Builtin(context.Background())
	require.NoError(t, err)
	var quick content.Set
	for _, st := range set {
		if st.ID == "quick-assessment" {
			quick = st
		}
	}
	// answer the first 12 correctly
	var recs []grading.Answer
	for _, q := range quick.Questions[:12] {
		if q.FreeText != nil {
			recs = append(recs, grading.Answer{QuestionID: q.ID, Text: strings.ToUpper(q.FreeText.Accept[0])})
			continue
		}
		recs = append(recs, grading.Answer{QuestionID: q.ID, Choice: grading.Choice(*q.MultipleChoice.Answer)})
	}
	code, body = e.do(t, http.MethodPut, "/sessions/"+id+"/answers", recs, "")
	require.Equal(t, http.StatusOK, code, string(body))

	code, _ = e.do(t, http.MethodPut, "/sessions/"+id+"/answers", []grading.Answer{{QuestionID: "nope", Choice: grading.Choice(0)}}, "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = e.do(t, http.MethodPost, "/sessions/"+id+"/submit", nil, "")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(body, &s))
	require.NotNil(t, s.Report)
	assert.Equal(t, session.PhaseCompleted, s.Phase)
	assert.Equal(t, 12, s.Report.Correct)
	assert.Equal(t, "B1", s.Report.Band.Label)
	assert.Len(t, s.Report.IncorrectResults, 8)

	code, body = e.do(t, http.MethodPost, "/sessions/"+id+"/reset", nil, "")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(body, &s))
	assert.Equal(t, session.PhaseIntro, s.Phase)

	code, _ = e.do(t, http.MethodGet, "/sessions/unknown", nil, "")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = e.do(t, http.MethodPost, "/sessions", map[string]string{"set_id": "unknown"}, "")
	assert.Equal(t, http.StatusNotFound, code)

	code, body = e.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `cefr_submissions_total{band="B1",set="quick-assessment"} 1`)
}

func TestCreateSetNeedsAuthor(t *testing.T) {
	e := newEnv(t, nil)
	doc := `{"id":"pets","title":"Pets","kind":"lesson","questions":[
		{"id":"q1","kind":"free_text","prompt":"A cat says ____.","free_text":{"accept":["meow"]}}]}`

	code, _ := e.do(t, http.MethodPost, "/sets", doc, "")
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = e.do(t, http.MethodPost, "/sets", doc, "garbage")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body := e.do(t, http.MethodPost, "/sets", `{"id":"pets","title":"Pets","kind":"lesson","questions":[]}`, e.token)
	assert.Equal(t, http.StatusBadRequest, code, string(body))

	code, body = e.do(t, http.MethodPost, "/sets", doc, e.token)
	require.Equal(t, http.StatusCreated, code, string(body))
	stored := e.logs.FilterMessage("set stored").AllUntimed()
	require.Len(t, stored, 1)
	assert.Equal(t, "author", stored[0].ContextMap()["by"])
	assert.Equal(t, "pets", stored[0].ContextMap()["set"])

	code, body = e.do(t, http.MethodGet, "/sets/pets", nil, "")
	require.Equal(t, http.StatusOK, code)
	var view content.Set
	require.NoError(t, json.Unmarshal(body, &view))
	assert.Empty(t, view.Questions[0].FreeText.Accept)
}

func TestLogin(t *testing.T) {
	e := newEnv(t, nil)
	code, body := e.do(t, http.MethodPost, "/auth/login", `{"username":"author","password":"pw"}`, "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "access_token")

	code, _ = e.do(t, http.MethodPost, "/auth/login", `{"username":"author","password":"nope"}`, "")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestSpeech(t *testing.T) {
	e := newEnv(t, fakeSpeaker{})
	code, body := e.do(t, http.MethodPost, "/speech", map[string]string{"text": "Hello"}, "")
	require.Equal(t, http.StatusOK, code)
	var out map[string]string
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "data:audio/wav;base64,UklGRg==", out["audio_data_uri"])

	code, _ = e.do(t, http.MethodPost, "/speech", map[string]string{"text": " "}, "")
	assert.Equal(t, http.StatusBadRequest, code)

	failing := newEnv(t, fakeSpeaker{err: errors.Wrap(speech.ErrSynthesis, "upstream 429")})
	code, _ = failing.do(t, http.MethodPost, "/speech", map[string]string{"text": "Hello"}, "")
	assert.Equal(t, http.StatusBadGateway, code)

	code, _ = newEnv(t, nil).do(t, http.MethodPost, "/speech", map[string]string{"text": "Hello"}, "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAudioAndHealth(t *testing.T) {
	e := newEnv(t, nil)
	code, body := e.do(t, http.MethodGet, "/audio/aunt.mp3", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ID3", string(body))

	code, _ = e.do(t, http.MethodGet, "/audio/uncle.mp3", nil, "")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = e.do(t, http.MethodGet, "/audio/secret.txt", nil, "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = e.do(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, code)
	code, _ = e.do(t, http.MethodGet, "/readyz", nil, "")
	assert.Equal(t, http.StatusOK, code)
}

func TestStatusOf(t *testing.T) {
	cases := map[error]int{
		errors.Wrap(session.ErrAnswerShape, "q1"):         http.StatusBadRequest,
		&content.ValidationError{Problems: []string{"x"}}: http.StatusBadRequest,
		errors.Wrap(content.ErrNotFound, "x"):             http.StatusNotFound,
		errors.Wrap(speech.ErrSynthesis, "quota"):         http.StatusBadGateway,
		errors.New("disk on fire"):                        http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, statusOf(err), err.Error())
	}
}
