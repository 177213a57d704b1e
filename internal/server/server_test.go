package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Heropr/ask-me-anything/internal/assert/helpers"
	"github.com/Heropr/ask-me-anything/internal/config"
	"github.com/Heropr/ask-me-anything/internal/content"
	"github.com/Heropr/ask-me-anything/internal/flows"
	"github.com/Heropr/ask-me-anything/internal/metrics"
	"github.com/Heropr/ask-me-anything/internal/server"
	"github.com/Heropr/ask-me-anything/pkg/api"
)

type testServerEnv struct {
	*helpers.TestEngineEnv
	T       *testing.T
	Server  *server.Server
	Router  *gin.Engine
	Metrics *metrics.Metrics
}

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHealthEndpoint(t *testing.T) {
	withServer(t, func(env *testServerEnv) {
		w := env.do(http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var res api.HealthResponse
		decode(t, w, &res)
		assert.Equal(t, "ask-me-anything", res.Service)
		assert.Equal(t, "ok", res.Status)
		assert.Equal(t, "test", res.Version)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	withServer(t, func(env *testServerEnv) {
		env.do(http.MethodPost, "/api/flows/start",
			api.StartFlowRequest{FlowID: flows.Claim})

		w := env.do(http.MethodGet, "/metrics", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(),
			`askdemo_engine_flows_started_total{flow_id="claim"} 1`)
	})
}

func TestCORSPreflight(t *testing.T) {
	withServer(t, func(env *testServerEnv) {
		w := env.do(http.MethodOptions, "/api/session", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestEmptySession(t *testing.T) {
	withServer(t, func(env *testServerEnv) {
		res := env.session(env.do(http.MethodGet, "/api/session", nil))
		assert.Nil(t, res.State)
		assert.Nil(t, res.CurrentCard)
		assert.Empty(t, res.History)
		assert.Equal(t, []string{}, res.Questions)

		w := env.do(http.MethodGet, "/api/state", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		w = env.do(http.MethodGet, "/api/card", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestListFlows(t *testing.T) {
	withServer(t, func(env *testServerEnv) {
		w := env.do(http.MethodGet, "/api/flows", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var res api.FlowsListResponse
		decode(t, w, &res)
		assert.Equal(t, 6, res.Count)

		canStart := map[api.FlowID]bool{}
		for _, f := range res.Flows {
			canStart[f.ID] = f.CanStart
		}
		assert.True(t, canStart[flows.Booking])
		assert.False(t, canStart[flows.Reschedule])
		assert.False(t, canStart[flows.RemoveFamily])
		assert.Equal(t, "Book an appointment", res.Flows[0].DisplayName)
	})
}

func TestStartFlow(t *testing.T) {
	withServer(t, func(env *testServerEnv) {
		res := env.session(env.do(http.MethodPost, "/api/flows/start",
			api.StartFlowRequest{FlowID: flows.Booking}))

		require.NotNil(t, res.State)
		assert.Equal(t, flows.Booking, res.State.FlowID)
		assert.Equal(t, api.StepID("reason"), res.State.CurrentStep)
		require.NotNil(t, res.CurrentCard)
		assert.Equal(t, "What brings you in today?", res.CurrentCard.Prompt)
		assert.Len(t, res.Questions, 3)
	})
}

func TestStartFlowErrors(t *testing.T) {
	withServer(t, func(env *testServerEnv) {
		w := env.do(http.MethodPost, "/api/flows/start",
			api.StartFlowRequest{FlowID: "nope"})
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = env.do(http.MethodPost, "/api/flows/start",
			api.StartFlowRequest{FlowID: flows.Cancel})
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = env.do(http.MethodPost, "/api/flows/start", api.StartFlowRequest{})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = env.raw(http.MethodPost, "/api/flows/start", []byte("not-json"))
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var res api.ErrorResponse
		decode(t, w, &res)
		assert.Contains(t, res.Error, "invalid JSON")
	})
}

func TestStartFlowRejected(t *testing.T) {
	withConfiguredServer(t,
		func(cfg *config.Config) { cfg.ReplacePolicy = config.RejectActive },
		func(env *testServerEnv) {
			env.do(http.MethodPost, "/api/flows/start",
				api.StartFlowRequest{FlowID: flows.Booking})
			w := env.do(http.MethodPost, "/api/flows/start",
				api.StartFlowRequest{FlowID: flows.Claim})
			assert.Equal(t, http.StatusConflict, w.Code)
			assert.Equal(t, flows.Booking, env.Engine.GetState().FlowID)
		},
	)
}

func TestChoiceAndBack(t *testing.T) {
	withServer(t, func(env *testServerEnv) {
		env.Engine.StartFlow(flows.Booking)

		res := env.session(env.do(http.MethodPost, "/api/choice",
			api.ChoiceRequest{Choice: api.Choice{
				ID: "pain", Label: "Pain or discomfort",
			}}))
		assert.Equal(t, api.StepID("severity"), res.State.CurrentStep)
		assert.True(t, res.CanGoBack)

		res = env.session(env.do(http.MethodPost, "/api/back", nil))
		assert.Equal(t, api.StepID("reason"), res.State.CurrentStep)
		assert.Len(t, res.History, 3)
	})
}

func TestFormSubmit(t *testing.T) {
	withServer(t, func(env *testServerEnv) {
		env.Engine.StartFlow(flows.Family)

		res := env.session(env.do(http.MethodPost, "/api/form",
			api.FormRequest{Data: map[string]any{
				"name": "Jane Doe", "relationship": "Child",
			}}))
		assert.Equal(t, "Jane Doe", res.State.Data["name"])
		assert.Equal(t, api.StepID("processing"), res.State.CurrentStep)
	})
}

func TestEntitySelect(t *testing.T) {
	withServer(t, func(env *testServerEnv) {
		env.Engine.StartFlow(flows.Booking)
		env.Engine.HandleChoice(api.Choice{ID: "routine", Label: "Routine"})
		dentist := env.Engine.GetCurrentCard().Dentists[0]

		res := env.session(env.do(http.MethodPost, "/api/entity",
			api.EntityRequest{Entity: dentist.Entity()}))
		assert.Equal(t, api.StepID("processing"), res.State.CurrentStep)
		selected, ok := res.State.Data["selectedEntity"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, dentist.Name, selected["name"])
	})
}

func TestActionStartsFlow(t *testing.T) {
	withServer(t, func(env *testServerEnv) {
		server.AttachActions(env.Hub, env.Engine, server.DefaultActionFlows)

		res := env.session(env.do(http.MethodPost, "/api/action",
			api.ActionRequest{Action: api.CardAction{
				ID: "another", Label: "File another",
			}}))
		require.NotNil(t, res.State)
		assert.Equal(t, flows.Claim, res.State.FlowID)

		res = env.session(env.do(http.MethodPost, "/api/action",
			api.ActionRequest{Action: api.CardAction{ID: "track"}}))
		assert.Equal(t, flows.Claim, res.State.FlowID)
		assert.Equal(t, 2, env.Recorder.Count(api.EventActionTriggered))
	})
}

func TestCompletedFlows(t *testing.T) {
	withServer(t, func(env *testServerEnv) {
		w := env.do(http.MethodPut, "/api/flows/completed/booking", nil)
		require.Equal(t, http.StatusOK, w.Code)
		res := env.session(w)
		assert.Equal(t, []api.FlowID{flows.Booking}, res.CompletedFlows)
		assert.Len(t, res.Unlocked, 2)

		w = env.do(http.MethodPut, "/api/flows/completed/nope", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = env.do(http.MethodGet, "/api/unlocked", nil)
		var unlocked api.SuggestionsResponse
		decode(t, w, &unlocked)
		assert.Equal(t, 2, unlocked.Count)

		w = env.do(http.MethodDelete, "/api/flows/completed/booking", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, env.session(w).CompletedFlows)

		w = env.do(http.MethodDelete, "/api/flows/completed/booking", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = env.do(http.MethodGet, "/api/flows/completed", nil)
		var completed api.CompletedFlowsResponse
		decode(t, w, &completed)
		assert.Equal(t, 0, completed.Count)
	})
}

func TestCancelAndComplete(t *testing.T) {
	withServer(t, func(env *testServerEnv) {
		env.Engine.StartFlow(flows.Claim)
		res := env.session(env.do(http.MethodPost, "/api/flows/cancel", nil))
		assert.Nil(t, res.State)
		assert.Len(t, res.History, 1)

		env.Engine.StartFlow(flows.Family)
		res = env.session(env.do(http.MethodPost, "/api/flows/complete", nil))
		assert.True(t, res.State.IsComplete)
		assert.Equal(t, []api.FlowID{flows.Family}, res.CompletedFlows)
	})
}

func TestAskExplore(t *testing.T) {
	withServer(t, func(env *testServerEnv) {
		w := env.do(http.MethodPost, "/api/ask",
			api.AskRequest{Question: "What does Smirk cover?"})
		require.Equal(t, http.StatusOK, w.Code)

		var res api.AskResponse
		decode(t, w, &res)
		assert.True(t, res.Matched)
		assert.Contains(t, res.Answer, "preventive care at 100%")
		require.Len(t, res.Session.History, 1)
		entry := res.Session.History[0]
		assert.Equal(t, api.EntryQA, entry.Type)
		assert.False(t, entry.IsTaskClarification)

		w = env.do(http.MethodPost, "/api/ask",
			api.AskRequest{Question: "Do you cover my cat?"})
		decode(t, w, &res)
		assert.False(t, res.Matched)
		assert.Equal(t,
			"I can help you with that. What specific information do you need?",
			res.Answer)
	})
}

func TestAskDuringFlow(t *testing.T) {
	withServer(t, func(env *testServerEnv) {
		env.Engine.StartFlow(flows.Booking)

		w := env.do(http.MethodPost, "/api/ask",
			api.AskRequest{Question: "What counts as a dental emergency?"})
		var res api.AskResponse
		decode(t, w, &res)
		assert.True(t, res.Matched)
		assert.Contains(t, res.Answer, "Severe pain")

		last := res.Session.History[len(res.Session.History)-1]
		assert.True(t, last.IsTaskClarification)
		assert.Equal(t, api.StepID("reason"), res.Session.State.CurrentStep)

		w = env.do(http.MethodPost, "/api/ask", api.AskRequest{Question: " "})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestExploreQuestions(t *testing.T) {
	withServer(t, func(env *testServerEnv) {
		w := env.do(http.MethodGet, "/api/explore?topic=coverage", nil)
		var res api.SuggestionsResponse
		decode(t, w, &res)
		require.NotEmpty(t, res.Suggestions)
		assert.Equal(t, "What preventive care is covered?",
			res.Suggestions[0].Text)

		w = env.do(http.MethodGet, "/api/explore", nil)
		var initial api.SuggestionsResponse
		decode(t, w, &initial)

		repo, err := content.NewDefaultRepository()
		require.NoError(t, err)
		assert.Equal(t, repo.GetExploreQuestions(content.TopicInitial),
			initial.Suggestions)
	})
}

func TestQAAndConversation(t *testing.T) {
	withServer(t, func(env *testServerEnv) {
		for _, q := range []string{"a", "b", "c"} {
			w := env.do(http.MethodPost, "/api/qa",
				api.QARequest{Question: q, Answer: q})
			require.Equal(t, http.StatusOK, w.Code)
		}

		w := env.do(http.MethodPost, "/api/qa", api.QARequest{})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		res := env.session(env.do(http.MethodPost, "/api/conversation/truncate",
			api.TruncateRequest{Index: 0}))
		assert.Len(t, res.History, 1)

		w = env.do(http.MethodGet, "/api/history", nil)
		var history api.HistoryResponse
		decode(t, w, &history)
		assert.Equal(t, 1, history.Count)
		assert.Equal(t, "a", history.Entries[0].Question)

		env.Engine.StartFlow(flows.Booking)
		res = env.session(env.do(http.MethodDelete, "/api/conversation", nil))
		assert.Nil(t, res.State)
		assert.Empty(t, res.History)
	})
}

func TestQuestionsEndpoint(t *testing.T) {
	withServer(t, func(env *testServerEnv) {
		env.Engine.StartFlow(flows.Claim)
		w := env.do(http.MethodGet, "/api/questions", nil)
		var res api.QuestionsResponse
		decode(t, w, &res)
		assert.Equal(t, 3, res.Count)
		assert.Equal(t, "What info do I need from my receipt?", res.Questions[0])
	})
}

func TestUserLookups(t *testing.T) {
	withServer(t, func(env *testServerEnv) {
		w := env.do(http.MethodGet, "/api/user/profile", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var profile content.UserProfile
		decode(t, w, &profile)
		assert.Equal(t, "John Doe", profile.Name)

		for _, path := range []string{
			"/api/user/appointments", "/api/user/claims", "/api/user/family",
		} {
			w = env.do(http.MethodGet, path, nil)
			assert.Equal(t, http.StatusOK, w.Code, path)
		}
	})
}

func TestProcessingThroughAPI(t *testing.T) {
	withServer(t, func(env *testServerEnv) {
		env.do(http.MethodPost, "/api/flows/start",
			api.StartFlowRequest{FlowID: flows.Claim})
		res := env.session(env.do(http.MethodPost, "/api/choice",
			api.ChoiceRequest{Choice: api.Choice{ID: "upload", Label: "Upload"}}))
		assert.True(t, res.IsProcessing)
		assert.False(t, res.CanGoBack)

		assert.Eventually(t, func() bool {
			s := env.session(env.do(http.MethodGet, "/api/session", nil))
			return s.State != nil && s.State.IsComplete
		}, 2*time.Second, 5*time.Millisecond)
	})
}

func withServer(t *testing.T, fn func(*testServerEnv)) {
	t.Helper()
	withConfiguredServer(t, nil, fn)
}

func withConfiguredServer(
	t *testing.T, mod func(*config.Config), fn func(*testServerEnv),
) {
	t.Helper()
	cfg := helpers.NewTestConfig()
	if mod != nil {
		mod(cfg)
	}
	env := helpers.NewTestEngineWithConfig(t, cfg)
	defer env.Cleanup()

	m := metrics.New(metrics.WithActionIDs(env.Repo.ActionIDs()...))
	m.Attach(env.Hub)
	srv := server.NewServer(env.Engine, env.Repo, env.Stream,
		server.WithMetrics(m.Handler()),
		server.WithVersion("test"),
	)
	defer srv.CloseWebSockets()

	fn(&testServerEnv{
		TestEngineEnv: env,
		T:             t,
		Server:        srv,
		Router:        srv.SetupRoutes(),
		Metrics:       m,
	})
}

func (e *testServerEnv) do(
	method, path string, body any,
) *httptest.ResponseRecorder {
	var data []byte
	if body != nil {
		data, _ = json.Marshal(body)
	}
	return e.raw(method, path, data)
}

func (e *testServerEnv) raw(
	method, path string, body []byte,
) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

func (e *testServerEnv) session(
	w *httptest.ResponseRecorder,
) api.SessionResponse {
	e.T.Helper()
	require.Equal(e.T, http.StatusOK, w.Code, w.Body.String())
	var res api.SessionResponse
	decode(e.T, w, &res)
	return res
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst))
}
