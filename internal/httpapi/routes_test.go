package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/veto-bracket-backend/internal/hub"
	"github.com/DoyleJ11/veto-bracket-backend/internal/lobby"
	"github.com/DoyleJ11/veto-bracket-backend/internal/metrics"
	"github.com/DoyleJ11/veto-bracket-backend/internal/tournament"
	"github.com/DoyleJ11/veto-bracket-backend/internal/types"
	"github.com/DoyleJ11/veto-bracket-backend/internal/veto"
)

const vetoBody = `{
	"seriesId": "S1",
	"settings": {
		"mapPool": [{"id": "dust", "name": "Dust"}, {"id": "mirage", "name": "Mirage"}],
		"sequence": [
			{"action": "ban", "mapActor": "teamA", "sideActor": null},
			{"action": "decider", "mapActor": null, "sideActor": null}
		]
	},
	"passwords": {"teamA": "alpha", "teamB": "bravo", "host": "hosty"}
}`

type result struct {
	OK      bool            `json:"ok"`
	Value   json.RawMessage `json:"value"`
	Kind    string          `json:"kind"`
	Message string          `json:"message"`
}

func newServer(t *testing.T, hashed bool) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	var checker veto.PasswordChecker = veto.PlainChecker{}
	if hashed {
		checker = veto.BcryptChecker{}
	}
	rec := metrics.NewRecorder()
	h := hub.NewHub(ctx, lobby.Options{Machine: veto.Machine{Checker: checker}, Metrics: rec})
	reg := tournament.NewRegistry(tournament.NewMemoryRepository(), nil, rec)

	srv := httptest.NewServer(SetupRoutes(Deps{Hub: h, Tournaments: reg, Metrics: rec, HashPasswords: hashed}))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) (int, result) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var res result
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	}
	return resp.StatusCode, res
}

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode()
	require.NoError(t, err)
	assert.Len(t, code, 6)
	for _, c := range code {
		assert.True(t, (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9'), "unexpected rune %q", c)
	}
}

func TestVetoLifecycle(t *testing.T) {
	srv := newServer(t, false)

	status, res := do(t, http.MethodPost, srv.URL+"/vetos", vetoBody)
	require.Equal(t, http.StatusCreated, status)
	assert.True(t, res.OK)
	assert.JSONEq(t, `{"seriesId":"S1"}`, string(res.Value))

	status, res = do(t, http.MethodPost, srv.URL+"/vetos", vetoBody)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, types.KindConflict, res.Kind)

	status, res = do(t, http.MethodGet, srv.URL+"/vetos/S1", "")
	require.Equal(t, http.StatusOK, status)
	var view struct {
		Version int          `json:"version"`
		Session veto.Session `json:"session"`
	}
	require.NoError(t, json.Unmarshal(res.Value, &view))
	assert.Equal(t, "S1", view.Session.SeriesID)
	assert.Len(t, view.Session.Sequence, 2)
	assert.False(t, view.Session.Started)
	assert.NotContains(t, string(res.Value), "alpha", "passwords never leave the server")

	status, _ = do(t, http.MethodDelete, srv.URL+"/vetos/S1", "")
	assert.Equal(t, http.StatusNoContent, status)

	status, res = do(t, http.MethodGet, srv.URL+"/vetos/S1", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, types.KindNotFound, res.Kind)

	status, _ = do(t, http.MethodDelete, srv.URL+"/vetos/S1", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCreateVeto_GeneratesSeriesID(t *testing.T) {
	srv := newServer(t, true)

	body := strings.Replace(vetoBody, `"seriesId": "S1",`, "", 1)
	status, res := do(t, http.MethodPost, srv.URL+"/vetos", body)
	require.Equal(t, http.StatusCreated, status)

	var created map[string]string
	require.NoError(t, json.Unmarshal(res.Value, &created))
	assert.Len(t, created["seriesId"], 6)
}

func TestCreateVeto_Rejections(t *testing.T) {
	srv := newServer(t, false)

	status, res := do(t, http.MethodPost, srv.URL+"/vetos", `{"settings":`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, types.KindBadRequest, res.Kind)

	status, res = do(t, http.MethodPost, srv.URL+"/vetos", `{"seriesId":"S2","settings":{"sequence":[{"action":"skip"}]}}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "ValidationError", res.Kind)
}

func TestTournamentRoutes(t *testing.T) {
	srv := newServer(t, false)

	status, res := do(t, http.MethodGet, srv.URL+"/tournaments/t1/brackets", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, types.KindNotFound, res.Kind)

	matches := `[
		{"id": 1, "round": 1, "teamA": {"id": 10}, "teamB": {"id": 11}},
		{"id": 2, "round": 1, "teamA": {"id": 12}, "teamB": {"id": 13}},
		{"id": 3, "round": 2, "teamA": {"prereqMatchId": 1}, "teamB": {"prereqMatchId": 2}}
	]`
	status, res = do(t, http.MethodPut, srv.URL+"/tournaments/t1/matches", matches)
	require.Equal(t, http.StatusOK, status, res.Message)
	assert.JSONEq(t, `{"version":1}`, string(res.Value))

	status, res = do(t, http.MethodPost, srv.URL+"/tournaments/t1/matches/1/result", `{"winnerId": 10, "scores": ["2-0"]}`)
	require.Equal(t, http.StatusOK, status, res.Message)
	var diff tournament.Diff
	require.NoError(t, json.Unmarshal(res.Value, &diff))
	require.Contains(t, diff.Affected, int64(3))
	assert.Equal(t, int64(10), diff.Affected[3].ID)
	assert.Equal(t, 2, diff.Version)

	status, res = do(t, http.MethodPost, srv.URL+"/tournaments/t1/matches/99/result", `{"winnerId": 10}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "MatchNotFound", res.Kind)

	status, _ = do(t, http.MethodPost, srv.URL+"/tournaments/t1/matches/abc/result", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, res = do(t, http.MethodGet, srv.URL+"/tournaments/t1/brackets", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(res.Value), `"upper"`)

	status, _ = do(t, http.MethodPut, srv.URL+"/tournaments/t1/matches", `[{"id":1,"round":1},{"id":1,"round":2}]`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHealthzAndMetrics(t *testing.T) {
	srv := newServer(t, false)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWebsocketJoin(t *testing.T) {
	srv := newServer(t, false)
	status, _ := do(t, http.MethodPost, srv.URL+"/vetos", vetoBody)
	require.Equal(t, http.StatusCreated, status)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?seriesId=S1"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	join := `{"type":"join","requestId":"r1","actorType":"teamA","password":"alpha","name":"Alpha"}`
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(join)))

	var joined bool
	for !joined {
		_, data, err := conn.Read(ctx)
		require.NoError(t, err)

		var msg types.ServerMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		switch msg.Type {
		case "result":
			require.Equal(t, "r1", msg.RequestID)
			require.True(t, msg.Result.OK, msg.Result.Message)
		case "state":
			if veto.ContainsEvent(msg.Events, veto.EvtActorJoined) {
				require.Len(t, msg.State.Actors, 1)
				assert.Equal(t, "Alpha", msg.State.Actors[0].Name)
				joined = true
			}
		}
	}

	_, _, err = websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws?seriesId=nope", nil)
	assert.Error(t, err)
}
