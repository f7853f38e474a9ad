package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"battleship/internal/app"
	"battleship/internal/codec"
	"battleship/internal/game"
	"battleship/internal/merkle"
	"battleship/internal/zk"
)

func testConfig() app.Config {
	cfg := app.DefaultConfig()
	cfg.Seed = 21
	return cfg
}

func newTestServer(t *testing.T, cfg app.Config, prover *zk.Prover) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(New(cfg, prover, zerolog.Nop()).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return resp.StatusCode
}

func createGame(t *testing.T, ts *httptest.Server) codec.GameView {
	t.Helper()
	var g codec.GameView
	if code := doJSON(t, http.MethodPost, ts.URL+"/v1/games", nil, &g); code != http.StatusCreated {
		t.Fatalf("create: status %d", code)
	}
	return g
}

func TestCreateAndStatus(t *testing.T) {
	ts := newTestServer(t, testConfig(), nil)
	g := createGame(t, ts)
	if g.ID == "" {
		t.Fatal("expected a game id")
	}
	if g.Status != app.StatusAwaitingHumanInput.String() {
		t.Fatalf("unexpected status %q", g.Status)
	}
	if g.Commitment != nil {
		t.Fatal("no commitment without a prover")
	}
	if g.Boards.Own[0] != "S S S ~ ~ ~ ~ ~ ~ ~" {
		t.Fatalf("unexpected own board row %q", g.Boards.Own[0])
	}
	if g.Boards.Enemy[0] != "~ ~ ~ ~ ~ ~ ~ ~ ~ ~" {
		t.Fatalf("enemy ships should be hidden, got %q", g.Boards.Enemy[0])
	}

	var got codec.GameView
	if code := doJSON(t, http.MethodGet, ts.URL+"/v1/games/"+g.ID, nil, &got); code != http.StatusOK {
		t.Fatalf("status: %d", code)
	}
	if got.ID != g.ID {
		t.Fatalf("expected id %s, got %s", g.ID, got.ID)
	}

	if code := doJSON(t, http.MethodGet, ts.URL+"/v1/games/nope", nil, nil); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
}

func TestAttackUntilWin(t *testing.T) {
	ts := newTestServer(t, testConfig(), nil)
	g := createGame(t, ts)
	url := ts.URL + "/v1/games/" + g.ID + "/attack"

	want := []string{"Hit", "Hit", "Hit and sunk!"}
	var last codec.RoundView
	for i, col := range []int{0, 1, 2} {
		var r codec.RoundView
		if code := doJSON(t, http.MethodPost, url, codec.AttackRequest{Row: 0, Col: col}, &r); code != http.StatusOK {
			t.Fatalf("attack %d: status %d", i, code)
		}
		if r.Human.Outcome != want[i] {
			t.Fatalf("attack %d: expected %q, got %q", i, want[i], r.Human.Outcome)
		}
		last = r
	}
	if last.Status != app.StatusHumanWins.String() {
		t.Fatalf("expected human win, got %q", last.Status)
	}
	if last.CPU != nil {
		t.Fatal("cpu must not move after the winning shot")
	}
	if !strings.Contains(last.Boards.Enemy[0], "X X X") {
		t.Fatalf("expected hits on enemy board, got %q", last.Boards.Enemy[0])
	}

	var conflict map[string]any
	if code := doJSON(t, http.MethodPost, url, codec.AttackRequest{Row: 5, Col: 5}, &conflict); code != http.StatusConflict {
		t.Fatalf("expected 409 after game over, got %d", code)
	}
}

func TestAttackInvalidInput(t *testing.T) {
	ts := newTestServer(t, testConfig(), nil)
	g := createGame(t, ts)
	url := ts.URL + "/v1/games/" + g.ID + "/attack"

	var e codec.ErrorResponse
	if code := doJSON(t, http.MethodPost, url, codec.AttackRequest{Row: 10, Col: 0}, &e); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	if e.Code != game.CodeInvalidInput.String() {
		t.Fatalf("expected invalid input code, got %q", e.Code)
	}

	resp, err := http.Post(url, "application/json", strings.NewReader("abc"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad json, got %d", resp.StatusCode)
	}

	var after codec.GameView
	doJSON(t, http.MethodGet, ts.URL+"/v1/games/"+g.ID, nil, &after)
	if after.Rounds != 0 {
		t.Fatalf("invalid input consumed a round: %d", after.Rounds)
	}
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, testConfig(), nil)
	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/v1/games", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("missing CORS header")
	}
}

func TestWebSocketPlay(t *testing.T) {
	ts := newTestServer(t, testConfig(), nil)
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/play"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var transcript strings.Builder
	readUntil := func(marker string) {
		t.Helper()
		for !strings.Contains(transcript.String(), marker) {
			_, data, err := conn.ReadMessage()
			if err != nil {
				t.Fatalf("read (waiting for %q): %v\n%s", marker, err, transcript.String())
			}
			transcript.Write(data)
		}
	}

	readUntil("Enter attack coordinates")
	for _, line := range []string{"abc", "0 0", "0 1", "0 2"} {
		transcript.Reset()
		if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
			t.Fatalf("write: %v", err)
		}
		if line == "0 2" {
			readUntil("You won!")
			break
		}
		readUntil("Enter attack coordinates")
		if line == "abc" && !strings.Contains(transcript.String(), "Invalid input") {
			t.Fatalf("expected invalid input message:\n%s", transcript.String())
		}
	}
}

func TestVerifyEndpoint(t *testing.T) {
	if testing.Short() {
		t.Skip("groth16 setup is slow")
	}
	cfg := app.Config{
		BoardSize: 2,
		Fleet:     []app.ShipSpec{{Length: 1, Orientation: game.Vertical}},
		Seed:      4,
	}
	p, err := zk.Setup(t.TempDir(), merkle.DepthFor(4))
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	ts := newTestServer(t, cfg, p)
	g := createGame(t, ts)
	if g.Commitment == nil || g.Commitment.VKB64 == "" {
		t.Fatal("expected commitment with verifying key")
	}

	var r codec.RoundView
	if code := doJSON(t, http.MethodPost, ts.URL+"/v1/games/"+g.ID+"/attack", codec.AttackRequest{Row: 0, Col: 0}, &r); code != http.StatusOK {
		t.Fatalf("attack: %d", code)
	}
	if r.Human.Proof == nil {
		t.Fatal("expected proof")
	}

	req := codec.VerifyRequest{
		RootHex: g.Commitment.RootHex,
		VKB64:   g.Commitment.VKB64,
		Size:    2,
		Row:     0,
		Col:     0,
		Payload: *r.Human.Proof,
	}
	var res codec.VerifyResponse
	if code := doJSON(t, http.MethodPost, ts.URL+"/v1/verify", req, &res); code != http.StatusOK {
		t.Fatalf("verify: %d", code)
	}
	if !res.Valid || res.Hit != 1 {
		t.Fatalf("expected valid hit, got %+v", res)
	}

	req.Col = 1
	res = codec.VerifyResponse{}
	doJSON(t, http.MethodPost, ts.URL+"/v1/verify", req, &res)
	if res.Valid {
		t.Fatal("proof must not verify for another cell")
	}
}

func TestVerifyRejectsBadGeometry(t *testing.T) {
	ts := newTestServer(t, testConfig(), nil)
	for name, req := range map[string]codec.VerifyRequest{
		"huge size":     {RootHex: "0x1", VKB64: "AA==", Size: 2247483648},
		"above limit":   {RootHex: "0x1", VKB64: "AA==", Size: app.MaxVerifySize + 1},
		"negative col":  {RootHex: "0x1", VKB64: "AA==", Size: 10, Row: 1, Col: -1},
		"col past edge": {RootHex: "0x1", VKB64: "AA==", Size: 10, Col: 10},
	} {
		var e codec.ErrorResponse
		if code := doJSON(t, http.MethodPost, ts.URL+"/v1/verify", req, &e); code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, code)
		}
		if e.Error == "" {
			t.Fatalf("%s: expected an error message", name)
		}
	}
}

func TestSessionCapEvictsFinishedGames(t *testing.T) {
	srv := New(testConfig(), nil, zerolog.Nop())
	srv.MaxSessions = 1
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	first := createGame(t, ts)
	var e codec.ErrorResponse
	if code := doJSON(t, http.MethodPost, ts.URL+"/v1/games", nil, &e); code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 while the only game runs, got %d", code)
	}

	for _, col := range []int{0, 1, 2} {
		if code := doJSON(t, http.MethodPost, ts.URL+"/v1/games/"+first.ID+"/attack", codec.AttackRequest{Row: 0, Col: col}, nil); code != http.StatusOK {
			t.Fatalf("attack: status %d", code)
		}
	}

	second := createGame(t, ts)
	if second.ID == first.ID {
		t.Fatal("expected a new game id")
	}
	if code := doJSON(t, http.MethodGet, ts.URL+"/v1/games/"+first.ID, nil, nil); code != http.StatusNotFound {
		t.Fatalf("finished game should be evicted, got %d", code)
	}
	if code := doJSON(t, http.MethodGet, ts.URL+"/v1/games/"+second.ID, nil, nil); code != http.StatusOK {
		t.Fatalf("new game missing: %d", code)
	}
}
