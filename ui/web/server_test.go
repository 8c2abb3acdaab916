package web

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/go-cmp/cmp"

	"github.com/segin/webchess-sub002/src"
	"github.com/segin/webchess-sub002/src/logic/convert/convjson"
	"github.com/segin/webchess-sub002/src/logic/integrity"
	"github.com/segin/webchess-sub002/src/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.OpenInMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func request(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	resp.Body.Close()
	return resp, data
}

func createGame(t *testing.T, app *fiber.App, body any) string {
	t.Helper()
	resp, data := request(t, app, "POST", "/api/games", body)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("create returned %d: %s", resp.StatusCode, data)
	}
	var out struct {
		ID    string            `json:"id"`
		State convjson.Snapshot `json:"state"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if out.ID == "" {
		t.Fatal("create returned no id")
	}
	return out.ID
}

func moveBody(t *testing.T, lan string) src.MoveRequest {
	t.Helper()
	req, err := src.ParseMoveRequest(lan)
	if err != nil {
		t.Fatalf("parse %q: %v", lan, err)
	}
	return req
}

func TestHealthz(t *testing.T) {
	s := NewServer(openStore(t), nil)
	resp, data := request(t, s.App(), "GET", "/healthz", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("healthz returned %d", resp.StatusCode)
	}
	if !strings.Contains(string(data), `"ok"`) {
		t.Fatalf("healthz body = %s", data)
	}
}

func TestCreateMoveFetch(t *testing.T) {
	s := NewServer(openStore(t), nil)
	id := createGame(t, s.App(), map[string]string{"name": "first"})

	resp, data := request(t, s.App(), "POST", "/api/games/"+id+"/moves", moveBody(t, "e2e4"))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("move returned %d: %s", resp.StatusCode, data)
	}
	var res src.Result
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatal(err)
	}
	if !res.Success || res.Data == nil || res.Data.Turn != "black" {
		t.Fatalf("move result %+v", res)
	}

	resp, data = request(t, s.App(), "GET", "/api/games/"+id, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("state returned %d", resp.StatusCode)
	}
	var snap convjson.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatal(err)
	}
	if snap.Turn != "black" || len(snap.History) != 1 || snap.History[0].Notation != "e4" {
		t.Fatalf("fetched state turn=%s history=%+v", snap.Turn, snap.History)
	}
}

func TestMoveRejection(t *testing.T) {
	s := NewServer(openStore(t), nil)
	id := createGame(t, s.App(), nil)

	resp, data := request(t, s.App(), "POST", "/api/games/"+id+"/moves", moveBody(t, "e2e5"))
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("rejection returned %d: %s", resp.StatusCode, data)
	}
	var res src.Result
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatal(err)
	}
	if res.Success || res.ErrorCode != "MovementError" {
		t.Fatalf("rejection result %+v", res)
	}

	_, after := request(t, s.App(), "GET", "/api/games/"+id, nil)
	var snap convjson.Snapshot
	if err := json.Unmarshal(after, &snap); err != nil {
		t.Fatal(err)
	}
	if snap.Turn != "white" || len(snap.History) != 0 {
		t.Fatalf("state changed by a rejected move: %+v", snap)
	}

	resp, data = request(t, s.App(), "POST", "/api/games/"+id+"/moves",
		json.RawMessage(`{"to":{"row":4,"col":4}}`))
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("half-formed move returned %d: %s", resp.StatusCode, data)
	}
	var half src.Result
	if err := json.Unmarshal(data, &half); err != nil {
		t.Fatal(err)
	}
	if half.ErrorCode != "FormatError" {
		t.Fatalf("half-formed move code = %s (%s), want FormatError", half.ErrorCode, half.Message)
	}

	resp, _ = request(t, s.App(), "POST", "/api/games/does-not-exist/moves", moveBody(t, "e2e4"))
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("unknown game returned %d", resp.StatusCode)
	}
}

func TestLegalEndpoint(t *testing.T) {
	s := NewServer(openStore(t), nil)
	id := createGame(t, s.App(), nil)

	resp, data := request(t, s.App(), "GET", "/api/games/"+id+"/legal?from=g1", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("legal returned %d", resp.StatusCode)
	}
	var out struct {
		Moves []string `json:"moves"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	sort.Strings(out.Moves)
	if diff := cmp.Diff([]string{"g1f3", "g1h3"}, out.Moves); diff != "" {
		t.Errorf("knight moves differ (-want +got):\n%s", diff)
	}

	_, data = request(t, s.App(), "GET", "/api/games/"+id+"/legal", nil)
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Moves) != 20 {
		t.Errorf("initial position lists %d moves, want 20", len(out.Moves))
	}

	resp, _ = request(t, s.App(), "GET", "/api/games/"+id+"/legal?from=zz", nil)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("bad square returned %d", resp.StatusCode)
	}
}

func TestUndoRedoEndpoints(t *testing.T) {
	s := NewServer(openStore(t), nil)
	id := createGame(t, s.App(), nil)
	request(t, s.App(), "POST", "/api/games/"+id+"/moves", moveBody(t, "e2e4"))

	resp, data := request(t, s.App(), "POST", "/api/games/"+id+"/undo", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("undo returned %d: %s", resp.StatusCode, data)
	}
	var snap convjson.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatal(err)
	}
	if snap.Turn != "white" || len(snap.History) != 0 {
		t.Fatalf("undone state %+v", snap)
	}

	resp, _ = request(t, s.App(), "POST", "/api/games/"+id+"/undo", nil)
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("undo past the start returned %d", resp.StatusCode)
	}

	resp, data = request(t, s.App(), "POST", "/api/games/"+id+"/redo", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("redo returned %d", resp.StatusCode)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatal(err)
	}
	if snap.Turn != "black" {
		t.Fatalf("redone state turn = %s", snap.Turn)
	}

	resp, _ = request(t, s.App(), "POST", "/api/games/"+id+"/redo", nil)
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("redo past the end returned %d", resp.StatusCode)
	}
}

func TestDeleteEndpoint(t *testing.T) {
	s := NewServer(openStore(t), nil)
	id := createGame(t, s.App(), nil)

	resp, _ := request(t, s.App(), "DELETE", "/api/games/"+id, nil)
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("delete returned %d", resp.StatusCode)
	}
	resp, _ = request(t, s.App(), "GET", "/api/games/"+id, nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("deleted game still answers %d", resp.StatusCode)
	}
	resp, _ = request(t, s.App(), "DELETE", "/api/games/"+id, nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("second delete returned %d", resp.StatusCode)
	}
}

func TestListEndpoint(t *testing.T) {
	s := NewServer(openStore(t), nil)
	createGame(t, s.App(), map[string]string{"name": "one"})
	createGame(t, s.App(), map[string]string{"name": "two"})

	resp, data := request(t, s.App(), "GET", "/api/games", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("list returned %d", resp.StatusCode)
	}
	var out struct {
		Games []store.GameInfo `json:"games"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Games) != 2 {
		t.Fatalf("listed %d games, want 2", len(out.Games))
	}
}

func TestListWithoutStore(t *testing.T) {
	gm := NewGameManager(nil, nil)
	first, _, err := gm.Create("first", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := gm.Create("second", ""); err != nil {
		t.Fatal(err)
	}
	if res, err := gm.Move(first, moveBody(t, "e2e4")); err != nil || !res.Success {
		t.Fatalf("move: err=%v result=%+v", err, res)
	}

	infos, err := gm.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 2 {
		t.Fatalf("listed %d games, want 2", len(infos))
	}
	byID := make(map[string]store.GameInfo, len(infos))
	for _, info := range infos {
		byID[info.ID] = info
	}
	if got := byID[first]; got.Name != "first" || got.Moves != 1 || got.Turn != "black" {
		t.Fatalf("moved game summarized as %+v", got)
	}
}

func TestValidateEndpoint(t *testing.T) {
	s := NewServer(openStore(t), nil)
	id := createGame(t, s.App(), nil)
	_, stateData := request(t, s.App(), "GET", "/api/games/"+id, nil)

	resp, data := request(t, s.App(), "POST", "/api/validate", json.RawMessage(stateData))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("validate returned %d", resp.StatusCode)
	}
	var report integrity.Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatal(err)
	}
	if !report.Success || len(report.Errors) != 0 {
		t.Fatalf("sound state reported %+v", report)
	}

	var snap convjson.Snapshot
	if err := json.Unmarshal(stateData, &snap); err != nil {
		t.Fatal(err)
	}
	snap.Board[0][4] = nil
	snap.Board[7][4] = nil
	_, data = request(t, s.App(), "POST", "/api/validate", snap)
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatal(err)
	}
	if report.Success || len(report.Errors) == 0 {
		t.Fatalf("kingless state reported %+v", report)
	}
	if !strings.Contains(strings.Join(report.Errors, " "), "king") {
		t.Errorf("errors %v do not name the missing kings", report.Errors)
	}
}

func TestDiagramEndpoint(t *testing.T) {
	s := NewServer(openStore(t), nil)
	id := createGame(t, s.App(), nil)

	resp, data := request(t, s.App(), "GET", "/api/games/"+id+"/diagram.png", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("diagram returned %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type = %q", ct)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if img.Bounds().Dx() != 540 {
		t.Errorf("diagram width = %d, want 540", img.Bounds().Dx())
	}

	_, data = request(t, s.App(), "GET", "/api/games/"+id+"/diagram.png?size=30&coords=false", nil)
	img, err = png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode small png: %v", err)
	}
	if img.Bounds().Dx() != 240 {
		t.Errorf("small diagram width = %d, want 240", img.Bounds().Dx())
	}
}

func TestSurvivesRestart(t *testing.T) {
	st := openStore(t)

	s1 := NewServer(st, nil)
	id := createGame(t, s1.App(), map[string]string{"name": "long-running"})
	resp, data := request(t, s1.App(), "POST", "/api/games/"+id+"/moves", moveBody(t, "e2e4"))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("move returned %d: %s", resp.StatusCode, data)
	}

	s2 := NewServer(st, nil)
	resp, data = request(t, s2.App(), "GET", "/api/games/"+id, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("revived state returned %d: %s", resp.StatusCode, data)
	}
	var snap convjson.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatal(err)
	}
	if snap.Turn != "black" || len(snap.History) != 1 {
		t.Fatalf("revived state %+v", snap)
	}

	resp, _ = request(t, s2.App(), "POST", "/api/games/"+id+"/moves", moveBody(t, "e7e5"))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("move on revived game returned %d", resp.StatusCode)
	}
}

func TestCreateFromFEN(t *testing.T) {
	s := NewServer(openStore(t), nil)

	resp, data := request(t, s.App(), "POST", "/api/games",
		map[string]string{"fen": "k7/2Q5/1K6/8/8/8/8/8 b - - 0 1"})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("create from fen returned %d: %s", resp.StatusCode, data)
	}
	var out struct {
		ID    string            `json:"id"`
		State convjson.Snapshot `json:"state"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.State.Status != "stalemate" {
		t.Fatalf("status = %q, want stalemate", out.State.Status)
	}

	resp, data = request(t, s.App(), "POST", "/api/games/"+out.ID+"/moves", moveBody(t, "a8a7"))
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("move in a finished game returned %d: %s", resp.StatusCode, data)
	}
	var res src.Result
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatal(err)
	}
	if res.ErrorCode != "StateError" {
		t.Fatalf("error code = %s, want StateError", res.ErrorCode)
	}

	resp, _ = request(t, s.App(), "POST", "/api/games", map[string]string{"fen": "garbage"})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("garbage fen returned %d", resp.StatusCode)
	}
}
