package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/xuri/excelize/v2"

	"github.com/robalobadob/hanzi-game/internal/config"
	"github.com/robalobadob/hanzi-game/internal/daily"
	"github.com/robalobadob/hanzi-game/internal/db"
	"github.com/robalobadob/hanzi-game/internal/game"
	"github.com/robalobadob/hanzi-game/internal/history"
	"github.com/robalobadob/hanzi-game/internal/kv"
	"github.com/robalobadob/hanzi-game/internal/metrics"
	"github.com/robalobadob/hanzi-game/internal/prefs"
	"github.com/robalobadob/hanzi-game/internal/progress"
	"github.com/robalobadob/hanzi-game/internal/store"
	"github.com/robalobadob/hanzi-game/internal/users"
	"github.com/robalobadob/hanzi-game/internal/words"
)

// firstPicker always takes the first word of a pool (人 for level1).
type firstPicker struct{}

func (firstPicker) Intn(int) int { return 0 }

type testEnv struct {
	srv  *httptest.Server
	conn *sqlx.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	catalog, err := words.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	conn, err := db.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := db.Migrate(context.Background(), conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	kvStore := kv.NewMemory()
	cfg := config.Config{
		JWTSecret:      "test_secret",
		JWTExpiresDays: 14,
		CookieName:     "hanzi_token",
		ClientOrigin:   "http://localhost:5173",
		DailySalt:      "salt",
	}
	s := New(cfg, Deps{
		Catalog:  catalog,
		Sessions: store.NewMemoryStore(),
		Progress: progress.NewService(kvStore, progress.NewTracker(catalog, time.UTC), nil),
		Prefs:    prefs.NewStore(kvStore),
		Users:    users.NewRepo(conn),
		History:  history.NewRepo(conn),
		Metrics:  metrics.New(),
		Picker:   firstPicker{},
	})
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, conn: conn}
}

// client returns an HTTP client with its own cookie jar (one player).
func (e *testEnv) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("jar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func do(t *testing.T, c *http.Client, base, method, path string, body any, out any) int {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, base+path, rd)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := c.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return res.StatusCode
}

func TestHealthAndNotFound(t *testing.T) {
	e := newTestEnv(t)
	c := e.client(t)
	var health map[string]bool
	if code := do(t, c, e.srv.URL, "GET", "/health", nil, &health); code != 200 || !health["ok"] {
		t.Fatalf("expected ok, got %d %v", code, health)
	}
	var nf map[string]string
	if code := do(t, c, e.srv.URL, "GET", "/nope", nil, &nf); code != 404 || nf["error"] != "not_found" {
		t.Fatalf("expected not_found, got %d %v", code, nf)
	}
}

func TestGuestGameFlow(t *testing.T) {
	e := newTestEnv(t)
	c := e.client(t)

	var g gameRes
	if code := do(t, c, e.srv.URL, "POST", "/game/new", nil, &g); code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", code)
	}
	if g.State.Status != game.StatusPlaying || g.Word == nil || g.Word.Word != "人" {
		t.Fatalf("unexpected new game %+v", g)
	}
	if g.Sound != "/sounds/game-start.mp3" {
		t.Fatalf("expected start cue, got %q", g.Sound)
	}

	var ans answerRes
	do(t, c, e.srv.URL, "POST", "/game/"+g.ID+"/answer", map[string]string{"answer": " 人 "}, &ans)
	if ans.Result.Outcome != game.OutcomeCorrect || ans.Result.Points != 10 || ans.TotalScore != 10 {
		t.Fatalf("expected correct for 10 points, got %+v", ans)
	}
	if ans.Game.State.Score != 10 || ans.Game.State.CorrectAnswers != 1 {
		t.Fatalf("unexpected state after correct answer %+v", ans.Game.State)
	}

	do(t, c, e.srv.URL, "POST", "/game/"+g.ID+"/answer", map[string]string{"answer": "日"}, &ans)
	if ans.Result.Outcome != game.OutcomeIncorrect || ans.Game.State.WrongAnswers != 1 || ans.TotalScore != 10 {
		t.Fatalf("expected incorrect, got %+v", ans)
	}

	var hint hintRes
	do(t, c, e.srv.URL, "POST", "/game/"+g.ID+"/hint", nil, &hint)
	if hint.Hint != "每天都能看到的生物" || hint.RemainingHints != 2 {
		t.Fatalf("unexpected hint %+v", hint)
	}

	if code := do(t, c, e.srv.URL, "POST", "/game/"+g.ID+"/pause", nil, nil); code != 200 {
		t.Fatalf("expected pause ok, got %d", code)
	}
	if code := do(t, c, e.srv.URL, "POST", "/game/"+g.ID+"/pause", nil, nil); code != http.StatusConflict {
		t.Fatalf("expected 409 on double pause, got %d", code)
	}
	if code := do(t, c, e.srv.URL, "POST", "/game/"+g.ID+"/resume", nil, nil); code != 200 {
		t.Fatalf("expected resume ok, got %d", code)
	}

	do(t, c, e.srv.URL, "POST", "/game/"+g.ID+"/end", nil, &g)
	if g.State.Status != game.StatusCompleted || g.State.EndTime == nil {
		t.Fatalf("expected completed, got %+v", g.State)
	}

	var sum progress.Summary
	do(t, c, e.srv.URL, "GET", "/progress", nil, &sum)
	if sum.TotalScore != 10 || len(sum.LearnedWords) != 1 || sum.LearnedWords[0].Word != "人" {
		t.Fatalf("unexpected progress %+v", sum)
	}
}

func TestChallengeScoring(t *testing.T) {
	e := newTestEnv(t)
	c := e.client(t)
	var g gameRes
	do(t, c, e.srv.URL, "POST", "/game/new", map[string]string{"levelId": "level1", "mode": "challenge"}, &g)
	var ans answerRes
	do(t, c, e.srv.URL, "POST", "/game/"+g.ID+"/answer", map[string]string{"answer": "人"}, &ans)
	if ans.Result.Points != 15 || ans.Game.State.Score != 15 {
		t.Fatalf("expected 15 points in challenge mode, got %+v", ans)
	}
}

func TestBadRequests(t *testing.T) {
	e := newTestEnv(t)
	c := e.client(t)
	var out map[string]any
	if code := do(t, c, e.srv.URL, "POST", "/game/new", map[string]string{"mode": "speedrun"}, &out); code != 400 || out["error"] != "invalid_request" {
		t.Fatalf("expected invalid_request, got %d %v", code, out)
	}
	if code := do(t, c, e.srv.URL, "POST", "/game/new", map[string]string{"levelId": "level9"}, &out); code != 404 || out["error"] != "unknown_level" {
		t.Fatalf("expected unknown_level, got %d %v", code, out)
	}
}

func TestLockedLevels(t *testing.T) {
	e := newTestEnv(t)
	c := e.client(t)
	var out map[string]any
	if code := do(t, c, e.srv.URL, "POST", "/game/new", map[string]string{"levelId": "level2"}, &out); code != 403 || out["error"] != "level_locked" {
		t.Fatalf("expected level_locked, got %d %v", code, out)
	}

	var g gameRes
	do(t, c, e.srv.URL, "POST", "/game/new", map[string]string{"levelId": "level1"}, &g)
	if code := do(t, c, e.srv.URL, "POST", "/game/"+g.ID+"/level", map[string]string{"levelId": "level3"}, &out); code != 403 {
		t.Fatalf("expected 403 switching to a locked level, got %d", code)
	}
	if code := do(t, c, e.srv.URL, "POST", "/game/"+g.ID+"/level", map[string]string{"levelId": "level1"}, &g); code != 200 || g.State.CurrentLevel != "level1" {
		t.Fatalf("expected level switch ok, got %d %+v", code, g.State)
	}
}

func TestSessionsBelongToTheirOwner(t *testing.T) {
	e := newTestEnv(t)
	alice, bob := e.client(t), e.client(t)
	var g gameRes
	do(t, alice, e.srv.URL, "POST", "/game/new", nil, &g)
	if code := do(t, bob, e.srv.URL, "GET", "/game/"+g.ID, nil, nil); code != 404 {
		t.Fatalf("expected 404 for another player's session, got %d", code)
	}
	if code := do(t, alice, e.srv.URL, "GET", "/game/"+g.ID, nil, &g); code != 200 || g.Word == nil {
		t.Fatalf("expected owner to read session, got %d", code)
	}
}

func TestSoundPreferences(t *testing.T) {
	e := newTestEnv(t)
	c := e.client(t)
	var snd prefs.SoundSettings
	do(t, c, e.srv.URL, "GET", "/prefs/sound", nil, &snd)
	if !snd.Enabled || snd.Volume != prefs.DefaultVolume {
		t.Fatalf("unexpected defaults %+v", snd)
	}
	do(t, c, e.srv.URL, "POST", "/prefs/sound/toggle", nil, &snd)
	if snd.Enabled {
		t.Fatal("expected sound disabled")
	}
	var g gameRes
	do(t, c, e.srv.URL, "POST", "/game/new", nil, &g)
	if g.Sound != "" {
		t.Fatalf("expected no cue when muted, got %q", g.Sound)
	}

	do(t, c, e.srv.URL, "POST", "/prefs/sound/volume", map[string]float64{"volume": 1.5}, &snd)
	if snd.Volume != 1 {
		t.Fatalf("expected clamped volume 1, got %v", snd.Volume)
	}
	var out map[string]any
	if code := do(t, c, e.srv.URL, "POST", "/prefs/sound/volume", map[string]string{}, &out); code != 400 {
		t.Fatalf("expected 400 without volume, got %d %v", code, out)
	}
}

func TestSignupClaimsGuestData(t *testing.T) {
	e := newTestEnv(t)
	c := e.client(t)

	var g gameRes
	do(t, c, e.srv.URL, "POST", "/game/new", nil, &g)
	do(t, c, e.srv.URL, "POST", "/game/"+g.ID+"/answer", map[string]string{"answer": "人"}, nil)
	do(t, c, e.srv.URL, "POST", "/game/"+g.ID+"/end", nil, nil)

	creds := map[string]string{"username": "xiaoming", "password": "password123"}
	if code := do(t, c, e.srv.URL, "POST", "/auth/signup", creds, nil); code != 200 {
		t.Fatalf("expected signup ok, got %d", code)
	}
	var me authUser
	if code := do(t, c, e.srv.URL, "GET", "/auth/me", nil, &me); code != 200 || me.Username != "xiaoming" {
		t.Fatalf("expected me, got %d %+v", code, me)
	}
	var sum progress.Summary
	do(t, c, e.srv.URL, "GET", "/progress", nil, &sum)
	if sum.UserID != me.ID || sum.TotalScore != 10 {
		t.Fatalf("expected guest progress claimed, got %+v", sum)
	}
	var mine []history.Game
	do(t, c, e.srv.URL, "GET", "/games/mine", nil, &mine)
	if len(mine) != 1 || mine[0].Score != 10 {
		t.Fatalf("expected claimed game, got %+v", mine)
	}

	if code := do(t, c, e.srv.URL, "POST", "/auth/signup", creds, nil); code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate username, got %d", code)
	}
	do(t, c, e.srv.URL, "POST", "/auth/logout", nil, nil)
	if code := do(t, c, e.srv.URL, "GET", "/auth/me", nil, nil); code != 401 {
		t.Fatalf("expected 401 after logout, got %d", code)
	}
	bad := map[string]string{"username": "xiaoming", "password": "wrong-password"}
	if code := do(t, c, e.srv.URL, "POST", "/auth/login", bad, nil); code != 401 {
		t.Fatalf("expected 401 for wrong password, got %d", code)
	}
	if code := do(t, c, e.srv.URL, "POST", "/auth/login", creds, nil); code != 200 {
		t.Fatalf("expected login ok, got %d", code)
	}
	if code := do(t, c, e.srv.URL, "GET", "/games/mine", nil, &mine); code != 200 || len(mine) != 1 {
		t.Fatalf("expected history after login, got %d %+v", code, mine)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	e := newTestEnv(t)
	c := e.client(t)
	var ws []words.WordItem
	do(t, c, e.srv.URL, "GET", "/words?difficulty=hard", nil, &ws)
	if len(ws) != 10 {
		t.Fatalf("expected 10 hard words, got %d", len(ws))
	}
	if code := do(t, c, e.srv.URL, "GET", "/words?difficulty=legendary", nil, nil); code != 400 {
		t.Fatalf("expected 400, got %d", code)
	}
	do(t, c, e.srv.URL, "GET", "/words?level=level2", nil, &ws)
	if len(ws) != 10 || ws[0].Difficulty != words.Medium {
		t.Fatalf("unexpected level2 pool %+v", ws)
	}

	var levels []progress.LevelSummary
	do(t, c, e.srv.URL, "GET", "/levels", nil, &levels)
	if len(levels) != 5 || !levels[0].Unlocked || levels[1].Unlocked {
		t.Fatalf("unexpected levels %+v", levels)
	}

	var dw dailyWordRes
	do(t, c, e.srv.URL, "GET", "/daily/word", nil, &dw)
	if dw.Date != daily.DateKey(time.Now(), time.UTC) || dw.Word.ID == "" {
		t.Fatalf("unexpected daily word %+v", dw)
	}
}

func TestCompleteLevelAndReport(t *testing.T) {
	e := newTestEnv(t)
	c := e.client(t)
	var res completeRes
	do(t, c, e.srv.URL, "POST", "/progress/levels/level1/complete", nil, &res)
	if !res.Levels[0].Completed {
		t.Fatalf("expected level1 completed, got %+v", res.Levels[0])
	}
	if code := do(t, c, e.srv.URL, "POST", "/progress/levels/nope/complete", nil, nil); code != 404 {
		t.Fatalf("expected 404, got %d", code)
	}

	resp, err := c.Get(e.srv.URL + "/progress/report.xlsx")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	defer resp.Body.Close()
	if resp.Header.Get("Content-Type") != xlsxContentType {
		t.Fatalf("unexpected content type %q", resp.Header.Get("Content-Type"))
	}
	f, err := excelize.OpenReader(resp.Body)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	if v, _ := f.GetCellValue("Levels", "E2"); v != "TRUE" {
		t.Fatalf("expected level1 completed in report, got %q", v)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	e := newTestEnv(t)
	c := e.client(t)
	do(t, c, e.srv.URL, "POST", "/game/new", map[string]string{"mode": "challenge"}, nil)
	resp, err := c.Get(e.srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `hanzi_games_started_total{level="level1",mode="challenge"} 1`) {
		t.Fatalf("expected game counter, got:\n%s", body)
	}
}

func TestLongAnswerScoresAsWrong(t *testing.T) {
	e := newTestEnv(t)
	c := e.client(t)
	var g gameRes
	do(t, c, e.srv.URL, "POST", "/game/new", nil, &g)
	var ans answerRes
	code := do(t, c, e.srv.URL, "POST", "/game/"+g.ID+"/answer", map[string]string{"answer": strings.Repeat("人", 200)}, &ans)
	if code != 200 || ans.Result.Outcome != game.OutcomeIncorrect || ans.Game.State.WrongAnswers != 1 {
		t.Fatalf("expected long answer counted as wrong, got %d %+v", code, ans)
	}
}

func TestSignupErrorStatuses(t *testing.T) {
	e := newTestEnv(t)
	c := e.client(t)
	var out map[string]string
	code := do(t, c, e.srv.URL, "POST", "/auth/signup", map[string]string{"username": "has space", "password": "password123"}, &out)
	if code != 400 || out["error"] != "invalid_signup" || out["message"] == "" {
		t.Fatalf("expected invalid_signup, got %d %v", code, out)
	}

	e.conn.Close()
	code = do(t, c, e.srv.URL, "POST", "/auth/signup", map[string]string{"username": "li_hua", "password": "password123"}, &out)
	if code != 500 || out["error"] != "db_error" {
		t.Fatalf("expected db_error on storage failure, got %d %v", code, out)
	}
}
