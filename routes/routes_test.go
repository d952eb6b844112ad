package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/dowdarts/CGC-Tournament-Manager-sub000/db"
	"github.com/dowdarts/CGC-Tournament-Manager-sub000/handlers"
	"github.com/dowdarts/CGC-Tournament-Manager-sub000/live"
	"github.com/dowdarts/CGC-Tournament-Manager-sub000/repositories"
	"github.com/dowdarts/CGC-Tournament-Manager-sub000/services"
	"github.com/dowdarts/CGC-Tournament-Manager-sub000/storage"
)

const testPassword = "treble-twenty"

func newTestRouter(t *testing.T, rateLimit int) *chi.Mux {
	t.Helper()
	conn, driver, err := db.Connect(":memory:", 5*time.Second)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	dialect := repositories.Dialect(driver)
	if err := repositories.EnsureSchema(context.Background(), conn, dialect); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	tournamentRepo := repositories.NewTournamentRepository(conn, dialect)
	entrantRepo := repositories.NewEntrantRepository(conn, dialect)
	fixtureRepo := repositories.NewFixtureRepository(conn, dialect)
	knockoutRepo := repositories.NewKnockoutRepository(conn, dialect)
	hub := live.NewHub()
	locks := services.NewTournamentLocks()
	snapshots := services.NewSnapshotPublisher(storage.NewMemoryStore("https://cdn.example.com"), nil)

	h := Handlers{
		Auth:       handlers.NewAuthHandler(services.NewAuthService("desk", string(hash), nil), "jwt-secret"),
		Tournament: handlers.NewTournamentHandler(services.NewTournamentService(conn, tournamentRepo, entrantRepo, fixtureRepo, knockoutRepo, nil)),
		Group:      handlers.NewGroupHandler(services.NewGroupService(conn, tournamentRepo, entrantRepo, fixtureRepo, hub, locks, nil)),
		Knockout:   handlers.NewKnockoutHandler(services.NewKnockoutService(conn, tournamentRepo, entrantRepo, fixtureRepo, knockoutRepo, hub, snapshots, locks, nil)),
		WebSocket:  handlers.NewWebSocketHandler(hub, nil),
	}
	router := chi.NewRouter()
	SetupRoutes(router, h, Options{
		JWTSecret:          []byte("jwt-secret"),
		CORSAllowedOrigins: []string{"*"},
		ResultRateLimit:    rateLimit,
		ResultRateWindow:   time.Minute,
	})
	return router
}

type client struct {
	t      *testing.T
	router http.Handler
	token  string
}

func (c *client) do(method, path string, body interface{}) (int, map[string]interface{}) {
	c.t.Helper()
	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(raw))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)

	var out map[string]interface{}
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec.Code, out
}

func (c *client) mustDo(method, path string, body interface{}, want int) map[string]interface{} {
	c.t.Helper()
	code, out := c.do(method, path, body)
	if code != want {
		c.t.Fatalf("%s %s: got %d; want %d (%v)", method, path, code, want, out)
	}
	return out
}

func (c *client) login() {
	c.t.Helper()
	out := c.mustDo(http.MethodPost, "/auth/login", map[string]string{"password": testPassword}, http.StatusOK)
	c.token, _ = out["token"].(string)
	if c.token == "" {
		c.t.Fatal("login returned no token")
	}
}

func TestTournamentFlowOverHTTP(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t, 100)}

	c.mustDo(http.MethodGet, "/health", nil, http.StatusOK)
	c.mustDo(http.MethodPost, "/tournaments", map[string]interface{}{"name": "Friday Doubles"}, http.StatusUnauthorized)
	c.mustDo(http.MethodPost, "/auth/login", map[string]string{"password": "wrong"}, http.StatusUnauthorized)
	c.login()

	out := c.mustDo(http.MethodPost, "/tournaments", map[string]interface{}{
		"name": "Friday Doubles", "group_count": 1, "advance_count": 2, "boards": []int{1, 2},
	}, http.StatusCreated)
	id := int(out["tournament"].(map[string]interface{})["id"].(float64))
	base := fmt.Sprintf("/tournaments/%d", id)

	c.mustDo(http.MethodPost, base+"/entrants", map[string]interface{}{
		"entrants": []map[string]string{{"name": "Ann"}, {"name": "Bob"}, {"name": "Cid"}, {"name": "Dee"}},
	}, http.StatusCreated)
	c.mustDo(http.MethodPost, base+"/groups", nil, http.StatusOK)

	// knockout before the group stage is a lifecycle conflict
	c.mustDo(http.MethodPost, base+"/bracket", nil, http.StatusConflict)

	out = c.mustDo(http.MethodPost, base+"/fixtures", nil, http.StatusCreated)
	fixtures := out["fixtures"].([]interface{})
	if len(fixtures) != 6 {
		t.Fatalf("got %d fixtures; want 6", len(fixtures))
	}

	c.mustDo(http.MethodPost, base+"/bracket", nil, http.StatusConflict)

	for _, raw := range fixtures {
		f := raw.(map[string]interface{})
		path := fmt.Sprintf("%s/fixtures/%d/result", base, int(f["id"].(float64)))
		c.mustDo(http.MethodPut, path, map[string]int{"score_a": 3, "score_b": 1}, http.StatusOK)
	}

	out = c.mustDo(http.MethodGet, base+"/standings", nil, http.StatusOK)
	tables := out["groups"].([]interface{})
	if len(tables) != 1 || tables[0].(map[string]interface{})["complete"] != true {
		t.Fatalf("unexpected tables %v", tables)
	}

	out = c.mustDo(http.MethodPost, base+"/bracket", nil, http.StatusCreated)
	bracket := out["bracket"].(map[string]interface{})
	if bracket["size"].(float64) != 2 {
		t.Fatalf("bracket size = %v; want 2", bracket["size"])
	}

	final := base + "/bracket/rounds/1/matches/1/result"
	c.mustDo(http.MethodPut, final, map[string]int{"score1": 2, "score2": 2}, http.StatusUnprocessableEntity)
	c.mustDo(http.MethodPut, base+"/bracket/rounds/2/matches/1/result", map[string]int{"score1": 2, "score2": 0}, http.StatusBadRequest)

	out = c.mustDo(http.MethodPut, final, map[string]int{"score1": 3, "score2": 0}, http.StatusOK)
	if adv := out["advancement"].(map[string]interface{}); adv["champion"] != true {
		t.Errorf("final did not crown a champion: %v", adv)
	}
	c.mustDo(http.MethodPut, final, map[string]int{"score1": 3, "score2": 0}, http.StatusConflict)

	out = c.mustDo(http.MethodGet, base, nil, http.StatusOK)
	if status := out["tournament"].(map[string]interface{})["status"]; status != "completed" {
		t.Errorf("status = %v; want completed", status)
	}

	out = c.mustDo(http.MethodGet, "/tournaments?status=completed", nil, http.StatusOK)
	if got := out["tournaments"].([]interface{}); len(got) != 1 {
		t.Errorf("got %d completed tournaments; want 1", len(got))
	}
}

func TestResultSubmissionsAreRateLimited(t *testing.T) {
	// a limit of 2 per window leaves a burst of one request
	c := &client{t: t, router: newTestRouter(t, 2)}
	c.login()

	c.mustDo(http.MethodPut, "/tournaments/1/fixtures/1/result", map[string]int{"score_a": 1, "score_b": 0}, http.StatusNotFound)
	code, _ := c.do(http.MethodPut, "/tournaments/1/bracket/rounds/1/matches/1/result", map[string]int{"score1": 1, "score2": 0})
	if code != http.StatusTooManyRequests {
		t.Fatalf("got %d; want 429", code)
	}

	// reads are not limited
	c.mustDo(http.MethodGet, "/tournaments", nil, http.StatusOK)
}
