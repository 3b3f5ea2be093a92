package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashita-ai/compendium/internal/model"
	"github.com/ashita-ai/compendium/internal/ratelimit"
	"github.com/ashita-ai/compendium/internal/represent"
	"github.com/ashita-ai/compendium/internal/server"
	"github.com/ashita-ai/compendium/internal/service/catalog"
	"github.com/ashita-ai/compendium/internal/telemetry"
	"github.com/ashita-ai/compendium/internal/testutil"
)

type testEnv struct {
	srv     *httptest.Server
	metrics *telemetry.Metrics
}

func newTestEnv(t *testing.T, mutate ...func(*server.ServerConfig)) *testEnv {
	t.Helper()
	logger := testutil.TestLogger()
	db := testutil.NewSQLiteDB(t)
	metrics := telemetry.NewMetrics()

	cfg := server.ServerConfig{
		DB:                  db,
		Catalog:             catalog.New(db, metrics, logger),
		Logger:              logger,
		Metrics:             metrics,
		ReadTimeout:         5 * time.Second,
		WriteTimeout:        5 * time.Second,
		Version:             "test",
		MaxRequestBodyBytes: 1 << 20,
		OpenAPISpec:         []byte("openapi: 3.1.0\n"),
	}
	for _, m := range mutate {
		m(&cfg)
	}

	srv := httptest.NewServer(server.New(cfg).Handler())
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, metrics: metrics}
}

// do sends body (marshaled unless it is a string) and returns the response
// with its body read.
func (e *testEnv) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, e.srv.URL+path, rdr)
	require.NoError(t, err)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

// call performs a request, asserts the status and decodes the body into out.
func call[T any](t *testing.T, e *testEnv, method, path string, body any, wantStatus int) T {
	t.Helper()
	resp, data := e.do(t, method, path, body)
	require.Equal(t, wantStatus, resp.StatusCode, "%s %s: %s", method, path, data)
	var out T
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &out), string(data))
	}
	return out
}

func errorDetails(t *testing.T, e *testEnv, method, path string, body any) map[string][]string {
	t.Helper()
	apiErr := call[struct {
		Error struct {
			Code    string              `json:"code"`
			Message string              `json:"message"`
			Details map[string][]string `json:"details"`
		} `json:"error"`
	}](t, e, method, path, body, http.StatusBadRequest)
	assert.Equal(t, model.ErrCodeInvalidInput, apiErr.Error.Code)
	return apiErr.Error.Details
}

func itemPath(resource string, id int64) string {
	return fmt.Sprintf("/%s/%d/", resource, id)
}

func TestWizardLightArmorScenario(t *testing.T) {
	e := newTestEnv(t)

	prof := call[represent.Proficiency](t, e, "POST", "/proficiencies/", map[string]any{
		"index": "light_armor",
		"name":  "Light Armor",
		"type":  "Armor",
	}, http.StatusCreated)

	class := call[represent.Class](t, e, "POST", "/classes/", map[string]any{
		"index":         "wizard",
		"name":          "Wizard",
		"hit_die":       6,
		"proficiencies": []int64{prof.ID},
	}, http.StatusCreated)
	assert.Equal(t, e.srv.URL+itemPath("classes", class.ID), class.DetailURL)

	got := call[represent.Class](t, e, "GET", itemPath("classes", class.ID), nil, http.StatusOK)
	require.Len(t, got.ClassProficiencies, 1)
	assert.Equal(t, "Light Armor", got.ClassProficiencies[0].ProficiencyName)
	assert.Equal(t, e.srv.URL+itemPath("proficiencies", prof.ID), got.ClassProficiencies[0].DetailURL)

	// The same association is visible from the proficiency side.
	p := call[represent.Proficiency](t, e, "GET", itemPath("proficiencies", prof.ID), nil, http.StatusOK)
	require.Len(t, p.ProficiencyClasses, 1)
	assert.Equal(t, "Wizard", p.ProficiencyClasses[0].ClassName)
}

func TestPatchNameOnlyKeepsEverythingElse(t *testing.T) {
	e := newTestEnv(t)

	prof := call[represent.Proficiency](t, e, "POST", "/proficiencies/", map[string]any{
		"index": "daggers",
		"name":  "Daggers",
		"type":  "Weapons",
	}, http.StatusCreated)
	class := call[represent.Class](t, e, "POST", "/classes/", map[string]any{
		"index":         "wizard",
		"name":          "Wizard",
		"hit_die":       6,
		"proficiencies": []int64{prof.ID},
	}, http.StatusCreated)

	patched := call[represent.Class](t, e, "PATCH", itemPath("classes", class.ID), map[string]any{
		"name": "Archmage",
	}, http.StatusOK)
	assert.Equal(t, "Archmage", patched.Name)
	assert.Equal(t, "wizard", patched.Index)
	assert.Equal(t, 6, patched.HitDie)
	require.Len(t, patched.ClassProficiencies, 1)

	cleared := call[represent.Class](t, e, "PATCH", itemPath("classes", class.ID), map[string]any{
		"proficiencies": []int64{},
	}, http.StatusOK)
	assert.Empty(t, cleared.ClassProficiencies)
	assert.Equal(t, "Archmage", cleared.Name)
}

func TestRaceDeleteCascades(t *testing.T) {
	e := newTestEnv(t)

	prof := call[represent.Proficiency](t, e, "POST", "/proficiencies/", map[string]any{
		"index": "longsword",
		"name":  "Longswords",
		"type":  "Weapons",
	}, http.StatusCreated)
	race := call[represent.Race](t, e, "POST", "/races/", map[string]any{
		"index":                  "human",
		"name":                   "Human",
		"age":                    "Humans reach adulthood in their late teens.",
		"alignment":              "Humans tend toward no particular alignment.",
		"language_desc":          "You can speak, read, and write Common.",
		"size":                   "Medium",
		"size_description":       "Humans vary widely in height and build.",
		"speed":                  30,
		"starting_proficiencies": []int64{prof.ID},
	}, http.StatusCreated)
	sub := call[represent.Subrace](t, e, "POST", "/subraces/", map[string]any{
		"index":                  "variant_human",
		"name":                   "Variant Human",
		"desc":                   "A more flexible human.",
		"race":                   race.ID,
		"starting_proficiencies": []int64{prof.ID},
	}, http.StatusCreated)
	assert.Equal(t, "Human", sub.Race.Name)

	call[represent.Proficiency](t, e, "PATCH", itemPath("proficiencies", prof.ID), map[string]any{
		"races":    []int64{race.ID},
		"subraces": []int64{sub.ID},
	}, http.StatusOK)

	withSub := call[represent.Race](t, e, "GET", itemPath("races", race.ID), nil, http.StatusOK)
	require.Len(t, withSub.Subraces, 1)
	assert.Equal(t, "variant_human", withSub.Subraces[0].Index)

	resp, body := e.do(t, "DELETE", itemPath("races", race.ID), nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, body)

	call[json.RawMessage](t, e, "GET", itemPath("races", race.ID), nil, http.StatusNotFound)
	call[json.RawMessage](t, e, "GET", itemPath("subraces", sub.ID), nil, http.StatusNotFound)

	p := call[represent.Proficiency](t, e, "GET", itemPath("proficiencies", prof.ID), nil, http.StatusOK)
	assert.Empty(t, p.RacesAndSubraces, "proficiency_races rows of both race and subrace are gone")
}

func TestProficiencyRaceOnlyRendersNullSubrace(t *testing.T) {
	e := newTestEnv(t)

	race := call[represent.Race](t, e, "POST", "/races/", map[string]any{
		"index":            "elf",
		"name":             "Elf",
		"age":              "Elves mature slowly.",
		"alignment":        "Chaotic good.",
		"language_desc":    "Common and Elvish.",
		"size":             "Medium",
		"size_description": "Slender.",
		"speed":            30,
	}, http.StatusCreated)
	prof := call[represent.Proficiency](t, e, "POST", "/proficiencies/", map[string]any{
		"index": "perception",
		"name":  "Skill: Perception",
		"type":  "Skills",
		"races": []int64{race.ID},
	}, http.StatusCreated)

	_, raw := e.do(t, "GET", itemPath("proficiencies", prof.ID), nil)
	var body struct {
		RacesAndSubraces []map[string]any `json:"races_and_subraces"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	require.Len(t, body.RacesAndSubraces, 1)
	row := body.RacesAndSubraces[0]
	assert.Equal(t, "Elf", row["race_name"])
	assert.Equal(t, e.srv.URL+itemPath("races", race.ID), row["race_url"])
	assert.Contains(t, row, "subrace_name")
	assert.Nil(t, row["subrace_name"])
	assert.Nil(t, row["subrace_url"])
}

func TestCreateValidation(t *testing.T) {
	e := newTestEnv(t)

	t.Run("missing fields", func(t *testing.T) {
		details := errorDetails(t, e, "POST", "/classes/", map[string]any{"index": "x"})
		assert.Equal(t, []string{"This field is required."}, details["name"])
		assert.Equal(t, []string{"This field is required."}, details["hit_die"])
	})

	t.Run("out of range", func(t *testing.T) {
		details := errorDetails(t, e, "POST", "/classes/", map[string]any{
			"index":   "x",
			"name":    "X",
			"hit_die": 0,
		})
		assert.Equal(t, []string{"Ensure this value is greater than or equal to 1."}, details["hit_die"])

		details = errorDetails(t, e, "POST", "/classes/", `{"index": "x", "name": "X", "hit_die": 3000000000}`)
		assert.Equal(t, []string{"Ensure this value is less than or equal to 2147483647."}, details["hit_die"])
	})

	t.Run("duplicate index", func(t *testing.T) {
		call[represent.School](t, e, "POST", "/schools/", map[string]any{"index": "evocation", "name": "Evocation"}, http.StatusCreated)
		details := errorDetails(t, e, "POST", "/schools/", map[string]any{"index": "evocation", "name": "Again"})
		assert.Equal(t, []string{"school with this index already exists."}, details["index"])

		list := call[[]represent.Summary](t, e, "GET", "/schools/", nil, http.StatusOK)
		assert.Len(t, list, 1)
	})

	t.Run("invalid reference rejects the whole write", func(t *testing.T) {
		details := errorDetails(t, e, "POST", "/classes/", map[string]any{
			"index":         "bard",
			"name":          "Bard",
			"hit_die":       8,
			"proficiencies": []int64{999},
		})
		assert.Equal(t, []string{`Invalid pk "999" - object does not exist.`}, details["proficiencies"])

		list := call[[]represent.Summary](t, e, "GET", "/classes/", nil, http.StatusOK)
		assert.Empty(t, list)
	})
}

func TestMalformedBodies(t *testing.T) {
	e := newTestEnv(t, func(c *server.ServerConfig) { c.MaxRequestBodyBytes = 256 })

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"syntax error", `{"index": `, model.NonFieldErrors},
		{"type mismatch", `{"index": "x", "name": "X", "hit_die": "six"}`, "hit_die"},
		{"list of strings", `{"proficiencies": ["a"]}`, "proficiencies"},
		{"unknown field", `{"index": "x", "armor_class": 3}`, "armor_class"},
		{"not an object", `[1, 2]`, model.NonFieldErrors},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details := errorDetails(t, e, "POST", "/classes/", tt.body)
			assert.Contains(t, details, tt.field)
		})
	}

	t.Run("body too large", func(t *testing.T) {
		huge := `{"name": "` + strings.Repeat("a", 1024) + `"}`
		resp, raw := e.do(t, "POST", "/classes/", huge)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, string(raw), "request body too large")
	})

	t.Run("empty body reports required fields", func(t *testing.T) {
		details := errorDetails(t, e, "POST", "/schools/", "")
		assert.Contains(t, details, "index")
		assert.Contains(t, details, "name")
	})
}

func TestExplicitNullIsRejected(t *testing.T) {
	e := newTestEnv(t)

	prof := call[represent.Proficiency](t, e, "POST", "/proficiencies/", map[string]any{
		"index": "light_armor",
		"name":  "Light Armor",
		"type":  "Armor",
	}, http.StatusCreated)
	class := call[represent.Class](t, e, "POST", "/classes/", map[string]any{
		"index":         "wizard",
		"name":          "Wizard",
		"hit_die":       6,
		"proficiencies": []int64{prof.ID},
	}, http.StatusCreated)

	details := errorDetails(t, e, "PATCH", itemPath("classes", class.ID),
		`{"name": null, "hit_die": null, "proficiencies": null}`)
	assert.Equal(t, []string{"This field may not be null."}, details["name"])
	assert.Equal(t, []string{"This field may not be null."}, details["hit_die"])
	assert.Equal(t, []string{"This field may not be null."}, details["proficiencies"])

	got := call[represent.Class](t, e, "GET", itemPath("classes", class.ID), nil, http.StatusOK)
	assert.Equal(t, "Wizard", got.Name)
	assert.Len(t, got.ClassProficiencies, 1)

	t.Run("on create", func(t *testing.T) {
		details := errorDetails(t, e, "POST", "/subraces/", `{"index": "x", "name": "X", "desc": "d", "race": null}`)
		assert.Equal(t, []string{"This field may not be null."}, details["race"])
	})

	t.Run("nullable fields accept null", func(t *testing.T) {
		sub := call[represent.Subclass](t, e, "POST", "/subclasses/", map[string]any{
			"index":           "evocation",
			"name":            "Evocation",
			"subclass_flavor": "Arcane Tradition",
			"class":           class.ID,
			"description":     nil,
		}, http.StatusCreated)
		assert.Nil(t, sub.Description)
	})
}

func TestEchoedReadOnlyKeysAreIgnored(t *testing.T) {
	e := newTestEnv(t)

	class := call[represent.Class](t, e, "POST", "/classes/", map[string]any{
		"index":   "wizard",
		"name":    "Wizard",
		"hit_die": 6,
	}, http.StatusCreated)

	got := call[represent.Class](t, e, "PATCH", itemPath("classes", class.ID), map[string]any{
		"id":                  999,
		"detail_url":          "x",
		"class_proficiencies": []any{},
		"name":                "W2",
	}, http.StatusOK)
	assert.Equal(t, class.ID, got.ID)
	assert.Equal(t, "W2", got.Name)
	assert.Equal(t, class.DetailURL, got.DetailURL)

	// Keys a resource accepts as input are still decoded as input.
	details := errorDetails(t, e, "POST", "/spells/", `{"subclasses": [{"id": 1}]}`)
	assert.Contains(t, details, "subclasses")
}

func TestNotFoundAndBadIDs(t *testing.T) {
	e := newTestEnv(t)

	for _, path := range []string{"/classes/1/", "/classes/0/", "/classes/-3/", "/classes/abc/", "/dragons/", "/classes/1/extra/"} {
		resp, raw := e.do(t, "GET", path, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		assert.Contains(t, string(raw), model.ErrCodeNotFound, path)
	}

	resp, _ := e.do(t, "PATCH", "/spells/42/", map[string]any{"name": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = e.do(t, "DELETE", "/spells/42/", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPutIsNotAllowed(t *testing.T) {
	e := newTestEnv(t)

	for _, resource := range model.Resources {
		resp, raw := e.do(t, "PUT", "/"+resource+"/1/", map[string]any{"name": "x"})
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, resource)
		assert.Contains(t, resp.Header.Get("Allow"), "PATCH", resource)
		assert.NotContains(t, resp.Header.Get("Allow"), "PUT", resource)
		assert.Contains(t, string(raw), model.ErrCodeMethodNotAllowed)

		resp, _ = e.do(t, "PUT", "/"+resource+"/", map[string]any{"name": "x"})
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, resource)
	}
}

func TestListOrderIsStable(t *testing.T) {
	e := newTestEnv(t)

	for _, idx := range []string{"necromancy", "abjuration", "illusion"} {
		call[represent.School](t, e, "POST", "/schools/", map[string]any{"index": idx, "name": idx}, http.StatusCreated)
	}

	first := call[[]represent.Summary](t, e, "GET", "/schools/", nil, http.StatusOK)
	second := call[[]represent.Summary](t, e, "GET", "/schools/", nil, http.StatusOK)
	require.Len(t, first, 3)
	assert.Equal(t, first, second)
	assert.Equal(t, "necromancy", first[0].Index)
	assert.Equal(t, "illusion", first[2].Index)
}

func TestEmptyListIsArray(t *testing.T) {
	e := newTestEnv(t)
	for _, resource := range model.Resources {
		_, raw := e.do(t, "GET", "/"+resource+"/", nil)
		assert.JSONEq(t, `[]`, string(raw), resource)
	}
}

func TestSpellAndSubclassLifecycle(t *testing.T) {
	e := newTestEnv(t)

	school := call[represent.School](t, e, "POST", "/schools/", map[string]any{"index": "evocation", "name": "Evocation"}, http.StatusCreated)
	class := call[represent.Class](t, e, "POST", "/classes/", map[string]any{"index": "wizard", "name": "Wizard", "hit_die": 6}, http.StatusCreated)
	sub := call[represent.Subclass](t, e, "POST", "/subclasses/", map[string]any{
		"index":           "evocation",
		"name":            "Evocation",
		"subclass_flavor": "Arcane Tradition",
		"class":           class.ID,
		"description":     "Focus on evocation magic.",
	}, http.StatusCreated)
	require.NotNil(t, sub.Description)
	assert.Equal(t, "Focus on evocation magic.", sub.Description.Value)
	assert.Equal(t, e.srv.URL+itemPath("classes", class.ID), sub.ClassInfo.DetailURL)

	spell := call[represent.Spell](t, e, "POST", "/spells/", map[string]any{
		"index":         "fireball",
		"name":          "Fireball",
		"level":         3,
		"attack_type":   nil,
		"casting_time":  "1 action",
		"concentration": false,
		"duration":      "Instantaneous",
		"material":      "A tiny ball of bat guano and sulfur.",
		"range":         "150 feet",
		"ritual":        false,
		"school":        school.ID,
		"descriptions":  []string{"A bright streak flashes.", "The fire spreads around corners."},
		"classes":       []int64{class.ID},
		"subclasses":    []int64{sub.ID},
	}, http.StatusCreated)
	assert.Nil(t, spell.AttackType)
	assert.Equal(t, "Evocation", spell.SchoolName)
	assert.Equal(t, []string{"A bright streak flashes.", "The fire spreads around corners."}, spell.Descriptions)
	require.Len(t, spell.Classes, 1)
	require.Len(t, spell.Subclasses, 1)

	gotClass := call[represent.Class](t, e, "GET", itemPath("classes", class.ID), nil, http.StatusOK)
	require.Len(t, gotClass.Spells, 1)
	require.Len(t, gotClass.Subclasses, 1)
	require.NotNil(t, gotClass.Subclasses[0].Description)

	gotSchool := call[represent.School](t, e, "GET", itemPath("schools", school.ID), nil, http.StatusOK)
	require.Len(t, gotSchool.Spells, 1)

	// Deleting the school takes its spells with it.
	resp, _ := e.do(t, "DELETE", itemPath("schools", school.ID), nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	call[json.RawMessage](t, e, "GET", itemPath("spells", spell.ID), nil, http.StatusNotFound)

	gotClass = call[represent.Class](t, e, "GET", itemPath("classes", class.ID), nil, http.StatusOK)
	assert.Empty(t, gotClass.Spells)
}

func TestRootHealthAndAmbientEndpoints(t *testing.T) {
	e := newTestEnv(t)

	root := call[map[string]string](t, e, "GET", "/", nil, http.StatusOK)
	assert.Equal(t, e.srv.URL+"/spells/", root[model.ResourceSpells])
	assert.Len(t, root, len(model.Resources))

	health := call[model.HealthResponse](t, e, "GET", "/health", nil, http.StatusOK)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "sqlite", health.Dialect)
	assert.Equal(t, "test", health.Version)

	resp, raw := e.do(t, "GET", "/openapi.yaml", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/yaml", resp.Header.Get("Content-Type"))
	assert.Equal(t, "openapi: 3.1.0\n", string(raw))

	resp, raw = e.do(t, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `compendium_http_requests_total{code="200",method="GET",route="GET /{$}"} 1`)
}

func TestPublicBaseURLOverridesLinks(t *testing.T) {
	e := newTestEnv(t, func(c *server.ServerConfig) { c.PublicBaseURL = "https://dnd.example.test/api" })

	school := call[represent.School](t, e, "POST", "/schools/", map[string]any{"index": "evocation", "name": "Evocation"}, http.StatusCreated)
	assert.Equal(t, fmt.Sprintf("https://dnd.example.test/api/schools/%d/", school.ID), school.DetailURL)
}

func TestResponseHeaders(t *testing.T) {
	e := newTestEnv(t)

	req, err := http.NewRequest("GET", e.srv.URL+"/classes/", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "trace-me")
	resp, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, "trace-me", resp.Header.Get("X-Request-ID"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestRateLimitedRequestsGet429(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(0.001, 2)
	t.Cleanup(func() { _ = limiter.Close() })
	e := newTestEnv(t, func(c *server.ServerConfig) { c.Limiter = limiter })

	for range 2 {
		resp, _ := e.do(t, "GET", "/classes/", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp, raw := e.do(t, "GET", "/classes/", nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Contains(t, string(raw), model.ErrCodeRateLimited)

	resp, _ = e.do(t, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "health checks are not limited")
}
