package generator_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftlens/liftlens/internal/adapters/outbound/generator"
	"github.com/liftlens/liftlens/internal/domain"
)

func sampleSnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		URL:      "https://example.com",
		Title:    "Example",
		Headings: []string{"h1: Welcome"},
		CTAs:     []string{"Sign up"},
		Content:  "Welcome to Example.",
	}
}

func TestBuildPrompt_CoversFullRubric(t *testing.T) {
	prompt := generator.BuildPrompt(sampleSnapshot())

	for _, key := range domain.CategoryKeys {
		rc := domain.Rubric(key)
		assert.Contains(t, prompt, "### "+rc.Name+" ("+rc.ShortName+")")
		for _, a := range rc.Assertions {
			assert.Contains(t, prompt, a.ID+": "+a.Question)
		}
	}

	assert.Contains(t, prompt, "VP(25%), CL(20%), RL(15%), AX(20%), DI(10%), UR(10%)")
	assert.Contains(t, prompt, "### Anxiety (AX) - INHIBITOR")
	assert.Contains(t, prompt, "### Distraction (DI) - INHIBITOR")
	assert.Contains(t, prompt, `"url": "https://example.com"`, "snapshot is embedded as JSON")
}

func TestClient_Generate(t *testing.T) {
	var gotAuth string
	var gotReq map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": `{"overallScore": 70}`}},
			},
		})
	}))
	defer srv.Close()

	client := generator.New(generator.Config{
		CompletionsURL: srv.URL,
		APIKey:         "sk-test",
		Model:          "gpt-4o",
	})

	payload, err := client.Generate(context.Background(), sampleSnapshot())
	require.NoError(t, err)
	assert.JSONEq(t, `{"overallScore": 70}`, string(payload))

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-4o", gotReq["model"])
	assert.Equal(t, map[string]any{"type": "json_object"}, gotReq["response_format"])
	messages := gotReq["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
}

func TestClient_GenerateRequiresAPIKey(t *testing.T) {
	client := generator.New(generator.Config{})
	_, err := client.Generate(context.Background(), sampleSnapshot())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key is required")
}

func TestClient_GenerateErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": {"message": "rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := generator.New(generator.Config{CompletionsURL: srv.URL, APIKey: "sk-test"})
	_, err := client.Generate(context.Background(), sampleSnapshot())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
	assert.NotContains(t, err.Error(), "sk-test")
}

func TestClient_GenerateEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	client := generator.New(generator.Config{CompletionsURL: srv.URL, APIKey: "sk-test"})
	_, err := client.Generate(context.Background(), sampleSnapshot())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing content")
}
