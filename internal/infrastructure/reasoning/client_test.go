package reasoning

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrikatori/backend/internal/domain"
)

// textResponse writes a generateContent body whose first candidate says text
func textResponse(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"candidates": []interface{}{
			map[string]interface{}{
				"content": map[string]interface{}{
					"parts": []interface{}{map[string]interface{}{"text": text}},
				},
			},
		},
	})
}

func newTestClient(serverURL string) *Client {
	return NewClient(Config{
		APIKey:     "test-api-key",
		BaseURL:    serverURL,
		Model:      "test-model",
		Timeout:    2 * time.Second,
		RetryCount: 2,
		RetryWait:  time.Millisecond,
	})
}

func TestNewClient(t *testing.T) {
	client := NewClient(Config{})

	assert.NotNil(t, client)
	assert.Equal(t, defaultModel, client.model)
	assert.Equal(t, defaultBaseURL, client.http.BaseURL)
	assert.NotNil(t, client.rateLimiter)
	assert.NotNil(t, client.logger)
}

func TestGetAliases_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "test-api-key", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.URL.Query().Get("key"), "API key must not travel in the URL")

		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "jeera")

		textResponse(w, "Sure!\n```json\n[\"cumin\", \"zeera\", 7, null, \"cumin seeds\"]\n```")
	}))
	defer server.Close()

	aliases, err := newTestClient(server.URL).GetAliases(context.Background(), "jeera")

	require.NoError(t, err)
	assert.Equal(t, []string{"cumin", "zeera", "cumin seeds"}, aliases)
}

func TestGetAliases_MalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		textResponse(w, "I don't know that ingredient.")
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetAliases(context.Background(), "xyzzy")

	assert.ErrorIs(t, err, domain.ErrMalformedPayload)
}

func TestGetAliases_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetAliases(context.Background(), "jeera")

	assert.ErrorIs(t, err, domain.ErrMalformedPayload)
}

func TestGenerate_RetriesServerErrors(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		textResponse(w, `["aloo"]`)
	}))
	defer server.Close()

	aliases, err := newTestClient(server.URL).GetAliases(context.Background(), "potato")

	require.NoError(t, err)
	assert.Equal(t, []string{"aloo"}, aliases)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestGenerate_GivesUpAfterRetries(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetAliases(context.Background(), "potato")

	assert.ErrorIs(t, err, domain.ErrReasoningFailure)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestGenerate_DoesNotRetryClientErrors(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "API key not valid"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetAliases(context.Background(), "potato")

	assert.ErrorIs(t, err, domain.ErrReasoningFailure)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestGenerate_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		textResponse(w, `[]`)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(server.URL).GetAliases(ctx, "potato")

	assert.ErrorIs(t, err, domain.ErrReasoningFailure)
}

func TestExtractDish_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		textResponse(w, `{
			"dishName": "Aloo Jeera",
			"intent": "get_nutrition",
			"details": null,
			"dishType": "Dry Sabzi",
			"ingredients_used": [
				{"name": "aloo", "quantity": "2 medium"},
				{"name": "jeera", "quantity": 1},
				{"name": "", "quantity": "1 tsp"}
			],
			"nutrition_per_serving": {"calories_kcal": 210, "protein_g": "3.5", "fat_g": 8},
			"assumptions": ["Cooked in 1 tbsp oil", 5]
		}`)
	}))
	defer server.Close()

	dish, err := newTestClient(server.URL).ExtractDish(context.Background(), "aloo jeera")

	require.NoError(t, err)
	assert.Equal(t, "Aloo Jeera", dish.DishName)
	assert.Equal(t, "get_nutrition", dish.Intent)
	assert.Equal(t, "", dish.Details)
	assert.Equal(t, "Dry Sabzi", dish.DishType)
	assert.Equal(t, []domain.IngredientLine{
		{Name: "aloo", QuantityText: "2 medium"},
		{Name: "jeera", QuantityText: "1"},
	}, dish.Ingredients)
	assert.Equal(t, 210.0, dish.NutritionGuess.EnergyKcal)
	assert.Equal(t, 3.5, dish.NutritionGuess.Protein)
	assert.Equal(t, 8.0, dish.NutritionGuess.Fat)
	assert.Equal(t, []string{"Cooked in 1 tbsp oil"}, dish.Assumptions)
}

func TestExtractDish_RepairsUnquotedKeys(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		textResponse(w, `Here you go: {dishName: "Poha", ingredients_used: [{name: "poha", quantity: "1 cup"}]}`)
	}))
	defer server.Close()

	dish, err := newTestClient(server.URL).ExtractDish(context.Background(), "poha")

	require.NoError(t, err)
	assert.Equal(t, "Poha", dish.DishName)
	assert.Equal(t, []domain.IngredientLine{{Name: "poha", QuantityText: "1 cup"}}, dish.Ingredients)
}

func TestExtractDish_Malformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		textResponse(w, `{"dishName": "Poha", "ingredients_used": [`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).ExtractDish(context.Background(), "poha")

	assert.ErrorIs(t, err, domain.ErrMalformedPayload)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{name: "short input unchanged", in: "dal", n: 10, want: "dal"},
		{name: "ascii cut", in: "paneer tikka", n: 6, want: "paneer..."},
		{name: "backs off a split rune", in: "aé", n: 2, want: "a..."},
		{name: "multi-byte boundary kept", in: "ééé", n: 4, want: "éé..."},
		{name: "devanagari", in: "दाल मखनी", n: 4, want: "द..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.n)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
