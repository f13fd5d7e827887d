package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AndreCurotec/funeral-home-agent/internal/config"
	"github.com/AndreCurotec/funeral-home-agent/internal/model"
)

func TestParseFuneralHomeLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want *model.FuneralHome
	}{
		{
			name: "full line",
			line: "ID - 123 | ABC Funeral Home In Austin, rating: 4.5, and estimated price of $3,500",
			want: &model.FuneralHome{ID: "123", Name: "ABC Funeral Home", Location: "Austin", Rating: 4.5, Price: "$3,500"},
		},
		{
			name: "no location segment",
			line: "ID - 7 | Quiet Meadows, rating: 3.9, and estimated price of $2,100",
			want: &model.FuneralHome{ID: "7", Name: "Quiet Meadows", Location: "Unknown", Rating: 3.9, Price: "$2,100"},
		},
		{
			// without the rating marker the location segment swallows the tail
			name: "no rating",
			line: "ID - 55 | Hillside Chapel In Dallas, and estimated price of $4,000",
			want: &model.FuneralHome{ID: "55", Name: "Hillside Chapel", Location: "Dallas, and estimated price of $4,000", Rating: 0, Price: "$4,000"},
		},
		{
			name: "no price",
			line: "ID - 9 | Riverside Home In Miami, rating: 4.1",
			want: &model.FuneralHome{ID: "9", Name: "Riverside Home", Location: "Miami", Rating: 4.1, Price: "N/A"},
		},
		{
			name: "missing separator",
			line: "just some text without the pipe",
			want: nil,
		},
		{
			name: "empty",
			line: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFuneralHomeLine(tt.line)

			if tt.want == nil {
				if got != nil {
					t.Errorf("Expected nil, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("Expected a parsed funeral home, got nil")
			}
			if *got != *tt.want {
				t.Errorf("parseFuneralHomeLine() = %+v, want %+v", *got, *tt.want)
			}
		})
	}
}

func TestParseSearchBody(t *testing.T) {
	t.Run("object with candidate", func(t *testing.T) {
		body := []byte(`{"location": "Austin", "new_funeral_home": "ID - 42 | Oak Grove In Austin, rating: 4.8, and estimated price of $2,900"}`)
		homes, err := parseSearchBody(body)
		if err != nil {
			t.Fatalf("parseSearchBody() error = %v", err)
		}
		if len(homes) != 1 || homes[0].ID != "42" {
			t.Errorf("Expected one home with ID 42, got %v", homes)
		}
	})

	t.Run("object without candidate means exhausted", func(t *testing.T) {
		_, err := parseSearchBody([]byte(`{"location": "Austin"}`))
		if !errors.Is(err, ErrNoMoreResults) {
			t.Errorf("Expected ErrNoMoreResults, got %v", err)
		}
	})

	t.Run("array form", func(t *testing.T) {
		body := []byte(`[{"id": "1", "name": "A"}, {"id": "2", "name": "B"}]`)
		homes, err := parseSearchBody(body)
		if err != nil {
			t.Fatalf("parseSearchBody() error = %v", err)
		}
		if len(homes) != 2 {
			t.Errorf("Expected 2 homes, got %d", len(homes))
		}
	})

	t.Run("unparseable candidate contributes nothing", func(t *testing.T) {
		body := []byte(`{"new_funeral_home": "garbled text with no pipe"}`)
		homes, err := parseSearchBody(body)
		if err != nil {
			t.Fatalf("parseSearchBody() error = %v", err)
		}
		if homes != nil {
			t.Errorf("Expected nil homes, got %v", homes)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := parseSearchBody([]byte(`{broken`))
		var provErr *ProviderError
		if !errors.As(err, &provErr) {
			t.Errorf("Expected ProviderError, got %v", err)
		}
	})
}

func TestMockFuneralHomes(t *testing.T) {
	client := NewEazewellClient(&config.EazewellConfig{BaseURL: "http://unused", TestPhone: "+15551234567", Timeout: 5})
	req := completeRequirements()

	wantIDs := map[int]string{1: "101", 2: "202", 3: "303"}
	for page, wantID := range wantIDs {
		homes, err := client.mockFuneralHomes(req, page)
		if err != nil {
			t.Fatalf("mockFuneralHomes(page %d) error = %v", page, err)
		}
		if len(homes) != 1 {
			t.Fatalf("Expected 1 mock home on page %d, got %d", page, len(homes))
		}
		if homes[0].ID != wantID {
			t.Errorf("Page %d: expected ID %s, got %s", page, wantID, homes[0].ID)
		}
		if homes[0].Location != "Austin" {
			t.Errorf("Page %d: expected mock location Austin, got %s", page, homes[0].Location)
		}
	}

	for _, page := range []int{0, 4, 99} {
		if _, err := client.mockFuneralHomes(req, page); !errors.Is(err, ErrNoMoreResults) {
			t.Errorf("Page %d: expected ErrNoMoreResults, got %v", page, err)
		}
	}
}

func TestExtractCityAndState(t *testing.T) {
	tests := []struct {
		location  string
		wantCity  string
		wantState string
	}{
		{"Austin, TX", "Austin", "TX"},
		{"Austin, Texas", "Austin", "TX"},
		{"Miami, Florida", "Miami", "FL"},
		{"Portland, Oregon", "Portland", "Oregon"},
		{"Houston", "Houston", ""},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			if got := extractCity(tt.location); got != tt.wantCity {
				t.Errorf("extractCity(%q) = %q, want %q", tt.location, got, tt.wantCity)
			}
			if got := extractState(tt.location); got != tt.wantState {
				t.Errorf("extractState(%q) = %q, want %q", tt.location, got, tt.wantState)
			}
		})
	}
}

func TestSearchPage_StatusRouting(t *testing.T) {
	var lastBody map[string]interface{}
	status := http.StatusOK
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&lastBody)
		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = w.Write([]byte(`{"new_funeral_home": "ID - 42 | Oak Grove In Austin, rating: 4.8, and estimated price of $2,900"}`))
		}
	}))
	defer server.Close()

	client := NewEazewellClient(&config.EazewellConfig{BaseURL: server.URL, TestPhone: "+15551234567", Timeout: 5})
	req := completeRequirements()

	t.Run("200 parses candidate", func(t *testing.T) {
		status = http.StatusOK
		homes, err := client.SearchPage(context.Background(), req, 1)
		if err != nil {
			t.Fatalf("SearchPage() error = %v", err)
		}
		if len(homes) != 1 || homes[0].ID != "42" {
			t.Errorf("Expected home 42, got %v", homes)
		}

		// Request carries the caller envelope and search args
		call := lastBody["call"].(map[string]interface{})
		vars := call["retell_llm_dynamic_variables"].(map[string]interface{})
		if vars["user_number"] != "+15551234567" {
			t.Errorf("Expected user_number in envelope, got %v", vars["user_number"])
		}
		args := lastBody["args"].(map[string]interface{})
		if args["location"] != "Austin, TX" || args["page"] != float64(1) || args["get_cheapest"] != true {
			t.Errorf("Unexpected search args: %v", args)
		}
	})

	t.Run("404 serves mock data", func(t *testing.T) {
		status = http.StatusNotFound
		homes, err := client.SearchPage(context.Background(), req, 2)
		if err != nil {
			t.Fatalf("SearchPage() error = %v", err)
		}
		if len(homes) != 1 || homes[0].ID != "202" {
			t.Errorf("Expected mock home 202, got %v", homes)
		}
	})

	t.Run("500 is a provider error", func(t *testing.T) {
		status = http.StatusInternalServerError
		_, err := client.SearchPage(context.Background(), req, 1)
		var provErr *ProviderError
		if !errors.As(err, &provErr) {
			t.Fatalf("Expected ProviderError, got %v", err)
		}
		if provErr.Page != 1 {
			t.Errorf("Expected page 1 in error, got %d", provErr.Page)
		}
	})

	t.Run("missing fields rejected before any call", func(t *testing.T) {
		_, err := client.SearchPage(context.Background(), &model.UserRequirements{}, 1)
		if err == nil {
			t.Error("Expected an error for missing requirement fields")
		}
	})
}

func TestUpdateQuote(t *testing.T) {
	var lastBody map[string]interface{}
	status := http.StatusOK
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&lastBody)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewEazewellClient(&config.EazewellConfig{BaseURL: server.URL, TestPhone: "+15551234567", Timeout: 5})
	req := completeRequirements()

	t.Run("200 succeeds", func(t *testing.T) {
		status = http.StatusOK
		if err := client.UpdateQuote(context.Background(), req); err != nil {
			t.Fatalf("UpdateQuote() error = %v", err)
		}
		args := lastBody["args"].(map[string]interface{})
		if args["city"] != "Austin" || args["state"] != "TX" {
			t.Errorf("Expected split city/state, got %v", args)
		}
		if args["contact_preference"] != "phone" {
			t.Errorf("Expected contact_preference phone, got %v", args["contact_preference"])
		}
	})

	t.Run("404 is tolerated", func(t *testing.T) {
		status = http.StatusNotFound
		if err := client.UpdateQuote(context.Background(), req); err != nil {
			t.Errorf("Expected 404 to be tolerated, got %v", err)
		}
	})

	t.Run("500 is a provider error", func(t *testing.T) {
		status = http.StatusInternalServerError
		err := client.UpdateQuote(context.Background(), req)
		var provErr *ProviderError
		if !errors.As(err, &provErr) {
			t.Errorf("Expected ProviderError, got %v", err)
		}
	})

	t.Run("incomplete requirements rejected", func(t *testing.T) {
		err := client.UpdateQuote(context.Background(), &model.UserRequirements{})
		if !errors.Is(err, ErrIncompleteRequirements) {
			t.Errorf("Expected ErrIncompleteRequirements, got %v", err)
		}
	})
}
