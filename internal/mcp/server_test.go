package mcp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/saeedalam/dramarec/internal/recommend"
	"github.com/saeedalam/dramarec/pkg/types"
)

func testItems() []types.Item {
	return []types.Item{
		{ID: 0, Title: "Romantic Comedy BL", Genres: []string{"Romantic", "Comedy", "BL"}, Rating: 8},
		{ID: 1, Title: "Dark Thriller BL", Genres: []string{"Dark", "Thriller", "BL"}, Rating: 7},
		{ID: 2, Title: "Romantic Drama BL", Genres: []string{"Romantic", "Drama", "BL"}, Rating: 9},
	}
}

func setupTestServer(t *testing.T) (*Server, *recommend.Live) {
	t.Helper()

	engine, err := recommend.New(testItems(), recommend.Options{})
	if err != nil {
		t.Fatalf("recommend.New failed: %v", err)
	}
	live := recommend.NewLive(engine)

	s, err := NewServer(live, Options{Version: "test", DefaultCount: 2, MaxCount: 10})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return s, live
}

// roundTrip feeds requests through Run and returns the decoded responses.
func roundTrip(t *testing.T, s *Server, requests ...string) []Response {
	t.Helper()

	var out bytes.Buffer
	in := strings.NewReader(strings.Join(requests, "\n") + "\n")
	if err := s.Run(in, &out); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var responses []Response
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var resp Response
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			t.Fatalf("Invalid response %q: %v", scanner.Text(), err)
		}
		responses = append(responses, resp)
	}
	return responses
}

func callTool(name string, id int, args string) string {
	return `{"jsonrpc":"2.0","id":` + itoa(id) + `,"method":"tools/call","params":{"name":"` + name + `","arguments":` + args + `}}`
}

func itoa(i int) string {
	b, _ := json.Marshal(i)
	return string(b)
}

// toolText extracts the text content of a tools/call result.
func toolText(t *testing.T, resp Response) (string, bool) {
	t.Helper()

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected object result, got %#v (error %+v)", resp.Result, resp.Error)
	}
	content := result["content"].([]interface{})
	text := content[0].(map[string]interface{})["text"].(string)
	isError, _ := result["isError"].(bool)
	return text, isError
}

func TestInitializeAndList(t *testing.T) {
	s, _ := setupTestServer(t)

	responses := roundTrip(t, s,
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
	)
	if len(responses) != 2 {
		t.Fatalf("Expected 2 responses, got %d", len(responses))
	}

	info := responses[0].Result.(map[string]interface{})["serverInfo"].(map[string]interface{})
	if info["name"] != "dramarec" || info["version"] != "test" {
		t.Errorf("Unexpected server info %v", info)
	}

	tools := responses[1].Result.(map[string]interface{})["tools"].([]interface{})
	names := make(map[string]bool)
	for _, tool := range tools {
		names[tool.(map[string]interface{})["name"].(string)] = true
	}
	for _, want := range []string{"recommend", "resolve", "top_rated", "search", "get_item", "get_stats", "reload"} {
		if !names[want] {
			t.Errorf("Tool %q not listed", want)
		}
	}
	if len(names) != len(s.tools) {
		t.Errorf("Listed %d tools but %d are registered", len(names), len(s.tools))
	}
}

func TestRecommendTool(t *testing.T) {
	s, _ := setupTestServer(t)

	responses := roundTrip(t, s, callTool("recommend", 1, `{"query":"romantic comedy","count":1}`))
	text, isError := toolText(t, responses[0])
	if isError {
		t.Fatalf("Unexpected tool error: %s", text)
	}

	var result types.RecommendationResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		t.Fatalf("Decoding result failed: %v", err)
	}
	if result.Subject.ID != 0 || len(result.Recommendations) != 1 {
		t.Fatalf("Unexpected result %+v", result)
	}
	if result.Recommendations[0].Item.Title != "Romantic Drama BL" {
		t.Errorf("Expected 'Romantic Drama BL', got %q", result.Recommendations[0].Item.Title)
	}
}

func TestRecommendToolErrors(t *testing.T) {
	s, _ := setupTestServer(t)

	responses := roundTrip(t, s,
		callTool("recommend", 1, `{"query":"qwxzv"}`),
		callTool("recommend", 2, `{"query":"romantic","count":0}`),
		callTool("recommend", 3, `{"query":"romantic","count":99}`),
		callTool("recommend", 4, `{}`),
	)
	for i, resp := range responses {
		text, isError := toolText(t, resp)
		if !isError {
			t.Errorf("Request %d: expected tool error, got %s", i+1, text)
		}
	}
}

func TestRecommendCacheIsPurgedOnSwap(t *testing.T) {
	s, live := setupTestServer(t)

	roundTrip(t, s, callTool("recommend", 1, `{"query":"Dark Thriller BL"}`))
	if s.cache.Len() != 1 {
		t.Fatalf("Expected 1 cached result, got %d", s.cache.Len())
	}
	roundTrip(t, s, callTool("recommend", 2, `{"query":"Dark Thriller BL"}`))
	if s.cache.Len() != 1 {
		t.Errorf("Expected repeat query to hit the cache, got %d entries", s.cache.Len())
	}

	replacement, err := recommend.New(testItems()[:2], recommend.Options{})
	if err != nil {
		t.Fatalf("recommend.New failed: %v", err)
	}
	live.Swap(replacement)

	if s.cache.Len() != 0 {
		t.Errorf("Expected cache to be purged on swap, got %d entries", s.cache.Len())
	}

	responses := roundTrip(t, s, callTool("recommend", 3, `{"query":"Dark Thriller BL","count":5}`))
	text, _ := toolText(t, responses[0])
	var result types.RecommendationResult
	json.Unmarshal([]byte(text), &result)
	if len(result.Recommendations) != 1 {
		t.Errorf("Expected answer from the new engine, got %+v", result.Recommendations)
	}
}

func TestResolveTool(t *testing.T) {
	s, _ := setupTestServer(t)

	responses := roundTrip(t, s,
		callTool("resolve", 1, `{"query":"Rmantic Comdy"}`),
		callTool("resolve", 2, `{"query":"qwxzv"}`),
	)

	var hit map[string]interface{}
	text, _ := toolText(t, responses[0])
	json.Unmarshal([]byte(text), &hit)
	if hit["matched"] != true || hit["method"] != "fuzzy" || hit["item_id"] != float64(0) {
		t.Errorf("Unexpected resolution %v", hit)
	}

	var miss map[string]interface{}
	text, isError := toolText(t, responses[1])
	if isError {
		t.Fatalf("Expected a miss to be a normal result, got error %s", text)
	}
	json.Unmarshal([]byte(text), &miss)
	if miss["matched"] != false || miss["threshold"] != float64(60) {
		t.Errorf("Unexpected miss %v", miss)
	}
}

func TestTopRatedTool(t *testing.T) {
	s, _ := setupTestServer(t)

	responses := roundTrip(t, s,
		callTool("top_rated", 1, `{"page":1,"page_size":2}`),
		callTool("top_rated", 2, `{"page":-1}`),
	)

	var page struct {
		Items      []types.Item `json:"items"`
		TotalPages int          `json:"total_pages"`
	}
	text, _ := toolText(t, responses[0])
	json.Unmarshal([]byte(text), &page)
	if len(page.Items) != 2 || page.Items[0].Title != "Romantic Drama BL" || page.TotalPages != 2 {
		t.Errorf("Unexpected page %+v", page)
	}

	if _, isError := toolText(t, responses[1]); !isError {
		t.Error("Expected error for negative page")
	}
}

func TestSearchAndGetItemTools(t *testing.T) {
	s, _ := setupTestServer(t)

	responses := roundTrip(t, s,
		callTool("search", 1, `{"keyword":"romantic","count":5}`),
		callTool("get_item", 2, `{"id":1}`),
		callTool("get_item", 3, `{"id":42}`),
	)

	var found types.SearchResult
	text, _ := toolText(t, responses[0])
	json.Unmarshal([]byte(text), &found)
	if len(found.Items) != 2 {
		t.Errorf("Expected 2 search hits, got %+v", found.Items)
	}

	var item types.Item
	text, _ = toolText(t, responses[1])
	json.Unmarshal([]byte(text), &item)
	if item.Title != "Dark Thriller BL" {
		t.Errorf("Unexpected item %+v", item)
	}

	if _, isError := toolText(t, responses[2]); !isError {
		t.Error("Expected error for unknown id")
	}
}

func TestStatsAndReloadWithoutWatcher(t *testing.T) {
	s, _ := setupTestServer(t)

	responses := roundTrip(t, s,
		callTool("get_stats", 1, `{}`),
		callTool("reload", 2, `{}`),
	)

	var stats map[string]interface{}
	text, _ := toolText(t, responses[0])
	json.Unmarshal([]byte(text), &stats)
	engine := stats["engine"].(map[string]interface{})
	if engine["items"] != float64(3) || stats["engine_version"] != float64(1) {
		t.Errorf("Unexpected stats %v", stats)
	}

	if _, isError := toolText(t, responses[1]); !isError {
		t.Error("Expected reload to fail without a watcher")
	}
}

func TestUnknownMethodAndTool(t *testing.T) {
	s, _ := setupTestServer(t)

	responses := roundTrip(t, s,
		`{"jsonrpc":"2.0","id":1,"method":"resources/list"}`,
		callTool("delete_everything", 2, `{}`),
		`not json`,
	)
	if len(responses) != 2 {
		t.Fatalf("Expected 2 responses, got %d", len(responses))
	}
	for _, resp := range responses {
		if resp.Error == nil || resp.Error.Code != codeMethodNotFound {
			t.Errorf("Expected method-not-found error, got %+v", resp)
		}
	}
}
