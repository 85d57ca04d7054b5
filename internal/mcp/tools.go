package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/saeedalam/dramarec/internal/recommend"
	"github.com/saeedalam/dramarec/pkg/types"
)

// decodeArgs tolerates absent arguments; malformed ones are an error.
func decodeArgs(params json.RawMessage, v interface{}) error {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	if err := json.Unmarshal(params, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func (s *Server) count(requested *int) (int, error) {
	if requested == nil {
		return s.opts.DefaultCount, nil
	}
	if *requested <= 0 {
		return 0, &recommend.InvalidCountError{Count: *requested}
	}
	if *requested > s.opts.MaxCount {
		return 0, fmt.Errorf("count %d exceeds maximum %d", *requested, s.opts.MaxCount)
	}
	return *requested, nil
}

func (s *Server) handleRecommend(params json.RawMessage) (interface{}, error) {
	var p struct {
		Query string `json:"query"`
		ID    *int   `json:"id"`
		Count *int   `json:"count"`
	}
	if err := decodeArgs(params, &p); err != nil {
		return nil, err
	}
	if p.Query == "" && p.ID == nil {
		return nil, fmt.Errorf("query or id is required")
	}

	count, err := s.count(p.Count)
	if err != nil {
		return nil, err
	}

	key := cacheKey{version: s.live.Version(), query: p.Query, id: -1, count: count}
	if p.ID != nil {
		key.query, key.id = "", *p.ID
	}
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	engine := s.live.Engine()
	var result *types.RecommendationResult
	if p.ID != nil {
		result, err = engine.RecommendByID(*p.ID, count)
	} else {
		result, err = engine.Recommend(p.Query, count)
	}
	if err != nil {
		return nil, err
	}

	s.cache.Add(key, result)
	return result, nil
}

func (s *Server) handleResolve(params json.RawMessage) (interface{}, error) {
	var p struct {
		Query string `json:"query"`
	}
	if err := decodeArgs(params, &p); err != nil {
		return nil, err
	}

	res, err := s.live.Engine().Resolve(p.Query)
	if err != nil {
		var noMatch *recommend.NoMatchError
		if errors.As(err, &noMatch) {
			// A miss is an answer, not a failure.
			return map[string]interface{}{
				"matched":    false,
				"query":      noMatch.Query,
				"best_title": noMatch.BestTitle,
				"best_score": noMatch.BestScore,
				"threshold":  noMatch.Threshold,
			}, nil
		}
		return nil, err
	}

	return map[string]interface{}{
		"matched": true,
		"item_id": res.ItemID,
		"title":   res.Title,
		"method":  res.Method,
		"score":   res.Score,
	}, nil
}

func (s *Server) handleTopRated(params json.RawMessage) (interface{}, error) {
	var p struct {
		Page     int `json:"page"`
		PageSize int `json:"page_size"`
	}
	if err := decodeArgs(params, &p); err != nil {
		return nil, err
	}
	if p.Page == 0 {
		p.Page = 1
	}
	if p.PageSize == 0 {
		p.PageSize = s.opts.PageSize
	}

	engine := s.live.Engine()
	items, err := engine.TopRated(p.Page, p.PageSize)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"items":       items,
		"page":        p.Page,
		"page_size":   p.PageSize,
		"total_pages": engine.TotalPages(p.PageSize),
	}, nil
}

func (s *Server) handleSearch(params json.RawMessage) (interface{}, error) {
	var p struct {
		Keyword string `json:"keyword"`
		Count   *int   `json:"count"`
	}
	if err := decodeArgs(params, &p); err != nil {
		return nil, err
	}

	count, err := s.count(p.Count)
	if err != nil {
		return nil, err
	}

	return s.live.Engine().Search(p.Keyword, count)
}

func (s *Server) handleGetItem(params json.RawMessage) (interface{}, error) {
	var p struct {
		ID *int `json:"id"`
	}
	if err := decodeArgs(params, &p); err != nil {
		return nil, err
	}
	if p.ID == nil {
		return nil, fmt.Errorf("id is required")
	}

	item, ok := s.live.Engine().Item(*p.ID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", recommend.ErrUnknownItem, *p.ID)
	}
	return item, nil
}

func (s *Server) handleGetStats(params json.RawMessage) (interface{}, error) {
	stats := map[string]interface{}{
		"engine":         s.live.Engine().Stats(),
		"engine_version": s.live.Version(),
		"swapped_at":     s.live.SwappedAt().UTC().Format(time.RFC3339),
		"cached_results": s.cache.Len(),
	}
	if s.watcher != nil {
		stats["watcher"] = s.watcher.GetStats()
	}
	return stats, nil
}

func (s *Server) handleReload(params json.RawMessage) (interface{}, error) {
	if s.watcher == nil {
		return nil, fmt.Errorf("reload is not available without a dataset")
	}
	if err := s.watcher.Rebuild(); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"reloaded":       true,
		"engine_version": s.live.Version(),
		"items":          s.live.Engine().Stats().Items,
	}, nil
}
