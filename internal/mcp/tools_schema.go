package mcp

// handleToolsList returns the schema definitions for every tool.
func (s *Server) handleToolsList(req *Request) {
	tools := []ToolInfo{
		{
			Name:        "recommend",
			Description: "RECOMMEND SIMILAR DRAMAS. Give a title (typos are fine) or an item id; returns the matched drama and the most similar ones by genres, mood tags, summary and leads.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"query": {Type: "string", Description: "Drama title, exact or approximate"},
					"id":    {Type: "integer", Description: "Item id, used instead of query"},
					"count": {Type: "integer", Description: "Number of recommendations, default 5"},
				},
			},
		},
		{
			Name:        "resolve",
			Description: "FIND WHICH DRAMA A TITLE REFERS TO. Returns the matched item and how it matched (exact, substring, fuzzy), or the closest miss.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"query": {Type: "string", Description: "Title to look up"},
				},
				Required: []string{"query"},
			},
		},
		{
			Name:        "top_rated",
			Description: "BROWSE THE HIGHEST RATED DRAMAS, one page at a time.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"page":      {Type: "integer", Description: "1-based page number, default 1"},
					"page_size": {Type: "integer", Description: "Items per page, default 10"},
				},
			},
		},
		{
			Name:        "search",
			Description: "KEYWORD SEARCH over titles, genres and mood tags.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"keyword": {Type: "string", Description: "Case-insensitive keyword, e.g. 'comedy'"},
					"count":   {Type: "integer", Description: "Max results, default 5"},
				},
				Required: []string{"keyword"},
			},
		},
		{
			Name:        "get_item",
			Description: "GET A DRAMA BY ID.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"id": {Type: "integer", Description: "Item id"},
				},
				Required: []string{"id"},
			},
		},
		{
			Name:        "get_stats",
			Description: "GET ENGINE STATISTICS: catalog size, vocabulary, engine version and watcher activity.",
			InputSchema: InputSchema{
				Type: "object",
			},
		},
		{
			Name:        "reload",
			Description: "RELOAD THE DATASET now and swap in a freshly built engine.",
			InputSchema: InputSchema{
				Type: "object",
			},
		},
	}

	s.sendResult(req.ID, map[string]interface{}{
		"tools": tools,
	})
}
