package server

import "github.com/pdrpinto/sokoban"

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// SolveRequest is the body of POST /v1/sokoban/solve.
type SolveRequest struct {
	// Warehouse is the warehouse text, with an optional weights line.
	Warehouse     string `json:"warehouse" binding:"required"`
	Workers       int    `json:"workers" binding:"gte=0,lte=64"`
	MaxExpansions int    `json:"max_expansions" binding:"gte=0"`
	// TimeoutMs is capped by the server's own limit.
	TimeoutMs int `json:"timeout_ms" binding:"gte=0"`
}

type SolveResponse struct {
	Solved    bool             `json:"solved"`
	Actions   []sokoban.Action `json:"actions"`
	Cost      int              `json:"cost"`
	Expanded  int              `json:"expanded"`
	ElapsedMs int64            `json:"elapsed_ms"`
	Cached    bool             `json:"cached"`
	Result    string           `json:"result"`
}

type TabooRequest struct {
	Warehouse string `json:"warehouse" binding:"required"`
}

type TabooResponse struct {
	Taboo string          `json:"taboo"`
	Cells []sokoban.Coord `json:"cells"`
	Count int             `json:"count"`
}

type CheckRequest struct {
	Warehouse string   `json:"warehouse" binding:"required"`
	Actions   []string `json:"actions"`
}

type CheckResponse struct {
	Legal    bool   `json:"legal"`
	FailedAt int    `json:"failed_at"`
	Result   string `json:"result"`
}

// ExploreRequest asks for the first Steps expansions of a search.
type ExploreRequest struct {
	Warehouse string `json:"warehouse" binding:"required"`
	Steps     int    `json:"steps" binding:"required,gte=1,lte=10000"`
}

type ExploreStep struct {
	Step     int             `json:"step"`
	Worker   sokoban.Coord   `json:"worker"`
	Boxes    []sokoban.Coord `json:"boxes"`
	Frontier int             `json:"frontier"`
	Explored int             `json:"explored"`
	Estimate float64         `json:"estimate"`
}

type ExploreResponse struct {
	Steps   []ExploreStep    `json:"steps"`
	Done    bool             `json:"done"`
	Found   bool             `json:"found"`
	Actions []sokoban.Action `json:"actions,omitempty"`
	Cost    float64          `json:"cost,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
