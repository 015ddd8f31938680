package models

type IngestResponse struct {
	Status    string `json:"status"`
	Processed int    `json:"processed"`
	Rejected  int    `json:"rejected"`
	Dropped   int    `json:"dropped"`
}

type RebuildRequest struct {
	MinGames *int `json:"min_games,omitempty" validate:"omitempty,min=0"`
}

type MatchupListResponse struct {
	Matchups []MatchupView `json:"matchups"`
	Total    int           `json:"total"`
	Limit    int           `json:"limit"`
	Offset   int           `json:"offset"`
}

type CharacterListResponse struct {
	Characters []CharacterProfile `json:"characters"`
	Schema     []string           `json:"schema"`
}

// PredictQuery holds the query string of GET /api/v1/predict.
type PredictQuery struct {
	A string `validate:"required,max=64"`
	B string `validate:"required,max=64"`
}
