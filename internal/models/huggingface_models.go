package models

type InferenceRequest struct {
	Inputs string `json:"inputs"`
}

// InferenceLabel is one label/score pair from a hosted text classification
// endpoint. Endpoints answer with either [[...]] or [...].
type InferenceLabel struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type OpenAISentimentResponse struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}
