package reasoning

// Stage names used to attribute rationale entries in the evidence trail.
const (
	StageClassification = "classification"
	StagePatterns       = "patterns"
	StageLanguage       = "language"
	StageAggregate      = "aggregate"
)

// classifyRequest is the stage 1 payload: initial ticket classification.
type classifyRequest struct {
	TicketText string `json:"ticket_text"`
}

// classifyResponse carries the stage 1 sub-ratings on a 0-10 scale plus
// a free-text rationale.
type classifyResponse struct {
	Legitimacy *float64 `json:"legitimacy"`
	Urgency    *float64 `json:"urgency"`
	Fraud      *float64 `json:"fraud"`
	Rationale  string   `json:"rationale"`
}

// patternRequest is the stage 2 payload: rate the pattern risk given the
// similarity matches retrieved for this ticket.
type patternRequest struct {
	TicketText string  `json:"ticket_text"`
	Matches    []Match `json:"matches"`
}

type patternResponse struct {
	RiskRating *float64 `json:"risk_rating"`
	Patterns   []string `json:"patterns"`
	Rationale  string   `json:"rationale"`
}

// languageRequest is the stage 3 payload: language and sentiment
// analysis for manipulation indicators.
type languageRequest struct {
	TicketText string `json:"ticket_text"`
}

type languageResponse struct {
	Indicators []string `json:"manipulation_indicators"`
	Rationale  string   `json:"rationale"`
}

// aggregateRequest is the stage 4 payload. It consumes the outputs of
// stages 1-3 and produces the single combined rating.
type aggregateRequest struct {
	Classification classifyResponse `json:"classification"`
	Patterns       patternResponse  `json:"patterns"`
	Language       languageResponse `json:"language"`
}

// aggregateResponse carries the combined 0-10 rating with its textual
// explanation. The rating is normalized to the 0-1000 scale by the
// client.
type aggregateResponse struct {
	Rating      *float64 `json:"rating"`
	Explanation string   `json:"explanation"`
}
