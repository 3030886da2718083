package types

// MatchingStatusReady marks a matching result whose cards are available.
const MatchingStatusReady = "READY"

// Work types reported for a job.
const (
	WorkTypeRemote = "REMOTE"
	WorkTypeHybrid = "HYBRID"
	WorkTypeOnsite = "ONSITE"
)

// MatchingCard is one AI-matched job shown on the dashboard.
type MatchingCard struct {
	JobID       string   `json:"jobId" validate:"required"`
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Score       float64  `json:"score"`
	Highlights  []string `json:"highlights"`
	WorkType    string   `json:"workType"`
	SourceURL   string   `json:"sourceUrl" validate:"omitempty,url"`
	DistanceKm  *float64 `json:"distanceKm,omitempty"`
	DueDateText string   `json:"dueDateText,omitempty"`
}

// HighlightTags returns the card's highlight tags.
func (c MatchingCard) HighlightTags() []string {
	return c.Highlights
}

// Validate validates the MatchingCard using the validator.
func (c *MatchingCard) Validate() error {
	return validate.Struct(c)
}

// MatchingResponse is the envelope returned by the matching endpoint. Cards
// are only meaningful once Status is READY.
type MatchingResponse struct {
	Status string         `json:"status" validate:"required"`
	Data   []MatchingCard `json:"data" validate:"dive"`
}

// Ready reports whether the backend finished matching.
func (r *MatchingResponse) Ready() bool {
	return r.Status == MatchingStatusReady
}

// Validate validates the MatchingResponse using the validator.
func (r *MatchingResponse) Validate() error {
	return validate.Struct(r)
}

// Breakdown holds the backend sub-scores of a match.
type Breakdown struct {
	Skill         float64 `json:"skill"`
	Accessibility float64 `json:"accessibility"`
	WorkType      float64 `json:"workType"`
}

// MatchingExplain is the detailed analysis of one matched job.
type MatchingExplain struct {
	JobTitle         string    `json:"jobTitle"`
	Score            float64   `json:"score"`
	Breakdown        Breakdown `json:"breakdown"`
	MissingSkills    []string  `json:"missingSkills"`
	ImpossibleReason string    `json:"impossibleReason,omitempty"`
	Company          string    `json:"company,omitempty"`
	CompanyAddress   string    `json:"companyAddress,omitempty"`
}

// Validate validates the MatchingExplain using the validator.
func (e *MatchingExplain) Validate() error {
	return validate.Struct(e)
}

// RecommendedCourse is a course suggested for a skill.
type RecommendedCourse struct {
	Skill string `json:"skill"`
	Title string `json:"title" validate:"required"`
	URL   string `json:"url" validate:"required,url"`
}

// Validate validates the RecommendedCourse using the validator.
func (c *RecommendedCourse) Validate() error {
	return validate.Struct(c)
}
