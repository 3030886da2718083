package types

// JobBoardItem is a listing on the public job board.
type JobBoardItem struct {
	ID          string `json:"id" validate:"required"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	WorkType    string `json:"workType"`
	SourceURL   string `json:"sourceUrl"`
	ViewCount   int    `json:"viewCount" validate:"gte=0"`
	LikeCount   int    `json:"likeCount" validate:"gte=0"`
	DueDateText string `json:"dueDateText,omitempty"`
}

// Validate validates the JobBoardItem using the validator.
func (i *JobBoardItem) Validate() error {
	return validate.Struct(i)
}
