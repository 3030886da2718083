package types

// UserProfile is the signed-in user's profile.
type UserProfile struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Major           string  `json:"major"`
	GPA             string  `json:"gpa"`
	PreferredRole   string  `json:"preferredRole"`
	Location        *string `json:"location"`
	ProfileImageURL *string `json:"profileImageUrl"`
}

// Validate validates the UserProfile using the validator.
func (p *UserProfile) Validate() error {
	return validate.Struct(p)
}

// MajorOrEmpty returns the profile's major, tolerating a nil profile.
func (p *UserProfile) MajorOrEmpty() string {
	if p == nil {
		return ""
	}
	return p.Major
}

// ProfileUpdate is the editable subset of a profile.
type ProfileUpdate struct {
	Name          string  `json:"name" validate:"required"`
	PreferredRole string  `json:"preferredRole"`
	Location      *string `json:"location"`
	GPA           string  `json:"gpa"`
}

// Validate validates the ProfileUpdate using the validator.
func (u *ProfileUpdate) Validate() error {
	return validate.Struct(u)
}

// UpdateFrom returns the editable fields of p.
func UpdateFrom(p *UserProfile) ProfileUpdate {
	return ProfileUpdate{
		Name:          p.Name,
		PreferredRole: p.PreferredRole,
		Location:      p.Location,
		GPA:           p.GPA,
	}
}

// ResumeTextRequest asks the backend to derive a profile from resume text.
type ResumeTextRequest struct {
	ResumeText string `json:"resumeText" validate:"required"`
}

// Validate validates the ResumeTextRequest using the validator.
func (r *ResumeTextRequest) Validate() error {
	return validate.Struct(r)
}
