package schema

// CompanyInput creates or replaces a company.
type CompanyInput struct {
	Name        string `json:"name" validate:"notblank,max=160"`
	Website     string `json:"website" validate:"omitempty,http_url,max=255"`
	Industry    string `json:"industry" validate:"omitempty,max=80"`
	Size        string `json:"size" validate:"omitempty,oneof=1-10 11-50 51-200 201-1000 1000+"`
	Location    string `json:"location" validate:"omitempty,max=120"`
	Description string `json:"description" validate:"omitempty,max=5000"`
}

// JobInput creates or replaces a job.
type JobInput struct {
	CompanyID      string `json:"company_id" validate:"required,uuid"`
	Title          string `json:"title" validate:"notblank,min=3,max=160"`
	Description    string `json:"description" validate:"notblank,min=20,max=20000"`
	Location       string `json:"location" validate:"omitempty,max=120"`
	EmploymentType string `json:"employment_type" validate:"required,oneof=full_time part_time contract internship temporary"`
	WorkMode       string `json:"work_mode" validate:"required,oneof=onsite remote hybrid"`
	SalaryMin      *int64 `json:"salary_min" validate:"omitempty,gte=0"`
	SalaryMax      *int64 `json:"salary_max" validate:"omitempty,gte=0"`
	Currency       string `json:"currency" validate:"omitempty,iso4217"`
	Status         string `json:"status" validate:"omitempty,oneof=draft open closed"`
}

// JobStatusInput opens or closes a job.
type JobStatusInput struct {
	Status string `json:"status" validate:"required,oneof=draft open closed"`
}

// CandidateInput creates or replaces a candidate profile.
type CandidateInput struct {
	FirstName       string   `json:"first_name" validate:"notblank,max=80"`
	LastName        string   `json:"last_name" validate:"notblank,max=80"`
	Email           string   `json:"email" validate:"required,email,max=254"`
	Phone           string   `json:"phone" validate:"omitempty,e164"`
	Location        string   `json:"location" validate:"omitempty,max=120"`
	Headline        string   `json:"headline" validate:"omitempty,max=200"`
	ResumeURL       string   `json:"resume_url" validate:"omitempty,http_url,max=500"`
	Skills          []string `json:"skills" validate:"max=50,unique,dive,notblank,max=50"`
	YearsExperience int      `json:"years_experience" validate:"gte=0,lte=60"`
}

// ApplicationInput files an application on behalf of a candidate.
type ApplicationInput struct {
	JobID       string `json:"job_id" validate:"required,uuid"`
	CandidateID string `json:"candidate_id" validate:"required,uuid"`
	CoverLetter string `json:"cover_letter" validate:"omitempty,max=10000"`
	Source      string `json:"source" validate:"omitempty,oneof=career_site referral linkedin job_board agency other"`
}

// ApplyInput is what a candidate sends when applying to a job.
type ApplyInput struct {
	CoverLetter string `json:"cover_letter" validate:"omitempty,max=10000"`
}

// ApplicationStatusInput moves an application through the pipeline.
type ApplicationStatusInput struct {
	Status string `json:"status" validate:"required,oneof=applied screening interview offer hired rejected withdrawn"`
	Note   string `json:"note" validate:"omitempty,max=2000"`
}
