package schema

// ListQuery carries paging and search parameters shared by list endpoints.
type ListQuery struct {
	Query  string `query:"q" validate:"omitempty,max=120"`
	Limit  int    `query:"limit" validate:"gte=0,lte=100"`
	Offset int    `query:"offset" validate:"gte=0"`
}

// JobListQuery extends ListQuery with job filters.
type JobListQuery struct {
	ListQuery
	Status    string `query:"status" validate:"omitempty,oneof=draft open closed"`
	CompanyID string `query:"company_id" validate:"omitempty,uuid"`
	WorkMode  string `query:"work_mode" validate:"omitempty,oneof=onsite remote hybrid"`
}

// CandidateListQuery extends ListQuery with a skill filter.
type CandidateListQuery struct {
	ListQuery
	Skill string `query:"skill" validate:"omitempty,max=50"`
}

// ApplicationListQuery filters applications.
type ApplicationListQuery struct {
	ListQuery
	JobID       string `query:"job_id" validate:"omitempty,uuid"`
	CandidateID string `query:"candidate_id" validate:"omitempty,uuid"`
	Status      string `query:"status" validate:"omitempty,oneof=applied screening interview offer hired rejected withdrawn"`
}

// UserListQuery filters users in the admin area.
type UserListQuery struct {
	ListQuery
	Role string `query:"role" validate:"omitempty,oneof=admin recruiter candidate"`
}

// DashboardRangeQuery selects the window of the applications chart.
type DashboardRangeQuery struct {
	From     string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To       string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	Interval string `query:"interval" validate:"omitempty,oneof=day week month"`
}
