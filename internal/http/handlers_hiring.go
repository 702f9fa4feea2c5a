package httpx

import (
	"net/http"

	"github.com/alemt19/ats-sub001/internal/domain"
	"github.com/alemt19/ats-sub001/internal/schema"
)

func (r *Router) handleListCompanies(w http.ResponseWriter, req *http.Request) {
	var q schema.ListQuery
	if err := r.validator.BindQuery(req.URL.Query(), &q); err != nil {
		r.fail(w, req, err)
		return
	}
	limit, offset := page(q)
	list, total, err := r.svc.Companies.List(req.Context(), domain.CompanyFilter{Query: q.Query, Limit: limit, Offset: offset})
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeList(w, "Companies retrieved", list, total, limit, offset)
}

func (r *Router) handleCreateCompany(w http.ResponseWriter, req *http.Request) {
	var in schema.CompanyInput
	if err := r.bind(req, &in); err != nil {
		r.fail(w, req, err)
		return
	}
	created, err := r.svc.Companies.Create(req.Context(), userFrom(req.Context()).ID, in)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusCreated, "Company created", created)
}

func (r *Router) handleGetCompany(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	found, err := r.svc.Companies.Get(req.Context(), id)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, "Company retrieved", found)
}

func (r *Router) handleUpdateCompany(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	var in schema.CompanyInput
	if err := r.bind(req, &in); err != nil {
		r.fail(w, req, err)
		return
	}
	updated, err := r.svc.Companies.Update(req.Context(), id, in)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, "Company updated", updated)
}

func (r *Router) handleDeleteCompany(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	if err := r.svc.Companies.Delete(req.Context(), id); err != nil {
		r.fail(w, req, err)
		return
	}
	writeNoContent(w, "Company deleted")
}

func (r *Router) handleListJobs(w http.ResponseWriter, req *http.Request) {
	var q schema.JobListQuery
	if err := r.validator.BindQuery(req.URL.Query(), &q); err != nil {
		r.fail(w, req, err)
		return
	}
	limit, offset := page(q.ListQuery)
	filter := domain.JobFilter{
		Status:    q.Status,
		CompanyID: q.CompanyID,
		WorkMode:  q.WorkMode,
		Query:     q.Query,
		Limit:     limit,
		Offset:    offset,
	}
	list, total, err := r.svc.Jobs.List(req.Context(), userFrom(req.Context()), filter)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeList(w, "Jobs retrieved", list, total, limit, offset)
}

func (r *Router) handleCreateJob(w http.ResponseWriter, req *http.Request) {
	var in schema.JobInput
	if err := r.bind(req, &in); err != nil {
		r.fail(w, req, err)
		return
	}
	created, err := r.svc.Jobs.Create(req.Context(), userFrom(req.Context()).ID, in)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusCreated, "Job created", created)
}

func (r *Router) handleGetJob(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	found, err := r.svc.Jobs.Get(req.Context(), userFrom(req.Context()), id)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, "Job retrieved", found)
}

func (r *Router) handleUpdateJob(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	var in schema.JobInput
	if err := r.bind(req, &in); err != nil {
		r.fail(w, req, err)
		return
	}
	updated, err := r.svc.Jobs.Update(req.Context(), id, in)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, "Job updated", updated)
}

func (r *Router) handleUpdateJobStatus(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	var in schema.JobStatusInput
	if err := r.bind(req, &in); err != nil {
		r.fail(w, req, err)
		return
	}
	updated, err := r.svc.Jobs.UpdateStatus(req.Context(), id, in.Status)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, "Job status updated", updated)
}

func (r *Router) handleDeleteJob(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	if err := r.svc.Jobs.Delete(req.Context(), id); err != nil {
		r.fail(w, req, err)
		return
	}
	writeNoContent(w, "Job deleted")
}

func (r *Router) handleApply(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	var in schema.ApplyInput
	if req.ContentLength != 0 {
		if err := r.bind(req, &in); err != nil {
			r.fail(w, req, err)
			return
		}
	}
	created, err := r.svc.Applications.Apply(req.Context(), userFrom(req.Context()), id, in)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusCreated, "Application submitted", created)
}

func (r *Router) handleListCandidates(w http.ResponseWriter, req *http.Request) {
	var q schema.CandidateListQuery
	if err := r.validator.BindQuery(req.URL.Query(), &q); err != nil {
		r.fail(w, req, err)
		return
	}
	limit, offset := page(q.ListQuery)
	list, total, err := r.svc.Candidates.List(req.Context(), domain.CandidateFilter{Query: q.Query, Skill: q.Skill, Limit: limit, Offset: offset})
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeList(w, "Candidates retrieved", list, total, limit, offset)
}

func (r *Router) handleCreateCandidate(w http.ResponseWriter, req *http.Request) {
	var in schema.CandidateInput
	if err := r.bind(req, &in); err != nil {
		r.fail(w, req, err)
		return
	}
	created, err := r.svc.Candidates.Create(req.Context(), in)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusCreated, "Candidate created", created)
}

func (r *Router) handleGetCandidate(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	found, err := r.svc.Candidates.Get(req.Context(), id)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, "Candidate retrieved", found)
}

func (r *Router) handleUpdateCandidate(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	var in schema.CandidateInput
	if err := r.bind(req, &in); err != nil {
		r.fail(w, req, err)
		return
	}
	updated, err := r.svc.Candidates.Update(req.Context(), id, in)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, "Candidate updated", updated)
}

func (r *Router) handleDeleteCandidate(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	if err := r.svc.Candidates.Delete(req.Context(), id); err != nil {
		r.fail(w, req, err)
		return
	}
	writeNoContent(w, "Candidate deleted")
}

func (r *Router) handleGetMyProfile(w http.ResponseWriter, req *http.Request) {
	mine, err := r.svc.Candidates.Mine(req.Context(), userFrom(req.Context()).ID)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, "Profile retrieved", mine)
}

func (r *Router) handleUpsertMyProfile(w http.ResponseWriter, req *http.Request) {
	var in schema.CandidateInput
	if err := r.bind(req, &in); err != nil {
		r.fail(w, req, err)
		return
	}
	mine, created, err := r.svc.Candidates.UpsertMine(req.Context(), userFrom(req.Context()), in)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	if created {
		writeData(w, http.StatusCreated, "Profile created", mine)
		return
	}
	writeData(w, http.StatusOK, "Profile updated", mine)
}

func (r *Router) handleListApplications(w http.ResponseWriter, req *http.Request) {
	var q schema.ApplicationListQuery
	if err := r.validator.BindQuery(req.URL.Query(), &q); err != nil {
		r.fail(w, req, err)
		return
	}
	limit, offset := page(q.ListQuery)
	filter := domain.ApplicationFilter{
		JobID:       q.JobID,
		CandidateID: q.CandidateID,
		Status:      q.Status,
		Limit:       limit,
		Offset:      offset,
	}
	list, total, err := r.svc.Applications.List(req.Context(), userFrom(req.Context()), filter)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeList(w, "Applications retrieved", list, total, limit, offset)
}

func (r *Router) handleCreateApplication(w http.ResponseWriter, req *http.Request) {
	var in schema.ApplicationInput
	if err := r.bind(req, &in); err != nil {
		r.fail(w, req, err)
		return
	}
	created, err := r.svc.Applications.Create(req.Context(), userFrom(req.Context()).ID, in)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusCreated, "Application created", created)
}

func (r *Router) handleGetApplication(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	found, err := r.svc.Applications.Get(req.Context(), userFrom(req.Context()), id)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, "Application retrieved", found)
}

func (r *Router) handleApplicationHistory(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	events, err := r.svc.Applications.History(req.Context(), userFrom(req.Context()), id)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, "Application history retrieved", events)
}

func (r *Router) handleUpdateApplicationStatus(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	var in schema.ApplicationStatusInput
	if err := r.bind(req, &in); err != nil {
		r.fail(w, req, err)
		return
	}
	updated, err := r.svc.Applications.UpdateStatus(req.Context(), userFrom(req.Context()).ID, id, in)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, "Application status updated", updated)
}

func (r *Router) handleWithdraw(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	updated, err := r.svc.Applications.Withdraw(req.Context(), userFrom(req.Context()), id)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, "Application withdrawn", updated)
}

func (r *Router) handleDeleteApplication(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	if err := r.svc.Applications.Delete(req.Context(), id); err != nil {
		r.fail(w, req, err)
		return
	}
	writeNoContent(w, "Application deleted")
}
