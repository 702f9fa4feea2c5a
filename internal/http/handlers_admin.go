package httpx

import (
	"net/http"

	"github.com/alemt19/ats-sub001/internal/domain"
	"github.com/alemt19/ats-sub001/internal/schema"
)

func (r *Router) handleListUsers(w http.ResponseWriter, req *http.Request) {
	var q schema.UserListQuery
	if err := r.validator.BindQuery(req.URL.Query(), &q); err != nil {
		r.fail(w, req, err)
		return
	}
	limit, offset := page(q.ListQuery)
	list, total, err := r.svc.Auth.ListUsers(req.Context(), domain.UserFilter{Role: q.Role, Query: q.Query, Limit: limit, Offset: offset})
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeList(w, "Users retrieved", list, total, limit, offset)
}

func (r *Router) handleUpdateRole(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	var in schema.RoleInput
	if err := r.bind(req, &in); err != nil {
		r.fail(w, req, err)
		return
	}
	updated, err := r.svc.Auth.UpdateRole(req.Context(), userFrom(req.Context()).ID, id, in.Role)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, "Role updated", updated)
}

func (r *Router) handleDashboard(w http.ResponseWriter, req *http.Request) {
	overview, err := r.svc.Dashboard.Overview(req.Context())
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, "Dashboard retrieved", overview)
}

func (r *Router) handleDashboardSummary(w http.ResponseWriter, req *http.Request) {
	summary, err := r.svc.Dashboard.Summary(req.Context())
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, "Dashboard summary retrieved", summary)
}

func (r *Router) handleDashboardApplications(w http.ResponseWriter, req *http.Request) {
	var q schema.DashboardRangeQuery
	if err := r.validator.BindQuery(req.URL.Query(), &q); err != nil {
		r.fail(w, req, err)
		return
	}
	series, err := r.svc.Dashboard.Applications(req.Context(), q)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, "Application series retrieved", series)
}
