package httpx

import (
	"net/http"

	"github.com/alemt19/ats-sub001/internal/domain"
	"github.com/alemt19/ats-sub001/internal/schema"
	"github.com/alemt19/ats-sub001/internal/service/auth"
)

type session struct {
	User   *domain.User   `json:"user"`
	Tokens auth.TokenPair `json:"tokens"`
}

func (r *Router) handleRegister(w http.ResponseWriter, req *http.Request) {
	var in schema.RegisterInput
	if err := r.bind(req, &in); err != nil {
		r.fail(w, req, err)
		return
	}
	user, tokens, err := r.svc.Auth.Register(req.Context(), in)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusCreated, "Registration successful", session{User: user, Tokens: tokens})
}

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	var in schema.LoginInput
	if err := r.bind(req, &in); err != nil {
		r.fail(w, req, err)
		return
	}
	user, tokens, err := r.svc.Auth.Login(req.Context(), in.Email, in.Password)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, "Login successful", session{User: user, Tokens: tokens})
}

func (r *Router) handleRefresh(w http.ResponseWriter, req *http.Request) {
	var in schema.RefreshInput
	if err := r.bind(req, &in); err != nil {
		r.fail(w, req, err)
		return
	}
	user, tokens, err := r.svc.Auth.Refresh(req.Context(), in.RefreshToken)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, "Token refreshed", session{User: user, Tokens: tokens})
}

func (r *Router) handleMe(w http.ResponseWriter, req *http.Request) {
	writeData(w, http.StatusOK, "Profile retrieved", userFrom(req.Context()))
}

func (r *Router) handleRequestVerification(w http.ResponseWriter, req *http.Request) {
	sent, err := r.svc.Auth.RequestEmailVerification(req.Context(), userFrom(req.Context()).ID)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusAccepted, "Verification code sent", sent)
}

func (r *Router) handleVerifyEmail(w http.ResponseWriter, req *http.Request) {
	var in schema.VerifyEmailInput
	if err := r.bind(req, &in); err != nil {
		r.fail(w, req, err)
		return
	}
	user, err := r.svc.Auth.VerifyEmail(req.Context(), in)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, "Email verified", user)
}

func (r *Router) handleForgotPassword(w http.ResponseWriter, req *http.Request) {
	var in schema.ForgotPasswordInput
	if err := r.bind(req, &in); err != nil {
		r.fail(w, req, err)
		return
	}
	sent, err := r.svc.Auth.ForgotPassword(req.Context(), in)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusAccepted, "If the account exists, a recovery code has been sent", sent)
}

func (r *Router) handleVerifyResetCode(w http.ResponseWriter, req *http.Request) {
	var in schema.VerifyResetCodeInput
	if err := r.bind(req, &in); err != nil {
		r.fail(w, req, err)
		return
	}
	token, err := r.svc.Auth.VerifyResetCode(req.Context(), in)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, "Code verified", token)
}

func (r *Router) handleResetPassword(w http.ResponseWriter, req *http.Request) {
	var in schema.ResetPasswordInput
	if err := r.bind(req, &in); err != nil {
		r.fail(w, req, err)
		return
	}
	if err := r.svc.Auth.ResetPassword(req.Context(), in); err != nil {
		r.fail(w, req, err)
		return
	}
	writeNoContent(w, "Password updated")
}

func (r *Router) handleChangePassword(w http.ResponseWriter, req *http.Request) {
	var in schema.ChangePasswordInput
	if err := r.bind(req, &in); err != nil {
		r.fail(w, req, err)
		return
	}
	if err := r.svc.Auth.ChangePassword(req.Context(), userFrom(req.Context()).ID, in); err != nil {
		r.fail(w, req, err)
		return
	}
	writeNoContent(w, "Password changed")
}
