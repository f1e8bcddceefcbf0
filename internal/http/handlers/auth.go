package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hongminglow/loyalty-console/internal/auth"
	"github.com/hongminglow/loyalty-console/internal/backend"
	"github.com/hongminglow/loyalty-console/internal/flash"
	"github.com/hongminglow/loyalty-console/internal/models"
	"github.com/hongminglow/loyalty-console/internal/models/dto"
	"github.com/hongminglow/loyalty-console/internal/session"
	"github.com/hongminglow/loyalty-console/internal/view"
)

// PendingCookie carries the signed enrollment between sign-up and OTP verification.
const PendingCookie = "pending_verification"

// AuthAPI is the slice of the backend the auth pages use.
type AuthAPI interface {
	Register(ctx context.Context, req dto.RegisterRequest) (models.User, error)
	Verify(ctx context.Context, req dto.VerifyRequest) error
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
	Logout(ctx context.Context, creds backend.Credentials) error
	User(ctx context.Context, creds backend.Credentials, id string) (models.User, error)
	Me(ctx context.Context, creds backend.Credentials) (models.User, error)
}

// AuthHandler owns the sign-in, sign-up, OTP and logout pages.
type AuthHandler struct {
	pages
	api    AuthAPI
	tokens *auth.TokenManager
	ttl    time.Duration
	secure bool
}

// NewAuthHandler constructs the handler. ttl caps the console session length.
func NewAuthHandler(deps Deps, api AuthAPI, tokens *auth.TokenManager, ttl time.Duration, secure bool) *AuthHandler {
	return &AuthHandler{pages: newPages(deps), api: api, tokens: tokens, ttl: ttl, secure: secure}
}

// Register attaches the public auth routes. Logout is mounted separately
// behind the session middleware.
func (h *AuthHandler) Register(r chi.Router) {
	r.Get("/sign-in", h.signInPage)
	r.Post("/sign-in", h.signIn)
	r.Get("/sign-up", h.signUpPage)
	r.Post("/sign-up", h.signUp)
	r.Post("/verify", h.verify)
}

func (h *AuthHandler) signInPage(w http.ResponseWriter, r *http.Request) {
	if _, err := h.sessions.Load(r); err == nil {
		redirect(w, r, "/dashboard")
		return
	}
	h.render(w, http.StatusOK, view.PageSignIn, view.SignInPage{Layout: h.layout(w, r, "Sign in", "")})
}

func (h *AuthHandler) signIn(w http.ResponseWriter, r *http.Request) {
	page := view.SignInPage{
		Layout: h.layout(w, r, "Sign in", ""),
		Email:  strings.TrimSpace(r.PostFormValue("email")),
	}
	password := r.PostFormValue("password")
	if page.Email == "" || password == "" {
		page.Error = "Email and password are required"
		h.render(w, http.StatusUnprocessableEntity, view.PageSignIn, page)
		return
	}

	resp, err := h.api.Login(r.Context(), dto.LoginRequest{Email: page.Email, Password: password})
	if err != nil {
		h.metrics.ObserveAuth("login", false)
		h.logger.Info("login rejected", zap.String("email", page.Email), zap.Error(err))
		page.Error = backend.Message(err, "Login failed. Please try again.")
		h.render(w, failureStatus(err), view.PageSignIn, page)
		return
	}

	userID, name, err := h.identify(r.Context(), resp)
	if err == nil {
		var s session.Session
		if s, err = session.New(userID, name, resp.Token, resp.ExpiresAt, h.ttl); err == nil {
			err = h.sessions.Save(r.Context(), w, s)
		}
	}
	if err != nil {
		h.metrics.ObserveAuth("login", false)
		h.logger.Error("start session", zap.String("email", page.Email), zap.Error(err))
		page.Error = "Login failed. Please try again."
		h.render(w, http.StatusBadGateway, view.PageSignIn, page)
		return
	}

	h.metrics.ObserveAuth("login", true)
	flash.SetSuccess(w, "Login successful")
	redirect(w, r, "/dashboard")
}

// identify resolves the operator behind a fresh login. The profile name is
// best effort; the user id is not.
func (h *AuthHandler) identify(ctx context.Context, resp dto.LoginResponse) (string, string, error) {
	creds := backend.Credentials{Token: strings.TrimPrefix(strings.TrimSpace(resp.Token), "Bearer "), UserID: resp.UserID}
	if resp.UserID == "" {
		me, err := h.api.Me(ctx, creds)
		if err != nil {
			return "", "", err
		}
		return me.ID, me.Name, nil
	}
	user, err := h.api.User(ctx, creds, resp.UserID)
	if err != nil {
		h.logger.Debug("fetch profile after login", zap.String("user_id", resp.UserID), zap.Error(err))
		return resp.UserID, "", nil
	}
	return resp.UserID, user.Name, nil
}

func (h *AuthHandler) signUpPage(w http.ResponseWriter, r *http.Request) {
	page := view.SignUpPage{Layout: h.layout(w, r, "Sign up", "")}
	if e, err := h.pending(r); err == nil && e.Stage == auth.StageOTPPending {
		page.Email = e.Email
		page.OTP = &view.OTPModal{Email: e.Email, Attempts: e.Attempts}
	}
	h.render(w, http.StatusOK, view.PageSignUp, page)
}

func (h *AuthHandler) signUp(w http.ResponseWriter, r *http.Request) {
	req := dto.RegisterRequest{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Phone:    strings.TrimSpace(r.PostFormValue("phone")),
		Password: r.PostFormValue("password"),
	}
	page := view.SignUpPage{Layout: h.layout(w, r, "Sign up", ""), Name: req.Name, Email: req.Email, Phone: req.Phone}
	if err := validateRegistration(req); err != nil {
		page.Error = err.Error()
		h.render(w, http.StatusUnprocessableEntity, view.PageSignUp, page)
		return
	}

	if _, err := h.api.Register(r.Context(), req); err != nil {
		h.metrics.ObserveAuth("register", false)
		h.logger.Info("registration rejected", zap.String("email", req.Email), zap.Error(err))
		page.Error = backend.Message(err, "Registration failed. Please try again.")
		h.render(w, failureStatus(err), view.PageSignUp, page)
		return
	}

	e := auth.NewEnrollment(req.Email)
	if err := e.AwaitOTP(); err != nil {
		h.logger.Error("enrollment", zap.Error(err))
	}
	if err := h.setPending(w, e); err != nil {
		h.logger.Error("encode enrollment", zap.Error(err))
		page.Error = "Registration succeeded but verification could not start. Please sign in."
		h.render(w, http.StatusInternalServerError, view.PageSignUp, page)
		return
	}
	h.metrics.ObserveAuth("register", true)
	page.Layout.Flash = &flash.Message{Kind: flash.Success, Text: "Registration successful. Enter the OTP sent to your email."}
	page.OTP = &view.OTPModal{Email: e.Email}
	h.render(w, http.StatusOK, view.PageSignUp, page)
}

func (h *AuthHandler) verify(w http.ResponseWriter, r *http.Request) {
	e, err := h.pending(r)
	if err != nil || e.Stage != auth.StageOTPPending {
		h.clearPending(w)
		flash.SetError(w, "Verification expired. Please sign up again.")
		redirect(w, r, "/sign-up")
		return
	}
	page := view.SignUpPage{Layout: h.layout(w, r, "Sign up", ""), Email: e.Email}

	otp, err := auth.NormalizeOTP(r.PostFormValue("otp"))
	if err != nil {
		page.Layout.Flash = danger(err.Error())
		page.OTP = &view.OTPModal{Email: e.Email, Attempts: e.Attempts}
		h.render(w, http.StatusUnprocessableEntity, view.PageSignUp, page)
		return
	}

	if err := h.api.Verify(r.Context(), dto.VerifyRequest{Email: e.Email, OTP: otp}); err != nil {
		h.metrics.ObserveAuth("verify", false)
		if rejectErr := e.Rejected(); rejectErr != nil {
			h.logger.Error("enrollment", zap.Error(rejectErr))
		}
		if setErr := h.setPending(w, e); setErr != nil {
			h.logger.Error("encode enrollment", zap.Error(setErr))
		}
		page.Layout.Flash = danger(backend.Message(err, "Verification failed. Please try again."))
		page.OTP = &view.OTPModal{Email: e.Email, Attempts: e.Attempts}
		h.render(w, failureStatus(err), view.PageSignUp, page)
		return
	}

	if err := e.Verified(); err != nil {
		h.logger.Error("enrollment", zap.Error(err))
	}
	h.metrics.ObserveAuth("verify", true)
	h.clearPending(w)
	flash.SetSuccess(w, "Email verified successfully. Please sign in.")
	redirect(w, r, "/sign-in")
}

// Logout revokes the backend session and always clears the local one.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	s := current(r)
	err := h.api.Logout(r.Context(), s.Credentials())
	if err != nil {
		h.logger.Warn("backend logout failed", zap.String("user_id", s.UserID), zap.Error(err))
	}
	h.metrics.ObserveAuth("logout", err == nil)
	if err := h.sessions.Clear(r.Context(), w, r); err != nil {
		h.logger.Warn("clear session", zap.Error(err))
	}
	flash.SetSuccess(w, "You have been logged out.")
	redirect(w, r, "/sign-in")
}

func (h *AuthHandler) pending(r *http.Request) (*auth.Enrollment, error) {
	c, err := r.Cookie(PendingCookie)
	if err != nil {
		return nil, err
	}
	return h.tokens.DecodeEnrollment(c.Value)
}

func (h *AuthHandler) setPending(w http.ResponseWriter, e *auth.Enrollment) error {
	token, err := h.tokens.EncodeEnrollment(e)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     PendingCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.EnrollmentTTL.Seconds()),
		Secure:   h.secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

func (h *AuthHandler) clearPending(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     PendingCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   h.secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func validateRegistration(req dto.RegisterRequest) error {
	if req.Name == "" || req.Email == "" || req.Phone == "" {
		return errors.New("name, email and phone are required")
	}
	if !strings.Contains(req.Email, "@") {
		return errors.New("email address is invalid")
	}
	if len(strings.TrimSpace(req.Password)) < 8 || !utf8.ValidString(req.Password) {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}
