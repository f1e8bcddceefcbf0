package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hongminglow/loyalty-console/internal/backend"
	"github.com/hongminglow/loyalty-console/internal/flash"
	"github.com/hongminglow/loyalty-console/internal/models"
	"github.com/hongminglow/loyalty-console/internal/models/dto"
	"github.com/hongminglow/loyalty-console/internal/paging"
	"github.com/hongminglow/loyalty-console/internal/view"
)

// MerchantAPI is the slice of the backend the merchant pages use.
type MerchantAPI interface {
	UserMerchants(ctx context.Context, creds backend.Credentials, userID string, page, limit int) (backend.Page[models.Merchant], error)
	Merchant(ctx context.Context, creds backend.Credentials, id string) (models.Merchant, error)
	CreateMerchant(ctx context.Context, creds backend.Credentials, req dto.CreateMerchantRequest) (models.Merchant, error)
	UpdateMerchant(ctx context.Context, creds backend.Credentials, id string, req dto.UpdateMerchantRequest) (models.Merchant, error)
	DeactivateMerchant(ctx context.Context, creds backend.Credentials, id string) error
}

// MerchantHandler lists the operator's merchants and handles the add/edit
// form and deactivation.
type MerchantHandler struct {
	pages
	api MerchantAPI
}

// NewMerchantHandler wires the merchant pages to api.
func NewMerchantHandler(deps Deps, api MerchantAPI) *MerchantHandler {
	return &MerchantHandler{pages: newPages(deps), api: api}
}

// Register mounts the merchant list and its form actions on r.
func (h *MerchantHandler) Register(r chi.Router) {
	r.Get("/merchants", h.list)
	r.Post("/merchants", h.create)
	r.Get("/merchants/{id}/edit", h.edit)
	r.Post("/merchants/{id}", h.update)
	r.Post("/merchants/{id}/deactivate", h.deactivate)
}

func (h *MerchantHandler) list(w http.ResponseWriter, r *http.Request) {
	form := view.MerchantForm{Open: r.URL.Query().Get("new") != ""}
	h.show(w, r, http.StatusOK, form)
}

func (h *MerchantHandler) edit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, err := h.api.Merchant(r.Context(), current(r).Credentials(), id)
	if err != nil {
		if h.expired(w, r, err) {
			return
		}
		h.logger.Warn("load merchant", zap.String("merchant_id", id), zap.Error(err))
		flash.SetError(w, backend.Message(err, "Failed to load merchant."))
		redirect(w, r, "/merchants")
		return
	}
	h.show(w, r, http.StatusOK, view.MerchantForm{Open: true, ID: id, Name: m.Name, Type: m.Type})
}

func (h *MerchantHandler) create(w http.ResponseWriter, r *http.Request) {
	form := merchantForm(r, "")
	if err := validateMerchant(form); err != nil {
		form.Error = err.Error()
		h.show(w, r, http.StatusUnprocessableEntity, form)
		return
	}
	s := current(r)
	_, err := h.api.CreateMerchant(r.Context(), s.Credentials(), dto.CreateMerchantRequest{UserID: s.UserID, Name: form.Name, Type: form.Type})
	h.saved(w, r, form, err, "Merchant created successfully.")
}

func (h *MerchantHandler) update(w http.ResponseWriter, r *http.Request) {
	form := merchantForm(r, chi.URLParam(r, "id"))
	if err := validateMerchant(form); err != nil {
		form.Error = err.Error()
		h.show(w, r, http.StatusUnprocessableEntity, form)
		return
	}
	_, err := h.api.UpdateMerchant(r.Context(), current(r).Credentials(), form.ID, dto.UpdateMerchantRequest{Name: form.Name, Type: form.Type})
	h.saved(w, r, form, err, "Merchant updated successfully.")
}

func (h *MerchantHandler) saved(w http.ResponseWriter, r *http.Request, form view.MerchantForm, err error, message string) {
	if err != nil {
		if h.expired(w, r, err) {
			return
		}
		h.logger.Warn("save merchant", zap.String("merchant_id", form.ID), zap.Error(err))
		form.Error = backend.Message(err, "Failed to save merchant.")
		h.show(w, r, failureStatus(err), form)
		return
	}
	flash.SetSuccess(w, message)
	redirect(w, r, "/merchants")
}

func (h *MerchantHandler) deactivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		h.logger.Info("deactivate merchant: bad form", zap.String("merchant_id", id), zap.Error(err))
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	back := "/merchants?" + h.paging.Parse(r.PostForm).Query().Encode()
	if err := h.api.DeactivateMerchant(r.Context(), current(r).Credentials(), id); err != nil {
		if h.expired(w, r, err) {
			return
		}
		h.logger.Warn("deactivate merchant", zap.String("merchant_id", id), zap.Error(err))
		flash.SetError(w, backend.Message(err, "Failed to deactivate merchant."))
		redirect(w, r, back)
		return
	}
	flash.SetSuccess(w, "Merchant deactivated successfully.")
	redirect(w, r, back)
}

// show renders the current page of merchants with form on top of it.
func (h *MerchantHandler) show(w http.ResponseWriter, r *http.Request, status int, form view.MerchantForm) {
	s := current(r)
	c := h.cursor(r)
	result, err := h.api.UserMerchants(r.Context(), s.Credentials(), s.UserID, c.Page, c.PageSize)
	if err != nil && h.expired(w, r, err) {
		return
	}

	page := view.MerchantsPage{
		Layout: h.layout(w, r, "Merchants", "merchants"),
		Form:   form,
		Types:  models.MerchantTypes,
	}
	if err != nil {
		h.logger.Error("list merchants", zap.String("user_id", s.UserID), zap.Error(err))
		page.Layout.Flash = danger(backend.Message(err, "Failed to load merchants."))
		status = http.StatusBadGateway
	} else if result.PaginationErr != nil {
		h.logger.Warn("merchant pagination", zap.Error(result.PaginationErr))
	}
	page.Rows = view.MerchantRows(result.Items)
	page.Pager = view.Pager{View: paging.NewView(c, result.Info, h.paging.Sizes), Path: "/merchants"}
	h.renderList(w, r, status, view.PageMerchants, page)
}

func merchantForm(r *http.Request, id string) view.MerchantForm {
	return view.MerchantForm{
		Open: true,
		ID:   id,
		Name: strings.TrimSpace(r.PostFormValue("merchant_name")),
		Type: models.MerchantType(strings.TrimSpace(r.PostFormValue("merchant_type"))),
	}
}

func validateMerchant(f view.MerchantForm) error {
	if f.Name == "" {
		return errors.New("merchant name is required")
	}
	if !f.Type.Valid() {
		return errors.New("merchant type must be bank, e-commerce or repair_shop")
	}
	return nil
}
