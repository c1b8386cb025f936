package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/domain"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/service"
)

func sessionID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(SessionHeader))
}

func setSession(w http.ResponseWriter, sess *service.Session) {
	if sess != nil {
		w.Header().Set(SessionHeader, sess.ID)
	}
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"sessions": a.service.SessionCount(),
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	if !a.loginLimiter.Allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many login attempts"))
		return
	}

	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := a.auth.Login(req)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleStorefront(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	view, sess := a.service.Storefront(r.Context(), sessionID(r), r.URL.Query().Get("filter"))
	setSession(w, sess)
	writeJSON(w, http.StatusOK, view)
}

func (a *API) handleProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"products": a.service.ListProducts()})
	case http.MethodPost:
		r, ok := a.authenticate(w, r)
		if !ok {
			return
		}
		var req domain.ProductCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		product, err := a.service.CreateProduct(r.Context(), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"product": product})
	default:
		writeMethodNotAllowed(w)
	}
}

// handleProductActions serves /products/reset and /products/{id}.
func (a *API) handleProductActions(w http.ResponseWriter, r *http.Request) {
	raw, _ := pathID(r.URL.Path, "/api/v1/products/")
	if raw == "reset" {
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		if err := a.service.ResetProducts(r.Context()); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"products": a.service.ListProducts()})
		return
	}

	id, err := parseInt64ID(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var req domain.ProductUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		product, err := a.service.UpdateProduct(r.Context(), id, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"product": product})
	case http.MethodDelete:
		if err := a.service.DeleteProduct(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleCategoryActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	action, _ := pathID(r.URL.Path, "/api/v1/categories/")
	var (
		changed int
		err     error
	)
	switch action {
	case "rename":
		var req domain.CategoryRenameRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		changed, err = a.service.RenameCategory(r.Context(), req)
	case "delete":
		var req domain.CategoryDeleteRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		changed, err = a.service.DeleteCategory(r.Context(), req)
	default:
		writeError(w, http.StatusNotFound, errors.New("unknown category action"))
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updated": changed})
}

func (a *API) handleCampaigns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"campaigns": a.service.ListCampaigns()})
	case http.MethodPost:
		r, ok := a.authenticate(w, r)
		if !ok {
			return
		}
		var req domain.CampaignCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		campaign, err := a.service.CreateCampaign(r.Context(), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"campaign": campaign})
	default:
		writeMethodNotAllowed(w)
	}
}

// handleCampaignActions serves /campaigns/{id} and /campaigns/{id}/toggle.
func (a *API) handleCampaignActions(w http.ResponseWriter, r *http.Request) {
	id, rest := pathID(r.URL.Path, "/api/v1/campaigns/")
	if id == "" {
		writeError(w, http.StatusBadRequest, errors.New("campaign id required"))
		return
	}

	if rest == "toggle" {
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		campaign, err := a.service.ToggleCampaign(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"campaign": campaign})
		return
	}
	if rest != "" {
		writeError(w, http.StatusNotFound, errors.New("unknown campaign action"))
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var req domain.CampaignUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		campaign, err := a.service.UpdateCampaign(r.Context(), id, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"campaign": campaign})
	case http.MethodDelete:
		if err := a.service.DeleteCampaign(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"settings": a.service.Settings()})
	case http.MethodPatch:
		r, ok := a.authenticate(w, r)
		if !ok {
			return
		}
		var req domain.SettingsUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		settings, err := a.service.UpdateSettings(r.Context(), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"settings": settings})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleGrid(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		writeMethodNotAllowed(w)
		return
	}
	var req domain.GridSettings
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	grid, err := a.service.UpdateGrid(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"grid": grid})
}

func (a *API) handleSections(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req domain.SectionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	section, err := a.service.CreateSection(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"section": section})
}

func (a *API) handleSectionActions(w http.ResponseWriter, r *http.Request) {
	raw, _ := pathID(r.URL.Path, "/api/v1/sections/")
	id, err := parseInt64ID(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var req domain.SectionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		section, err := a.service.UpdateSection(r.Context(), id, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"section": section})
	case http.MethodDelete:
		if err := a.service.DeleteSection(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleDeliveryCompanies(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"delivery_companies": a.service.DeliveryCompanies()})
	case http.MethodPost:
		r, ok := a.authenticate(w, r)
		if !ok {
			return
		}
		var req domain.DeliveryCompanyRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		company, err := a.service.CreateDeliveryCompany(r.Context(), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"delivery_company": company})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleWilayas(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"wilayas": a.service.Wilayas()})
}

func (a *API) handleDeliveryCompanyActions(w http.ResponseWriter, r *http.Request) {
	raw, _ := pathID(r.URL.Path, "/api/v1/delivery-companies/")
	id, err := parseInt64ID(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var req domain.DeliveryCompanyRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		company, err := a.service.UpdateDeliveryCompany(r.Context(), id, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"delivery_company": company})
	case http.MethodDelete:
		if err := a.service.DeleteDeliveryCompany(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleCart(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		summary, sess := a.service.Cart(r.Context(), sessionID(r))
		setSession(w, sess)
		writeJSON(w, http.StatusOK, summary)
	case http.MethodDelete:
		summary, sess := a.service.ClearCart(r.Context(), sessionID(r))
		setSession(w, sess)
		writeJSON(w, http.StatusOK, summary)
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleCartItems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req domain.CartAddRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	summary, sess, err := a.service.AddToCart(r.Context(), sessionID(r), req)
	setSession(w, sess)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (a *API) handleCartItemActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeMethodNotAllowed(w)
		return
	}
	cartID, _ := pathID(r.URL.Path, "/api/v1/cart/items/")
	if cartID == "" {
		writeError(w, http.StatusBadRequest, errors.New("cart line id required"))
		return
	}
	summary, sess, err := a.service.RemoveFromCart(r.Context(), sessionID(r), cartID)
	setSession(w, sess)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (a *API) handleShowcase(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	resp, sess := a.service.Showcase(r.Context(), sessionID(r))
	setSession(w, sess)
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleShowcaseActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	action, _ := pathID(r.URL.Path, "/api/v1/showcase/")

	var color string
	if action == service.ShowcaseVariant {
		var req domain.ShowcaseVariantRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		color = req.Color
	}

	resp, sess, err := a.service.ShowcaseAction(r.Context(), sessionID(r), action, color)
	setSession(w, sess)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleCheckout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req domain.CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	order, sess, err := a.service.Checkout(r.Context(), sessionID(r), req)
	setSession(w, sess)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"order": order})
}

func (a *API) handleOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	limit := parsePositiveLimit(r.URL.Query().Get("limit"), 50, 500)
	orders, err := a.service.ListOrders(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (a *API) handleOrderActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeMethodNotAllowed(w)
		return
	}
	id, _ := pathID(r.URL.Path, "/api/v1/orders/")
	if id == "" {
		writeError(w, http.StatusBadRequest, errors.New("order id required"))
		return
	}
	if err := a.service.DeleteOrder(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
