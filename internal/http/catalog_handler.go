package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fjod/go_cart/cartsync/internal/domain"
	"github.com/fjod/go_cart/cartsync/internal/inventory"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// Inventory is what the catalog API serves from
type Inventory interface {
	GetProduct(productID int64) (domain.Product, error)
	ListProducts() []domain.Product
	GetStock(productID int64) (domain.Stock, error)
	SetStock(productID int64, amount int) error
}

type CatalogHandler struct {
	inventory Inventory
	log       logrus.FieldLogger
}

func NewCatalogHandler(inv Inventory, log logrus.FieldLogger) *CatalogHandler {
	return &CatalogHandler{
		inventory: inv,
		log:       log,
	}
}

type SetStockRequestDTO struct {
	Amount *int `json:"amount"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.inventory.ListProducts())
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}

	product, err := h.inventory.GetProduct(productID)
	if err != nil {
		h.handleStoreError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, product)
}

func (h *CatalogHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}

	stock, err := h.inventory.GetStock(productID)
	if err != nil {
		h.handleStoreError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, stock)
}

func (h *CatalogHandler) SetStock(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}

	var req SetStockRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount == nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "body must be {\"amount\": n}")
		return
	}

	if err := h.inventory.SetStock(productID, *req.Amount); err != nil {
		h.handleStoreError(w, err)
		return
	}

	h.log.WithFields(logrus.Fields{"product_id": productID, "amount": *req.Amount}).Info("stock updated")
	h.respondJSON(w, http.StatusOK, domain.Stock{ProductID: productID, Amount: *req.Amount})
}

func (h *CatalogHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *CatalogHandler) productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || productID <= 0 {
		h.respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be a positive integer")
		return 0, false
	}
	return productID, true
}

func (h *CatalogHandler) handleStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, inventory.ErrProductNotFound):
		h.respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, inventory.ErrInvalidAmount):
		h.respondError(w, http.StatusBadRequest, "invalid_amount", err.Error())
	default:
		h.log.WithError(err).Error("inventory request failed")
		h.respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (h *CatalogHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.WithError(err).Warn("failed to encode response")
	}
}

func (h *CatalogHandler) respondError(w http.ResponseWriter, status int, code, message string) {
	h.respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}
