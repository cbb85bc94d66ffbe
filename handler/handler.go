package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"shopping-api/service"
	"shopping-api/store"
)

// Handler is the HTTP layer that talks to service.Service
type Handler struct {
	svc service.ServiceInterface
}

// NewHandler returns a Handler instance
func NewHandler(s service.ServiceInterface) *Handler {
	return &Handler{svc: s}
}

// RegisterRoutes registers all routes on the provided router
func (h *Handler) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(RequestLogger)

	// Products
	api.HandleFunc("/products", h.ListProducts).Methods("GET")
	api.HandleFunc("/products", h.CreateProduct).Methods("POST")
	api.HandleFunc("/products/{id}", h.GetProduct).Methods("GET")

	// Users
	api.HandleFunc("/user/login", h.Login).Methods("POST")
	api.HandleFunc("/user/register", h.Register).Methods("POST")

	// Cart
	api.HandleFunc("/cart", h.UpdateCart).Methods("POST")
}

// --- request / response shapes ---
type createProductReq struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
}

type registerReq struct {
	UserID   string `json:"userId"`
	Password string `json:"userPassword"`
	UserName string `json:"userName"`
}

type updateCartReq struct {
	UserID    string `json:"userId"`
	ProductID int64  `json:"productId"`
	Num       *int   `json:"num"`
}

// cartMessages are the response bodies the storefront expects verbatim.
var cartMessages = map[store.CartOutcome]string{
	store.CartNoOp:     "Item not found in the shopping cart",
	store.CartInserted: "Item added to the shopping cart",
	store.CartRemoved:  "Item removed from the shopping cart",
	store.CartUpdated:  "Shopping cart updated successfully",
}

// --- helpers ---
func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeText(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = io.WriteString(w, msg)
}

// --- Handler ---

// ListProducts handles GET /api/products
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := h.svc.ListProducts()
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

// GetProduct handles GET /api/products/{id}
// The body is an array of one product, matching the list endpoint's shape.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid product id")
		return
	}
	p, err := h.svc.GetProduct(id)
	if errors.Is(err, service.ErrProductNotFound) {
		writeText(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, []service.ProductDTO{p})
}

// CreateProduct handles POST /api/products
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" {
		writeErr(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Price < 0 {
		writeErr(w, http.StatusBadRequest, "price must be >= 0")
		return
	}

	id, err := h.svc.CreateProduct(req.Name, req.Description, req.Price)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// Login handles POST /api/user/login?userid=...&password=...
// Credentials ride in the query string, as the storefront sends them.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userid")
	password := r.URL.Query().Get("password")

	err := h.svc.Login(userID, password)
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		writeText(w, http.StatusUnauthorized, "User not found")
	case errors.Is(err, service.ErrInvalidPassword):
		writeText(w, http.StatusUnauthorized, "Invalid password")
	case err != nil:
		writeErr(w, http.StatusInternalServerError, err.Error())
	default:
		writeText(w, http.StatusOK, "Login successful")
	}
}

// Register handles POST /api/user/register
// body: { "userId": "...", "userPassword": "...", "userName": "..." }
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.UserID == "" {
		writeErr(w, http.StatusBadRequest, "userId is required")
		return
	}

	err := h.svc.Register(req.UserID, req.Password, req.UserName)
	switch {
	case errors.Is(err, service.ErrUserIDTaken):
		writeText(w, http.StatusBadRequest, "UserID is already in use")
	case err != nil:
		writeErr(w, http.StatusInternalServerError, err.Error())
	default:
		writeText(w, http.StatusCreated, "User registered successfully")
	}
}

// UpdateCart handles POST /api/cart
// body: { "userId": "...", "productId": 1, "num": 2 }
// num is the desired quantity, not a delta; num 0 clears the line.
func (h *Handler) UpdateCart(w http.ResponseWriter, r *http.Request) {
	var req updateCartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.UserID == "" {
		writeErr(w, http.StatusBadRequest, "userId is required")
		return
	}
	if req.ProductID <= 0 {
		writeErr(w, http.StatusBadRequest, "productId is required")
		return
	}
	if req.Num == nil || *req.Num < 0 {
		writeErr(w, http.StatusBadRequest, "num must be >= 0")
		return
	}

	outcome, err := h.svc.ReconcileCart(req.UserID, req.ProductID, *req.Num)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeText(w, http.StatusOK, cartMessages[outcome])
}
