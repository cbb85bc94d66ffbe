package service

import (
	"database/sql"
	"errors"

	"shopping-api/store"
)

// Domain errors handlers map to client responses.
var (
	ErrProductNotFound = errors.New("product not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrUserIDTaken     = errors.New("user id already in use")
)

type Service struct {
	store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{store: s}
}

func (s *Service) ListProducts() ([]ProductDTO, error) {
	rows, err := s.store.ListProducts()
	if err != nil {
		return nil, err
	}
	out := make([]ProductDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, toProductDTO(r))
	}
	return out, nil
}

func (s *Service) GetProduct(id int64) (ProductDTO, error) {
	row, err := s.store.GetProduct(id)
	if errors.Is(err, sql.ErrNoRows) {
		return ProductDTO{}, ErrProductNotFound
	}
	if err != nil {
		return ProductDTO{}, err
	}
	return toProductDTO(row), nil
}

func (s *Service) CreateProduct(name, desc string, price float64) (int64, error) {
	if name == "" {
		return 0, errors.New("name required")
	}
	if price < 0 {
		return 0, errors.New("price must be >= 0")
	}
	return s.store.CreateProduct(name, desc, price)
}

// Login compares the supplied password to the stored one by plain equality.
// Credentials are kept in plaintext for parity with the legacy schema.
func (s *Service) Login(userID, password string) error {
	u, err := s.store.GetUser(userID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	if u.Password != password {
		return ErrInvalidPassword
	}
	return nil
}

// Register creates a user unless the id is taken. The existence check and
// the insert are two statements; a race between them surfaces as a store
// error from the users primary key rather than a duplicate row.
func (s *Service) Register(userID, password, name string) error {
	if userID == "" {
		return errors.New("userId required")
	}
	_, err := s.store.GetUser(userID)
	if err == nil {
		return ErrUserIDTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	return s.store.CreateUser(userID, password, name)
}

// ReconcileCart validates and delegates to the store's single-mutation
// cart reconcile.
func (s *Service) ReconcileCart(userID string, productID int64, qty int) (store.CartOutcome, error) {
	if userID == "" {
		return store.CartNoOp, errors.New("userId required")
	}
	if productID <= 0 {
		return store.CartNoOp, errors.New("productId required")
	}
	if qty < 0 {
		return store.CartNoOp, store.ErrNegativeQuantity
	}
	return s.store.ReconcileCartLine(userID, productID, qty)
}

// DTOs
type ProductDTO struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

func toProductDTO(r store.ProductRow) ProductDTO {
	p := ProductDTO{
		ID:    r.ID,
		Name:  r.Name,
		Price: r.Price,
	}
	if r.Description.Valid {
		p.Description = r.Description.String
	}
	return p
}
