package service

import "shopping-api/store"

type ServiceInterface interface {
	ListProducts() ([]ProductDTO, error)
	GetProduct(id int64) (ProductDTO, error)
	CreateProduct(name, desc string, price float64) (int64, error)
	Login(userID, password string) error
	Register(userID, password, name string) error
	ReconcileCart(userID string, productID int64, qty int) (store.CartOutcome, error)
}
