package store

// GET  /api/products           - list the catalog
// GET  /api/products/{id}      - fetch one product
// POST /api/products           - create a product
// POST /api/user/login         - check credentials
// POST /api/user/register      - create a user
// POST /api/cart               - reconcile one cart line

type Store interface {
	ListProducts() ([]ProductRow, error)
	GetProduct(id int64) (ProductRow, error)
	CreateProduct(name, desc string, price float64) (int64, error)

	GetUser(id string) (UserRow, error)
	CreateUser(id, password, name string) error

	ReconcileCartLine(userID string, productID int64, qty int) (CartOutcome, error)

	Close() error
}
