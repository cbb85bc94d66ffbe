package store

import (
	"database/sql"
	"sync"

	_ "github.com/lib/pq"
)

// ProductRow, UserRow, CartLineRow are simple structs representing DB rows
type ProductRow struct {
	ID          int64
	Name        string
	Description sql.NullString
	Price       float64
}

type UserRow struct {
	ID       string
	Password string
	Name     string
}

type CartLineRow struct {
	UserID    string
	ProductID int64
	Quantity  int
}

// PostgresStore is a Store backed by Postgres and has in-process locks
type PostgresStore struct {
	DB *sql.DB

	// per-cart-line mutexes to avoid concurrent goroutines in this process
	// racing on the same (user, product) key. Keys are "userID/productID".
	locks sync.Map // map[string]*sync.Mutex
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	DB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := DB.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{DB: DB}, nil
}

func (s *PostgresStore) Close() error { return s.DB.Close() }

// CreateProduct inserts a product and returns its id
func (s *PostgresStore) CreateProduct(name, desc string, price float64) (int64, error) {
	var id int64
	err := s.DB.QueryRow(
		`INSERT INTO products (name, description, price) VALUES ($1, $2, $3) RETURNING id`,
		name, desc, price,
	).Scan(&id)
	return id, err
}

func (s *PostgresStore) ListProducts() ([]ProductRow, error) {
	rows, err := s.DB.Query(`SELECT id, name, description, price FROM products ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []ProductRow{}
	for rows.Next() {
		var p ProductRow
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetProduct returns sql.ErrNoRows when no product has the given id.
func (s *PostgresStore) GetProduct(id int64) (ProductRow, error) {
	var p ProductRow
	err := s.DB.QueryRow(
		`SELECT id, name, description, price FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.Price)
	return p, err
}

// GetUser returns sql.ErrNoRows when no user has the given id.
func (s *PostgresStore) GetUser(id string) (UserRow, error) {
	var u UserRow
	err := s.DB.QueryRow(
		`SELECT id, password, name FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Password, &u.Name)
	return u, err
}

// CreateUser inserts a user row. The primary key on users.id rejects a
// duplicate id that slipped past the caller's existence check.
func (s *PostgresStore) CreateUser(id, password, name string) error {
	_, err := s.DB.Exec(
		`INSERT INTO users (id, password, name) VALUES ($1, $2, $3)`,
		id, password, name,
	)
	return err
}
