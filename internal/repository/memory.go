package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/acostajs/vanier-ceramic-shop/internal/errs"
	"github.com/acostajs/vanier-ceramic-shop/internal/models"
)

// In-memory implementations backing service and handler tests. They mirror
// the SQL semantics: unique cart per account, unique (cart, product) line,
// conditional inventory decrement, live price joins.

type MemoryProductRepository struct {
	mu       sync.RWMutex
	products map[string]*models.Product
}

func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{products: make(map[string]*models.Product)}
}

// Put seeds or replaces a product.
func (r *MemoryProductRepository) Put(product *models.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *product
	r.products[product.ID] = &cp
}

func (r *MemoryProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MemoryProductRepository) List(ctx context.Context) ([]*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.Product, 0, len(r.products))
	for _, p := range r.products {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryProductRepository) ListByCollection(ctx context.Context, collectionID string) ([]*models.Product, error) {
	all, _ := r.List(ctx)
	out := make([]*models.Product, 0)
	for _, p := range all {
		if p.CollectionID == collectionID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *MemoryProductRepository) DecrementQuantity(ctx context.Context, id string, qty int) error {
	if qty <= 0 {
		return errs.NewValidationError("quantity", "quantity must be positive")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return errs.ErrNotFound
	}
	if p.Quantity < qty {
		return errs.NewValidationError("quantity", "not enough quantity available")
	}
	p.Quantity -= qty
	return nil
}

type MemoryAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*models.Account
}

func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{accounts: make(map[string]*models.Account)}
}

func (r *MemoryAccountRepository) Put(account *models.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *account
	r.accounts[account.ID] = &cp
}

func (r *MemoryAccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

type memoryCartLine struct {
	productID string
	quantity  int
}

type MemoryCartRepository struct {
	mu       sync.Mutex
	products *MemoryProductRepository
	carts    map[string]*models.Cart     // by cart ID
	byOwner  map[string]string           // account ID -> cart ID
	lines    map[string][]memoryCartLine // cart ID -> lines
}

// NewMemoryCartRepository joins against products for live names and prices,
// the way the SQL implementation does.
func NewMemoryCartRepository(products *MemoryProductRepository) *MemoryCartRepository {
	return &MemoryCartRepository{
		products: products,
		carts:    make(map[string]*models.Cart),
		byOwner:  make(map[string]string),
		lines:    make(map[string][]memoryCartLine),
	}
}

func (r *MemoryCartRepository) GetOrCreate(ctx context.Context, accountID string) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byOwner[accountID]; ok {
		cp := *r.carts[id]
		return &cp, nil
	}
	cart := &models.Cart{ID: models.NewID("cart"), AccountID: accountID}
	r.carts[cart.ID] = cart
	r.byOwner[accountID] = cart.ID
	cp := *cart
	return &cp, nil
}

func (r *MemoryCartRepository) UpsertItem(ctx context.Context, cartID, productID string, quantity int, replace bool) error {
	if quantity < 1 {
		quantity = 1
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := r.lines[cartID]
	for i := range lines {
		if lines[i].productID == productID {
			if replace {
				lines[i].quantity = quantity
			} else {
				lines[i].quantity += quantity
			}
			r.lines[cartID] = lines
			return nil
		}
	}
	r.lines[cartID] = append(lines, memoryCartLine{productID: productID, quantity: quantity})
	return nil
}

func (r *MemoryCartRepository) RemoveItem(ctx context.Context, cartID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := r.lines[cartID]
	for i := range lines {
		if lines[i].productID == productID {
			r.lines[cartID] = append(lines[:i], lines[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *MemoryCartRepository) Clear(ctx context.Context, cartID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.lines, cartID)
	return nil
}

func (r *MemoryCartRepository) Items(ctx context.Context, cartID string) ([]*models.CartItem, error) {
	r.mu.Lock()
	lines := append([]memoryCartLine(nil), r.lines[cartID]...)
	r.mu.Unlock()

	items := make([]*models.CartItem, 0, len(lines))
	for _, line := range lines {
		product, err := r.products.GetByID(ctx, line.productID)
		if err != nil {
			return nil, err
		}
		items = append(items, &models.CartItem{
			CartID:         cartID,
			ProductID:      line.productID,
			ProductName:    product.Name,
			Quantity:       line.quantity,
			UnitPriceCents: product.DiscountedPriceCents(),
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ProductName < items[j].ProductName })
	return items, nil
}

type MemoryOrderRepository struct {
	mu     sync.Mutex
	orders map[string]*models.Order
	items  map[string][]*models.OrderItem
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{
		orders: make(map[string]*models.Order),
		items:  make(map[string][]*models.OrderItem),
	}
}

func (r *MemoryOrderRepository) Create(ctx context.Context, order *models.Order, items []*models.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.ID]; ok {
		return errs.ErrConflict
	}
	cp := *order
	r.orders[order.ID] = &cp
	stored := make([]*models.OrderItem, 0, len(items))
	for _, item := range items {
		ic := *item
		stored = append(stored, &ic)
	}
	r.items[order.ID] = stored
	return nil
}

func (r *MemoryOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *MemoryOrderRepository) GetByPaymentID(ctx context.Context, paymentID string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.PaymentID != "" && o.PaymentID == paymentID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (r *MemoryOrderRepository) ListByAccount(ctx context.Context, accountID string) ([]*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Order, 0)
	for _, o := range r.orders {
		if o.AccountID == accountID {
			cp := *o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryOrderRepository) ItemsByOrder(ctx context.Context, orderID string) ([]*models.OrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.items[orderID]
	out := make([]*models.OrderItem, 0, len(items))
	for _, item := range items {
		cp := *item
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MemoryOrderRepository) Fulfill(ctx context.Context, orderID string, d models.FulfillmentDetails) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return errs.ErrNotFound
	}
	o.CustomerName = d.CustomerName
	o.CustomerEmail = d.CustomerEmail
	o.PaymentID = d.PaymentID
	o.TotalCents = d.TotalCents
	o.BillingAddress = d.BillingAddress
	o.ShippingAddress = d.ShippingAddress
	return nil
}

func (r *MemoryOrderRepository) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return errs.ErrNotFound
	}
	o.Status = status
	return nil
}
