package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/application/catalog"
	domaincatalog "github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/lock"
	"github.com/stretchr/testify/require"
)

type memoryCatalog struct {
	products   map[uuid.UUID]*domaincatalog.Product
	attributes map[string]domaincatalog.Attribute
	variations []domaincatalog.ProductVariation
}

func (c *memoryCatalog) FindByID(_ context.Context, id uuid.UUID) (*domaincatalog.Product, error) {
	p, ok := c.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (c *memoryCatalog) Save(_ context.Context, p *domaincatalog.Product) error {
	c.products[p.ID] = p
	return nil
}

type memoryAttributes struct{ *memoryCatalog }

func (c memoryAttributes) FindByKey(_ context.Context, key string) (*domaincatalog.Attribute, error) {
	a, ok := c.attributes[key]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &a, nil
}

func (c memoryAttributes) FindByKeys(ctx context.Context, keys []string) ([]domaincatalog.Attribute, error) {
	out := make([]domaincatalog.Attribute, 0, len(keys))
	for _, k := range keys {
		a, err := c.FindByKey(ctx, k)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, nil
}

func (c memoryAttributes) Save(_ context.Context, a *domaincatalog.Attribute) error {
	c.attributes[a.Key] = *a
	return nil
}

type memoryVariations struct{ *memoryCatalog }

func (c memoryVariations) FindByID(_ context.Context, id uuid.UUID) (*domaincatalog.ProductVariation, error) {
	for i := range c.variations {
		if c.variations[i].ID == id {
			v := c.variations[i]
			return &v, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (c memoryVariations) FindByProduct(_ context.Context, productID uuid.UUID) ([]domaincatalog.ProductVariation, error) {
	var out []domaincatalog.ProductVariation
	for _, v := range c.variations {
		if v.ProductID == productID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (c memoryVariations) Save(_ context.Context, v *domaincatalog.ProductVariation) error {
	for i := range c.variations {
		if c.variations[i].ID == v.ID {
			c.variations[i] = *v
			return nil
		}
	}
	c.variations = append(c.variations, *v)
	return nil
}

// memoryOrders stores copies of orders, like a database would
type memoryOrders struct {
	mu      sync.Mutex
	orders  map[uuid.UUID]*order.Order
	saves   int
	failErr error
}

func newMemoryOrders() *memoryOrders {
	return &memoryOrders{orders: make(map[uuid.UUID]*order.Order)}
}

func (r *memoryOrders) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return o.Clone(), nil
}

func (r *memoryOrders) Save(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.failErr != nil {
		return r.failErr
	}
	r.orders[o.ID] = o.Clone()
	return nil
}

func (r *memoryOrders) stored(t *testing.T, id uuid.UUID) *order.Order {
	t.Helper()
	o, err := r.FindByID(context.Background(), id)
	require.NoError(t, err)
	return o
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type timeoutLocker struct{}

func (timeoutLocker) Lock(context.Context, uuid.UUID) (func(), error) {
	return nil, shared.ErrLockTimeout
}

var errDiskFull = errors.New("disk full")

type cartFixture struct {
	catalog   *memoryCatalog
	orders    *memoryOrders
	publisher *recordingPublisher
	service   *CartService
	product   *domaincatalog.Product
}

// newCartFixture stocks a T-shirt in sizes 6-10 red and 8-10 green. The
// "requested_at" data key never splits lines.
func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()
	mem := &memoryCatalog{
		products:   make(map[uuid.UUID]*domaincatalog.Product),
		attributes: make(map[string]domaincatalog.Attribute),
	}

	color, err := domaincatalog.NewAttribute("color", "Color")
	require.NoError(t, err)
	require.NoError(t, color.AddValue("red", "Red", 0))
	require.NoError(t, color.AddValue("green", "Green", 0))
	size, err := domaincatalog.NewAttribute("size", "Size")
	require.NoError(t, err)
	for _, s := range []string{"6", "7", "8", "9", "10"} {
		require.NoError(t, size.AddValue(s, s, 0))
	}
	mem.attributes["color"] = *color
	mem.attributes["size"] = *size

	product, err := domaincatalog.NewProduct("TSHIRT", "T-Shirt", []string{"color", "size"})
	require.NoError(t, err)
	mem.products[product.ID] = product

	add := func(c, s string) {
		v, err := domaincatalog.NewProductVariation(product.ID, c+"-"+s,
			map[string]string{"color": c, "size": s}, decimal.NewFromInt(15))
		require.NoError(t, err)
		v.Position = len(mem.variations)
		mem.variations = append(mem.variations, *v)
	}
	for _, s := range []string{"6", "7", "8", "9", "10"} {
		add("red", s)
	}
	for _, s := range []string{"8", "9", "10"} {
		add("green", s)
	}

	loader := catalog.NewMatrixLoader(mem, memoryAttributes{mem}, memoryVariations{mem}, nil, nil)
	orders := newMemoryOrders()
	publisher := &recordingPublisher{}

	svc := NewCartService(loader, orders, lock.NewKeyedMutex(), order.NewLineConsolidator(NewPolicyRegistry([]string{"requested_at"})))
	svc.SetEventPublisher(publisher)
	svc.SetSaleValidator(catalog.NewProductSaleValidator(mem, memoryVariations{mem}))

	return &cartFixture{
		catalog:   mem,
		orders:    orders,
		publisher: publisher,
		service:   svc,
		product:   product,
	}
}

func (f *cartFixture) newCart(t *testing.T) uuid.UUID {
	t.Helper()
	resp, err := f.service.CreateCart(context.Background(), CreateCartRequest{})
	require.NoError(t, err)
	return resp.ID
}

func (f *cartFixture) variation(sku string) *domaincatalog.ProductVariation {
	for i := range f.catalog.variations {
		if f.catalog.variations[i].SKU == sku {
			return &f.catalog.variations[i]
		}
	}
	return nil
}

func (f *cartFixture) add(color, size string, qty int64, data map[string]any) AddToCartRequest {
	return AddToCartRequest{
		ProductID: f.product.ID,
		Selection: map[string]string{"color": color, "size": size},
		Quantity:  decimal.NewFromInt(qty),
		Data:      data,
	}
}
