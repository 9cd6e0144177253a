package commands_test

import (
	"context"
	"errors"
	"path"
	"sort"
	"sync"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/document"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/shipment"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// memStore is an in-memory stand-in for the relational store. Writes made inside a
// transaction become visible on Commit.
type memStore struct {
	mu        sync.Mutex
	orders    map[kernel.UUID]*order.Order
	shipments map[kernel.UUID][]*shipment.Shipment
	documents map[string]*document.Document
	counters  map[string]int64
}

func newMemStore() *memStore {
	return &memStore{
		orders:    make(map[kernel.UUID]*order.Order),
		shipments: make(map[kernel.UUID][]*shipment.Shipment),
		documents: make(map[string]*document.Document),
		counters:  make(map[string]int64),
	}
}

func (s *memStore) counter(scope string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[scope]
}

func (s *memStore) document(filename string) *document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.documents[filename]
}

func (s *memStore) shipmentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, list := range s.shipments {
		n += len(list)
	}
	return n
}

type memUoW struct {
	store *memStore
	inTx  bool

	orders    []*order.Order
	shipments []*shipment.Shipment
	counters  map[string]int64
}

func (u *memUoW) Begin(context.Context) error {
	u.inTx = true
	u.counters = make(map[string]int64)
	return nil
}

func (u *memUoW) Commit(context.Context) error {
	if !u.inTx {
		return errors.New("no transaction")
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	for _, o := range u.orders {
		u.store.orders[o.ID()] = o
	}
	for _, s := range u.shipments {
		u.store.shipments[s.OrderID()] = append(u.store.shipments[s.OrderID()], s)
	}
	for scope, delta := range u.counters {
		u.store.counters[scope] += delta
	}
	u.reset()
	return nil
}

func (u *memUoW) Rollback(context.Context) error {
	u.reset()
	return nil
}

func (u *memUoW) reset() {
	u.inTx = false
	u.orders = nil
	u.shipments = nil
	u.counters = nil
}

func (u *memUoW) OrderRepository() ports.OrderRepository       { return memOrderRepo{u} }
func (u *memUoW) ShipmentRepository() ports.ShipmentRepository { return memShipmentRepo{u} }
func (u *memUoW) DocumentRepository() ports.DocumentRepository { return memDocumentRepo{u.store} }
func (u *memUoW) SerialCounter() ports.SerialCounter           { return memCounter{u} }

type memOrderRepo struct{ u *memUoW }

func (r memOrderRepo) Add(_ context.Context, o *order.Order) error {
	if r.u.inTx {
		r.u.orders = append(r.u.orders, o)
		return nil
	}
	r.u.store.mu.Lock()
	defer r.u.store.mu.Unlock()
	r.u.store.orders[o.ID()] = o
	return nil
}

func (r memOrderRepo) Update(ctx context.Context, o *order.Order) error {
	return r.Add(ctx, o)
}

func (r memOrderRepo) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	r.u.store.mu.Lock()
	defer r.u.store.mu.Unlock()
	o, ok := r.u.store.orders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id)
	}
	return order.RestoreOrder(o.ID(), o.ExternalRef(), o.Recipient(), o.Currency(), o.OrderedAt(), o.Lines(), o.PackedAt(), o.DispatchedAt(), o.Rejection())
}

func (r memOrderRepo) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.Get(ctx, id)
}

type memShipmentRepo struct{ u *memUoW }

func (r memShipmentRepo) Add(_ context.Context, s *shipment.Shipment) error {
	if r.u.inTx {
		r.u.shipments = append(r.u.shipments, s)
		return nil
	}
	r.u.store.mu.Lock()
	defer r.u.store.mu.Unlock()
	r.u.store.shipments[s.OrderID()] = append(r.u.store.shipments[s.OrderID()], s)
	return nil
}

func (r memShipmentRepo) Update(context.Context, *shipment.Shipment) error { return nil }

func (r memShipmentRepo) Get(_ context.Context, id kernel.UUID) (*shipment.Shipment, error) {
	r.u.store.mu.Lock()
	defer r.u.store.mu.Unlock()
	for _, list := range r.u.store.shipments {
		for _, s := range list {
			if s.ID().IsEqual(id) {
				return s, nil
			}
		}
	}
	return nil, errs.NewObjectNotFoundError("shipment", id)
}

func (r memShipmentRepo) ListByOrder(_ context.Context, orderID kernel.UUID) ([]*shipment.Shipment, error) {
	r.u.store.mu.Lock()
	defer r.u.store.mu.Unlock()
	out := append([]*shipment.Shipment(nil), r.u.store.shipments[orderID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].SequenceIndex() < out[j].SequenceIndex() })
	return out, nil
}

type memDocumentRepo struct{ store *memStore }

func (r memDocumentRepo) Get(_ context.Context, filename string) (*document.Document, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	d, ok := r.store.documents[filename]
	if !ok {
		return nil, errs.NewObjectNotFoundError("filename", filename)
	}
	return copyDocument(d)
}

func (r memDocumentRepo) Upsert(_ context.Context, d *document.Document) error {
	c, err := copyDocument(d)
	if err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.documents[d.Filename()] = c
	return nil
}

func copyDocument(d *document.Document) (*document.Document, error) {
	return document.RestoreDocument(d.Filename(), d.DocType(), d.OrderID(), d.OrderRef(), d.ShipmentID(),
		d.ContainerIDs(), d.Status(), d.SentAt(), d.ErrorMessage(), d.Attempts(), d.UpdatedAt())
}

type memCounter struct{ u *memUoW }

func (c memCounter) Next(_ context.Context, scope string) (int64, error) {
	c.u.store.mu.Lock()
	defer c.u.store.mu.Unlock()
	if c.u.inTx {
		c.u.counters[scope]++
		return c.u.store.counters[scope] + c.u.counters[scope], nil
	}
	c.u.store.counters[scope]++
	return c.u.store.counters[scope], nil
}

// memFactory satisfies every unit of work factory of the commands package.
type memFactory struct{ store *memStore }

func (f memFactory) create() *memUoW { return &memUoW{store: f.store} }

type memPackingFactory struct{ memFactory }

func (f memPackingFactory) Create() commands.PackingUoW { return f.create() }

type memOrderFactory struct{ memFactory }

func (f memOrderFactory) Create() commands.OrderUoW { return f.create() }

type memDeliveryFactory struct{ memFactory }

func (f memDeliveryFactory) Create() commands.DeliveryUoW { return f.create() }

// memTransfer records delivered files. fail, when set, decides per call whether the
// transfer breaks.
type memTransfer struct {
	mu    sync.Mutex
	files map[string][]byte
	calls int
	fail  func(filename string) error
}

func newMemTransfer() *memTransfer {
	return &memTransfer{files: make(map[string][]byte)}
}

func (t *memTransfer) Deliver(_ context.Context, dir, filename string, content []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++
	if t.fail != nil {
		if err := t.fail(filename); err != nil {
			return err
		}
	}
	t.files[path.Join(dir, filename)] = append([]byte(nil), content...)
	return nil
}

func (t *memTransfer) callCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

func (t *memTransfer) fileNames() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	names := make([]string, 0, len(t.files))
	for n := range t.files {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func mustOrder(id kernel.UUID, ref string, lines ...order.Line) *order.Order {
	addr, err := order.NewAddress("Jane Roe", "Main St 1", "Berlin", "10115", "DE")
	if err != nil {
		panic(err)
	}
	o, err := order.NewOrder(id, ref, addr, "EUR", time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), lines)
	if err != nil {
		panic(err)
	}
	return o
}

func mustLine(n int, sku, gtin string, qty int) order.Line {
	l, err := order.NewLine(n, sku, gtin, qty, 1299)
	if err != nil {
		panic(err)
	}
	return l
}
