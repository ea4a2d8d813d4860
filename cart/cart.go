package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// LineKey identifies a cart line structurally: the product plus the exact
// modifier selection. Two selections of the same product with identical
// modifier sets merge into one line; different sets produce distinct lines.
type LineKey struct {
	ProductID   uint
	ModifierSet string
}

// baseModifierSet marks a line with no modifiers selected.
const baseModifierSet = "base"

// NewLineKey builds the key from a product and its selected modifier option
// IDs. Order of the IDs does not matter.
func NewLineKey(productID uint, modifierIDs []uint) LineKey {
	if len(modifierIDs) == 0 {
		return LineKey{ProductID: productID, ModifierSet: baseModifierSet}
	}
	ids := make([]uint, len(modifierIDs))
	copy(ids, modifierIDs)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return LineKey{ProductID: productID, ModifierSet: strings.Join(parts, "-")}
}

func (k LineKey) String() string {
	return fmt.Sprintf("%d:%s", k.ProductID, k.ModifierSet)
}

// LineKey travels as its string form ("12:3-5") in JSON, both in API
// responses and in persisted cart state.
func (k LineKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *LineKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseLineKey(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseLineKey parses the wire form produced by String ("12:3-5", "12:base").
func ParseLineKey(s string) (LineKey, error) {
	product, set, ok := strings.Cut(s, ":")
	if !ok || set == "" {
		return LineKey{}, fmt.Errorf("invalid line key %q", s)
	}
	id, err := strconv.ParseUint(product, 10, 32)
	if err != nil {
		return LineKey{}, fmt.Errorf("invalid line key %q", s)
	}
	return LineKey{ProductID: uint(id), ModifierSet: set}, nil
}

// Modifier is a selected option attached to a cart line. Its adjustment
// contributes additively to the line price.
type Modifier struct {
	ID              uint            `json:"id"`
	Name            string          `json:"name"`
	PriceAdjustment decimal.Decimal `json:"price_adjustment"`
	GroupID         uint            `json:"group_id"`
	GroupName       string          `json:"group_name"`
}

// Line is one cart entry. Quantity is always >= 1; a line whose quantity
// would reach zero is removed, never kept around.
type Line struct {
	Key       LineKey         `json:"key"`
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Modifiers []Modifier      `json:"modifiers"`
}

// Subtotal is (unit price + modifier adjustments) x quantity.
func (l Line) Subtotal() decimal.Decimal {
	unit := l.UnitPrice
	for _, m := range l.Modifiers {
		unit = unit.Add(m.PriceAdjustment)
	}
	return unit.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Item is the product side of an AddLine call.
type Item struct {
	ProductID uint
	Name      string
	UnitPrice decimal.Decimal
}

// Store holds the cart for one browsing session. It rehydrates from its
// Storage synchronously on construction, before any mutation is accepted,
// so a table number arriving from a scanned link never races the load.
// Every mutation persists the full line list plus the table number.
type Store struct {
	mu          sync.Mutex
	storage     Storage
	lines       []Line
	index       map[LineKey]int
	tableNumber string
}

// NewStore creates the store and loads any previously persisted state.
func NewStore(ctx context.Context, storage Storage) (*Store, error) {
	s := &Store{storage: storage, index: make(map[LineKey]int)}
	state, err := storage.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("rehydrate cart: %w", err)
	}
	s.lines = state.Lines
	s.tableNumber = state.TableNumber
	for i, line := range s.lines {
		s.index[line.Key] = i
	}
	return s, nil
}

// AddLine merges the item into an existing line with the same composite key
// (incrementing quantity by one) or appends a new line with quantity 1.
func (s *Store) AddLine(ctx context.Context, item Item, modifiers []Modifier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]uint, len(modifiers))
	for i, m := range modifiers {
		ids[i] = m.ID
	}
	key := NewLineKey(item.ProductID, ids)

	if i, ok := s.index[key]; ok {
		s.lines[i].Quantity++
	} else {
		s.lines = append(s.lines, Line{
			Key:       key,
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  1,
			Modifiers: modifiers,
		})
		s.index[key] = len(s.lines) - 1
	}
	return s.persist(ctx)
}

// AddSelection adds a line built from a validated modifier selection. It
// refuses selections that do not meet their groups' minimums.
func (s *Store) AddSelection(ctx context.Context, sel *Selection) error {
	item, modifiers, err := sel.Confirm()
	if err != nil {
		return err
	}
	return s.AddLine(ctx, item, modifiers)
}

// RemoveLine deletes the line entirely, regardless of quantity.
func (s *Store) RemoveLine(ctx context.Context, key LineKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[key]
	if !ok {
		return nil
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	s.reindex()
	return s.persist(ctx)
}

// DecrementLine lowers the quantity by one, removing the line when it hits
// zero. This is the only one-at-a-time removal path.
func (s *Store) DecrementLine(ctx context.Context, key LineKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[key]
	if !ok {
		return nil
	}
	if s.lines[i].Quantity > 1 {
		s.lines[i].Quantity--
	} else {
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
		s.reindex()
	}
	return s.persist(ctx)
}

// Clear drops every line but keeps the table number.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	s.index = make(map[LineKey]int)
	return s.persist(ctx)
}

// Lines returns a copy of the current lines in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Total sums (unit price + modifier adjustments) x quantity over all lines.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, line := range s.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// SetTableNumber records the table from a scanned QR link. It persists with
// the cart so it survives reloads.
func (s *Store) SetTableNumber(ctx context.Context, table string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tableNumber = table
	return s.persist(ctx)
}

func (s *Store) TableNumber() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tableNumber
}

func (s *Store) reindex() {
	s.index = make(map[LineKey]int, len(s.lines))
	for i, line := range s.lines {
		s.index[line.Key] = i
	}
}

// persist writes the full state. Callers hold the lock.
func (s *Store) persist(ctx context.Context) error {
	lines := make([]Line, len(s.lines))
	copy(lines, s.lines)
	return s.storage.Save(ctx, State{Lines: lines, TableNumber: s.tableNumber})
}
