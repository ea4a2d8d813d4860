package cart

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/menudigital/backend/models"
)

var ErrSelectionIncomplete = errors.New("selection does not meet the required options")

// Selection tracks modifier choices for one menu item before it enters the
// cart. Groups with MaxSelection == 1 behave as radio buttons (a new choice
// replaces the previous one); larger maximums toggle membership.
type Selection struct {
	item   models.MenuItem
	groups []models.ModifierGroup
	chosen map[uint][]uint // group ID -> option IDs, in selection order
}

func NewSelection(item models.MenuItem) *Selection {
	return &Selection{
		item:   item,
		groups: item.ModifierGroups,
		chosen: make(map[uint][]uint),
	}
}

// Toggle selects or deselects an option within its group.
func (s *Selection) Toggle(groupID, optionID uint) error {
	group, ok := s.group(groupID)
	if !ok {
		return fmt.Errorf("unknown modifier group %d", groupID)
	}
	if _, ok := s.option(group, optionID); !ok {
		return fmt.Errorf("unknown option %d in group %q", optionID, group.Name)
	}

	current := s.chosen[groupID]

	if group.MaxSelection == 1 {
		// Radio behavior: the new choice replaces any prior one.
		s.chosen[groupID] = []uint{optionID}
		return nil
	}

	for i, id := range current {
		if id == optionID {
			s.chosen[groupID] = append(current[:i], current[i+1:]...)
			return nil
		}
	}
	if group.MaxSelection > 0 && len(current) >= group.MaxSelection {
		return fmt.Errorf("at most %d options allowed in %q", group.MaxSelection, group.Name)
	}
	s.chosen[groupID] = append(current, optionID)
	return nil
}

// Valid reports whether every group's selected count meets its minimum.
func (s *Selection) Valid() bool {
	for _, group := range s.groups {
		if len(s.chosen[group.ID]) < group.MinSelection {
			return false
		}
	}
	return true
}

// Modifiers returns the selected options as cart modifiers, in group order.
func (s *Selection) Modifiers() []Modifier {
	var out []Modifier
	for _, group := range s.groups {
		for _, optID := range s.chosen[group.ID] {
			if opt, ok := s.option(group, optID); ok {
				out = append(out, Modifier{
					ID:              opt.ID,
					Name:            opt.Name,
					PriceAdjustment: opt.PriceAdjustment,
					GroupID:         group.ID,
					GroupName:       group.Name,
				})
			}
		}
	}
	return out
}

// Price is the base item price plus all selected adjustments.
func (s *Selection) Price() decimal.Decimal {
	price := s.item.Price
	for _, m := range s.Modifiers() {
		price = price.Add(m.PriceAdjustment)
	}
	return price
}

// Confirm returns the cart item and modifiers, or an error while the
// selection is still invalid. This is the gate behind "add to order".
func (s *Selection) Confirm() (Item, []Modifier, error) {
	if !s.Valid() {
		return Item{}, nil, ErrSelectionIncomplete
	}
	item := Item{
		ProductID: s.item.ID,
		Name:      s.item.Name,
		UnitPrice: s.item.Price,
	}
	return item, s.Modifiers(), nil
}

func (s *Selection) group(id uint) (models.ModifierGroup, bool) {
	for _, g := range s.groups {
		if g.ID == id {
			return g, true
		}
	}
	return models.ModifierGroup{}, false
}

func (s *Selection) option(group models.ModifierGroup, id uint) (models.ModifierOption, bool) {
	for _, o := range group.Options {
		if o.ID == id {
			return o, true
		}
	}
	return models.ModifierOption{}, false
}
