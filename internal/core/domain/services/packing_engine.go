package services

import (
	"fmt"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

// PackedItem is the quantity of one order line placed into a shipment group.
type PackedItem struct {
	Line     order.Line
	Quantity int
}

// PackedShipment is one shipment group produced by Pack, before a container id is allocated.
type PackedShipment struct {
	Items         []PackedItem
	TotalQuantity int
}

// PackingEngine partitions order lines into shipment groups with a first-fit heuristic.
// It is stateless and safe for concurrent use.
type PackingEngine struct{}

func NewPackingEngine() PackingEngine {
	return PackingEngine{}
}

// Pack walks lines in input order and puts as much of each line as fits into the first
// group, in creation order, that still has headroom, opening a new group when none has.
// With allowSplit false a line is only placed into a group that can take all of it, and a
// line larger than capacity is rejected.
//
// The result depends only on the arguments, so repeated calls produce identical groups.
func (PackingEngine) Pack(lines []order.Line, capacity int, allowSplit bool) ([]PackedShipment, error) {
	if capacity < 1 {
		return nil, errs.NewValidationError("capacity", fmt.Sprintf("must be positive, got %d", capacity))
	}

	for _, l := range lines {
		if l.Quantity() <= 0 {
			return nil, errs.NewLineValidationError(l.LineNumber(), "quantity", "must be positive")
		}
		if !allowSplit && l.Quantity() > capacity {
			return nil, errs.NewLineValidationError(l.LineNumber(), "quantity",
				fmt.Sprintf("%d exceeds shipment capacity %d and splitting is disabled", l.Quantity(), capacity))
		}
	}

	var groups []PackedShipment
	for _, l := range lines {
		remaining := l.Quantity()
		for remaining > 0 {
			idx := firstFit(groups, capacity, remaining, allowSplit)
			if idx < 0 {
				groups = append(groups, PackedShipment{})
				idx = len(groups) - 1
			}

			placed := min(remaining, capacity-groups[idx].TotalQuantity)
			groups[idx].Items = append(groups[idx].Items, PackedItem{Line: l, Quantity: placed})
			groups[idx].TotalQuantity += placed
			remaining -= placed
		}
	}

	return groups, nil
}

func firstFit(groups []PackedShipment, capacity, remaining int, allowSplit bool) int {
	for i, g := range groups {
		headroom := capacity - g.TotalQuantity
		if headroom <= 0 {
			continue
		}
		if !allowSplit && headroom < remaining {
			continue
		}
		return i
	}
	return -1
}

// VerifyPacking checks the packing post-conditions: every line quantity is fully placed,
// nothing unknown is placed, and no group exceeds capacity.
func VerifyPacking(lines []order.Line, groups []PackedShipment, capacity int) error {
	placed := make(map[int]int, len(lines))
	for i, g := range groups {
		sum := 0
		for _, it := range g.Items {
			if it.Quantity <= 0 {
				return fmt.Errorf("group %d: non-positive quantity for line %d", i, it.Line.LineNumber())
			}
			placed[it.Line.LineNumber()] += it.Quantity
			sum += it.Quantity
		}
		if sum != g.TotalQuantity {
			return fmt.Errorf("group %d: total %d does not match items %d", i, g.TotalQuantity, sum)
		}
		if sum > capacity {
			return fmt.Errorf("group %d: total %d exceeds capacity %d", i, sum, capacity)
		}
	}

	for _, l := range lines {
		if placed[l.LineNumber()] != l.Quantity() {
			return fmt.Errorf("line %d: placed %d of %d", l.LineNumber(), placed[l.LineNumber()], l.Quantity())
		}
		delete(placed, l.LineNumber())
	}
	if len(placed) > 0 {
		return fmt.Errorf("%d packed lines are not part of the order", len(placed))
	}
	return nil
}
