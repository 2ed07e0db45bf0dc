package inventory

import (
	"fmt"
	"sort"

	"github.com/commerce/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReservationService coordinates reservation arithmetic across the stock
// levels of multiple products. A single product's stock may be spread
// over several locations; reservations span locations in creation order.
//
// Reservations are two-phase: feasibility is checked for every line
// before any level is mutated, so a shortfall on the last line cannot
// leave earlier lines partially reserved. The service mutates the
// StockLevel aggregates in-place but does NOT persist them; the caller
// owns the transaction boundary.
type ReservationService struct{}

// NewReservationService creates a new reservation service
func NewReservationService() *ReservationService {
	return &ReservationService{}
}

// ReservationLine is one product's quantity to reserve or release,
// together with the stock levels it may draw from.
type ReservationLine struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	Levels    []*StockLevel
}

// Allocation records how much of a line landed on one stock level
type Allocation struct {
	StockLevelID uuid.UUID       `json:"stock_level_id"`
	ProductID    uuid.UUID       `json:"product_id"`
	LocationID   uuid.UUID       `json:"location_id"`
	Quantity     decimal.Decimal `json:"quantity"`
}

// ReservationResult describes a committed reservation or release
type ReservationResult struct {
	Allocations []Allocation    `json:"allocations"`
	Total       decimal.Decimal `json:"total"`
}

func validateLines(lines []ReservationLine) error {
	if len(lines) == 0 {
		return shared.NewDomainError("INVALID_REQUEST", "At least one line is required")
	}
	for i, line := range lines {
		if line.ProductID == uuid.Nil {
			return shared.NewDomainError("INVALID_PRODUCT", fmt.Sprintf("Product ID at index %d cannot be empty", i))
		}
		if line.Quantity.LessThanOrEqual(decimal.Zero) {
			return shared.NewDomainError("INVALID_QUANTITY", fmt.Sprintf("Quantity at index %d must be positive", i))
		}
	}
	return nil
}

// sortedLevels returns the line's levels ordered by creation position
func sortedLevels(line ReservationLine) []*StockLevel {
	levels := make([]*StockLevel, len(line.Levels))
	copy(levels, line.Levels)
	sort.SliceStable(levels, func(a, b int) bool {
		return levels[a].Position < levels[b].Position
	})
	return levels
}

// Reserve holds stock for every line, or nothing at all.
//
// Phase one verifies each line's requested quantity against the summed
// availability of its locations. Only when every line is feasible does
// phase two walk the locations in creation order, reserving
// min(available, remaining) at each until the line is covered.
func (s *ReservationService) Reserve(lines []ReservationLine) (*ReservationResult, error) {
	if err := validateLines(lines); err != nil {
		return nil, err
	}

	// Phase one: feasibility across all lines, no mutation.
	for _, line := range lines {
		available := decimal.Zero
		for _, level := range line.Levels {
			available = available.Add(level.AvailableQuantity())
		}
		if available.LessThan(line.Quantity) {
			return nil, shared.NewDomainError("INSUFFICIENT_STOCK",
				fmt.Sprintf("Insufficient stock for product %s: available=%s, requested=%s",
					line.ProductID, available.String(), line.Quantity.String()))
		}
	}

	// Phase two: commit per-location reservations.
	result := &ReservationResult{
		Allocations: make([]Allocation, 0, len(lines)),
		Total:       decimal.Zero,
	}
	for _, line := range lines {
		remaining := line.Quantity
		for _, level := range sortedLevels(line) {
			if remaining.IsZero() {
				break
			}
			take := remaining
			if level.AvailableQuantity().LessThan(take) {
				take = level.AvailableQuantity()
			}
			if take.LessThanOrEqual(decimal.Zero) {
				continue
			}
			if err := level.Reserve(take); err != nil {
				// Feasibility was just verified against these same levels;
				// a failure here means the caller raced us without locking.
				return nil, err
			}
			result.Allocations = append(result.Allocations, Allocation{
				StockLevelID: level.ID,
				ProductID:    level.ProductID,
				LocationID:   level.LocationID,
				Quantity:     take,
			})
			result.Total = result.Total.Add(take)
			remaining = remaining.Sub(take)
		}
	}

	return result, nil
}

// Release returns reserved stock to available, mirroring Reserve: walk
// each line's locations in creation order, releasing min(reserved,
// remaining) at each and carrying the remainder. Levels floor at zero.
func (s *ReservationService) Release(lines []ReservationLine) (*ReservationResult, error) {
	if err := validateLines(lines); err != nil {
		return nil, err
	}

	result := &ReservationResult{
		Allocations: make([]Allocation, 0, len(lines)),
		Total:       decimal.Zero,
	}
	for _, line := range lines {
		remaining := line.Quantity
		for _, level := range sortedLevels(line) {
			if remaining.IsZero() {
				break
			}
			released := level.Release(remaining)
			if released.IsZero() {
				continue
			}
			result.Allocations = append(result.Allocations, Allocation{
				StockLevelID: level.ID,
				ProductID:    level.ProductID,
				LocationID:   level.LocationID,
				Quantity:     released,
			})
			result.Total = result.Total.Add(released)
			remaining = remaining.Sub(released)
		}
	}

	return result, nil
}

// Consume deducts reserved stock on shipment: both on-hand and reserved
// quantities decrease, location by location in creation order.
func (s *ReservationService) Consume(lines []ReservationLine) (*ReservationResult, error) {
	if err := validateLines(lines); err != nil {
		return nil, err
	}

	result := &ReservationResult{
		Allocations: make([]Allocation, 0, len(lines)),
		Total:       decimal.Zero,
	}
	for _, line := range lines {
		remaining := line.Quantity
		for _, level := range sortedLevels(line) {
			if remaining.IsZero() {
				break
			}
			consumed := level.Consume(remaining)
			if consumed.IsZero() {
				continue
			}
			result.Allocations = append(result.Allocations, Allocation{
				StockLevelID: level.ID,
				ProductID:    level.ProductID,
				LocationID:   level.LocationID,
				Quantity:     consumed,
			})
			result.Total = result.Total.Add(consumed)
			remaining = remaining.Sub(consumed)
		}
	}

	return result, nil
}
