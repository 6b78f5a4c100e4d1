package planogram

import "sort"

// ShelfType describes the merchandising role of a shelf.
type ShelfType string

const (
	ShelfStorage     ShelfType = "storage"
	ShelfStandard    ShelfType = "standard"
	ShelfPremium     ShelfType = "premium"
	ShelfPromotional ShelfType = "promotional"
)

// ParseShelfType maps a raw shelf type string to a known ShelfType.
// Unknown or empty values map to ShelfStandard.
func ParseShelfType(s string) ShelfType {
	switch ShelfType(s) {
	case ShelfStorage, ShelfPremium, ShelfPromotional:
		return ShelfType(s)
	default:
		return ShelfStandard
	}
}

// Zone names a horizontal third of a shelf.
type Zone string

const (
	ZoneLeft   Zone = "left"
	ZoneCenter Zone = "center"
	ZoneRight  Zone = "right"
)

// eyeLevelThreshold is the eye-level score at or above which a shelf counts
// as prime placement.
const eyeLevelThreshold = 0.8

// Placement is one product span on a shelf. A shelf's placements are always
// sorted by XStart, mutually non-overlapping and contained in [0, shelf width].
type Placement struct {
	ProductID string  // SKU occupying the span
	XStart    float64 // Left edge in cm
	XEnd      float64 // Right edge in cm
	Facings   int     // Adjacent display slots; span width = product width * facings
}

// Width returns the horizontal space the placement occupies.
func (p Placement) Width() float64 {
	return p.XEnd - p.XStart
}

// Shelf is one physical capacity unit of a store.
// Construct shelves with NewShelf so the derived flags are populated.
type Shelf struct {
	ID            string    // Shelf identifier, unique within a store
	Name          string    // Display name
	Width         float64   // cm
	Height        float64   // cm
	Depth         float64   // cm
	Y             float64   // Vertical position of the shelf base from the ground, cm
	Type          ShelfType // Merchandising role
	EyeLevelScore float64   // Visibility score in [0,1]; 1 = prime eye level

	// Derived at construction
	Area       float64 // Width * Height
	IsEyeLevel bool    // EyeLevelScore >= 0.8
	IsPremium  bool    // Type is premium or promotional

	// Placements currently on the shelf, sorted by XStart
	Placements []Placement
}

// NewShelf validates s and computes the derived flags.
func NewShelf(s Shelf) (*Shelf, error) {
	if s.ID == "" {
		return nil, ErrInvalidShelf{ID: s.ID, Field: "id", Reason: "cannot be empty"}
	}
	if s.Width <= 0 {
		return nil, ErrInvalidShelf{ID: s.ID, Field: "width", Reason: "must be positive"}
	}
	if s.Height <= 0 {
		return nil, ErrInvalidShelf{ID: s.ID, Field: "height", Reason: "must be positive"}
	}
	if s.Depth <= 0 {
		return nil, ErrInvalidShelf{ID: s.ID, Field: "depth", Reason: "must be positive"}
	}
	if s.EyeLevelScore < 0 || s.EyeLevelScore > 1 {
		return nil, ErrInvalidShelf{ID: s.ID, Field: "eye_level_score", Reason: "must be between 0 and 1"}
	}
	if s.Type == "" {
		s.Type = ShelfStandard
	}
	s.Area = s.Width * s.Height
	s.IsEyeLevel = s.EyeLevelScore >= eyeLevelThreshold
	s.IsPremium = s.Type == ShelfPremium || s.Type == ShelfPromotional
	return &s, nil
}

// UsedWidth returns the total width consumed by placements, excluding gaps.
func (s *Shelf) UsedWidth() float64 {
	used := 0.0
	for _, pl := range s.Placements {
		used += pl.Width()
	}
	return used
}

// AvailableWidth returns the width still open for new placements, charging
// gapSize of spacing for every placement already on the shelf.
func (s *Shelf) AvailableWidth(gapSize float64) float64 {
	if len(s.Placements) == 0 {
		return s.Width
	}
	return s.Width - s.UsedWidth() - gapSize*float64(len(s.Placements))
}

// CanFit reports whether the product fits on the shelf at the given facing
// count. Height and depth are hard limits; width is checked against the
// currently available width.
func (s *Shelf) CanFit(p *Product, facings int, gapSize float64) bool {
	if p.Height > s.Height || p.Depth > s.Depth {
		return false
	}
	return p.Width*float64(facings) <= s.AvailableWidth(gapSize)
}

// AddPlacement appends the product after the rightmost placement, separated
// by gapSize (a leading gap is used on an empty shelf). It fails without
// mutating the shelf when the span plus a trailing gap would exceed the
// shelf width.
func (s *Shelf) AddPlacement(p *Product, facings int, gapSize float64) bool {
	if p.Height > s.Height || p.Depth > s.Depth {
		return false
	}

	x := gapSize
	if len(s.Placements) > 0 {
		x = s.Placements[len(s.Placements)-1].XEnd + gapSize
	}

	width := p.Width * float64(facings)
	if x+width+gapSize > s.Width {
		return false
	}

	s.Placements = append(s.Placements, Placement{
		ProductID: p.ID,
		XStart:    x,
		XEnd:      x + width,
		Facings:   facings,
	})
	return true
}

// PlaceAt inserts the product at an explicit x position, keeping the
// placement list sorted. It fails when the span would leave the shelf or
// overlap an existing placement.
func (s *Shelf) PlaceAt(p *Product, facings int, x float64) bool {
	if p.Height > s.Height || p.Depth > s.Depth {
		return false
	}
	width := p.Width * float64(facings)
	if x < 0 || x+width > s.Width {
		return false
	}
	for _, pl := range s.Placements {
		if x+width > pl.XStart && x < pl.XEnd {
			return false
		}
	}

	s.Placements = append(s.Placements, Placement{
		ProductID: p.ID,
		XStart:    x,
		XEnd:      x + width,
		Facings:   facings,
	})
	sort.SliceStable(s.Placements, func(i, j int) bool {
		return s.Placements[i].XStart < s.Placements[j].XStart
	})
	return true
}

// RemovePlacement removes the placement for the given product, reporting
// whether one was present.
func (s *Shelf) RemovePlacement(productID string) bool {
	for i, pl := range s.Placements {
		if pl.ProductID == productID {
			s.Placements = append(s.Placements[:i], s.Placements[i+1:]...)
			return true
		}
	}
	return false
}

// PlacementOf returns the placement for the given product, if present.
func (s *Shelf) PlacementOf(productID string) (Placement, bool) {
	for _, pl := range s.Placements {
		if pl.ProductID == productID {
			return pl, true
		}
	}
	return Placement{}, false
}

// PlacementAt returns the placement whose span contains the position x,
// if any. Spans are half-open, so a placement's XEnd belongs to the gap
// after it.
func (s *Shelf) PlacementAt(x float64) (Placement, bool) {
	for _, pl := range s.Placements {
		if x >= pl.XStart && x < pl.XEnd {
			return pl, true
		}
	}
	return Placement{}, false
}

// Utilization returns the percentage of shelf width consumed by placements
// plus the gapSize spacing between adjacent placements.
func (s *Shelf) Utilization(gapSize float64) float64 {
	if len(s.Placements) == 0 {
		return 0
	}
	gaps := gapSize * float64(len(s.Placements)-1)
	return (s.UsedWidth() + gaps) / s.Width * 100
}

// Reflow repacks all placements left-to-right in their current order with a
// uniform gapSize before and between spans, eliminating fragmentation.
// Calling Reflow twice in a row produces identical positions.
func (s *Shelf) Reflow(gapSize float64) {
	if len(s.Placements) == 0 {
		return
	}
	sort.SliceStable(s.Placements, func(i, j int) bool {
		return s.Placements[i].XStart < s.Placements[j].XStart
	})
	x := gapSize
	for i := range s.Placements {
		width := s.Placements[i].Width()
		s.Placements[i].XStart = x
		s.Placements[i].XEnd = x + width
		x += width + gapSize
	}
}

// PlacementScore rates how well the product suits this shelf. The score is a
// tie-break heuristic for shelf selection, not a hard constraint.
func (s *Shelf) PlacementScore(p *Product) float64 {
	score := 0.0

	if s.IsEyeLevel {
		score += 0.3
	} else {
		score += 0.1 * s.EyeLevelScore
	}

	if s.IsPremium && p.Price > 50 {
		score += 0.2
	}

	heightRatio := p.Height / s.Height
	if heightRatio >= 0.5 && heightRatio <= 0.8 {
		score += 0.2
	} else if heightRatio > 0.8 {
		score += 0.1
	}

	if p.SalesVelocity > 10 && s.EyeLevelScore > 0.7 {
		score += 0.2
	}

	return score
}

// Zones splits the shelf into horizontal thirds and groups placements by the
// zone their midpoint falls into.
func (s *Shelf) Zones() map[Zone][]Placement {
	zones := map[Zone][]Placement{
		ZoneLeft:   {},
		ZoneCenter: {},
		ZoneRight:  {},
	}
	third := s.Width / 3
	for _, pl := range s.Placements {
		center := (pl.XStart + pl.XEnd) / 2
		switch {
		case center < third:
			zones[ZoneLeft] = append(zones[ZoneLeft], pl)
		case center < 2*third:
			zones[ZoneCenter] = append(zones[ZoneCenter], pl)
		default:
			zones[ZoneRight] = append(zones[ZoneRight], pl)
		}
	}
	return zones
}

// ErrInvalidShelf is returned when a shelf fails construction-time validation.
type ErrInvalidShelf struct {
	ID     string
	Field  string
	Reason string
}

func (e ErrInvalidShelf) Error() string {
	if e.ID == "" {
		return "shelf: " + e.Field + ": " + e.Reason
	}
	return "shelf " + e.ID + ": " + e.Field + ": " + e.Reason
}
