package optimizer

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/polica/planogram-service/internal/planogram"
)

// StrategyBundle is reported by bundle-aware runs. It is not requestable
// through ParseStrategy; bundle runs go through OptimizeBundles.
const StrategyBundle Strategy = "bundle"

const (
	// shelfAdjacencyGap is the largest vertical clearance, in centimeters,
	// at which two shelves still count as adjacent for bundle splitting.
	shelfAdjacencyGap = 10.0

	// highBundleValue is the revenue rate above which a bundle earns the
	// eye-level or premium shelf bonus.
	highBundleValue = 100.0
)

// bundleGroup is one resolved co-placement group.
type bundleGroup struct {
	members   []*planogram.Product
	frequency int
}

// bundlePlacement records where a whole bundle landed, for the spacing pass
// and for steering related products to the same shelf.
type bundlePlacement struct {
	shelfID   string
	memberIDs map[string]bool
	members   []*planogram.Product
}

// OptimizeBundles runs a bundle-aware allocation: resolved groups are placed
// together first, remaining products fill in around them, and bundle edges
// get extra breathing room. An empty bundle list falls back to the balanced
// strategy.
func (e *Engine) OptimizeBundles(ctx context.Context, req *BundleRequest) (*Result, error) {
	if err := req.Validate(e.config.MaxProducts); err != nil {
		return nil, err
	}

	if len(req.Bundles) == 0 {
		e.logger.Warn().Str("store", req.Store.Name).Msg("no bundle groups provided, falling back to balanced placement")
		return e.Optimize(ctx, &OptimizeRequest{
			Store:      req.Store,
			Products:   req.Products,
			Strategy:   StrategyBalanced,
			FacingMode: req.FacingMode,
		})
	}

	startTime := time.Now()
	r := e.newRun(req.Store, StrategyBundle, req.FacingMode)
	r.logger.Info().
		Int("products", len(req.Products)).
		Int("bundles", len(req.Bundles)).
		Msg("starting bundle allocation run")

	result, err := r.executeBundles(ctx, req.Products, req.Bundles)
	elapsed := time.Since(startTime)
	e.metrics.RecordRun(string(StrategyBundle), elapsed, runOutcome(result, err))
	if err != nil {
		return nil, err
	}

	result.Elapsed = elapsed
	r.logger.Info().
		Int("placed", result.ProductsPlaced).
		Int("bundles_placed", result.Bundles.Placed).
		Int("bundles_split", result.Bundles.Split).
		Msg("bundle allocation run completed")
	return result, nil
}

func (r *run) executeBundles(ctx context.Context, products []*planogram.Product, inputs []BundleInput) (*Result, error) {
	r.engine.metrics.RecordAssortmentSize(len(products))
	r.store.Reset()

	filtered := r.store.FilterProducts(products)
	if len(filtered) == 0 {
		return nil, &OptimizationError{Stage: StageFilter, Err: ErrNoProducts}
	}
	r.products = filtered
	r.byID = make(map[string]*planogram.Product, len(filtered))
	for _, p := range filtered {
		r.byID[p.ID] = p
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	groups := r.resolveBundles(inputs)
	stats := &BundleStats{Total: len(groups)}
	for _, g := range groups {
		stats.ProductsInBundles += len(g.members)
	}
	if stats.Total > 0 {
		stats.AverageSize = float64(stats.ProductsInBundles) / float64(stats.Total)
	}

	var placements []bundlePlacement
	for _, g := range groups {
		placed, split := r.placeBundle(g, &placements)
		r.engine.metrics.RecordBundleOutcome(placed, split)
		if placed {
			stats.Placed++
			if split {
				stats.Split++
			}
		} else {
			r.warnings = append(r.warnings, fmt.Sprintf("could not place bundle with %d products", len(g.members)))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.placeRemaining(placements)
	r.spaceBundles(placements)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.warnings = append(r.warnings, r.validate()...)

	result := r.buildResult()
	stats.Coverage = r.bundleCoverage(groups)
	result.Bundles = stats
	return result, nil
}

// resolveBundles maps bundle inputs onto the filtered assortment. Groups
// with fewer than two resolvable members are dropped; the rest are ordered
// by descending frequency, ties keeping input order.
func (r *run) resolveBundles(inputs []BundleInput) []bundleGroup {
	groups := make([]bundleGroup, 0, len(inputs))
	for _, in := range inputs {
		seen := make(map[string]bool, len(in.ProductIDs))
		var members []*planogram.Product
		for _, id := range in.ProductIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			if p, ok := r.byID[id]; ok {
				members = append(members, p)
			}
		}
		if len(members) < 2 {
			continue
		}
		groups = append(groups, bundleGroup{members: members, frequency: in.Frequency})
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].frequency > groups[j].frequency
	})
	r.logger.Debug().Int("resolved", len(groups)).Int("inputs", len(inputs)).Msg("bundle groups resolved")
	return groups
}

// placeBundle places one group, whole on the best-scoring shelf when
// possible, split across adjacent shelves otherwise. Members already placed
// by an earlier overlapping group are skipped.
func (r *run) placeBundle(g bundleGroup, placements *[]bundlePlacement) (placed, split bool) {
	var members []*planogram.Product
	for _, m := range g.members {
		if _, ok := r.shelfOf[m.ID]; !ok {
			members = append(members, m)
		}
	}
	if len(members) < 2 {
		// Consumed by an earlier overlapping group; nothing left to co-place.
		return true, false
	}

	facings := make([]int, len(members))
	width := r.gap * float64(len(members)-1)
	for i, m := range members {
		facings[i] = r.facings(m, planogram.FacingBalanced)
		width += m.Width * float64(facings[i])
	}

	shelf := r.bestBundleShelf(members, facings, width)
	if shelf == nil {
		if r.splitBundle(members, facings) {
			return true, true
		}
		return false, false
	}

	start := bundlePosition(shelf, width, r.gap)
	x := start
	done := make([]*planogram.Product, 0, len(members))
	for i, m := range members {
		if !shelf.PlaceAt(m, facings[i], x) {
			for _, u := range done {
				shelf.RemovePlacement(u.ID)
				delete(r.shelfOf, u.ID)
			}
			return false, false
		}
		r.track(m, shelf)
		done = append(done, m)
		x += m.Width*float64(facings[i]) + r.gap
	}

	ids := make(map[string]bool, len(members))
	for _, m := range members {
		ids[m.ID] = true
	}
	*placements = append(*placements, bundlePlacement{shelfID: shelf.ID, memberIDs: ids, members: members})
	r.logger.Debug().
		Str("shelf", shelf.ID).
		Int("members", len(members)).
		Float64("start_x", start).
		Msg("bundle placed whole")
	return true, false
}

// bestBundleShelf returns the highest-scoring shelf that can hold the whole
// bundle, or nil when none can.
func (r *run) bestBundleShelf(members []*planogram.Product, facings []int, width float64) *planogram.Shelf {
	var best *planogram.Shelf
	bestScore := math.Inf(-1)

	for _, shelf := range r.store.Shelves {
		if shelf.AvailableWidth(r.gap) < width {
			continue
		}
		fits := true
		for _, m := range members {
			if m.Height > shelf.Height || m.Depth > shelf.Depth {
				fits = false
				break
			}
		}
		if !fits {
			continue
		}
		score := r.bundleShelfScore(members, width, shelf)
		if score > bestScore {
			bestScore = score
			best = shelf
		}
	}
	return best
}

// bundleShelfScore rates a shelf for a bundle: the members' average
// placement score, a value bonus for revenue-dense bundles at prime
// positions, a fit bonus when the bundle takes a comfortable share of the
// free width, and a homogeneity bonus for category-consistent bundles.
func (r *run) bundleShelfScore(members []*planogram.Product, width float64, shelf *planogram.Shelf) float64 {
	score := 0.0
	for _, m := range members {
		score += shelf.PlacementScore(m)
	}
	score /= float64(len(members))

	value := 0.0
	for _, m := range members {
		value += m.Price * m.SalesVelocity
	}
	if value > highBundleValue {
		if shelf.IsEyeLevel {
			score += 0.5
		} else if shelf.IsPremium {
			score += 0.3
		}
	}

	if available := shelf.AvailableWidth(r.gap); available > 0 {
		if share := width / available; share >= 0.3 && share <= 0.7 {
			score += 0.3
		}
	}

	categories := make(map[planogram.Category]bool, len(members))
	for _, m := range members {
		categories[m.Category] = true
	}
	if len(categories) <= 2 {
		score += 0.2
	}

	return score
}

// bundlePosition picks the starting x for a bundle of the given width:
// centered on an empty shelf, otherwise the free span whose midpoint lies
// closest to the shelf midpoint.
func bundlePosition(shelf *planogram.Shelf, width, gap float64) float64 {
	if len(shelf.Placements) == 0 {
		if available := shelf.Width - width; available > 0 {
			return available / 2
		}
		return gap
	}

	var starts []float64
	if shelf.Placements[0].XStart >= width+gap {
		starts = append(starts, 0)
	}
	for i := 0; i < len(shelf.Placements)-1; i++ {
		spanStart := shelf.Placements[i].XEnd + gap
		spanEnd := shelf.Placements[i+1].XStart - gap
		if spanEnd-spanStart >= width {
			starts = append(starts, spanStart)
		}
	}
	lastEnd := shelf.Placements[len(shelf.Placements)-1].XEnd + gap
	if shelf.Width-lastEnd >= width {
		starts = append(starts, lastEnd)
	}

	if len(starts) == 0 {
		return lastEnd
	}
	center := shelf.Width / 2
	sort.SliceStable(starts, func(i, j int) bool {
		return math.Abs(starts[i]+width/2-center) < math.Abs(starts[j]+width/2-center)
	})
	return starts[0]
}

// splitBundle places the group's halves on two vertically adjacent shelves.
// Both halves must fit; a half-placed attempt is rolled back before the next
// shelf pair is tried.
func (r *run) splitBundle(members []*planogram.Product, facings []int) bool {
	mid := len(members) / 2
	widthOf := func(lo, hi int) float64 {
		w := 0.0
		for i := lo; i < hi; i++ {
			w += members[i].Width * float64(facings[i])
		}
		return w
	}
	lowerWidth := widthOf(0, mid)
	upperWidth := widthOf(mid, len(members))

	shelves := r.store.Shelves
	for i := 0; i < len(shelves)-1; i++ {
		lower, upper := shelves[i], shelves[i+1]
		if math.Abs(upper.Y-(lower.Y+lower.Height)) >= shelfAdjacencyGap {
			continue
		}
		if lower.AvailableWidth(r.gap) < lowerWidth || upper.AvailableWidth(r.gap) < upperWidth {
			continue
		}

		var done []*planogram.Product
		ok := true
		for j, m := range members {
			shelf := lower
			if j >= mid {
				shelf = upper
			}
			if !r.place(shelf, m, facings[j]) {
				ok = false
				break
			}
			done = append(done, m)
		}
		if ok {
			r.warnings = append(r.warnings, fmt.Sprintf("split bundle across shelves %s and %s", lower.ID, upper.ID))
			return true
		}
		for _, u := range done {
			if shelfID, tracked := r.shelfOf[u.ID]; tracked {
				r.store.ShelfByID(shelfID).RemovePlacement(u.ID)
				delete(r.shelfOf, u.ID)
			}
		}
	}
	return false
}

// placeRemaining fills in every product not consumed by a bundle, preferring
// shelves that already hold related items, then the emptiest shelves.
func (r *run) placeRemaining(placements []bundlePlacement) {
	var remaining []*planogram.Product
	for _, p := range r.products {
		if _, ok := r.shelfOf[p.ID]; !ok {
			remaining = append(remaining, p)
		}
	}
	r.sortByPriority(remaining)

	for _, p := range remaining {
		facings := r.facings(p, planogram.FacingBalanced)
		if related := r.relatedShelf(p, placements); related != nil && r.place(related, p, facings) {
			continue
		}
		placed := false
		for _, shelf := range r.shelvesByUtilization() {
			if r.place(shelf, p, facings) {
				placed = true
				break
			}
		}
		if !placed {
			r.reject(p, "no shelf space available")
		}
	}
}

// relatedShelf picks a shelf already holding products related to p: first a
// bundle sharing p's category or series, then the shelf with the most
// same-category placements.
func (r *run) relatedShelf(p *planogram.Product, placements []bundlePlacement) *planogram.Shelf {
	for _, bp := range placements {
		for _, m := range bp.members {
			if m.Category == p.Category || (p.Series != "" && m.Series == p.Series) {
				return r.store.ShelfByID(bp.shelfID)
			}
		}
	}

	var best *planogram.Shelf
	bestCount := 0
	for _, shelf := range r.store.Shelves {
		count := 0
		for _, pl := range shelf.Placements {
			if placed, ok := r.byID[pl.ProductID]; ok && placed.Category == p.Category {
				count++
			}
		}
		if count > bestCount {
			bestCount = count
			best = shelf
		}
	}
	return best
}

// spaceBundles gives whole-placed bundles extra breathing room: shelves are
// repacked with a doubled gap at each bundle's first and last member. A
// shelf keeps its layout when the widened repack would overflow.
func (r *run) spaceBundles(placements []bundlePlacement) {
	for _, shelf := range r.store.Shelves {
		if len(shelf.Placements) < 2 {
			continue
		}

		starts := make(map[string]bool)
		ends := make(map[string]bool)
		for _, bp := range placements {
			if bp.shelfID != shelf.ID {
				continue
			}
			first, last := "", ""
			firstX, lastX := math.Inf(1), math.Inf(-1)
			for _, pl := range shelf.Placements {
				if !bp.memberIDs[pl.ProductID] {
					continue
				}
				if pl.XStart < firstX {
					firstX, first = pl.XStart, pl.ProductID
				}
				if pl.XEnd > lastX {
					lastX, last = pl.XEnd, pl.ProductID
				}
			}
			if first != "" {
				starts[first] = true
				ends[last] = true
			}
		}
		if len(starts) == 0 {
			continue
		}

		repacked := make([]planogram.Placement, 0, len(shelf.Placements))
		x := r.gap
		for _, pl := range shelf.Placements {
			if starts[pl.ProductID] {
				x += r.gap
			}
			width := pl.Width()
			repacked = append(repacked, planogram.Placement{
				ProductID: pl.ProductID,
				XStart:    x,
				XEnd:      x + width,
				Facings:   pl.Facings,
			})
			x += width + r.gap
			if ends[pl.ProductID] {
				x += r.gap
			}
		}
		if repacked[len(repacked)-1].XEnd+r.gap > shelf.Width {
			continue
		}
		shelf.Placements = repacked
	}
}

// bundleCoverage reports the share of placed products that belong to any
// resolved bundle group.
func (r *run) bundleCoverage(groups []bundleGroup) float64 {
	if len(r.shelfOf) == 0 {
		return 0
	}
	inBundles := make(map[string]bool)
	for _, g := range groups {
		for _, m := range g.members {
			inBundles[m.ID] = true
		}
	}
	count := 0
	for id := range r.shelfOf {
		if inBundles[id] {
			count++
		}
	}
	return float64(count) / float64(len(r.shelfOf))
}
