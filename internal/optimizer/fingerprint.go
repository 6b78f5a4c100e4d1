package optimizer

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/polica/planogram-service/internal/planogram"
)

// Fingerprint digests a store's layout under the given strategy. Identical
// placements produce identical fingerprints, so the value doubles as a
// determinism check between runs and deployments.
func Fingerprint(store *planogram.Store, strategy Strategy) string {
	var b strings.Builder
	b.WriteString(string(strategy))
	b.WriteByte('\n')
	for _, shelf := range store.Shelves {
		for _, pl := range shelf.Placements {
			b.WriteString(shelf.ID)
			b.WriteByte('|')
			b.WriteString(pl.ProductID)
			b.WriteByte('|')
			writeFloat(&b, pl.XStart)
			b.WriteByte('|')
			writeFloat(&b, pl.XEnd)
			b.WriteByte('|')
			b.WriteString(strconv.Itoa(pl.Facings))
			b.WriteByte('\n')
		}
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// RequestKey digests everything about a request that can influence the
// resulting layout. Products are hashed in request order: tie-breaking in
// the placement sorts is stable, so order is part of the input. The engine
// uses the key for result caching; callers can use it to deduplicate
// equivalent requests.
func RequestKey(req *OptimizeRequest, strategy Strategy) string {
	var b strings.Builder
	b.WriteString(string(strategy))
	b.WriteByte('|')
	b.WriteString(string(req.FacingMode))
	b.WriteByte('\n')

	writeStoreKey(&b, req.Store)
	for _, p := range req.Products {
		writeProductKey(&b, p)
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func writeStoreKey(b *strings.Builder, store *planogram.Store) {
	b.WriteString(store.Name)
	b.WriteByte('|')
	b.WriteString(string(store.Type))
	b.WriteByte('\n')
	for _, shelf := range store.Shelves {
		b.WriteString(shelf.ID)
		b.WriteByte('|')
		writeFloat(b, shelf.Width)
		b.WriteByte('|')
		writeFloat(b, shelf.Height)
		b.WriteByte('|')
		writeFloat(b, shelf.Depth)
		b.WriteByte('|')
		writeFloat(b, shelf.Y)
		b.WriteByte('|')
		b.WriteString(string(shelf.Type))
		b.WriteByte('|')
		writeFloat(b, shelf.EyeLevelScore)
		b.WriteByte('\n')
	}

	r := store.Rules
	b.WriteString(strconv.Itoa(r.MinSKUsPerCategory))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(r.MaxSKUsPerCategory))
	b.WriteByte('|')
	writeFloat(b, r.MinWeeklySales)
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(r.MaxFacingsPerProduct))
	b.WriteByte('|')
	b.WriteString(strconv.FormatBool(r.OnlyBestsellers))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(r.MaxSKUsTotal))
	b.WriteByte('|')
	b.WriteString(strconv.FormatBool(r.FilterBySalesRank))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(r.MaxRankIncluded))
	b.WriteByte('|')
	b.WriteString(strconv.FormatBool(store.PlacementRules.CategoryGrouping))
	b.WriteByte('\n')

	w := store.Weights
	writeFloat(b, w.SalesVelocity)
	b.WriteByte('|')
	writeFloat(b, w.Profitability)
	b.WriteByte('|')
	writeFloat(b, w.AttachRate)
	b.WriteByte('|')
	writeFloat(b, w.Novelty)
	b.WriteByte('\n')
}

func writeProductKey(b *strings.Builder, p *planogram.Product) {
	b.WriteString(p.ID)
	b.WriteByte('|')
	b.WriteString(string(p.Category))
	b.WriteByte('|')
	b.WriteString(p.Series)
	b.WriteByte('|')
	writeFloat(b, p.Width)
	b.WriteByte('|')
	writeFloat(b, p.Height)
	b.WriteByte('|')
	writeFloat(b, p.Depth)
	b.WriteByte('|')
	writeFloat(b, p.AvgWeeklySales)
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(p.TotalQty))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(p.CurrentStock))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(p.MinStock))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(p.MinFacings))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(p.MaxFacings))
	b.WriteByte('|')
	writeFloat(b, p.Price)
	b.WriteByte('|')
	writeFloat(b, p.Profit)
	b.WriteByte('|')
	writeFloat(b, p.AttachRate)
	b.WriteByte('|')
	b.WriteString(string(p.Status))
	b.WriteByte('\n')
}

func writeFloat(b *strings.Builder, f float64) {
	b.WriteString(strconv.FormatFloat(f, 'f', 2, 64))
}
