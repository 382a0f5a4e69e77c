package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/quantumfinancegroupltd-commits/Local-Link-sub004/internal/browse"
	"github.com/quantumfinancegroupltd-commits/Local-Link-sub004/internal/catalog"
	"github.com/quantumfinancegroupltd-commits/Local-Link-sub004/internal/geo"
	"github.com/quantumfinancegroupltd-commits/Local-Link-sub004/internal/model"
	"github.com/quantumfinancegroupltd-commits/Local-Link-sub004/internal/store"
	"github.com/quantumfinancegroupltd-commits/Local-Link-sub004/pkg/api"
	"github.com/quantumfinancegroupltd-commits/Local-Link-sub004/pkg/places"
)

var browseFlags struct {
	kind      string
	query     string
	category  string
	location  string
	tier      string
	minPrice  float64
	maxPrice  float64
	minRating float64
	sort      string
	near      string
	nearLat   float64
	nearLng   float64
	radius    float64
	preset    string
	noCache   bool
	asJSON    bool
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Rank a marketplace surface under the given facets",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		kind := model.Kind(browseFlags.kind)
		if !kind.IsValid() {
			return eris.Errorf("unknown kind %q (products, services, artisans)", browseFlags.kind)
		}

		filters, err := buildFilters(cmd)
		if err != nil {
			return err
		}

		loader, closeLoader, err := initLoader()
		if err != nil {
			return err
		}
		defer closeLoader()

		results, err := browse.Browse(ctx, loader, kind, filters, cfg.Browse.SearchLimit)
		if err != nil {
			return err
		}

		if browseFlags.asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return eris.Wrap(enc.Encode(results), "encode results")
		}

		printResults(kind, filters, results)
		return nil
	},
}

// buildFilters assembles facet state from the preset file (if any) and
// flags, with flags winning. A free-text --near is resolved to an origin
// through the shared places resolver; an unresolved origin simply leaves
// the radius facet gated off.
func buildFilters(cmd *cobra.Command) (browse.Filters, error) {
	f := browse.DefaultFilters()

	if browseFlags.preset != "" {
		raw, err := os.ReadFile(browseFlags.preset)
		if err != nil {
			return f, eris.Wrapf(err, "read preset %s", browseFlags.preset)
		}
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return f, eris.Wrapf(err, "parse preset %s", browseFlags.preset)
		}
	}

	changed := cmd.Flags().Changed
	if changed("query") {
		f.Query = browseFlags.query
	}
	if changed("category") {
		f.Category = browseFlags.category
	}
	if changed("location") {
		f.Location = browseFlags.location
	}
	if changed("tier") {
		f.Tier = browse.TierFilter(browseFlags.tier)
	}
	if changed("min") {
		v := browseFlags.minPrice
		f.MinPrice = &v
	}
	if changed("max") {
		v := browseFlags.maxPrice
		f.MaxPrice = &v
	}
	if changed("min-rating") {
		v := browseFlags.minRating
		f.MinRating = &v
	}
	if changed("sort") {
		f.Sort = browse.SortMode(browseFlags.sort)
	}
	if changed("near-lat") && changed("near-lng") {
		f.Origin = &geo.Point{Lat: browseFlags.nearLat, Lng: browseFlags.nearLng}
		f.OriginLabel = browseFlags.near
	} else if browseFlags.near != "" {
		resolver := places.Shared(cfg.Places.Key, places.WithBaseURL(cfg.Places.BaseURL))
		place, err := resolver.Resolve(cmd.Context(), browseFlags.near)
		if err != nil || place == nil {
			zap.L().Warn("could not resolve location; distance facets disabled",
				zap.String("near", browseFlags.near),
				zap.Error(err),
			)
		} else {
			f.Origin = &geo.Point{Lat: place.Lat, Lng: place.Lng}
			f.OriginLabel = place.Formatted
		}
	}
	if changed("radius") {
		v := browseFlags.radius
		f.RadiusKm = &v
	}

	return f.Normalize(), nil
}

// initLoader builds the API client and snapshot-cached loader from config.
func initLoader() (*catalog.Loader, func(), error) {
	client := api.NewClient(
		api.WithBaseURL(cfg.API.BaseURL),
		api.WithRateLimit(cfg.API.RateLimit, cfg.API.RateBurst),
		api.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.API.TimeoutSecs) * time.Second,
		}),
	)

	if browseFlags.noCache || cfg.Cache.Path == "" {
		return catalog.NewLoader(client, nil, 0), func() {}, nil
	}

	cache, err := store.Open(cfg.Cache.Path)
	if err != nil {
		zap.L().Warn("snapshot cache unavailable", zap.Error(err))
		return catalog.NewLoader(client, nil, 0), func() {}, nil
	}
	ttl := time.Duration(cfg.Cache.TTLHours) * time.Hour
	return catalog.NewLoader(client, cache, ttl), func() { _ = cache.Close() }, nil
}

func printResults(kind model.Kind, f browse.Filters, results []browse.Result) {
	for i, r := range results {
		line := fmt.Sprintf("%2d. %s", i+1, r.Entity.Name)
		if r.Entity.Category != "" {
			line += " [" + r.Entity.Category + "]"
		}
		if !kind.IsProvider() && r.Entity.Price != nil {
			line += fmt.Sprintf("  GHS %.2f", *r.Entity.Price)
		}
		if kind.IsProvider() && r.Entity.Rating != nil {
			line += fmt.Sprintf("  %.1f/5", *r.Entity.Rating)
		}
		if r.Distance != "" {
			line += "  " + r.Distance
		}
		fmt.Println(line)
		if r.Rationale != "" {
			fmt.Println("    " + r.Rationale)
		}
	}

	fmt.Printf("\n%d result(s)\n", len(results))
	if q := browse.EncodeQuery(f); q != "" {
		fmt.Println("Share: ?" + q)
	}
}

func init() {
	fl := browseCmd.Flags()
	fl.StringVar(&browseFlags.kind, "kind", "products", "surface to browse (products, services, artisans)")
	fl.StringVarP(&browseFlags.query, "query", "q", "", "free-text search query")
	fl.StringVar(&browseFlags.category, "category", "", "category facet (exact match)")
	fl.StringVar(&browseFlags.location, "location", "", "location facet (substring match)")
	fl.StringVar(&browseFlags.tier, "tier", "all", "verification tier facet (all, verified, gold, silver, bronze, unverified)")
	fl.Float64Var(&browseFlags.minPrice, "min", 0, "minimum price")
	fl.Float64Var(&browseFlags.maxPrice, "max", 0, "maximum price")
	fl.Float64Var(&browseFlags.minRating, "min-rating", 0, "minimum rating (artisans)")
	fl.StringVar(&browseFlags.sort, "sort", "best", "sort mode (best, nearest, cheapest, price_desc, freshest, rating, tier)")
	fl.StringVar(&browseFlags.near, "near", "", "origin location text, resolved via the places provider")
	fl.Float64Var(&browseFlags.nearLat, "near-lat", 0, "origin latitude (skips place resolution)")
	fl.Float64Var(&browseFlags.nearLng, "near-lng", 0, "origin longitude (skips place resolution)")
	fl.Float64Var(&browseFlags.radius, "radius", 0, "radius in km (requires a resolved origin)")
	fl.StringVar(&browseFlags.preset, "preset", "", "YAML filter preset file")
	fl.BoolVar(&browseFlags.noCache, "no-cache", false, "bypass the local snapshot cache")
	fl.BoolVar(&browseFlags.asJSON, "json", false, "emit results as JSON")
	rootCmd.AddCommand(browseCmd)
}
