package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/lox/vibesphere/internal/api"
	"github.com/lox/vibesphere/internal/catalog"
	"github.com/lox/vibesphere/internal/imagegen"
	"github.com/lox/vibesphere/internal/metrics"
	"github.com/lox/vibesphere/internal/random"
	"github.com/lox/vibesphere/internal/sphere"
	"github.com/lox/vibesphere/internal/store"
)

const sqlitePrefix = "sqlite:"

// CatalogFlags selects where the catalog comes from.
type CatalogFlags struct {
	Catalog        string `env:"VIBESPHERE_CATALOG" default:"embedded" help:"Catalog source: embedded, http(s)://, ftp://, sqlite:<path> or a JSON file path."`
	CatalogRetries uint64 `env:"VIBESPHERE_CATALOG_RETRIES" default:"0" help:"Extra attempts for rate-limited or failing HTTP catalog fetches."`
}

// load fetches the catalog once. Failures are counted and returned wrapped
// in catalog.ErrLoadFailure.
func (f CatalogFlags) load(ctx context.Context) (*catalog.Catalog, error) {
	kind := f.kind()
	var (
		c   *catalog.Catalog
		err error
	)
	if path, ok := strings.CutPrefix(f.Catalog, sqlitePrefix); ok {
		c, err = loadFromStore(path)
	} else {
		c, err = catalog.NewLoader(f.CatalogRetries).Load(ctx, f.Catalog)
	}
	if err != nil {
		metrics.CatalogLoadsTotal.WithLabelValues(kind, "error").Inc()
		return nil, err
	}
	metrics.CatalogLoadsTotal.WithLabelValues(kind, "ok").Inc()
	return c, nil
}

func (f CatalogFlags) kind() string {
	if strings.HasPrefix(f.Catalog, sqlitePrefix) {
		return "sqlite"
	}
	return catalog.Kind(f.Catalog)
}

func loadFromStore(path string) (*catalog.Catalog, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", catalog.ErrLoadFailure, err)
	}
	defer st.Close()

	c, err := st.LoadCatalog()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", catalog.ErrLoadFailure, path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", catalog.ErrLoadFailure, path, err)
	}

	origin, err := storeOrigin(st)
	if err != nil {
		log.Printf("store: read import history: %v", err)
	} else {
		log.Printf("store: %s: %s", path, origin)
	}
	return c, nil
}

// storeOrigin describes the schema version and the import that produced the
// stored catalog.
func storeOrigin(st *store.Store) (string, error) {
	version, err := st.MigrationVersion()
	if err != nil {
		return "", fmt.Errorf("schema version: %w", err)
	}
	imp, err := st.LastImport()
	if err != nil {
		return "", fmt.Errorf("last import: %w", err)
	}
	if imp == nil {
		return fmt.Sprintf("schema v%d, no recorded import", version), nil
	}
	return fmt.Sprintf("schema v%d, %d items imported from %s at %s",
		version, imp.Items, imp.Source, imp.ImportedAt.UTC().Format(time.RFC3339)), nil
}

func newSource(seed int64) (sphere.Source, error) {
	if seed == 0 {
		s, err := random.NewSeed()
		if err != nil {
			return nil, err
		}
		seed = s
	}
	log.Printf("random: seed %d", seed)
	return sphere.NewSource(seed), nil
}

type ServeCmd struct {
	CatalogFlags `embed:""`

	Port       string        `env:"PORT" default:"8080" help:"HTTP server port."`
	BaseURL    string        `name:"base-url" env:"VIBESPHERE_BASE_URL" help:"Public URL used in share links (derived from requests when empty)."`
	Seed       int64         `env:"VIBESPHERE_SEED" default:"0" help:"Random seed; 0 picks one at startup."`
	OGCacheTTL time.Duration `name:"og-cache-ttl" env:"VIBESPHERE_OG_CACHE_TTL" default:"10m" help:"How long link preview images are cached."`
}

func (c *ServeCmd) Run(ctx context.Context) error {
	cat, loadErr := c.load(ctx)
	if loadErr != nil {
		// The server still starts so visitors see the error page.
		log.Printf("catalog: %v", loadErr)
	} else {
		log.Printf("catalog: loaded %d items from %s", cat.Index().Len(), c.kind())
	}

	src, err := newSource(c.Seed)
	if err != nil {
		return err
	}

	server, err := api.NewServer(cat, loadErr, src, api.Config{
		Port:       c.Port,
		BaseURL:    c.BaseURL,
		OGCacheTTL: c.OGCacheTTL,
	})
	if err != nil {
		return err
	}

	log.Printf("starting server on :%s", c.Port)
	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

type BuildCmd struct {
	CatalogFlags `embed:""`

	Selection string `name:"s" help:"Comma-separated item ids, as in the share link."`
	Seed      int64  `default:"0" help:"Random seed; 0 picks one."`
	BaseURL   string `name:"base-url" default:"http://localhost:8080/" help:"Base for the printed share link."`
	PNG       string `name:"png" type:"path" help:"Also write the sphere image to this file."`
	Size      int    `default:"360" help:"Sphere image size in pixels."`
}

func (c *BuildCmd) Run(ctx context.Context) error {
	cat, err := c.load(ctx)
	if err != nil {
		return err
	}
	src, err := newSource(c.Seed)
	if err != nil {
		return err
	}
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}

	idx := cat.Index()
	ids, dropped := sphere.DecodeIDs(idx, c.Selection)
	if dropped > 0 {
		log.Printf("build: dropped %d unknown or repeated ids", dropped)
	}
	st := sphere.NewState(idx, src, ids...)

	res, err := st.Apply(sphere.Build{})
	if err != nil {
		return err
	}
	link, err := st.Apply(sphere.Share{Base: base})
	if err != nil {
		return err
	}

	fmt.Println(res.Sphere.Gradient.CSS())
	fmt.Println()
	fmt.Println(res.Sphere.Description.String())
	fmt.Println()
	fmt.Println(link.Link)

	if c.PNG != "" {
		data, err := imagegen.RenderSphere(res.Sphere.Gradient, c.Size)
		if err != nil {
			return err
		}
		if err := os.WriteFile(c.PNG, data, 0o644); err != nil {
			return fmt.Errorf("write png: %w", err)
		}
		log.Printf("build: wrote %s", c.PNG)
	}
	return nil
}

type ImportCmd struct {
	CatalogFlags `embed:""`

	DB string `name:"db" required:"" type:"path" env:"VIBESPHERE_DB" help:"SQLite database to import into."`
}

func (c *ImportCmd) Run(ctx context.Context) error {
	if strings.HasPrefix(c.Catalog, sqlitePrefix) {
		return fmt.Errorf("import: source must not be a sqlite store")
	}
	cat, err := c.load(ctx)
	if err != nil {
		return err
	}

	st, err := store.Open(c.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.ImportCatalog(cat, c.Catalog); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	log.Printf("import: stored %d categories, %d items from %s", len(cat.Categories), cat.Index().Len(), c.kind())
	return nil
}
