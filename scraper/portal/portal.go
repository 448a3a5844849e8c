// Package portal collects raw sale listings for Navi Mumbai from a property
// portal's search pages with a headless browser.
package portal

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"house-price-estimator/config"
	"house-price-estimator/models"
	"house-price-estimator/services"
	"house-price-estimator/utils"
)

// card is what the in-page script extracts from one listing tile. Attrs
// holds the tile's label/value summary rows keyed by lowercased label.
type card struct {
	Title     string            `json:"title"`
	Location  string            `json:"location"`
	Price     string            `json:"price"`
	URL       string            `json:"url"`
	Attrs     map[string]string `json:"attrs"`
	Amenities []string          `json:"amenities"`
}

// Scraper drives the search-result pages of a listing portal.
type Scraper struct {
	cfg      *config.Config
	logger   *utils.Logger
	resolver *services.LocationResolver
	pool     *utils.WorkerPool
	retry    *utils.RetryConfig
}

// New creates a ready-to-use Scraper.
func New(cfg *config.Config, logger *utils.Logger, resolver *services.LocationResolver) *Scraper {
	return &Scraper{
		cfg:      cfg,
		logger:   logger,
		resolver: resolver,
		pool:     utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// Scrape fetches cfg.PagesToScrape result pages concurrently and returns the
// de-duplicated listings in page order. A failed page is logged and skipped.
// Each call starts from scratch.
func (s *Scraper) Scrape(ctx context.Context) ([]*models.RawRecord, error) {
	s.logger.Info("[portal] Starting scrape of %s (%d pages)", s.cfg.ListingsURL, s.cfg.PagesToScrape)

	chromeBin := findChromeBinary(s.cfg.ChromeBin)
	s.logger.Info("[portal] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	var mu sync.Mutex
	pages := make(map[int][]*models.RawRecord)
	visited := utils.NewKeySet()
	for page := 1; page <= s.cfg.PagesToScrape; page++ {
		page := page
		s.pool.Submit(func() {
			recs, err := s.scrapePage(browserCtx, page, visited)
			if err != nil {
				s.logger.Error("[portal] Page %d failed: %v", page, err)
				return
			}
			mu.Lock()
			pages[page] = recs
			mu.Unlock()
			s.logger.Info("[portal] Page %d done: %d listings", page, len(recs))
		})
	}
	s.pool.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := assemblePages(pages)
	s.logger.Info("[portal] Scrape complete: %d raw listings", len(records))
	if len(records) == 0 {
		return nil, fmt.Errorf("portal: no listings scraped from %s", s.cfg.ListingsURL)
	}
	return records, nil
}

// assemblePages concatenates the per-page listings in page order into a new
// slice and numbers the rows from 1.
func assemblePages(pages map[int][]*models.RawRecord) []*models.RawRecord {
	order := make([]int, 0, len(pages))
	n := 0
	for p, recs := range pages {
		order = append(order, p)
		n += len(recs)
	}
	sort.Ints(order)

	records := make([]*models.RawRecord, 0, n)
	for _, p := range order {
		records = append(records, pages[p]...)
	}
	for i, r := range records {
		r.Row = i + 1
	}
	return records
}

func (s *Scraper) scrapePage(browserCtx context.Context, page int, visited *utils.KeySet) ([]*models.RawRecord, error) {
	target, err := pageURL(s.cfg.ListingsURL, page)
	if err != nil {
		return nil, err
	}

	var cards []card
	err = s.retry.Do(fmt.Sprintf("scrape-page-%d", page), func() error {
		ctx, cancel := chromedp.NewContext(browserCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, 90*time.Second)
		defer cancelTimeout()

		cards = nil
		return chromedp.Run(ctx,
			chromedp.Navigate(target),
			chromedp.Sleep(5*time.Second),
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(2*time.Second),
			chromedp.Evaluate(extractCardsJS, &cards),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("chromedp page scrape: %w", err)
	}

	s.logger.Debug("[portal] Page %d: found %d cards", page, len(cards))

	var out []*models.RawRecord
	for _, c := range cards {
		if c.URL == "" || !visited.Add(c.URL) {
			continue
		}
		out = append(out, recordFromCard(c, s.resolver))
	}
	return out, nil
}

// pageURL sets the page query parameter on base. Page 1 is base unchanged.
func pageURL(base string, page int) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("portal: listings url %q: %w", base, err)
	}
	if page <= 1 {
		return u.String(), nil
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

var (
	bhkInTitle = regexp.MustCompile(`(?i)(\d+)\s*bhk`)
	firstNum   = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// recordFromCard maps a listing tile onto the raw dataset columns. Values are
// passed through as text; only labels are interpreted here.
func recordFromCard(c card, resolver *services.LocationResolver) *models.RawRecord {
	attr := func(labels ...string) string {
		for _, l := range labels {
			if v, ok := c.Attrs[l]; ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
		return ""
	}

	r := &models.RawRecord{
		Location:  pickLocation(c.Location, c.Title, resolver),
		Price:     strings.TrimSpace(c.Price),
		Area:      attr("carpet area", "super area", "built-up area", "area"),
		Bathrooms: attr("bathroom", "bathrooms"),
		Floor:     attr("floor"),
		Age:       ageText(attr("age of construction", "age", "status")),
	}
	if m := bhkInTitle.FindStringSubmatch(c.Title); m != nil {
		r.BHK = m[1]
	} else {
		r.BHK = attr("bhk", "bedrooms")
	}

	switch p := strings.ToLower(attr("car parking", "parking")); {
	case p == "":
	case strings.Contains(p, "none"), p == "0", p == "no":
		r.Parking = "No"
	default:
		r.Parking = "Yes"
	}

	if l := attr("lift", "lifts"); l != "" {
		r.Lift = l
	} else if len(c.Amenities) > 0 {
		r.Lift = "No"
		for _, a := range c.Amenities {
			if strings.Contains(strings.ToLower(a), "lift") {
				r.Lift = "Yes"
				break
			}
		}
	}
	return r
}

// pickLocation returns the first comma-separated part of the card's
// location or title that resolves to a supported location, or the location
// text unchanged so the cleaner can report it.
func pickLocation(location, title string, resolver *services.LocationResolver) string {
	candidates := strings.Split(location, ",")
	if i := strings.LastIndex(strings.ToLower(title), " in "); i >= 0 {
		candidates = append(candidates, strings.Split(title[i+4:], ",")...)
	}
	for _, part := range candidates {
		part = strings.TrimSpace(part)
		if _, err := resolver.Resolve(part); err == nil && part != "" {
			return part
		}
	}
	return strings.TrimSpace(location)
}

// ageText turns portal age labels such as "5 to 10 years" or "Ready to
// Move" into something ParseAge reads.
func ageText(s string) string {
	lower := strings.ToLower(s)
	switch {
	case s == "":
		return ""
	case strings.Contains(lower, "under construction"):
		return "Under Construction"
	case strings.Contains(lower, "new"):
		return "New"
	}
	if n := firstNum.FindString(s); n != "" {
		return n + " years"
	}
	return s
}

// findChromeBinary locates a Chrome/Chromium binary, preferring configured.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

const extractCardsJS = `
(function() {
	var results = [];
	var cards = document.querySelectorAll('.mb-srp__card, [data-testid="srp-tuple"], article[class*="card"]');
	for (var i = 0; i < cards.length; i++) {
		var card = cards[i];
		var text = function(sel) {
			var el = card.querySelector(sel);
			return el ? el.innerText.trim() : '';
		};
		var link = card.querySelector('a[href*="property"], a[href]');
		var attrs = {};
		var rows = card.querySelectorAll('.mb-srp__card__summary__list--item, [class*="summary"] li, dl > div');
		for (var j = 0; j < rows.length; j++) {
			var label = rows[j].querySelector('[class*="label"], dt');
			var value = rows[j].querySelector('[class*="value"], dd');
			if (label && value) {
				attrs[label.innerText.trim().toLowerCase()] = value.innerText.trim();
			}
		}
		var amenities = [];
		var am = card.querySelectorAll('[class*="amenit"] li, [class*="amenit"] span');
		for (var k = 0; k < am.length; k++) amenities.push(am[k].innerText.trim());
		results.push({
			title: text('h2, [class*="title"]'),
			location: text('[class*="locality"], [class*="society"]'),
			price: text('[class*="price__amount"], [class*="price"]'),
			url: link ? link.href : '',
			attrs: attrs,
			amenities: amenities
		});
	}
	return results;
})()
`
