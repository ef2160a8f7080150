// Package scraper crawls the SHL product catalog into catalog items. It is
// an offline collaborator of the recommendation core: the crawl produces a
// finalized catalog build, it never runs during request handling.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mitchellh/mapstructure"
	"github.com/spigell/assessment-recommender/internal/catalog"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultBaseURL     = "https://www.shl.com/solutions/products/product-catalog/"
	defaultUserAgent   = "assessment-recommender/1.0 (catalog crawler)"
	defaultConcurrency = 4
	pageSize           = 12

	// Catalog listing types: 1 is individual assessments, 2 is
	// pre-packaged job solutions. Both are crawled; the latter become
	// bundle items.
	typeIndividual = 1
	typeBundle     = 2
)

var durationPattern = regexp.MustCompile(`(?i)completion time.*?=\s*(\d+)`)

// Test type keys from the catalog legend, mapped onto the two-way
// category split used by the balance selector.
var personalityKeys = map[string]bool{
	"P": true, // Personality & Behavior
	"B": true, // Biodata & Situational Judgement
	"C": true, // Competencies
	"D": true, // Development & 360
}

// Scraper fetches and parses catalog pages.
type Scraper struct {
	baseURL     string
	concurrency int
	logger      *zap.Logger

	HTTPClient *http.Client
	UserAgent  string
}

// New creates a catalog scraper. Empty arguments fall back to defaults.
func New(baseURL string, concurrency int, logger *zap.Logger) *Scraper {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	return &Scraper{
		baseURL:     baseURL,
		concurrency: concurrency,
		logger:      logger,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		UserAgent: defaultUserAgent,
	}
}

// rawRow is a listing row before it is turned into a catalog item.
type rawRow struct {
	Name            string `mapstructure:"name"`
	URL             string `mapstructure:"url"`
	AdaptiveSupport bool   `mapstructure:"adaptive_support"`
	RemoteSupport   bool   `mapstructure:"remote_support"`
	TypeKeys        string `mapstructure:"type_keys"`
	IsBundle        bool   `mapstructure:"is_bundle"`
}

// Crawl walks both catalog listings and returns finalized items with
// descriptions and durations filled in from the detail pages.
func (s *Scraper) Crawl(ctx context.Context) ([]*catalog.Item, error) {
	var raw []any

	for _, listingType := range []int{typeIndividual, typeBundle} {
		rows, err := s.crawlListing(ctx, listingType)
		if err != nil {
			return nil, err
		}
		raw = append(raw, rows...)
	}

	var rows []*rawRow
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{Result: &rows})
	if err != nil {
		return nil, fmt.Errorf("build row decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode listing rows: %w", err)
	}

	s.logger.Info("catalog listing crawled", zap.Int("rows", len(rows)))

	items := make([]*catalog.Item, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, row := range rows {
		g.Go(func() error {
			item, err := s.fetchItem(gctx, row)
			if err != nil {
				return err
			}
			items[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return items, nil
}

// crawlListing pages through one catalog listing and collects its rows as
// generic maps, paging until a page comes back empty.
func (s *Scraper) crawlListing(ctx context.Context, listingType int) ([]any, error) {
	var rows []any

	for start := 0; ; start += pageSize {
		doc, err := s.fetchDocument(ctx, s.listingURL(listingType, start))
		if err != nil {
			return nil, err
		}

		pageRows := parseListing(doc, listingType == typeBundle)
		if len(pageRows) == 0 {
			break
		}

		s.logger.Debug("parsed listing page",
			zap.Int("type", listingType),
			zap.Int("start", start),
			zap.Int("rows", len(pageRows)),
		)

		rows = append(rows, pageRows...)
	}

	return rows, nil
}

func (s *Scraper) listingURL(listingType, start int) string {
	q := url.Values{}
	q.Set("type", strconv.Itoa(listingType))
	if start > 0 {
		q.Set("start", strconv.Itoa(start))
	}
	return s.baseURL + "?" + q.Encode()
}

func parseListing(doc *goquery.Document, bundles bool) []any {
	var rows []any

	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		link := tr.Find("td.custom__table-heading__title a").First()
		if link.Length() == 0 {
			return
		}

		href, _ := link.Attr("href")
		row := map[string]any{
			"name":      strings.TrimSpace(link.Text()),
			"url":       href,
			"is_bundle": bundles,
		}

		// Yes/no marker circles: first column is remote testing, the
		// second is adaptive support.
		marks := tr.Find("td.custom__table-heading__general")
		row["remote_support"] = marks.Eq(0).Find("span.catalogue__circle.-yes").Length() > 0
		row["adaptive_support"] = marks.Eq(1).Find("span.catalogue__circle.-yes").Length() > 0

		var keys []string
		tr.Find("span.product-catalogue__key").Each(func(_ int, key *goquery.Selection) {
			keys = append(keys, strings.TrimSpace(key.Text()))
		})
		row["type_keys"] = strings.Join(keys, "")

		rows = append(rows, row)
	})

	return rows
}

// fetchItem loads one detail page and produces the catalog item.
func (s *Scraper) fetchItem(ctx context.Context, row *rawRow) (*catalog.Item, error) {
	pageURL := row.URL
	if !strings.HasPrefix(pageURL, "http") {
		base, err := url.Parse(s.baseURL)
		if err != nil {
			return nil, fmt.Errorf("parse base url: %w", err)
		}
		ref, err := url.Parse(pageURL)
		if err != nil {
			return nil, fmt.Errorf("parse item url %q: %w", pageURL, err)
		}
		pageURL = base.ResolveReference(ref).String()
	}

	doc, err := s.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	description, duration := parseDetail(doc)

	return &catalog.Item{
		ID:              itemID(pageURL),
		Name:            row.Name,
		URL:             pageURL,
		Category:        categoryFromKeys(row.TypeKeys),
		DurationMinutes: duration,
		IsBundle:        row.IsBundle,
		AdaptiveSupport: row.AdaptiveSupport,
		RemoteSupport:   row.RemoteSupport,
		Tags:            typeTags(row.TypeKeys),
		Description:     description,
	}, nil
}

func parseDetail(doc *goquery.Document) (description string, duration int) {
	duration = catalog.DurationUnknown

	doc.Find("div.product-catalogue-training-calendar__row").Each(func(_ int, row *goquery.Selection) {
		heading := strings.TrimSpace(row.Find("h4").First().Text())
		body := strings.TrimSpace(row.Find("p").First().Text())

		switch {
		case strings.EqualFold(heading, "Description"):
			description = body
		case strings.Contains(strings.ToLower(heading), "assessment length"):
			if m := durationPattern.FindStringSubmatch(body); m != nil {
				if minutes, err := strconv.Atoi(m[1]); err == nil {
					duration = minutes
				}
			}
		}
	})

	return description, duration
}

func (s *Scraper) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.UserAgent)

	s.logger.Debug("fetching page", zap.String("url", pageURL))

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: bad status: %s", pageURL, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}

	return doc, nil
}

// itemID derives a stable id from the catalog page slug.
func itemID(pageURL string) string {
	trimmed := strings.TrimRight(pageURL, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx != -1 {
		trimmed = trimmed[idx+1:]
	}
	return trimmed
}

// categoryFromKeys maps catalog test type keys onto the two-way split.
// Personality-leaning keys win when present; everything else counts as
// knowledge/skill.
func categoryFromKeys(keys string) catalog.Category {
	for _, key := range strings.Split(keys, "") {
		if personalityKeys[key] {
			return catalog.CategoryPersonality
		}
	}
	return catalog.CategoryKnowledge
}

var keyNames = map[string]string{
	"A": "ability-aptitude",
	"B": "biodata-situational",
	"C": "competencies",
	"D": "development-360",
	"E": "assessment-exercises",
	"K": "knowledge-skills",
	"P": "personality-behavior",
	"S": "simulations",
}

func typeTags(keys string) []string {
	var tags []string
	for _, key := range strings.Split(keys, "") {
		if name, ok := keyNames[key]; ok {
			tags = append(tags, name)
		}
	}
	return tags
}
