package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/amankumarsingh77/repair-video-stitcher/internal/config"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/library"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/models"
	"github.com/amankumarsingh77/repair-video-stitcher/pkg/logger"
)

const (
	markerGeneral  = "general"
	markerOverview = "overview"
)

type matcherUC struct {
	cfg         *config.Config
	libraryRepo library.Repository
	cacheRepo   library.CacheRepository
	logger      logger.Logger
}

func NewMatcherUseCase(
	cfg *config.Config,
	libraryRepo library.Repository,
	cacheRepo library.CacheRepository,
	log logger.Logger,
) library.UseCase {
	return &matcherUC{
		cfg:         cfg,
		libraryRepo: libraryRepo,
		cacheRepo:   cacheRepo,
		logger:      log,
	}
}

// Match resolves every issue to at most one clip, then enforces that the whole
// job inserts a single clip location.
func (m *matcherUC) Match(ctx context.Context, issues []models.Issue) (*models.Resolution, error) {
	if len(issues) == 0 {
		return &models.Resolution{}, nil
	}
	catalog, err := m.catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	pairings := make([]models.Match, 0, len(issues))
	for _, issue := range issues {
		match, ok := m.resolve(catalog, issue)
		if !ok {
			m.logger.Infof("No match (specific or fallback) for %q", issue.Problem)
			continue
		}
		pairings = append(pairings, match)
	}

	matches, err := SingleFocus(pairings)
	if err != nil {
		return &models.Resolution{Pairings: pairings}, err
	}
	return &models.Resolution{Matches: matches, Pairings: pairings}, nil
}

func (m *matcherUC) resolve(catalog []*models.ClipReference, issue models.Issue) (models.Match, bool) {
	category, known := models.ParseCategory(string(issue.Category))
	match := models.Match{
		Problem:  issue.Problem,
		Category: category,
		Keywords: issue.Keywords,
	}

	if clip := findSpecific(catalog, issue.Keywords, category, known && m.cfg.Pipeline.ScopeToCategory); clip != nil {
		m.logger.Infof("Exact match for %q: %q", issue.Problem, clip.Title)
		match.ClipID = clip.ID
		match.Location = clip.Location
		match.Title = clip.Title
		return match, true
	}
	if !known {
		return models.Match{}, false
	}

	m.logger.Infof("No exact match for %q, attempting fallback for category %s", issue.Problem, category)
	match.Title = string(category)
	if clip := findFallback(catalog, category); clip != nil {
		m.logger.Infof("Fallback match for %q: %q", issue.Problem, clip.Title)
		match.ClipID = clip.ID
		match.Location = clip.Location
		return match, true
	}
	if location := fallbackLocation(m.cfg.Pipeline.FallbackLocationTemplate, category); location != "" {
		m.logger.Infof("Synthesized fallback location for category %s: %s", category, location)
		match.Location = location
		return match, true
	}
	return models.Match{}, false
}

func (m *matcherUC) catalog(ctx context.Context) ([]*models.ClipReference, error) {
	key := m.cfg.Redis.CatalogCacheKey
	if m.cacheRepo != nil && key != "" {
		cached, err := m.cacheRepo.GetCatalog(ctx, key)
		if err != nil {
			m.logger.Warnf("catalog cache read failed: %v", err)
		} else if cached != nil {
			return activeOnly(cached), nil
		}
	}

	clips, err := m.libraryRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if m.cacheRepo != nil && key != "" {
		if err := m.cacheRepo.SetCatalog(ctx, key, clips, m.cfg.Redis.CatalogCacheTTL); err != nil {
			m.logger.Warnf("catalog cache write failed: %v", err)
		}
	}
	return activeOnly(clips), nil
}

func activeOnly(clips []*models.ClipReference) []*models.ClipReference {
	out := make([]*models.ClipReference, 0, len(clips))
	for _, clip := range clips {
		if clip != nil && clip.Active {
			out = append(out, clip)
		}
	}
	return out
}

// findSpecific returns the catalog entry whose keywords contain the most issue
// keywords as case-insensitive substrings. Ties keep catalog order.
func findSpecific(catalog []*models.ClipReference, keywords []string, category models.Category, scoped bool) *models.ClipReference {
	terms := normalizeTerms(keywords)
	if len(terms) == 0 {
		return nil
	}
	var (
		best      *models.ClipReference
		bestScore int
	)
	for _, clip := range catalog {
		if scoped && !strings.EqualFold(strings.TrimSpace(clip.Category), string(category)) {
			continue
		}
		score := keywordScore(clip.Keywords, terms)
		if score > bestScore {
			best, bestScore = clip, score
		}
	}
	return best
}

func keywordScore(clipKeywords, terms []string) int {
	score := 0
	for _, k := range clipKeywords {
		k = strings.ToLower(k)
		for _, term := range terms {
			if strings.Contains(k, term) {
				score++
				break
			}
		}
	}
	return score
}

// findFallback returns the best generic clip for a category: the entry must
// mention the category and a generic marker in its title or keywords. Titles
// containing "General" rank above "Overview", which rank above neither.
func findFallback(catalog []*models.ClipReference, category models.Category) *models.ClipReference {
	needle := strings.ToLower(string(category))
	var (
		best     *models.ClipReference
		bestRank = 4
	)
	for _, clip := range catalog {
		if !strings.EqualFold(strings.TrimSpace(clip.Category), string(category)) && !mentions(clip, needle) {
			continue
		}
		if !mentions(clip, markerGeneral) && !mentions(clip, markerOverview) {
			continue
		}
		rank := titleRank(clip.Title)
		if rank < bestRank {
			best, bestRank = clip, rank
		}
	}
	return best
}

func mentions(clip *models.ClipReference, needle string) bool {
	if strings.Contains(strings.ToLower(clip.Title), needle) {
		return true
	}
	for _, k := range clip.Keywords {
		if strings.Contains(strings.ToLower(k), needle) {
			return true
		}
	}
	return false
}

func titleRank(title string) int {
	title = strings.ToLower(title)
	switch {
	case strings.Contains(title, markerGeneral):
		return 1
	case strings.Contains(title, markerOverview):
		return 2
	default:
		return 3
	}
}

func fallbackLocation(template string, category models.Category) string {
	if strings.TrimSpace(template) == "" {
		return ""
	}
	slug := strings.ReplaceAll(strings.ToLower(string(category)), " ", "-")
	return fmt.Sprintf(template, slug)
}

func normalizeTerms(keywords []string) []string {
	terms := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			terms = append(terms, k)
		}
	}
	return terms
}

// SingleFocus collapses per-issue pairings to one representative match. More
// than one distinct location fails with ErrFocusLimitExceeded.
func SingleFocus(pairings []models.Match) ([]models.Match, error) {
	if len(pairings) == 0 {
		return nil, nil
	}
	location := pairings[0].Location
	for _, p := range pairings[1:] {
		if p.Location != location {
			return nil, library.ErrFocusLimitExceeded
		}
	}
	representative := pairings[0]
	for _, p := range pairings {
		if !p.IsFallback() {
			representative = p
			break
		}
	}
	return []models.Match{representative}, nil
}
