package services

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/foliogen/folio/builder/config"
	"github.com/foliogen/folio/builder/content"
	"github.com/foliogen/folio/builder/models"
)

type contextService struct {
	cfg    *config.Config
	meta   MetadataService
	nav    NavigationService
	toc    TOCService
	urlFor URLResolver
	logger *slog.Logger
}

// NewContextService wires the metadata, navigation, and TOC services over
// one content source and exposes the combined facade.
func NewContextService(cfg *config.Config, source ContentSource, urlFor URLResolver, logger *slog.Logger) ContextService {
	return &contextService{
		cfg:    cfg,
		meta:   NewMetadataService(source, logger),
		nav:    NewNavigationService(source, logger),
		toc:    NewTOCService(source, urlFor, logger),
		urlFor: urlFor,
		logger: logger,
	}
}

// PostContext assembles everything a post page needs. Metadata, navigation,
// and TOC sections have no data dependency on each other, so they fetch
// concurrently; the remaining fields derive from those three results
// without further lookups.
func (s *contextService) PostContext(ctx context.Context, postID string) (*models.PostContext, error) {
	var (
		meta     models.PostMeta
		nav      models.PostNavigation
		sections []models.TOCSection
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := s.meta.Meta(gctx, postID)
		if err != nil {
			return err
		}
		meta = m
		return nil
	})
	g.Go(func() error {
		nav = s.nav.Neighbors(postID)
		return nil
	})
	g.Go(func() error {
		secs, err := s.toc.Sections(gctx, postID, s.cfg.TOCMaxDepth)
		if err != nil {
			return err
		}
		sections = secs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pc := &models.PostContext{
		Post:        meta.Post,
		Meta:        meta,
		Navigation:  nav,
		Sections:    sections,
		IsSubpost:   meta.IsSubpost,
		HasSubposts: meta.HasSubposts,
	}
	for _, sec := range sections {
		if sec.PostID == postID {
			pc.Headings = sec.Headings
		}
		if sec.IsSubpost {
			pc.SubpostIDs = append(pc.SubpostIDs, sec.PostID)
		}
	}
	pc.NavItems = s.buildNavItems(postID, meta, nav, sections)

	return pc, nil
}

// buildNavItems prebuilds the sidebar links for the post family: the main
// post first, then the heading-bearing subposts in section order. The
// current post is included even when it contributed no TOC section.
func (s *contextService) buildNavItems(currentID string, meta models.PostMeta, nav models.PostNavigation, sections []models.TOCSection) []models.NavItem {
	parentID := currentID
	parentTitle := meta.Post.Title
	if meta.IsSubpost {
		parentID = content.ParentID(currentID)
		if nav.Parent != nil {
			parentTitle = nav.Parent.Title
		} else {
			parentTitle = parentID
		}
	}

	items := []models.NavItem{{
		ID:      parentID,
		Label:   parentTitle,
		Href:    s.url(parentID),
		Current: parentID == currentID,
	}}

	currentListed := parentID == currentID
	for _, sec := range sections {
		if !sec.IsSubpost {
			continue
		}
		if sec.PostID == currentID {
			currentListed = true
		}
		items = append(items, models.NavItem{
			ID:      sec.PostID,
			Label:   sec.Title,
			Href:    s.url(sec.PostID),
			Current: sec.PostID == currentID,
			Subpost: true,
		})
	}

	if !currentListed {
		items = append(items, models.NavItem{
			ID:      currentID,
			Label:   meta.Post.Title,
			Href:    s.url(currentID),
			Current: true,
			Subpost: true,
		})
	}
	return items
}

func (s *contextService) url(id string) string {
	if s.urlFor == nil {
		return ""
	}
	return s.urlFor(id)
}

// ClearCaches drops derived state after a content reload.
func (s *contextService) ClearCaches() {
	s.meta.ClearCache()
}
