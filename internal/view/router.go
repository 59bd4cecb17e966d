package view

import (
	"sync"
	"time"

	"github.com/Eka2r/Padayon/internal/live"
	"github.com/Eka2r/Padayon/internal/models"
)

// Feature is a premium capability shown on a screen.
type Feature struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
}

// NavItem is one entry of the navigation bar.
type NavItem struct {
	Page   Page   `json:"page"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// Screen describes what a page shows for a session.
type Screen struct {
	Page       Page      `json:"page"`
	Title      string    `json:"title"`
	Intro      string    `json:"intro"`
	Collection string    `json:"collection,omitempty"`
	Badge      string    `json:"badge"`
	Features   []Feature `json:"features"`
	Nav        []NavItem `json:"nav"`
	Theme      Theme     `json:"theme"`
	Locale     string    `json:"locale"`
}

type entry struct {
	page    Page
	touched time.Time
}

// Router keeps the current page of every identity in memory. Navigation has
// no history and no side effects on subscriptions or requests.
type Router struct {
	catalog *Catalog
	theme   Theme
	locale  *Locale
	now     func() time.Time

	mu      sync.Mutex
	current map[string]entry
}

// NewRouter creates a Router. Unknown theme or locale names fall back to
// "calm" and "en".
func NewRouter(catalog *Catalog, theme, locale string) *Router {
	t, ok := catalog.Theme(theme)
	if !ok {
		t, _ = catalog.Theme("calm")
	}
	l, ok := catalog.Locale(locale)
	if !ok {
		l, _ = catalog.Locale("en")
	}
	return &Router{
		catalog: catalog,
		theme:   t,
		locale:  l,
		now:     time.Now,
		current: make(map[string]entry),
	}
}

// Locale returns the configured locale.
func (r *Router) Locale() *Locale {
	return r.locale
}

// Current returns the identity's page, home when none was chosen.
func (r *Router) Current(identityID string) Page {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.current[identityID]
	if !ok {
		return PageHome
	}
	return e.page
}

// Navigate sets the identity's page.
func (r *Router) Navigate(identityID string, page Page) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current[identityID] = entry{page: page, touched: r.now()}
}

// Forget drops pages untouched for longer than idle and returns how many were
// dropped.
func (r *Router) Forget(idle time.Duration) int {
	cutoff := r.now().Add(-idle)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, e := range r.current {
		if e.touched.Before(cutoff) {
			delete(r.current, id)
			n++
		}
	}
	return n
}

// Screen describes page for sess.
func (r *Router) Screen(sess models.Session, page Page) Screen {
	premium := sess.Premium()
	l := r.locale

	s := Screen{
		Page:   page,
		Title:  l.Titles[page],
		Intro:  l.Intros[page],
		Badge:  l.FreeBadge,
		Theme:  r.theme,
		Locale: l.Code,
	}
	if premium {
		s.Badge = l.PremiumBadge
	}

	feature := func(name, label string) Feature {
		return Feature{Name: name, Label: label, Enabled: premium}
	}
	switch page {
	case PageAIChat:
		s.Features = []Feature{feature("deeper_support", l.Features.DeeperSupport)}
	case PageFreedomWall:
		s.Collection = live.Posts
		s.Features = []Feature{
			feature("delete_own_posts", l.Features.DeleteOwnPosts),
			feature("ai_suggestions", l.Features.AISuggestions),
		}
	case PageCommunity:
		s.Collection = live.Messages
		s.Features = []Feature{
			feature("conversation_starters", l.Features.ConversationStarters),
			feature("private_groups", l.Features.PrivateGroups),
		}
	}
	if s.Features == nil {
		s.Features = []Feature{}
	}

	for _, p := range Pages() {
		if p == PageProfile && !premium {
			continue
		}
		s.Nav = append(s.Nav, NavItem{Page: p, Label: l.Nav[p], Active: p == page})
	}
	return s
}
