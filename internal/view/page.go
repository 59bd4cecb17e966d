// Package view описывает экраны приложения: текущую страницу каждой
// идентичности, темы оформления и локализованные строки.
package view

import (
	"errors"
	"fmt"
)

// ErrUnknownPage is returned by ParsePage for names outside the page set.
var ErrUnknownPage = errors.New("unknown page")

// Page is one top-level screen.
type Page string

// Pages.
const (
	PageHome          Page = "home"
	PageAIChat        Page = "ai-chat"
	PageProfessionals Page = "professionals"
	PageFreedomWall   Page = "freedom-wall"
	PageCommunity     Page = "community"
	PageProfile       Page = "profile"
)

// Pages lists every page in navigation order.
func Pages() []Page {
	return []Page{PageHome, PageAIChat, PageProfessionals, PageFreedomWall, PageCommunity, PageProfile}
}

// ParsePage validates a page name.
func ParsePage(s string) (Page, error) {
	for _, p := range Pages() {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPage, s)
}
