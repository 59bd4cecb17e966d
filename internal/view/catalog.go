package view

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"

	"github.com/Eka2r/Padayon/internal/services/mutation"
	"github.com/Eka2r/Padayon/internal/services/session"
	"github.com/Eka2r/Padayon/internal/services/suggestion"
)

//go:embed themes.yaml
var themesYAML []byte

//go:embed locales/*.toml
var localeFS embed.FS

// Theme is a colour scheme.
type Theme struct {
	Name        string `yaml:"-" json:"name"`
	DisplayName string `yaml:"display_name" json:"displayName"`
	Primary     string `yaml:"primary" json:"primary"`
	Accent      string `yaml:"accent" json:"accent"`
	Background  string `yaml:"background" json:"background"`
	Surface     string `yaml:"surface" json:"surface"`
	Text        string `yaml:"text" json:"text"`
	Muted       string `yaml:"muted" json:"muted"`
}

// Locale is one language catalogue.
type Locale struct {
	Code         string          `toml:"code"`
	Name         string          `toml:"name"`
	GuestName    string          `toml:"guest_name"`
	PremiumBadge string          `toml:"premium_badge"`
	FreeBadge    string          `toml:"free_badge"`
	Nav          map[Page]string `toml:"nav"`
	Titles       map[Page]string `toml:"titles"`
	Intros       map[Page]string `toml:"intros"`
	Features     struct {
		DeeperSupport        string `toml:"deeper_support"`
		DeleteOwnPosts       string `toml:"delete_own_posts"`
		AISuggestions        string `toml:"ai_suggestions"`
		ConversationStarters string `toml:"conversation_starters"`
		PrivateGroups        string `toml:"private_groups"`
	} `toml:"features"`
	Auth struct {
		InvalidCredentials string `toml:"invalid_credentials"`
		EmailTaken         string `toml:"email_taken"`
		WeakPassword       string `toml:"weak_password"`
		TokenRejected      string `toml:"token_rejected"`
		Unavailable        string `toml:"unavailable"`
	} `toml:"auth"`
	Mutation struct {
		EmptyContent     string `toml:"empty_content"`
		SignInRequired   string `toml:"sign_in_required"`
		PermissionDenied string `toml:"permission_denied"`
		PostFailed       string `toml:"post_failed"`
		ReactionFailed   string `toml:"reaction_failed"`
		DeleteFailed     string `toml:"delete_failed"`
		MessageFailed    string `toml:"message_failed"`
	} `toml:"mutation"`
	AI struct {
		ChatMalformed        string `toml:"chat_malformed"`
		ChatTransport        string `toml:"chat_transport"`
		AffirmationMalformed string `toml:"affirmation_malformed"`
		AffirmationTransport string `toml:"affirmation_transport"`
		StarterMalformed     string `toml:"starter_malformed"`
		StarterTransport     string `toml:"starter_transport"`
		EmptyDraft           string `toml:"empty_draft"`
		StarterReady         string `toml:"starter_ready"`
		PremiumRequired      string `toml:"premium_required"`
		AffirmationPrompt    string `toml:"affirmation_prompt"`
		StarterPrompt        string `toml:"starter_prompt"`
	} `toml:"ai"`
	Live struct {
		LoadFailed string `toml:"load_failed"`
	} `toml:"live"`
}

// SessionMessages returns the auth texts of the locale.
func (l *Locale) SessionMessages() session.Messages {
	return session.Messages{
		InvalidCredentials: l.Auth.InvalidCredentials,
		EmailTaken:         l.Auth.EmailTaken,
		WeakPassword:       l.Auth.WeakPassword,
		TokenRejected:      l.Auth.TokenRejected,
		Unavailable:        l.Auth.Unavailable,
	}
}

// MutationMessages returns the mutation texts and guest name of the locale.
func (l *Locale) MutationMessages() mutation.Messages {
	return mutation.Messages{
		GuestName:        l.GuestName,
		EmptyContent:     l.Mutation.EmptyContent,
		SignInRequired:   l.Mutation.SignInRequired,
		PermissionDenied: l.Mutation.PermissionDenied,
		PostFailed:       l.Mutation.PostFailed,
		ReactionFailed:   l.Mutation.ReactionFailed,
		DeleteFailed:     l.Mutation.DeleteFailed,
		MessageFailed:    l.Mutation.MessageFailed,
	}
}

// SuggestionMessages returns the AI prompts and fallbacks of the locale.
func (l *Locale) SuggestionMessages() suggestion.Messages {
	return suggestion.Messages{
		Chat:              suggestion.Fallback{Malformed: l.AI.ChatMalformed, Transport: l.AI.ChatTransport},
		Affirmation:       suggestion.Fallback{Malformed: l.AI.AffirmationMalformed, Transport: l.AI.AffirmationTransport},
		Starter:           suggestion.Fallback{Malformed: l.AI.StarterMalformed, Transport: l.AI.StarterTransport},
		AffirmationPrompt: l.AI.AffirmationPrompt,
		StarterPrompt:     l.AI.StarterPrompt,
		EmptyDraft:        l.AI.EmptyDraft,
		StarterReady:      l.AI.StarterReady,
		PremiumRequired:   l.AI.PremiumRequired,
	}
}

// Catalog holds every theme and locale.
type Catalog struct {
	themes  map[string]Theme
	locales map[string]*Locale
}

// LoadCatalog parses the embedded themes and locales.
func LoadCatalog() (*Catalog, error) {
	const op = "view.LoadCatalog"

	themes := make(map[string]Theme)
	if err := yaml.Unmarshal(themesYAML, &themes); err != nil {
		return nil, fmt.Errorf("%s: themes: %w", op, err)
	}
	for name, t := range themes {
		t.Name = name
		themes[name] = t
	}

	files, err := fs.Glob(localeFS, "locales/*.toml")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	locales := make(map[string]*Locale, len(files))
	for _, file := range files {
		l, err := parseLocale(file)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		locales[l.Code] = l
	}
	return &Catalog{themes: themes, locales: locales}, nil
}

func parseLocale(file string) (*Locale, error) {
	raw, err := localeFS.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var l Locale
	md, err := toml.Decode(string(raw), &l)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown keys %v", file, undecoded)
	}
	if want := strings.TrimSuffix(path.Base(file), ".toml"); l.Code != want {
		return nil, fmt.Errorf("%s: code %q does not match file name", file, l.Code)
	}
	if strings.Count(l.AI.AffirmationPrompt, "%s") != 1 {
		return nil, fmt.Errorf("%s: affirmation_prompt needs exactly one %%s", file)
	}
	return &l, nil
}

// Theme returns the named theme.
func (c *Catalog) Theme(name string) (Theme, bool) {
	t, ok := c.themes[name]
	return t, ok
}

// Locale returns the locale for code.
func (c *Catalog) Locale(code string) (*Locale, bool) {
	l, ok := c.locales[code]
	return l, ok
}

// ThemeNames returns the sorted theme names.
func (c *Catalog) ThemeNames() []string {
	return sortedKeys(c.themes)
}

// LocaleCodes returns the sorted locale codes.
func (c *Catalog) LocaleCodes() []string {
	return sortedKeys(c.locales)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
