// Package share builds social sharing links and page copy for a genre.
package share

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	twitterIntentURL = "https://twitter.com/intent/tweet"
	facebookShareURL = "https://www.facebook.com/dialog/share"
	blueskyIntentURL = "https://bsky.app/intent/compose"

	socialCardCount = 9
)

// Emojis decorate shared messages; one is picked at random per link.
var Emojis = []string{"🎤", "🎧", "🎼", "🎹", "🥁", "🎷", "🎺", "🎸", "🎻", "💽", "💿", "🔊", "👩‍🎤", "👨🏻‍🎤"}

// Rand is the random source used to pick emojis and social cards.
type Rand interface {
	IntN(n int) int
}

// Config holds the sharing parameters.
type Config struct {
	SiteURL       string
	TwitterVia    string
	Hashtags      string
	FacebookAppID string
}

// Links holds one share URL per network.
type Links struct {
	Twitter  string `json:"twitter"`
	Facebook string `json:"facebook"`
	Bluesky  string `json:"bluesky"`
}

// Builder builds share links. It is safe for concurrent use if its Rand is.
type Builder struct {
	cfg Config
	rnd Rand
}

// NewBuilder creates a Builder.
func NewBuilder(cfg Config, rnd Rand) *Builder {
	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")
	return &Builder{cfg: cfg, rnd: rnd}
}

// PageURL returns the public URL of the genre page.
func (b *Builder) PageURL(slug string) string {
	return b.cfg.SiteURL + "/" + slug
}

// Emoji picks a random sharing emoji.
func (b *Builder) Emoji() string {
	return Emojis[b.rnd.IntN(len(Emojis))]
}

// Message returns the shared sentence wrapped in emoji.
func Message(genre, emoji string) string {
	return fmt.Sprintf("My new favourite genre is %s %s %s", emoji, genre, emoji)
}

// Twitter returns a tweet intent URL.
func (b *Builder) Twitter(genre, slug string) string {
	return twitterIntentURL + "?" + encode(
		param{"text", Message(genre, b.Emoji())},
		param{"url", b.PageURL(slug)},
		param{"hashtags", b.cfg.Hashtags},
		param{"via", b.cfg.TwitterVia},
	)
}

// Facebook returns a share dialog URL.
func (b *Builder) Facebook(genre, slug string) string {
	return facebookShareURL + "?" + encode(
		param{"app_id", b.cfg.FacebookAppID},
		param{"quote", Message(genre, b.Emoji())},
		param{"href", b.PageURL(slug)},
		param{"display", "page"},
		param{"redirect_uri", b.PageURL(slug)},
	)
}

// Bluesky returns a compose intent URL with the page link in the post body.
func (b *Builder) Bluesky(genre, slug string) string {
	return blueskyIntentURL + "?" + encode(
		param{"text", Message(genre, b.Emoji()) + "\n\n" + b.PageURL(slug)},
	)
}

// Links returns every share link for the genre.
func (b *Builder) Links(genre, slug string) Links {
	return Links{
		Twitter:  b.Twitter(genre, slug),
		Facebook: b.Facebook(genre, slug),
		Bluesky:  b.Bluesky(genre, slug),
	}
}

// Description returns the page meta description.
func (b *Builder) Description(genre string) string {
	return Message(genre, b.Emoji()) + " \u2014 generate your own at " + b.cfg.SiteURL
}

// Content returns the text offered to the native share sheet.
func (b *Builder) Content(genre, slug string) string {
	return Message(genre, b.Emoji()) + "\n\nGenerate your own at " + b.PageURL(slug)
}

// SocialCard returns one of the stock social media card images.
func (b *Builder) SocialCard() string {
	n := b.rnd.IntN(socialCardCount) + 1
	return b.cfg.SiteURL + "/images/social-media-card-0" + strconv.Itoa(n) + ".png"
}

type param struct {
	key, value string
}

// encode builds a query string in parameter order, escaping spaces as %20.
func encode(params ...param) string {
	var sb strings.Builder
	for i, p := range params {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(p.key))
		sb.WriteByte('=')
		sb.WriteString(strings.ReplaceAll(url.QueryEscape(p.value), "+", "%20"))
	}
	return sb.String()
}
