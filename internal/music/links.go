// Package music turns genre names and Last.fm tracks into listening links.
package music

import (
	"net/url"
	"strings"
)

const (
	spotifySearchURL    = "https://open.spotify.com/search/"
	appleMusicSearchURL = "https://music.apple.com/search?term="

	// MaxTracks is the number of tracks shown on a listen page.
	MaxTracks = 10
)

// Track is a top track for a genre tag.
type Track struct {
	Name      string `json:"name"`
	Artist    string `json:"artist"`
	URL       string `json:"url"`
	Listeners int    `json:"listeners"`
	Playcount int    `json:"playcount"`
}

// Query returns the "{artist} {name}" search phrase for the track.
func (t Track) Query() string {
	return strings.TrimSpace(t.Artist + " " + t.Name)
}

// Links holds the streaming service links for a genre.
// SpotifyURL and AppleMusicURL point at the first track when there is one,
// and at a search for the genre otherwise.
type Links struct {
	SpotifyURL         string  `json:"spotifyUrl"`
	AppleMusicURL      string  `json:"appleMusicUrl"`
	SpotifyGenreURL    string  `json:"spotifyGenreUrl"`
	AppleMusicGenreURL string  `json:"appleMusicGenreUrl"`
	Tracks             []Track `json:"tracks"`
	HasResults         bool    `json:"hasResults"`
}

// BuildLinks builds the listening links for a genre.
func BuildLinks(genre string, tracks []Track) Links {
	links := Links{
		SpotifyGenreURL:    SpotifySearchURL(genre),
		AppleMusicGenreURL: AppleMusicSearchURL(genre),
		Tracks:             []Track{},
	}

	if len(tracks) == 0 {
		links.SpotifyURL = links.SpotifyGenreURL
		links.AppleMusicURL = links.AppleMusicGenreURL
		return links
	}

	if len(tracks) > MaxTracks {
		tracks = tracks[:MaxTracks]
	}
	links.Tracks = append(links.Tracks, tracks...)
	links.SpotifyURL = SpotifySearchURL(tracks[0].Query())
	links.AppleMusicURL = AppleMusicSearchURL(tracks[0].Query())
	links.HasResults = true
	return links
}

// SpotifySearchURL returns a Spotify web search link.
func SpotifySearchURL(query string) string {
	return spotifySearchURL + escapeComponent(query)
}

// AppleMusicSearchURL returns an Apple Music web search link.
func AppleMusicSearchURL(query string) string {
	return appleMusicSearchURL + escapeComponent(query)
}

func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
