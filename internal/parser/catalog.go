package parser

import "github.com/haryoiro/ytmgrab/internal/chain"

// Preset is a named chain with optional return keys.
type Preset struct {
	Name       string
	Chain      []chain.Step
	ReturnKeys []string
}

func (p Preset) clone() Preset {
	return Preset{
		Name:       p.Name,
		Chain:      append([]chain.Step(nil), p.Chain...),
		ReturnKeys: append([]string(nil), p.ReturnKeys...),
	}
}

// ArtistPageTypeValue marks a byline fragment that links to an artist page.
const ArtistPageTypeValue = "MUSIC_PAGE_TYPE_ARTIST"

var (
	endpointContents = Preset{
		Name:  "common_cases",
		Chain: []chain.Step{"contents", "content", "contents", "items"},
	}

	playlistContents = Preset{
		Name:  "common_cases",
		Chain: []chain.Step{"contents", 0, "content", "content", "contents"},
	}

	// First resolving preset wins.
	endpointPayloads = []Preset{
		{
			Name:       "listen_again",
			Chain:      []chain.Step{"menu", "items", 0, "navigationEndpoint", "watchEndpoint"},
			ReturnKeys: []string{"params", "videoId"},
		},
		{
			Name:       "common_cases",
			Chain:      []chain.Step{"menu", "items", 0, "navigationEndpoint", "watchPlaylistEndpoint"},
			ReturnKeys: []string{"params", "playlistId"},
		},
	}

	artistPageType = Preset{
		Name:  "artist_page_type",
		Chain: []chain.Step{"navigationEndpoint", "browseEndpoint", "browseEndpointContextSupportedConfigs", "pageType"},
	}
)

// EndpointContents locates the playlist items of a browse response.
func EndpointContents() Preset { return endpointContents.clone() }

// PlaylistContents locates the track items of a next response.
func PlaylistContents() Preset { return playlistContents.clone() }

// EndpointPayloads returns the payload presets in the order they are tried.
func EndpointPayloads() []Preset {
	out := make([]Preset, len(endpointPayloads))
	for i, p := range endpointPayloads {
		out[i] = p.clone()
	}
	return out
}

// ArtistPageType reads the page type a byline fragment links to.
func ArtistPageType() Preset { return artistPageType.clone() }
