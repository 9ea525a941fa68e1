package graphql

import (
	"net/url"
	"strings"
)

// DefaultStagingURL is the search service used from non-production hosts.
const DefaultStagingURL = "https://search-api-dev.aws.43636.vnonprod.com/search"

// DefaultNonProdMarkers are host substrings that identify preview and local hosts.
var DefaultNonProdMarkers = []string{"hlx.page", "localhost"}

// Environment decides which endpoint a page talks to. The decision depends on
// the page host only.
type Environment struct {
	// StagingURL is used when the host matches a non-production marker.
	StagingURL string
	// NonProdMarkers are matched as substrings of the host, port included.
	NonProdMarkers []string
	// ProductionURL overrides the same-origin default when set.
	ProductionURL string
}

// DefaultEnvironment returns the staging URL and markers the widget ships with.
func DefaultEnvironment() Environment {
	return Environment{
		StagingURL:     DefaultStagingURL,
		NonProdMarkers: append([]string{}, DefaultNonProdMarkers...),
	}
}

// IsProduction reports whether host matches none of the non-production markers.
func (e Environment) IsProduction(host string) bool {
	for _, marker := range e.NonProdMarkers {
		if marker != "" && strings.Contains(host, marker) {
			return false
		}
	}
	return true
}

// Resolve returns the endpoint for a page. Production pages post to their own
// address without query or fragment, as an empty fetch target would.
func (e Environment) Resolve(page *url.URL) string {
	if !e.IsProduction(page.Host) {
		return e.StagingURL
	}
	if e.ProductionURL != "" {
		return e.ProductionURL
	}

	same := *page
	same.RawQuery = ""
	same.ForceQuery = false
	same.Fragment = ""
	same.RawFragment = ""
	return same.String()
}
