package category

import (
	"sort"
	"strings"

	"github.com/hetulpatel/crossarb/internal/collectors"
	"github.com/hetulpatel/crossarb/internal/logging"
)

type Category string

const (
	Sports Category = "sports"
	Crypto Category = "crypto"
	Other  Category = "other"
)

// Keywords are matched as plain substrings of the lower-cased question, so
// short tickers like "eth" or "sol" also hit longer words that contain them.
var keywords = []struct {
	category Category
	words    []string
}{
	{Sports, []string{
		"nba", "nfl", "mlb", "nhl", "mls", "f1", "formula 1", "formula one",
		"premier league", "la liga", "bundesliga", "serie a", "champions league",
		"soccer", "football", "basketball", "baseball", "hockey", "tennis",
		"golf", "boxing", "ufc", "mma", "wrestling", "cricket", "rugby",
		"volleyball", "swimming", "athletics", "olympics",
		"world cup", "super bowl", "playoffs", "championship", "tournament",
		"finals", "match", "game vs", "win game", "world series",
		"lakers", "celtics", "warriors", "bulls", "heat", "nets",
		"cowboys", "patriots", "chiefs", "eagles", "49ers",
		"yankees", "dodgers", "red sox", "mets", "cubs",
		"manchester", "liverpool", "arsenal", "chelsea", "barcelona", "real madrid",
	}},
	{Crypto, []string{
		"bitcoin", "btc", "ethereum", "eth", "solana", "sol", "xrp", "ripple",
		"cardano", "ada", "dogecoin", "doge", "polkadot", "dot", "avalanche", "avax",
		"chainlink", "link", "polygon", "matic", "litecoin", "ltc", "shiba", "shib",
		"uniswap", "uni", "aave", "maker", "mkr", "compound", "comp",
		"crypto", "cryptocurrency", "token", "coin", "defi", "nft",
		"blockchain", "web3", "binance", "coinbase", "kraken",
		"memecoin", "meme coin", "altcoin", "stablecoin",
		"ath", "all time high", "market cap", "mcap",
	}},
}

// Categorize returns the first category with a keyword in question, checking
// sports before crypto. Questions that hit neither are Other.
func Categorize(question string) Category {
	q := strings.ToLower(question)
	for _, group := range keywords {
		for _, w := range group.words {
			if strings.Contains(q, w) {
				return group.category
			}
		}
	}
	return Other
}

// Allowed is the set of categories kept by Filter. An empty set keeps all.
type Allowed map[Category]struct{}

// ParseAllowed reads a comma separated list such as "sports,crypto". Empty
// input or "all" disables filtering. Unknown names are ignored.
func ParseAllowed(raw string) Allowed {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		return Allowed{}
	}
	out := Allowed{}
	for _, part := range strings.Split(raw, ",") {
		switch c := Category(strings.ToLower(strings.TrimSpace(part))); c {
		case Sports, Crypto:
			out[c] = struct{}{}
		}
	}
	return out
}

// All reports whether no filtering is applied.
func (a Allowed) All() bool {
	return len(a) == 0
}

func (a Allowed) String() string {
	if a.All() {
		return "all"
	}
	names := make([]string, 0, len(a))
	for c := range a {
		names = append(names, string(c))
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// Filter keeps the markets whose category is allowed, preserving order.
func Filter(markets []collectors.Market, allowed Allowed) []collectors.Market {
	if allowed.All() {
		return markets
	}
	out := make([]collectors.Market, 0, len(markets))
	for _, m := range markets {
		if _, ok := allowed[Categorize(m.Question)]; ok {
			out = append(out, m)
		}
	}
	return out
}

// FilterVenues applies Filter to every venue, keeping venues that end up empty.
func FilterVenues(markets collectors.MarketsByVenue, allowed Allowed) collectors.MarketsByVenue {
	if allowed.All() {
		return markets
	}
	out := make(collectors.MarketsByVenue, 0, len(markets))
	for _, vm := range markets {
		kept := Filter(vm.Markets, allowed)
		if logging.Enabled(logging.LevelDebug) {
			s := GetStats(vm.Markets)
			logging.Debugf("[category] %s sports=%d crypto=%d other=%d kept=%d",
				vm.Venue, s.Sports, s.Crypto, s.Other, len(kept))
		}
		out = append(out, collectors.VenueMarkets{Venue: vm.Venue, Markets: kept})
	}
	return out
}

// Stats counts markets per category.
type Stats struct {
	Sports int
	Crypto int
	Other  int
}

func GetStats(markets []collectors.Market) Stats {
	var s Stats
	for _, m := range markets {
		switch Categorize(m.Question) {
		case Sports:
			s.Sports++
		case Crypto:
			s.Crypto++
		default:
			s.Other++
		}
	}
	return s
}
