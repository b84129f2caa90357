package extract

import "strings"

// Store is a recognized merchant identity.
type Store string

const (
	StoreAldi     Store = "ALDI"
	StoreLidl     Store = "Lidl"
	StoreRewe     Store = "REWE"
	StoreEdeka    Store = "EDEKA"
	StoreNetto    Store = "Netto"
	StorePenny    Store = "PENNY"
	StoreKaufland Store = "Kaufland"
	StoreWalmart  Store = "Walmart"
	StoreTarget   Store = "Target"
	StoreCostco   Store = "Costco"
	StoreKroger   Store = "Kroger"
	StoreTesco    Store = "Tesco"
	StoreUnknown  Store = "unknown"
)

// storeAliases maps each merchant to the substrings that identify it on a
// printed receipt. Declaration order is match priority: the first merchant
// with any matching alias wins.
var storeAliases = []struct {
	store   Store
	aliases []string
}{
	{StoreAldi, []string{"aldi"}},
	{StoreLidl, []string{"lidl"}},
	{StoreRewe, []string{"rewe"}},
	{StoreEdeka, []string{"edeka", "e center"}},
	{StoreNetto, []string{"netto"}},
	{StorePenny, []string{"penny"}},
	{StoreKaufland, []string{"kaufland"}},
	{StoreWalmart, []string{"walmart", "wal-mart"}},
	{StoreTarget, []string{"target"}},
	{StoreCostco, []string{"costco"}},
	{StoreKroger, []string{"kroger"}},
	{StoreTesco, []string{"tesco"}},
}

// DetectStore matches receipt text against the alias table,
// case-insensitively. No match yields StoreUnknown; it never fails.
func DetectStore(text string) Store {
	lower := strings.ToLower(text)
	for _, entry := range storeAliases {
		for _, alias := range entry.aliases {
			if strings.Contains(lower, alias) {
				return entry.store
			}
		}
	}
	return StoreUnknown
}
