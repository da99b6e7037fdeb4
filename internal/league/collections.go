package league

import "strings"

// Collections are named per sport with fixed prefixes, e.g. "matches-pingpong"
// pairs with "rooms-pingpong" and "players-pingpong".
const (
	matchesPrefix = "matches-"
	roomsPrefix   = "rooms-"
	playersPrefix = "players-"
)

func MatchesCollection(s Sport) string { return matchesPrefix + string(s) }
func RoomsCollection(s Sport) string   { return roomsPrefix + string(s) }
func PlayersCollection(s Sport) string { return playersPrefix + string(s) }

// SportFromMatchesCollection extracts the sport from a matches collection
// name. It is how the recompute tool discovers which sports exist.
func SportFromMatchesCollection(name string) (Sport, bool) {
	if !strings.HasPrefix(name, matchesPrefix) {
		return "", false
	}
	s := strings.TrimPrefix(name, matchesPrefix)
	if s == "" {
		return "", false
	}
	return Sport(s), true
}
