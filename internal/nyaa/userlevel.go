package nyaa

import "strings"

// UserLevel is a commenter's rank on the site.
type UserLevel string

const (
	LevelUser          UserLevel = "user"
	LevelTrusted       UserLevel = "trusted"
	LevelModerator     UserLevel = "moderator"
	LevelAdministrator UserLevel = "administrator"
)

const bannedMarker = "BANNED"

// ParseUserLevel reads the level from a user link title such as
// "Trusted" or "BANNED User". The banned marker is ignored here; see
// isBanned.
func ParseUserLevel(title string) (UserLevel, error) {
	fields := strings.Fields(strings.ReplaceAll(title, bannedMarker, ""))
	if len(fields) == 0 {
		return "", &UnknownValueError{Kind: KindUserLevel, Value: title}
	}
	switch l := UserLevel(strings.ToLower(fields[0])); l {
	case LevelUser, LevelTrusted, LevelModerator, LevelAdministrator:
		return l, nil
	}
	return "", &UnknownValueError{Kind: KindUserLevel, Value: fields[0]}
}

func (l UserLevel) String() string { return string(l) }

func isBanned(title string) bool {
	return strings.Contains(title, bannedMarker)
}
