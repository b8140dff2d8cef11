package ticket

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

// The channel topic doubles as a wire format for ticket state. The tagged
// substrings below must stay byte-compatible with existing channels.
const claimMarker = "Claimed By:"

var (
	typePattern  = regexp.MustCompile(`Type: ([^ |]+)`)
	langPattern  = regexp.MustCompile(`Lang: ([a-z]{2})`)
	userPattern  = regexp.MustCompile(`User: (\d+)`)
	claimPattern = regexp.MustCompile(`Claimed By: (\d+)`)
)

// TopicInfo is the state parsed back out of a channel topic.
type TopicInfo struct {
	Type      string
	Lang      string
	CreatorID string
	ClaimerID string
}

// EncodeTopic renders the topic written at channel creation.
func EncodeTopic(moduleType domain.CategoryType, lang, creatorID string) string {
	return fmt.Sprintf("Type: %s | Lang: %s | User: %s", moduleType, lang, creatorID)
}

// AppendClaim appends the claim marker for the claiming member.
func AppendClaim(topic, claimerID string) string {
	return fmt.Sprintf("%s | %s %s", topic, claimMarker, claimerID)
}

// TopicClaimed reports whether the topic already carries a claim marker.
func TopicClaimed(topic string) bool {
	return strings.Contains(topic, claimMarker)
}

// ParseTopic extracts ticket state from a topic string. Missing tags yield
// empty fields; Lang falls back to the default language.
func ParseTopic(topic string) TopicInfo {
	info := TopicInfo{}
	if m := typePattern.FindStringSubmatch(topic); m != nil {
		info.Type = m[1]
	}
	if m := langPattern.FindStringSubmatch(topic); m != nil {
		info.Lang = m[1]
	}
	if m := userPattern.FindStringSubmatch(topic); m != nil {
		info.CreatorID = m[1]
	}
	if m := claimPattern.FindStringSubmatch(topic); m != nil {
		info.ClaimerID = m[1]
	}
	return info
}
