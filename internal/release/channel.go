package release

import (
	"strings"

	serrors "github.com/stagehand/cli/internal/errors"
)

// Channel is one of the two publication targets.
type Channel string

const (
	// ChannelSVN stages artifacts for the source-control release area.
	ChannelSVN Channel = "svn"

	// ChannelPyPI stages artifacts for the package-index staging area.
	ChannelPyPI Channel = "pypi"
)

// Channels returns all publication channels in their canonical order.
func Channels() []Channel {
	return []Channel{ChannelSVN, ChannelPyPI}
}

// String returns the string representation of the channel.
func (c Channel) String() string {
	return string(c)
}

// IsValid checks if the channel is a known publication target.
func (c Channel) IsValid() bool {
	switch c {
	case ChannelSVN, ChannelPyPI:
		return true
	default:
		return false
	}
}

// ParseChannel parses a string into a Channel.
func ParseChannel(s string) (Channel, error) {
	c := Channel(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", serrors.NewValidationError(
			"unknown publication channel",
			"channel",
			s,
			"Valid channels are: svn, pypi",
		)
	}
	return c, nil
}
