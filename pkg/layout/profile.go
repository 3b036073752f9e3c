package layout

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownProfile is returned by [LookupProfile] for names other than
// "compact" and "normal".
var ErrUnknownProfile = errors.New("unknown size profile")

// Profile holds the node and spacing dimensions for one drawing size.
// Profiles are chosen per render call and never stored.
type Profile struct {
	Name       string  `json:"name"`
	NodeWidth  float64 `json:"nodeWidth"`
	NodeHeight float64 `json:"nodeHeight"`
	FontSize   float64 `json:"fontSize"`
	IconSize   float64 `json:"iconSize"`
	SpacingX   float64 `json:"spacingX"`
	SpacingY   float64 `json:"spacingY"`
}

const (
	SizeCompact = "compact"
	SizeNormal  = "normal"
)

var (
	// Compact is used for grid and list previews.
	Compact = Profile{Name: SizeCompact, NodeWidth: 80, NodeHeight: 40, FontSize: 10, IconSize: 12, SpacingX: 30, SpacingY: 20}

	// Normal is used for detail views.
	Normal = Profile{Name: SizeNormal, NodeWidth: 140, NodeHeight: 60, FontSize: 12, IconSize: 16, SpacingX: 50, SpacingY: 30}
)

// ProfileNames lists the accepted profile names.
var ProfileNames = []string{SizeCompact, SizeNormal}

// LookupProfile returns the profile with the given name. An empty name
// selects Normal.
func LookupProfile(name string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case SizeCompact:
		return Compact, nil
	case SizeNormal, "":
		return Normal, nil
	}
	return Profile{}, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownProfile, name, strings.Join(ProfileNames, ", "))
}
