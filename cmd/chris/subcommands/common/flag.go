package common

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/fnndsc/chrisctl/pkg/utils"
)

// ProfileMarker is the name of files telling which profile to use in a directory and below.
const ProfileMarker = ".chrisprofile"

// DefaultProfile is the name of the profile used when no ProfileMarker is found.
const DefaultProfile = "default"

type CommonFlags struct {
	Profile      string `flag:"profile" metavar:"NAME" help:"chris profile name to use"`
	ProfileStore string `flag:"profile-store" metavar:"PATH" help:"path to chris profile store file"`
}

type commonFlagDetection struct {
	home string
}

type CommonFlagDetectionOption func(*commonFlagDetection) *commonFlagDetection

func WithHome(home string) CommonFlagDetectionOption {
	return func(opt *commonFlagDetection) *commonFlagDetection {
		opt.home = home
		return opt
	}
}

// Flags returns default values of CommonFlags for a directory.
//
// The profile is read from the first line of the nearest ProfileMarker file,
// searched from the directory toward the root.
// The profile store is "~/.chris/profile".
func Flags(from string, opt ...CommonFlagDetectionOption) (CommonFlags, error) {
	detparam := commonFlagDetection{}
	for _, o := range opt {
		detparam = *o(&detparam)
	}

	home := detparam.home
	if home == "" {
		if h, err := os.UserHomeDir(); err == nil {
			home = h
		}
	}

	if abs, err := filepath.Abs(from); err == nil {
		from = abs
	}

	profile := DefaultProfile
	marker, err := utils.SearchFileUpward(from, ProfileMarker)
	switch {
	case err == nil:
		content, err := os.ReadFile(marker)
		if err != nil {
			return CommonFlags{}, err
		}
		first, _, _ := strings.Cut(string(content), "\n")
		if p := strings.TrimSpace(first); p != "" {
			profile = p
		}
	case errors.Is(err, utils.ErrSearchFile):
	default:
		return CommonFlags{}, err
	}

	return CommonFlags{
		Profile:      profile,
		ProfileStore: filepath.Join(home, ".chris", "profile"),
	}, nil
}
