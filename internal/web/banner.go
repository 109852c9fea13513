package web

import (
	"errors"
	"fmt"

	"github.com/2beens/onthego/internal/activity"
	"github.com/2beens/onthego/internal/garmin"
)

type BannerLevel string

const (
	LevelSuccess BannerLevel = "success"
	LevelInfo    BannerLevel = "info"
	LevelWarning BannerLevel = "warning"
	LevelError   BannerLevel = "error"
)

// severity orders the levels so a render can be labelled by its worst banner.
var severity = map[BannerLevel]int{
	LevelSuccess: 1,
	LevelInfo:    2,
	LevelWarning: 3,
	LevelError:   4,
}

type Banner struct {
	Level   BannerLevel
	Message string
}

const (
	msgLoggedIn          = "Logged in successfully!"
	msgLoggedOut         = "Logged out."
	msgConnectionError   = "Error connecting to Garmin Connect. Please check your credentials."
	msgTooManyRequests   = "Too many requests to Garmin Connect. Try again later."
	msgEmptyCredentials  = "Please enter both username and password."
	msgNoActivities      = "No recent activities found."
	msgDetailsFailed     = "Failed to load activity details."
	msgNoDetailedMetrics = "No detailed metrics available for this activity."
)

// errorBanner maps a service failure to what the user sees. Every class is
// handled the same way by the caller, only the message differs.
func errorBanner(err error) Banner {
	switch {
	case errors.Is(err, garmin.ErrConnection):
		return Banner{Level: LevelError, Message: msgConnectionError}
	case errors.Is(err, garmin.ErrTooManyRequests):
		return Banner{Level: LevelError, Message: msgTooManyRequests}
	case errors.Is(err, activity.ErrColumnMismatch):
		return Banner{Level: LevelError, Message: fmt.Sprintf("Activity details are malformed: %s", err)}
	default:
		return Banner{Level: LevelError, Message: fmt.Sprintf("An error occurred: %s", err)}
	}
}

func worstLevel(banners []Banner) BannerLevel {
	worst := BannerLevel("none")
	for _, b := range banners {
		if severity[b.Level] > severity[worst] {
			worst = b.Level
		}
	}
	return worst
}
