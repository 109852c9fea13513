package web

import (
	"context"
	"fmt"

	"github.com/2beens/onthego/internal/activity"
	"github.com/2beens/onthego/internal/config"
	"github.com/2beens/onthego/internal/dashboard"
	"github.com/2beens/onthego/internal/session"
)

type ActivityOption struct {
	ID       int64
	Label    string
	Selected bool
}

type ChartPanel struct {
	Title string
	URL   string
}

// Page is the view model of one full render.
type Page struct {
	LoggedIn bool
	Username string
	Banners  []Banner

	ActivityCount int
	MinCount      int
	MaxCount      int

	Activities       []ActivityOption
	SelectedActivity int64
	Samples          int
	Tiles            []dashboard.Tile
	Charts           []ChartPanel
}

func loginPage(state *session.State, banners ...Banner) *Page {
	page := &Page{Banners: banners}
	if state != nil {
		page.Username = state.Username()
	}
	return page
}

// buildDashboard recomputes the whole dashboard from the session state.
// A failing step adds a banner and leaves the rest of the page empty.
func buildDashboard(ctx context.Context, state *session.State, banners ...Banner) *Page {
	page := &Page{
		LoggedIn:      true,
		Username:      state.Username(),
		Banners:       banners,
		ActivityCount: state.ActivityCount(),
		MinCount:      config.MinActivitiesCount,
		MaxCount:      config.MaxActivitiesCount,
	}

	client := state.Client()
	if client == nil {
		page.LoggedIn = false
		return page
	}

	activities, err := client.ListActivities(ctx, 0, page.ActivityCount)
	if err != nil {
		page.Banners = append(page.Banners, errorBanner(err))
	}
	if len(activities) == 0 {
		page.Banners = append(page.Banners, Banner{Level: LevelWarning, Message: msgNoActivities})
		return page
	}

	selected := pickActivity(activities, state.SelectedActivity())
	state.SelectActivity(selected)
	page.SelectedActivity = selected
	for _, a := range activities {
		page.Activities = append(page.Activities, ActivityOption{
			ID:       a.ID,
			Label:    a.Label(),
			Selected: a.ID == selected,
		})
	}

	details, err := client.ActivityDetails(ctx, selected)
	if err != nil {
		page.Banners = append(page.Banners,
			errorBanner(err),
			Banner{Level: LevelWarning, Message: msgDetailsFailed},
		)
		return page
	}

	table, err := activity.Flatten(details)
	if err != nil {
		page.Banners = append(page.Banners, errorBanner(err))
		return page
	}
	if table.Empty() {
		page.Banners = append(page.Banners, Banner{Level: LevelWarning, Message: msgNoDetailedMetrics})
		return page
	}

	page.Samples = table.Len()
	page.Banners = append(page.Banners, Banner{
		Level:   LevelInfo,
		Message: fmt.Sprintf("Activity found: %d samples.", table.Len()),
	})

	if stats, err := dashboard.Summarize(table); err == nil {
		page.Tiles = stats.Tiles()
	}

	for _, kind := range dashboard.ChartKinds {
		page.Charts = append(page.Charts, ChartPanel{
			Title: kind.Title(),
			URL:   fmt.Sprintf("/charts/%d/%s", selected, kind),
		})
	}

	return page
}

// pickActivity keeps the current selection while it is still listed, else the first activity.
func pickActivity(activities []activity.Summary, current int64) int64 {
	for _, a := range activities {
		if a.ID == current {
			return current
		}
	}
	return activities[0].ID
}
