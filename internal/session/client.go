package session

import (
	"context"

	"github.com/2beens/onthego/internal/activity"
)

//go:generate mockgen -source=$GOFILE -destination=client_mocks_test.go -package=session_test
//go:generate mockgen -source=$GOFILE -destination=../web/client_mocks_test.go -package=web_test

// ActivityClient is the fitness service account a session talks to.
type ActivityClient interface {
	Login(ctx context.Context) error
	ListActivities(ctx context.Context, start, limit int) ([]activity.Summary, error)
	ActivityDetails(ctx context.Context, activityID int64) (*activity.Details, error)
	Logout(ctx context.Context) error
}

// ClientFactory builds a logged out client for the given credentials.
type ClientFactory func(username, password string) ActivityClient
