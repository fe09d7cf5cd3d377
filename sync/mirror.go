// ABOUTME: Google Calendar mirror for locally persisted events
// ABOUTME: Creates remote events from an access token via the Calendar API
package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/harperreed/dayflow/models"
)

// Mirror writes an already-persisted event to a remote calendar. Callers
// treat failures as non-fatal; implementations just report them.
type Mirror interface {
	CreateEvent(ctx context.Context, accessToken string, event *models.ScheduleEvent) error
}

// GoogleMirror inserts events into the user's primary Google calendar.
type GoogleMirror struct{}

func NewGoogleMirror() *GoogleMirror {
	return &GoogleMirror{}
}

func (m *GoogleMirror) CreateEvent(ctx context.Context, accessToken string, event *models.ScheduleEvent) error {
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})

	service, err := calendar.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return fmt.Errorf("failed to create calendar service: %w", err)
	}

	_, err = service.Events.Insert("primary", toCalendarEvent(event)).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return fmt.Errorf("failed to insert calendar event (status %d): %w", apiErr.Code, err)
		}
		return fmt.Errorf("failed to insert calendar event: %w", err)
	}
	return nil
}

// toCalendarEvent maps a schedule event onto the Calendar API shape. All-day
// events use Date with an exclusive end that must land on a later date than
// the start, or the API rejects the range as empty. Timed events use
// DateTime with a one-hour default end.
func toCalendarEvent(event *models.ScheduleEvent) *calendar.Event {
	remote := &calendar.Event{
		Summary:     event.Title,
		Description: event.Description,
	}

	if event.AllDay {
		end := event.Start.AddDate(0, 0, 1)
		if event.End != nil && event.End.After(end) {
			end = *event.End
		}
		remote.Start = &calendar.EventDateTime{Date: event.Start.Format("2006-01-02")}
		remote.End = &calendar.EventDateTime{Date: end.Format("2006-01-02")}
		return remote
	}

	end := event.Start.Add(time.Hour)
	if event.End != nil {
		end = *event.End
	}
	remote.Start = &calendar.EventDateTime{DateTime: event.Start.Format(time.RFC3339)}
	remote.End = &calendar.EventDateTime{DateTime: end.Format(time.RFC3339)}

	return remote
}
