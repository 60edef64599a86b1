package google

import (
	"context"
	"net/url"
	"strconv"

	"github.com/switchyardhq/switchyard/pkg/capability"
)

// DriveListFilesCapability lists files in the org's Drive, optionally
// filtered by a Drive search query.
type DriveListFilesCapability struct {
	config Config
}

func NewDriveListFilesCapability(config Config) capability.Capability {
	return &DriveListFilesCapability{config: config}
}

func (c *DriveListFilesCapability) Meta() capability.Meta {
	return capability.Meta{
		ID:          "drive_list_files",
		DisplayName: "List Drive Files",
		Description: "Lists files in Google Drive, optionally filtered by a search query",
		ParamsSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Drive search query, e.g. \"name contains 'report'\"",
				},
				"page_size": map[string]any{
					"type":        "integer",
					"minimum":     1,
					"maximum":     1000,
					"description": "Maximum number of files to return",
				},
				"page_token": map[string]any{
					"type":        "string",
					"description": "Continuation token from a previous page",
				},
			},
			"additionalProperties": false,
		},
		ResultSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"files":           map[string]any{"type": "array"},
				"next_page_token": map[string]any{"type": "string"},
			},
		},
		RequiredScopes: []string{"https://www.googleapis.com/auth/drive.readonly"},
		Risk:           capability.RiskLow,
	}
}

func (c *DriveListFilesCapability) Execute(ctx context.Context, execCtx capability.ExecutionContext, params map[string]any) (any, error) {
	query := url.Values{}

	if q, ok := params["query"].(string); ok && q != "" {
		query.Set("q", q)
	}

	if size, ok := params["page_size"].(float64); ok && size > 0 {
		query.Set("pageSize", strconv.Itoa(int(size)))
	}

	if token, ok := params["page_token"].(string); ok && token != "" {
		query.Set("pageToken", token)
	}

	endpoint := c.config.DriveBaseURL + "/drive/v3/files"
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	decoded, err := doJSON(ctx, c.config.HTTPClient, "drive_list_files", "GET", endpoint, execCtx.Token.BearerToken(), nil)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"files":           decoded["files"],
		"next_page_token": decoded["nextPageToken"],
	}, nil
}

// CalendarListEventsCapability lists upcoming events on the primary calendar.
type CalendarListEventsCapability struct {
	config Config
}

func NewCalendarListEventsCapability(config Config) capability.Capability {
	return &CalendarListEventsCapability{config: config}
}

func (c *CalendarListEventsCapability) Meta() capability.Meta {
	return capability.Meta{
		ID:          "calendar_list_events",
		DisplayName: "List Calendar Events",
		Description: "Lists events on the primary Google Calendar",
		ParamsSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"time_min": map[string]any{
					"type":        "string",
					"format":      "date-time",
					"description": "Lower bound (inclusive) on event end time, RFC 3339",
				},
				"time_max": map[string]any{
					"type":        "string",
					"format":      "date-time",
					"description": "Upper bound (exclusive) on event start time, RFC 3339",
				},
				"max_results": map[string]any{
					"type":        "integer",
					"minimum":     1,
					"maximum":     2500,
					"description": "Maximum number of events to return",
				},
			},
			"additionalProperties": false,
		},
		ResultSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"events":          map[string]any{"type": "array"},
				"next_page_token": map[string]any{"type": "string"},
			},
		},
		RequiredScopes: []string{"https://www.googleapis.com/auth/calendar.readonly"},
		Risk:           capability.RiskLow,
	}
}

func (c *CalendarListEventsCapability) Execute(ctx context.Context, execCtx capability.ExecutionContext, params map[string]any) (any, error) {
	query := url.Values{"singleEvents": []string{"true"}, "orderBy": []string{"startTime"}}

	if min, ok := params["time_min"].(string); ok && min != "" {
		query.Set("timeMin", min)
	}

	if max, ok := params["time_max"].(string); ok && max != "" {
		query.Set("timeMax", max)
	}

	if results, ok := params["max_results"].(float64); ok && results > 0 {
		query.Set("maxResults", strconv.Itoa(int(results)))
	}

	endpoint := c.config.CalendarBaseURL + "/calendar/v3/calendars/primary/events?" + query.Encode()

	decoded, err := doJSON(ctx, c.config.HTTPClient, "calendar_list_events", "GET", endpoint, execCtx.Token.BearerToken(), nil)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"events":          decoded["items"],
		"next_page_token": decoded["nextPageToken"],
	}, nil
}
