package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/Avaneesh16/Travel-Genie/store"
)

func (d *DB) CreateCalendarEvent(ctx context.Context, create *store.CalendarEvent) (*store.CalendarEvent, error) {
	fields := []string{
		"uid", "summary", "description", "location",
		"start_ts", "end_ts", "all_day", "timezone",
	}
	placeholderValues := []any{
		create.UID, create.Summary, create.Description, create.Location,
		create.StartTs, create.EndTs, create.AllDay, create.Timezone,
	}

	// Add optional timestamps
	if create.CreatedTs != 0 {
		fields = append(fields, "created_ts")
		placeholderValues = append(placeholderValues, create.CreatedTs)
	}
	if create.UpdatedTs != 0 {
		fields = append(fields, "updated_ts")
		placeholderValues = append(placeholderValues, create.UpdatedTs)
	}

	stmt := `INSERT INTO calendar_event (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING id, created_ts, updated_ts, row_status`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.ID,
		&create.CreatedTs,
		&create.UpdatedTs,
		&create.RowStatus,
	); err != nil {
		return nil, fmt.Errorf("failed to create calendar event: %w", err)
	}

	return create, nil
}

func (d *DB) ListCalendarEvents(ctx context.Context, find *store.FindCalendarEvent) ([]*store.CalendarEvent, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "calendar_event.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "calendar_event.uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.RowStatus; v != nil {
		where, args = append(where, "calendar_event.row_status = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.StartAfter; v != nil {
		// Half-open overlap with the query window.
		where, args = append(where, "calendar_event.end_ts > "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.EndBefore; v != nil {
		where, args = append(where, "calendar_event.start_ts < "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT
			id, uid, created_ts, updated_ts, row_status,
			summary, description, location,
			start_ts, end_ts, all_day, timezone
		FROM calendar_event
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY calendar_event.start_ts ASC, calendar_event.id ASC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendar events: %w", err)
	}
	defer rows.Close()

	list := make([]*store.CalendarEvent, 0)
	for rows.Next() {
		var event store.CalendarEvent
		if err := rows.Scan(
			&event.ID,
			&event.UID,
			&event.CreatedTs,
			&event.UpdatedTs,
			&event.RowStatus,
			&event.Summary,
			&event.Description,
			&event.Location,
			&event.StartTs,
			&event.EndTs,
			&event.AllDay,
			&event.Timezone,
		); err != nil {
			return nil, fmt.Errorf("failed to scan calendar event: %w", err)
		}
		list = append(list, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate calendar events: %w", err)
	}

	return list, nil
}
