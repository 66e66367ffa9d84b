package sqlite

import (
	"context"
	"database/sql"
	"time"

	"hrflow/internal/domain/notifications"
)

type Notifications struct {
	DB *sql.DB
}

func (s *Notifications) CreateNotification(ctx context.Context, n notifications.Notification) error {
	_, err := s.DB.ExecContext(ctx, `
    INSERT INTO notifications (id, employee_id, type, title, body, created_at)
    VALUES (?, ?, ?, ?, ?, ?)
  `, n.ID, n.EmployeeID, n.Type, n.Title, n.Body, n.CreatedAt.UTC())
	return err
}

func (s *Notifications) ListNotifications(ctx context.Context, employeeID string, limit, offset int) ([]notifications.Notification, error) {
	rows, err := s.DB.QueryContext(ctx, `
    SELECT id, employee_id, type, title, body, read_at, created_at
    FROM notifications
    WHERE employee_id = ?
    ORDER BY created_at DESC
    LIMIT ? OFFSET ?
  `, employeeID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []notifications.Notification{}
	for rows.Next() {
		var n notifications.Notification
		if err := rows.Scan(&n.ID, &n.EmployeeID, &n.Type, &n.Title, &n.Body, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Notifications) CountNotifications(ctx context.Context, employeeID string) (int, error) {
	var total int
	err := s.DB.QueryRowContext(ctx, "SELECT COUNT(1) FROM notifications WHERE employee_id = ?", employeeID).Scan(&total)
	return total, err
}

func (s *Notifications) MarkRead(ctx context.Context, id string, at time.Time) error {
	res, err := s.DB.ExecContext(ctx, "UPDATE notifications SET read_at = COALESCE(read_at, ?) WHERE id = ?", at.UTC(), id)
	if err != nil {
		return err
	}
	return affected(res, notifications.ErrNotificationNotFound)
}
