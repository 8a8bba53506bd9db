package store

import (
	"context"

	"foodmap/internal/database"
	"foodmap/internal/model"

	"github.com/jackc/pgx/v5"
)

const messageColumns = `id, name, email, subject, message, is_read, read_at, created_at`

func scanMessage(row pgx.Row, m *model.ContactMessage) error {
	return row.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.IsRead, &m.ReadAt, &m.CreatedAt)
}

func CreateMessage(ctx context.Context, db database.Querier, m *model.ContactMessage) (*model.ContactMessage, error) {
	out := &model.ContactMessage{}
	row := db.QueryRow(ctx,
		`INSERT INTO contact_messages (name, email, subject, message)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+messageColumns,
		m.Name, m.Email, m.Subject, m.Message,
	)
	if err := scanMessage(row, out); err != nil {
		return nil, classify("CreateMessage", "message", err)
	}
	return out, nil
}

// ListMessages 未讀優先，其次新到舊
func ListMessages(ctx context.Context, db database.Querier, p Page) ([]model.ContactMessage, error) {
	rows, err := db.Query(ctx,
		`SELECT `+messageColumns+`
		 FROM contact_messages
		 ORDER BY is_read, created_at DESC, id DESC
		 LIMIT $1 OFFSET $2`,
		p.Limit, p.Offset(),
	)
	if err != nil {
		return nil, classify("ListMessages", "message", err)
	}
	defer rows.Close()

	list := []model.ContactMessage{}
	for rows.Next() {
		var m model.ContactMessage
		if err := scanMessage(rows, &m); err != nil {
			return nil, classify("ListMessages", "message", err)
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("ListMessages", "message", err)
	}
	return list, nil
}

func CountMessages(ctx context.Context, db database.Querier) (int, error) {
	var n int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM contact_messages`).Scan(&n); err != nil {
		return 0, classify("CountMessages", "message", err)
	}
	return n, nil
}

// MarkMessageRead 標記已讀；重複呼叫不會改動 read_at
func MarkMessageRead(ctx context.Context, db database.Querier, id int) (*model.ContactMessage, error) {
	out := &model.ContactMessage{}
	row := db.QueryRow(ctx,
		`UPDATE contact_messages
		 SET is_read = true, read_at = COALESCE(read_at, now())
		 WHERE id = $1
		 RETURNING `+messageColumns,
		id,
	)
	if err := scanMessage(row, out); err != nil {
		return nil, classify("MarkMessageRead", "message", err)
	}
	return out, nil
}

func DeleteMessage(ctx context.Context, db database.Querier, id int) error {
	tag, err := db.Exec(ctx, `DELETE FROM contact_messages WHERE id = $1`, id)
	if err != nil {
		return classify("DeleteMessage", "message", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("DeleteMessage", "message")
	}
	return nil
}

func DeleteAllMessages(ctx context.Context, db database.Querier) (int64, error) {
	tag, err := db.Exec(ctx, `DELETE FROM contact_messages`)
	if err != nil {
		return 0, classify("DeleteAllMessages", "message", err)
	}
	return tag.RowsAffected(), nil
}
