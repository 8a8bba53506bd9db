package store

import (
	"context"
	"errors"

	"foodmap/internal/apperr"
	"foodmap/internal/database"
	"foodmap/internal/model"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, name, email, password_hash, role, avatar_url, created_at`

func scanUser(row pgx.Row, u *model.User) error {
	return row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.AvatarURL,
		&u.CreatedAt,
	)
}

// userWriteError 唯一鍵衝突只可能來自 email
func userWriteError(op string, err error) error {
	err = classify(op, "user", err)
	if apperr.Is(err, apperr.KindConflict) {
		return apperr.Wrap(apperr.KindConflict, "email already registered", errors.Unwrap(err))
	}
	return err
}

func GetUserByID(ctx context.Context, db database.Querier, userID int) (*model.User, error) {
	u := &model.User{}
	if err := scanUser(db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID), u); err != nil {
		return nil, classify("GetUserByID", "user", err)
	}
	return u, nil
}

// GetUserByEmail email 以小寫比對
func GetUserByEmail(ctx context.Context, db database.Querier, email string) (*model.User, error) {
	u := &model.User{}
	if err := scanUser(db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = lower($1)`, email), u); err != nil {
		return nil, classify("GetUserByEmail", "user", err)
	}
	return u, nil
}

// CreateUser 重複 email 回傳 Conflict
func CreateUser(ctx context.Context, db database.Querier, u *model.User) (*model.User, error) {
	role := u.Role
	if role == "" {
		role = model.RoleUser
	}
	out := &model.User{}
	row := db.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash, role, avatar_url)
		 VALUES ($1, lower($2), $3, $4, $5)
		 RETURNING `+userColumns,
		u.Name,
		u.Email,
		u.PasswordHash,
		role,
		u.AvatarURL,
	)
	if err := scanUser(row, out); err != nil {
		return nil, userWriteError("CreateUser", err)
	}
	return out, nil
}

func ListUsers(ctx context.Context, db database.Querier, p Page) ([]model.User, error) {
	rows, err := db.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id LIMIT $1 OFFSET $2`,
		p.Limit, p.Offset(),
	)
	if err != nil {
		return nil, classify("ListUsers", "user", err)
	}
	defer rows.Close()

	list := []model.User{}
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u); err != nil {
			return nil, classify("ListUsers", "user", err)
		}
		list = append(list, u)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("ListUsers", "user", err)
	}
	return list, nil
}

func CountUsers(ctx context.Context, db database.Querier) (int, error) {
	var n int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, classify("CountUsers", "user", err)
	}
	return n, nil
}

// UpdateUser 更新名稱與 email；email 與他人重複時回傳 Conflict
func UpdateUser(ctx context.Context, db database.Querier, u *model.User) (*model.User, error) {
	out := &model.User{}
	row := db.QueryRow(ctx,
		`UPDATE users SET name = $1, email = lower($2)
		 WHERE id = $3
		 RETURNING `+userColumns,
		u.Name, u.Email, u.ID,
	)
	if err := scanUser(row, out); err != nil {
		return nil, userWriteError("UpdateUser", err)
	}
	return out, nil
}

func UpdateUserPassword(ctx context.Context, db database.Querier, userID int, hash string) error {
	tag, err := db.Exec(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, hash, userID)
	if err != nil {
		return classify("UpdateUserPassword", "user", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("UpdateUserPassword", "user")
	}
	return nil
}

func UpdateUserRole(ctx context.Context, db database.Querier, userID int, role model.Role) (*model.User, error) {
	out := &model.User{}
	row := db.QueryRow(ctx, `UPDATE users SET role = $1 WHERE id = $2 RETURNING `+userColumns, role, userID)
	if err := scanUser(row, out); err != nil {
		return nil, classify("UpdateUserRole", "user", err)
	}
	return out, nil
}

// UpdateUserAvatar 回傳舊的頭像 URL
func UpdateUserAvatar(ctx context.Context, db database.Querier, userID int, url string) (*string, error) {
	var prev *string
	err := db.QueryRow(ctx,
		`UPDATE users u SET avatar_url = $1
		 FROM (SELECT id, avatar_url FROM users WHERE id = $2 FOR UPDATE) old
		 WHERE u.id = old.id
		 RETURNING old.avatar_url`,
		url, userID,
	).Scan(&prev)
	if err != nil {
		return nil, classify("UpdateUserAvatar", "user", err)
	}
	return prev, nil
}

func DeleteUser(ctx context.Context, db database.Querier, userID int) error {
	tag, err := db.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return classify("DeleteUser", "user", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("DeleteUser", "user")
	}
	return nil
}
