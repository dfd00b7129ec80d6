package store

import (
	"context"
	"database/sql"
)

var ErrNotFound = sql.ErrNoRows

// Виды записей истории.
const (
	KindYear  = "year"
	KindModel = "model"
	KindMonth = "month"
)

// HistoryRepo запоминает годы/модели/месяцы, под которыми пользователь уже
// раскладывал фотографии. История питает клавиатуры быстрого выбора, поэтому
// любая ошибка здесь деградирует до пустого списка, а не до отказа диалога.
type HistoryRepo struct{ DB *sql.DB }

func NewHistoryRepo(db *sql.DB) *HistoryRepo { return &HistoryRepo{DB: db} }

// EnsureSchema создаёт таблицу истории, если её ещё нет.
func (r *HistoryRepo) EnsureSchema(ctx context.Context) error {
	const q = `
create table if not exists user_history (
  user_id bigint      not null,
  kind    text        not null,
  value   text        not null,
  used_at timestamptz not null default now(),
  primary key (user_id, kind, value)
)`
	_, err := r.DB.ExecContext(ctx, q)
	return err
}

// Touch записывает использование значения (или обновляет время использования).
func (r *HistoryRepo) Touch(ctx context.Context, userID int64, kind, value string) error {
	const q = `
insert into user_history (user_id, kind, value)
values ($1, $2, $3)
on conflict (user_id, kind, value) do update set used_at = now()`
	_, err := r.DB.ExecContext(ctx, q, userID, kind, value)
	return err
}

// List возвращает до limit последних использованных значений, свежие первыми.
func (r *HistoryRepo) List(ctx context.Context, userID int64, kind string, limit int) ([]string, error) {
	const q = `
select value from user_history
where user_id = $1 and kind = $2
order by used_at desc
limit $3`
	rows, err := r.DB.QueryContext(ctx, q, userID, kind, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
