package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"truview/internal/domain"
)

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func valJSON(t domain.Translations) (any, error) {
	if len(t) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) CreateReview(ctx context.Context, rv domain.Review) error {
	tr, err := valJSON(rv.Translations)
	if err != nil {
		return err
	}
	ttr, err := valJSON(rv.TitleTranslations)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, insertReviewSQL,
		rv.ID,
		valStr(rv.Title),
		rv.Description,
		valStr(rv.OriginalLanguage),
		tr,
		ttr,
		rv.CreatedAt.UTC(),
	)
	return err
}

func (r *Repo) FindReview(ctx context.Context, id string) (domain.Review, error) {
	var (
		rv              domain.Review
		title, origLang sql.NullString
		trJSON, ttrJSON []byte
	)
	err := r.db.QueryRowContext(ctx, findReviewSQL, id).Scan(
		&rv.ID,
		&title,
		&rv.Description,
		&origLang,
		&trJSON,
		&ttrJSON,
		&rv.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Review{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Review{}, err
	}
	rv.Title = title.String
	rv.OriginalLanguage = origLang.String
	if rv.Translations, err = decodeTranslations(trJSON); err != nil {
		return domain.Review{}, fmt.Errorf("review %s translations: %w", id, err)
	}
	if rv.TitleTranslations, err = decodeTranslations(ttrJSON); err != nil {
		return domain.Review{}, fmt.Errorf("review %s title translations: %w", id, err)
	}
	return rv, nil
}

// UpdateReview issues a single UPDATE so the merge is atomic for the row.
// Zero rows affected (unknown id) is not an error.
func (r *Repo) UpdateReview(ctx context.Context, id string, u domain.ReviewUpdate) error {
	sets, args := buildUpdate(u)
	if len(sets) == 0 {
		return nil
	}
	q := "UPDATE reviews SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	_, err := r.db.ExecContext(ctx, q, append(args, id)...)
	return err
}

func (r *Repo) ListUntranslated(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, listUntranslatedSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func buildUpdate(u domain.ReviewUpdate) ([]string, []any) {
	var (
		sets []string
		args []any
	)
	if u.OriginalLanguage != "" {
		sets = append(sets, "original_language = ?")
		args = append(args, u.OriginalLanguage)
	}
	for _, col := range []struct {
		name string
		t    domain.Translations
	}{
		{"translations", u.Translations},
		{"title_translations", u.TitleTranslations},
	} {
		if len(col.t) == 0 {
			continue
		}
		langs := make([]string, 0, len(col.t))
		for l := range col.t {
			langs = append(langs, l)
		}
		sort.Strings(langs)

		pairs := make([]string, 0, len(langs))
		for _, l := range langs {
			pairs = append(pairs, "?, ?")
			args = append(args, jsonPath(l), col.t[l])
		}
		sets = append(sets, col.name+" = "+fmt.Sprintf(jsonMergeExpr, col.name, strings.Join(pairs, ", ")))
	}
	return sets, args
}

// jsonPath quotes the key so codes like "zh-Hant" stay a single member name.
func jsonPath(lang string) string {
	return `$."` + strings.ReplaceAll(lang, `"`, "") + `"`
}

func decodeTranslations(b []byte) (domain.Translations, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var t domain.Translations
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, err
	}
	return t, nil
}
