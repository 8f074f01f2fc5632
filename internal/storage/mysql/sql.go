package mysql

const insertReviewSQL = `
INSERT INTO reviews
  (id, title, description, original_language, translations, title_translations, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?)
`

// Only the fields the translation pipeline needs.
const findReviewSQL = `
SELECT
  id,
  title,
  description,
  original_language,
  translations,
  title_translations,
  created_at
FROM reviews
WHERE id = ?
`

const listUntranslatedSQL = `
SELECT id
FROM reviews
WHERE original_language IS NULL
ORDER BY created_at, id
LIMIT ?
`

// JSON_SET merges keys into the object; COALESCE covers rows that never had one.
const jsonMergeExpr = "JSON_SET(COALESCE(%[1]s, JSON_OBJECT()), %[2]s)"
