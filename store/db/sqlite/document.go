package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/inkwell-app/inkwell/store"
)

func (d *DB) CreateDocument(ctx context.Context, create *store.Document) (*store.Document, error) {
	fields := []string{
		"uid", "topic", "document_type", "academic_level", "research_areas",
		"requirements", "mode", "status", "content", "target_words",
		"words_generated", "sentence_count", "paragraph_count",
		"prompt_tokens", "completion_tokens", "duration_ms",
		"created_ts", "updated_ts",
	}
	args := []any{
		create.UID, create.Topic, create.DocumentType, create.AcademicLevel, create.ResearchAreas,
		create.Requirements, create.Mode, create.Status, create.Content, create.TargetWords,
		create.WordsGenerated, create.SentenceCount, create.ParagraphCount,
		create.PromptTokens, create.CompletionTokens, create.DurationMs,
		create.CreatedTs, create.UpdatedTs,
	}

	stmt := `INSERT INTO document (` + strings.Join(fields, ", ") + `)
		VALUES (` + strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ") + `)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to create document")
	}

	return create, nil
}

func (d *DB) ListDocuments(ctx context.Context, find *store.FindDocument) ([]*store.Document, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = ?"), append(args, *find.ID)
	}
	if find.UID != nil {
		where, args = append(where, "uid = ?"), append(args, *find.UID)
	}
	if find.Status != nil {
		where, args = append(where, "status = ?"), append(args, *find.Status)
	}

	query := `
		SELECT
			id, uid, topic, document_type, academic_level, research_areas,
			requirements, mode, status, content, target_words,
			words_generated, sentence_count, paragraph_count,
			prompt_tokens, completion_tokens, duration_ms, created_ts, updated_ts
		FROM document
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts DESC`
	if find.Limit != nil {
		query += " LIMIT ?"
		args = append(args, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list documents")
	}
	defer rows.Close()

	list := make([]*store.Document, 0)
	for rows.Next() {
		doc := &store.Document{}
		if err := rows.Scan(
			&doc.ID, &doc.UID, &doc.Topic, &doc.DocumentType, &doc.AcademicLevel, &doc.ResearchAreas,
			&doc.Requirements, &doc.Mode, &doc.Status, &doc.Content, &doc.TargetWords,
			&doc.WordsGenerated, &doc.SentenceCount, &doc.ParagraphCount,
			&doc.PromptTokens, &doc.CompletionTokens, &doc.DurationMs, &doc.CreatedTs, &doc.UpdatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan document")
		}
		list = append(list, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate documents")
	}

	return list, nil
}

func (d *DB) GetDocument(ctx context.Context, find *store.FindDocument) (*store.Document, error) {
	list, err := d.ListDocuments(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (d *DB) DeleteDocument(ctx context.Context, delete *store.DeleteDocument) error {
	result, err := d.db.ExecContext(ctx, "DELETE FROM document WHERE uid = ?", delete.UID)
	if err != nil {
		return errors.Wrap(err, "failed to delete document")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read rows affected")
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
