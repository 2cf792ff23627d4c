// Copyright (c) 2026 TaskForge. All rights reserved.

package task

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskforge/taskforge/internal/platform/dberr"
	"github.com/taskforge/taskforge/pkg/pagination"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// # Tasks

func (repository *PostgresRepository) Create(context context.Context, task *Task) error {
	const query = `
		INSERT INTO core.task (id, projectid, title, description, status, assigneeid, duedate, createdby, createdat, updatedat)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	if _, err := repository.db.Exec(context, query,
		task.ID, task.ProjectID, task.Title, task.Description, task.Status,
		task.AssigneeID, task.DueDate, task.CreatedBy, task.CreatedAt, task.UpdatedAt,
	); err != nil {
		return dberr.Wrap(err, "Task")
	}
	return nil
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Task, error) {
	const query = `
		SELECT id, projectid, title, description, status, assigneeid, duedate, createdby, createdat, updatedat
		FROM core.task WHERE id = $1`

	task := &Task{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&task.ID, &task.ProjectID, &task.Title, &task.Description, &task.Status,
		&task.AssigneeID, &task.DueDate, &task.CreatedBy, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Task")
	}
	return task, nil
}

func (repository *PostgresRepository) ListByProject(context context.Context, projectID string, filter ListFilter, params pagination.Params) ([]*Task, int, error) {

	// Optional filters collapse to TRUE when unset.
	const countQuery = `
		SELECT COUNT(*) FROM core.task
		WHERE projectid = $1
		  AND ($2 = '' OR status = $2)
		  AND ($3 = '' OR assigneeid::text = $3)`

	var total int
	if err := repository.db.QueryRow(context, countQuery,
		projectID, string(filter.Status), filter.AssigneeID,
	).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "Tasks")
	}

	const query = `
		SELECT id, projectid, title, description, status, assigneeid, duedate, createdby, createdat, updatedat
		FROM core.task
		WHERE projectid = $1
		  AND ($2 = '' OR status = $2)
		  AND ($3 = '' OR assigneeid::text = $3)
		ORDER BY createdat DESC
		LIMIT $4 OFFSET $5`

	rows, err := repository.db.Query(context, query,
		projectID, string(filter.Status), filter.AssigneeID, params.Limit, params.Offset(),
	)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Tasks")
	}
	defer rows.Close()

	tasks := make([]*Task, 0)
	for rows.Next() {
		task := &Task{}
		if err := rows.Scan(
			&task.ID, &task.ProjectID, &task.Title, &task.Description, &task.Status,
			&task.AssigneeID, &task.DueDate, &task.CreatedBy, &task.CreatedAt, &task.UpdatedAt,
		); err != nil {
			return nil, 0, dberr.Wrap(err, "Task")
		}
		tasks = append(tasks, task)
	}

	return tasks, total, rows.Err()
}

func (repository *PostgresRepository) Update(context context.Context, task *Task) error {
	const query = `
		UPDATE core.task
		SET title = $2, description = $3, status = $4, assigneeid = $5, duedate = $6, updatedat = $7
		WHERE id = $1`

	task.UpdatedAt = time.Now()
	tag, err := repository.db.Exec(context, query,
		task.ID, task.Title, task.Description, task.Status, task.AssigneeID, task.DueDate, task.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "Task")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	tag, err := repository.db.Exec(context, `DELETE FROM core.task WHERE id = $1`, id)
	if err != nil {
		return dberr.Wrap(err, "Task")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// # Comments

func (repository *PostgresRepository) AddComment(context context.Context, comment *Comment) error {
	const query = `
		INSERT INTO core.task_comment (id, taskid, authorid, body, isedited, createdat, updatedat)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	if _, err := repository.db.Exec(context, query,
		comment.ID, comment.TaskID, comment.AuthorID, comment.Body, comment.IsEdited,
		comment.CreatedAt, comment.UpdatedAt,
	); err != nil {
		return dberr.Wrap(err, "Comment")
	}
	return nil
}

func (repository *PostgresRepository) FindCommentByID(context context.Context, id string) (*Comment, error) {
	const query = `
		SELECT id, taskid, authorid, body, isedited, createdat, updatedat
		FROM core.task_comment WHERE id = $1`

	comment := &Comment{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&comment.ID, &comment.TaskID, &comment.AuthorID, &comment.Body,
		&comment.IsEdited, &comment.CreatedAt, &comment.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Comment")
	}
	return comment, nil
}

func (repository *PostgresRepository) ListComments(context context.Context, taskID string) ([]*Comment, error) {
	const query = `
		SELECT id, taskid, authorid, body, isedited, createdat, updatedat
		FROM core.task_comment
		WHERE taskid = $1
		ORDER BY createdat ASC`

	rows, err := repository.db.Query(context, query, taskID)
	if err != nil {
		return nil, dberr.Wrap(err, "Comments")
	}
	defer rows.Close()

	comments := make([]*Comment, 0)
	for rows.Next() {
		comment := &Comment{}
		if err := rows.Scan(
			&comment.ID, &comment.TaskID, &comment.AuthorID, &comment.Body,
			&comment.IsEdited, &comment.CreatedAt, &comment.UpdatedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "Comment")
		}
		comments = append(comments, comment)
	}

	return comments, rows.Err()
}

func (repository *PostgresRepository) UpdateComment(context context.Context, comment *Comment) error {
	const query = `
		UPDATE core.task_comment
		SET body = $2, isedited = $3, updatedat = $4
		WHERE id = $1`

	comment.UpdatedAt = time.Now()
	tag, err := repository.db.Exec(context, query,
		comment.ID, comment.Body, comment.IsEdited, comment.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "Comment")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) DeleteComment(context context.Context, id string) error {
	tag, err := repository.db.Exec(context, `DELETE FROM core.task_comment WHERE id = $1`, id)
	if err != nil {
		return dberr.Wrap(err, "Comment")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// # Time Entries

func (repository *PostgresRepository) AddTimeEntry(context context.Context, entry *TimeEntry) error {
	const query = `
		INSERT INTO core.time_entry (id, taskid, userid, hours, entrydate, note, createdat)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	entry.CreatedAt = time.Now()

	if _, err := repository.db.Exec(context, query,
		entry.ID, entry.TaskID, entry.UserID, entry.Hours, entry.EntryDate, entry.Note, entry.CreatedAt,
	); err != nil {
		return dberr.Wrap(err, "Time entry")
	}
	return nil
}

func (repository *PostgresRepository) ListTimeEntries(context context.Context, taskID string) ([]*TimeEntry, error) {
	const query = `
		SELECT id, taskid, userid, hours, entrydate, note, createdat
		FROM core.time_entry
		WHERE taskid = $1
		ORDER BY entrydate DESC, createdat DESC`

	rows, err := repository.db.Query(context, query, taskID)
	if err != nil {
		return nil, dberr.Wrap(err, "Time entries")
	}
	defer rows.Close()

	entries := make([]*TimeEntry, 0)
	for rows.Next() {
		entry := &TimeEntry{}
		if err := rows.Scan(
			&entry.ID, &entry.TaskID, &entry.UserID, &entry.Hours,
			&entry.EntryDate, &entry.Note, &entry.CreatedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "Time entry")
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// # Tag Assignment

// AttachTag links a tag to a task, verifying both belong to the same team.
func (repository *PostgresRepository) AttachTag(context context.Context, taskID, tagID string) error {
	const query = `
		INSERT INTO core.task_tag (taskid, tagid)
		SELECT t.id, g.id
		FROM core.task t
		JOIN core.project p ON p.id = t.projectid
		JOIN core.tag g ON g.teamid = p.teamid
		WHERE t.id = $1 AND g.id = $2`

	tag, err := repository.db.Exec(context, query, taskID, tagID)
	if err != nil {
		return dberr.Wrap(err, "Tag assignment")
	}
	if tag.RowsAffected() == 0 {
		// Either the tag doesn't exist or it belongs to another team.
		return fmt.Errorf("task_repo_attach_tag: %w", dberr.ErrNotFound)
	}
	return nil
}

func (repository *PostgresRepository) DetachTag(context context.Context, taskID, tagID string) error {
	tag, err := repository.db.Exec(context,
		`DELETE FROM core.task_tag WHERE taskid = $1 AND tagid = $2`, taskID, tagID)
	if err != nil {
		return dberr.Wrap(err, "Tag assignment")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) ListTags(context context.Context, taskID string) ([]TagRef, error) {
	const query = `
		SELECT g.id, g.name, g.color
		FROM core.tag g
		JOIN core.task_tag tt ON tt.tagid = g.id
		WHERE tt.taskid = $1
		ORDER BY g.name ASC`

	rows, err := repository.db.Query(context, query, taskID)
	if err != nil {
		return nil, dberr.Wrap(err, "Tags")
	}
	defer rows.Close()

	tags := make([]TagRef, 0)
	for rows.Next() {
		ref := TagRef{}
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.Color); err != nil {
			return nil, dberr.Wrap(err, "Tag")
		}
		tags = append(tags, ref)
	}

	return tags, rows.Err()
}
