package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/messagely/internal/apperror"
	"github.com/sakif/messagely/internal/model"
	"github.com/sakif/messagely/internal/repository"
)

// compile-time check that *MessageDB implements repository.MessageRepository
var _ repository.MessageRepository = (*MessageDB)(nil)

// Create inserts a new message row.
//
// ID GENERATION WITH xid:
// xid produces 20-char URL-safe IDs that sort by creation time, so message
// IDs roughly follow send order without a database sequence.
//
// The foreign keys on from_username/to_username are the participant check:
// if either user does not exist, SQLite rejects the insert and we translate
// that into a NotFound. No row is created on failure. We still name the
// missing participant in the error, which takes one extra lookup on the
// failure path only.
func (db *MessageDB) Create(ctx context.Context, msg *model.Message) error {
	msg.ID = xid.New().String()
	msg.SentAt = time.Now().UTC()
	msg.ReadAt = nil

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO messages (id, from_username, to_username, body, sent_at, read_at)
		 VALUES (?, ?, ?, ?, ?, NULL)`,
		msg.ID,
		msg.FromUsername,
		msg.ToUsername,
		msg.Body,
		msg.SentAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("user", db.missingParticipant(ctx, msg.FromUsername, msg.ToUsername))
		}
		return fmt.Errorf("sqlite: inserting message from %s to %s: %w", msg.FromUsername, msg.ToUsername, err)
	}

	return nil
}

// missingParticipant figures out which of the two usernames caused a foreign
// key failure, so the NotFound error can name it. Only called on the failure
// path. If both exist by the time we look (or the lookup itself fails), fall
// back to naming the recipient — the far more common mistake.
func (db *MessageDB) missingParticipant(ctx context.Context, from, to string) string {
	for _, username := range []string{from, to} {
		var one int
		err := db.conn.QueryRowContext(ctx,
			`SELECT 1 FROM users WHERE username = ?`, username,
		).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return username
		}
	}
	return to
}

// GetByID retrieves a bare message by ID.
// Returns apperror.ErrNotFound if no such message exists.
func (db *MessageDB) GetByID(ctx context.Context, id string) (*model.Message, error) {
	var (
		m      model.Message
		readAt sql.NullTime
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, from_username, to_username, body, sent_at, read_at
		 FROM messages WHERE id = ?`,
		id,
	).Scan(
		&m.ID,
		&m.FromUsername,
		&m.ToUsername,
		&m.Body,
		&m.SentAt,
		&readAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("message", id)
		}
		return nil, fmt.Errorf("sqlite: getting message %s: %w", id, err)
	}

	if readAt.Valid {
		t := readAt.Time
		m.ReadAt = &t
	}

	return &m, nil
}

// GetDetail retrieves a message joined with both participants' profiles.
// One query, two joins — the sender and recipient rows are aliased fu/tu.
func (db *MessageDB) GetDetail(ctx context.Context, id string) (*model.MessageDetail, error) {
	var (
		d      model.MessageDetail
		readAt sql.NullTime
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT m.id, m.body, m.sent_at, m.read_at,
		        fu.username, fu.first_name, fu.last_name, fu.phone,
		        tu.username, tu.first_name, tu.last_name, tu.phone
		 FROM messages m
		 JOIN users fu ON m.from_username = fu.username
		 JOIN users tu ON m.to_username = tu.username
		 WHERE m.id = ?`,
		id,
	).Scan(
		&d.ID,
		&d.Body,
		&d.SentAt,
		&readAt,
		&d.FromUser.Username,
		&d.FromUser.FirstName,
		&d.FromUser.LastName,
		&d.FromUser.Phone,
		&d.ToUser.Username,
		&d.ToUser.FirstName,
		&d.ToUser.LastName,
		&d.ToUser.Phone,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("message", id)
		}
		return nil, fmt.Errorf("sqlite: getting message detail %s: %w", id, err)
	}

	if readAt.Valid {
		t := readAt.Time
		d.ReadAt = &t
	}

	return &d, nil
}

// MarkRead transitions a message Unread → Read.
//
// THE UPDATE IS CONDITIONAL: `WHERE read_at IS NULL` means the timestamp is
// written at most once no matter how many callers race here. Re-marking an
// already-read message is a no-op that returns the original timestamp, so
// read_at never changes value once set.
//
// We don't inspect RowsAffected to distinguish "already read" from "marked
// just now" — both are success, and the follow-up SELECT returns the stored
// state either way. A zero-row update on a nonexistent ID is caught by that
// same SELECT returning no rows.
func (db *MessageDB) MarkRead(ctx context.Context, id string) (*model.Message, error) {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE messages SET read_at = ? WHERE id = ? AND read_at IS NULL`,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: marking message %s read: %w", id, err)
	}

	return db.GetByID(ctx, id)
}

// ListFrom returns all messages sent by the given user, each with the
// recipient's profile. Ordered by send time, oldest first.
func (db *MessageDB) ListFrom(ctx context.Context, username string) ([]model.MessageWithRecipient, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT m.id, m.body, m.sent_at, m.read_at,
		        u.username, u.first_name, u.last_name, u.phone
		 FROM messages m
		 JOIN users u ON m.to_username = u.username
		 WHERE m.from_username = ?
		 ORDER BY m.sent_at, m.id`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing messages from %s: %w", username, err)
	}
	defer rows.Close()

	msgs := []model.MessageWithRecipient{}
	for rows.Next() {
		var (
			m      model.MessageWithRecipient
			readAt sql.NullTime
		)
		if err := rows.Scan(
			&m.ID, &m.Body, &m.SentAt, &readAt,
			&m.ToUser.Username, &m.ToUser.FirstName, &m.ToUser.LastName, &m.ToUser.Phone,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning message row: %w", err)
		}
		if readAt.Valid {
			t := readAt.Time
			m.ReadAt = &t
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating message rows: %w", err)
	}

	return msgs, nil
}

// ListTo returns all messages sent to the given user, each with the sender's
// profile. Ordered by send time, oldest first.
func (db *MessageDB) ListTo(ctx context.Context, username string) ([]model.MessageWithSender, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT m.id, m.body, m.sent_at, m.read_at,
		        u.username, u.first_name, u.last_name, u.phone
		 FROM messages m
		 JOIN users u ON m.from_username = u.username
		 WHERE m.to_username = ?
		 ORDER BY m.sent_at, m.id`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing messages to %s: %w", username, err)
	}
	defer rows.Close()

	msgs := []model.MessageWithSender{}
	for rows.Next() {
		var (
			m      model.MessageWithSender
			readAt sql.NullTime
		)
		if err := rows.Scan(
			&m.ID, &m.Body, &m.SentAt, &readAt,
			&m.FromUser.Username, &m.FromUser.FirstName, &m.FromUser.LastName, &m.FromUser.Phone,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning message row: %w", err)
		}
		if readAt.Valid {
			t := readAt.Time
			m.ReadAt = &t
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating message rows: %w", err)
	}

	return msgs, nil
}
