package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/will-hwang/ml-commons/backend/qa"
)

type ConversationStore struct {
	db *DB
}

var _ qa.Memory = (*ConversationStore)(nil)

func NewConversationStore(db *DB) *ConversationStore {
	return &ConversationStore{db: db}
}

func (s *ConversationStore) CreateConversation(ctx context.Context, name string) (*qa.Conversation, error) {
	c := &qa.Conversation{
		ID:         uuid.NewString(),
		Name:       name,
		CreateTime: s.db.now().UTC(),
	}

	_, err := s.db.sql.ExecContext(ctx,
		`INSERT INTO conversations (id, name, create_time) VALUES (?, ?, ?)`,
		c.ID, c.Name, toMillis(c.CreateTime),
	)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return c, nil
}

func (s *ConversationStore) AppendInteraction(ctx context.Context, interaction qa.Interaction) (*qa.Interaction, error) {
	if interaction.ID == "" {
		interaction.ID = uuid.NewString()
	}
	if interaction.CreateTime.IsZero() {
		interaction.CreateTime = s.db.now().UTC()
	}

	tx, err := s.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin append interaction: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(i.seq), 0) + 1
		   FROM conversations c
		   LEFT JOIN interactions i ON i.conversation_id = c.id
		  WHERE c.id = ?
		  GROUP BY c.id`,
		interaction.ConversationID,
	).Scan(&seq)
	if err != nil {
		if isNoRows(err) {
			return nil, qa.ErrConversationNotFound
		}
		return nil, fmt.Errorf("append interaction: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO interactions (id, conversation_id, seq, input, response, create_time) VALUES (?, ?, ?, ?, ?, ?)`,
		interaction.ID,
		interaction.ConversationID,
		seq,
		interaction.Input,
		interaction.Response,
		toMillis(interaction.CreateTime),
	)
	if err != nil {
		return nil, fmt.Errorf("append interaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit interaction: %w", err)
	}
	return &interaction, nil
}

func (s *ConversationStore) Interactions(ctx context.Context, conversationID string, limit int) ([]qa.Interaction, error) {
	var exists int
	if err := s.db.sql.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM conversations WHERE id = ?`, conversationID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	if exists == 0 {
		return nil, qa.ErrConversationNotFound
	}
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT id, conversation_id, input, response, create_time FROM (
		    SELECT id, conversation_id, input, response, create_time, seq
		      FROM interactions
		     WHERE conversation_id = ?
		     ORDER BY seq DESC
		     LIMIT ?
		 ) ORDER BY seq ASC`,
		conversationID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	defer rows.Close()

	var interactions []qa.Interaction
	for rows.Next() {
		var (
			i          qa.Interaction
			createTime int64
		)
		if err := rows.Scan(&i.ID, &i.ConversationID, &i.Input, &i.Response, &createTime); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		i.CreateTime = fromMillis(createTime)
		interactions = append(interactions, i)
	}
	return interactions, rows.Err()
}
