package repository

import (
	"context"
	"time"

	"scheme-saathi/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ChatRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewChatRepository(db *pgxpool.Pool, logger *zap.Logger) *ChatRepository {
	return &ChatRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ChatRepository) Create(ctx context.Context, chat *models.Chat) error {
	query := squirrel.Insert("chats").
		Columns("id", "user_id", "title", "created_at", "updated_at").
		Values(chat.ID, chat.UserID, chat.Title, chat.CreatedAt, chat.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *ChatRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Chat, error) {
	query := squirrel.Select("id", "user_id", "title", "created_at", "updated_at").
		From("chats").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var chat models.Chat
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&chat.ID, &chat.UserID, &chat.Title, &chat.CreatedAt, &chat.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *ChatRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Chat, error) {
	query := squirrel.Select("id", "user_id", "title", "created_at", "updated_at").
		From("chats").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("updated_at DESC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []*models.Chat
	for rows.Next() {
		var chat models.Chat
		if err := rows.Scan(&chat.ID, &chat.UserID, &chat.Title, &chat.CreatedAt, &chat.UpdatedAt); err != nil {
			return nil, err
		}
		chats = append(chats, &chat)
	}
	return chats, rows.Err()
}

// AppendMessage stores one turn and bumps the chat's updated_at.
func (r *ChatRepository) AppendMessage(ctx context.Context, msg *models.ChatMessage) error {
	query := squirrel.Insert("chat_messages").
		Columns("id", "chat_id", "role", "content", "created_at").
		Values(msg.ID, msg.ChatID, msg.Role, msg.Content, msg.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return err
	}

	touch := squirrel.Update("chats").
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": msg.ChatID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err = touch.ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *ChatRepository) ListMessages(ctx context.Context, chatID uuid.UUID) ([]*models.ChatMessage, error) {
	query := squirrel.Select("id", "chat_id", "role", "content", "created_at").
		From("chat_messages").
		Where(squirrel.Eq{"chat_id": chatID}).
		OrderBy("created_at ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*models.ChatMessage
	for rows.Next() {
		var msg models.ChatMessage
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, &msg)
	}
	return messages, rows.Err()
}
