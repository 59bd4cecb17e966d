// Package storage реализует хранилище Padayon на PostgreSQL: учётные записи,
// публикации Freedom Wall и сообщения сообщества. Коллекции разделены по
// app id. Порядок выдачи не гарантируется, сортировка выполняется на
// стороне подписчика.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Eka2r/Padayon/internal/models"
)

var (
	// ErrNotFound возвращается, когда запись не найдена.
	ErrNotFound = errors.New("record not found")
	// ErrEmailTaken возвращается при повторной регистрации email.
	ErrEmailTaken = errors.New("email already registered")
)

// Storage инкапсулирует соединение с PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New открывает соединение через драйвер pgx и проверяет его.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{DB: db}, nil
}

// Ping проверяет доступность базы.
func (s *Storage) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// Close закрывает пул соединений.
func (s *Storage) Close() error {
	return s.DB.Close()
}

// ===== USER METHODS =====

// RegisterUser сохраняет пользователя и возвращает его с uid и created_at.
func (s *Storage) RegisterUser(ctx context.Context, email, passwordHash string) (*models.User, error) {
	const op = "storage.RegisterUser"

	query := `INSERT INTO users (email, password_hash)
			  VALUES ($1, $2)
			  RETURNING uid, created_at`
	u := &models.User{Email: email, PasswordHash: passwordHash}
	err := s.DB.QueryRowContext(ctx, query, email, passwordHash).Scan(&u.UUID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"

	query := `SELECT uid, email, password_hash, created_at
			  FROM users
			  WHERE email = $1`
	return s.scanUser(ctx, op, query, email)
}

// GetUser возвращает пользователя по uid.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"

	query := `SELECT uid, email, password_hash, created_at
			  FROM users
			  WHERE uid = $1`
	return s.scanUser(ctx, op, query, userUID)
}

func (s *Storage) scanUser(ctx context.Context, op, query string, arg any) (*models.User, error) {
	u := &models.User{}
	err := s.DB.QueryRowContext(ctx, query, arg).Scan(&u.UUID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// ===== POST METHODS =====

// CreatePost вставляет публикацию. id, created_at и reaction_count назначает база.
func (s *Storage) CreatePost(ctx context.Context, p models.NewPost) (*models.Post, error) {
	const op = "storage.CreatePost"

	query := `INSERT INTO posts (app_id, content, author_id, author_name, is_anonymous)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id, reaction_count, created_at`
	post := &models.Post{
		Content:     p.Content,
		AuthorID:    p.AuthorID,
		AuthorName:  p.AuthorName,
		IsAnonymous: p.IsAnonymous,
	}
	err := s.DB.QueryRowContext(ctx, query,
		p.AppID, p.Content, p.AuthorID, p.AuthorName, p.IsAnonymous,
	).Scan(&post.ID, &post.ReactionCount, &post.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return post, nil
}

// GetPost возвращает публикацию по id.
func (s *Storage) GetPost(ctx context.Context, appID, id string) (*models.Post, error) {
	const op = "storage.GetPost"

	query := `SELECT id, content, author_id, author_name, is_anonymous, reaction_count, created_at
			  FROM posts
			  WHERE app_id = $1 AND id = $2`
	var p models.Post
	err := s.DB.QueryRowContext(ctx, query, appID, id).Scan(
		&p.ID, &p.Content, &p.AuthorID, &p.AuthorName, &p.IsAnonymous, &p.ReactionCount, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

// ListPosts возвращает всю коллекцию публикаций без сортировки и лимитов.
func (s *Storage) ListPosts(ctx context.Context, appID string) ([]models.Post, error) {
	const op = "storage.ListPosts"

	query := `SELECT id, content, author_id, author_name, is_anonymous, reaction_count, created_at
			  FROM posts
			  WHERE app_id = $1`
	rows, err := s.DB.QueryContext(ctx, query, appID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.Post, 0)
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.Content, &p.AuthorID, &p.AuthorName,
			&p.IsAnonymous, &p.ReactionCount, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// SetReactionCount записывает счётчик, вычисленный клиентом, и возвращает
// сохранённое значение. Это read-modify-write без блокировок: параллельные
// записи теряют инкременты, но счётчик никогда не уменьшается.
func (s *Storage) SetReactionCount(ctx context.Context, appID, id string, count int) (int, error) {
	const op = "storage.SetReactionCount"

	query := `UPDATE posts SET reaction_count = GREATEST(reaction_count, $1)
			  WHERE app_id = $2 AND id = $3
			  RETURNING reaction_count`
	var stored int
	err := s.DB.QueryRowContext(ctx, query, count, appID, id).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return stored, nil
}

// IncrementReactionCount атомарно увеличивает счётчик и возвращает новое значение.
func (s *Storage) IncrementReactionCount(ctx context.Context, appID, id string) (int, error) {
	const op = "storage.IncrementReactionCount"

	query := `UPDATE posts SET reaction_count = reaction_count + 1
			  WHERE app_id = $1 AND id = $2
			  RETURNING reaction_count`
	var count int
	err := s.DB.QueryRowContext(ctx, query, appID, id).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// DeletePost удаляет публикацию автора authorID. Чужая или отсутствующая
// публикация даёт ErrNotFound.
func (s *Storage) DeletePost(ctx context.Context, appID, id, authorID string) error {
	const op = "storage.DeletePost"

	query := `DELETE FROM posts WHERE app_id = $1 AND id = $2 AND author_id = $3`
	res, err := s.DB.ExecContext(ctx, query, appID, id, authorID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return expectAffected(op, res)
}

// ===== MESSAGE METHODS =====

// CreateMessage вставляет сообщение сообщества.
func (s *Storage) CreateMessage(ctx context.Context, m models.NewMessage) (*models.Message, error) {
	const op = "storage.CreateMessage"

	query := `INSERT INTO messages (app_id, content, author_id, author_name)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id, created_at`
	msg := &models.Message{
		Content:    m.Content,
		AuthorID:   m.AuthorID,
		AuthorName: m.AuthorName,
	}
	err := s.DB.QueryRowContext(ctx, query, m.AppID, m.Content, m.AuthorID, m.AuthorName).
		Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return msg, nil
}

// ListMessages возвращает всю коллекцию сообщений без сортировки и лимитов.
func (s *Storage) ListMessages(ctx context.Context, appID string) ([]models.Message, error) {
	const op = "storage.ListMessages"

	query := `SELECT id, content, author_id, author_name, created_at
			  FROM messages
			  WHERE app_id = $1`
	rows, err := s.DB.QueryContext(ctx, query, appID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.Message, 0)
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.Content, &m.AuthorID, &m.AuthorName, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func expectAffected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
