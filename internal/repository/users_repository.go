package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	errorvalues "github.com/limbo/fittrack/internal/error_values"
	"github.com/limbo/fittrack/pkg/entity"
)

const userColumns = `id, email, COALESCE(password_hash, ''), display_name, phone, weight_kg, height_cm, avatar_uri, created_at, updated_at`

type UsersRepository struct {
	conn PgConnection
}

func NewUsersRepoWithConn(conn PgConnection) *UsersRepository {
	return &UsersRepository{
		conn: conn,
	}
}

func (ur *UsersRepository) Create(ctx context.Context, user *entity.User) (uuid.UUID, error) {
	if user == nil {
		return uuid.Nil, errors.New("user is nil")
	}
	var id uuid.UUID
	row := ur.conn.QueryRow(ctx, `INSERT INTO users (email, password_hash, display_name) VALUES ($1, NULLIF($2, ''), $3) RETURNING id;`,
		user.Email,
		user.PasswordHash,
		user.DisplayName,
	)
	if err := row.Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return uuid.Nil, errorvalues.ErrEmailInUse
		}
		return uuid.Nil, errors.New("creating user db error: " + err.Error())
	}
	return id, nil
}

func (ur *UsersRepository) CreateWithIdentity(ctx context.Context, user *entity.User, identity entity.Identity) (id uuid.UUID, err error) {
	if user == nil {
		return uuid.Nil, errors.New("user is nil")
	}
	tx, err := ur.conn.Begin(ctx)
	if err != nil {
		return uuid.Nil, errors.New("beginning transaction error: " + err.Error())
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()
	row := tx.QueryRow(ctx, `INSERT INTO users (email, password_hash, display_name) VALUES ($1, NULLIF($2, ''), $3) RETURNING id;`,
		user.Email,
		user.PasswordHash,
		user.DisplayName,
	)
	if err = row.Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return uuid.Nil, errorvalues.ErrEmailInUse
		}
		return uuid.Nil, errors.New("creating user db error: " + err.Error())
	}
	_, err = tx.Exec(ctx, `INSERT INTO user_identities (provider, subject, user_id) VALUES ($1, $2, $3);`,
		identity.Provider, identity.Subject, id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return uuid.Nil, errorvalues.ErrIdentityLinked
		}
		return uuid.Nil, errors.New("linking identity db error: " + err.Error())
	}
	if err = tx.Commit(ctx); err != nil {
		return uuid.Nil, errors.New("committing user creation error: " + err.Error())
	}
	return id, nil
}

func (ur *UsersRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := ur.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1;`, email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrUnknownUser
		}
		return nil, errors.New("searching user by email error: " + err.Error())
	}
	return user, nil
}

func (ur *UsersRepository) FindByID(ctx context.Context, uid uuid.UUID) (*entity.User, error) {
	row := ur.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1;`, uid)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrUnknownUser
		}
		return nil, errors.New("searching user by id error: " + err.Error())
	}
	return user, nil
}

func (ur *UsersRepository) FindByIdentity(ctx context.Context, provider, subject string) (*entity.User, error) {
	row := ur.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = (SELECT user_id FROM user_identities WHERE provider = $1 AND subject = $2);`,
		provider, subject,
	)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrUnknownUser
		}
		return nil, errors.New("searching user by identity error: " + err.Error())
	}
	return user, nil
}

func (ur *UsersRepository) LinkIdentity(ctx context.Context, identity entity.Identity) error {
	_, err := ur.conn.Exec(ctx, `INSERT INTO user_identities (provider, subject, user_id) VALUES ($1, $2, $3);`,
		identity.Provider, identity.Subject, identity.UserID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			// Unique violation
			case "23505":
				return errorvalues.ErrIdentityLinked
			// FK violation
			case "23503":
				return errorvalues.ErrUnknownUser
			}
		}
		return errors.New("linking identity db error: " + err.Error())
	}
	return nil
}

func (ur *UsersRepository) UpdateProfile(ctx context.Context, user *entity.User) error {
	ct, err := ur.conn.Exec(ctx, `UPDATE users SET display_name = $1, phone = $2, weight_kg = $3, height_cm = $4, avatar_uri = $5, updated_at = NOW() WHERE id = $6;`,
		user.DisplayName,
		user.Phone,
		user.WeightKg,
		user.HeightCm,
		user.AvatarURI,
		user.ID,
	)
	if err != nil {
		return errors.New("updating profile error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrUnknownUser
	}
	return nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var user entity.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.DisplayName,
		&user.Phone,
		&user.WeightKg,
		&user.HeightCm,
		&user.AvatarURI,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
