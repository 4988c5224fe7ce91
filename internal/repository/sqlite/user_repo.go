package sqlite

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rafaeltorres/user-registry/internal/domain"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *userRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	err := r.db.WithContext(ctx).Order("created_at").Find(&users).Error
	return users, err
}

func (r *userRepository) SearchByName(ctx context.Context, name string) ([]*domain.User, error) {
	var users []*domain.User
	err := r.db.WithContext(ctx).
		Where("name LIKE ?", "%"+name+"%").
		Order("created_at").
		Find(&users).Error
	return users, err
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&domain.User{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepository) CPFExists(ctx context.Context, cpf string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("cpf = ?", cpf).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepository) SetRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"refresh_token":            token,
			"refresh_token_expires_at": expiresAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) RotateRefreshToken(ctx context.Context, userID uuid.UUID, oldToken, newToken string, expiresAt time.Time) error {
	// Compare-and-swap on the stored token value so two concurrent refresh
	// calls cannot both succeed against the same old token.
	res := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ? AND refresh_token = ?", userID, oldToken).
		Updates(map[string]interface{}{
			"refresh_token":            newToken,
			"refresh_token_expires_at": expiresAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrRefreshTokenMismatch
	}
	return nil
}
