package services

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/models"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/storage"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/validate"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileService struct {
	db       *gorm.DB
	uploader storage.Uploader
}

func NewProfileService(db *gorm.DB, uploader storage.Uploader) *ProfileService {
	return &ProfileService{db: db, uploader: uploader}
}

func (s *ProfileService) Get(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *ProfileService) Update(userID uuid.UUID, req *dto.UpdateProfileRequest) (*models.User, error) {
	user, err := s.Get(userID)
	if err != nil {
		return nil, err
	}

	errs := validate.Errors{}
	if req.FullName != nil {
		validate.Required(errs, "full_name", *req.FullName)
		validate.MaxLen(errs, "full_name", *req.FullName, 255)
		user.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		validate.MaxLen(errs, "phone", *req.Phone, 50)
		user.Phone = strings.TrimSpace(*req.Phone)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if err := s.db.Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (s *ProfileService) UploadAvatar(ctx context.Context, userID uuid.UUID, fh *multipart.FileHeader) (string, error) {
	user, err := s.Get(userID)
	if err != nil {
		return "", err
	}
	url, err := storage.ReplaceImage(ctx, s.uploader, fh, "avatars", userID, user.AvatarURL)
	if err != nil {
		return "", err
	}
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).Update("avatar_url", url).Error; err != nil {
		return "", err
	}
	return url, nil
}
