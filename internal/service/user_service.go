package service

import (
	"context"
	"strings"

	"pulse/internal/models"
	"pulse/internal/repository"
)

// UserService provides profile and discovery business logic.
type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

// UpdateProfileInput carries the optional fields of a profile update.
// Pointer fields distinguish "not sent" from "clear this field".
type UpdateProfileInput struct {
	UserID         uint
	FullName       *string `json:"full_name"`
	Bio            *string `json:"bio"`
	ProfilePicture *string `json:"profile_picture"`
	CoverPhoto     *string `json:"cover_photo"`
	Location       *string `json:"location"`
	Website        *string `json:"website"`
	PrivateAccount *bool   `json:"private_account"`
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository, followRepo repository.FollowRepository) *UserService {
	return &UserService{userRepo: userRepo, followRepo: followRepo}
}

// GetProfile returns the user's public profile. When currentUserID is
// non-zero the IsFollowing flag reflects the viewer's relation to them.
func (s *UserService) GetProfile(ctx context.Context, username string, currentUserID uint) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if currentUserID != 0 && currentUserID != user.ID {
		following, err := s.followRepo.IsFollowing(ctx, currentUserID, user.ID)
		if err != nil {
			return nil, err
		}
		user.IsFollowing = following
	}
	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	const maxBioLen = 500
	const maxFullNameLen = 100

	updates := make(map[string]interface{})
	if in.FullName != nil {
		if len(*in.FullName) > maxFullNameLen {
			return nil, models.NewValidationError("Full name too long (max 100 characters)")
		}
		updates["full_name"] = *in.FullName
	}
	if in.Bio != nil {
		if len(*in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		updates["bio"] = *in.Bio
	}
	if in.ProfilePicture != nil {
		updates["profile_picture"] = *in.ProfilePicture
	}
	if in.CoverPhoto != nil {
		updates["cover_photo"] = *in.CoverPhoto
	}
	if in.Location != nil {
		updates["location"] = *in.Location
	}
	if in.Website != nil {
		updates["website"] = *in.Website
	}
	if in.PrivateAccount != nil {
		updates["private_account"] = *in.PrivateAccount
	}
	if len(updates) == 0 {
		return s.userRepo.GetByID(ctx, in.UserID)
	}
	return s.userRepo.UpdateProfile(ctx, in.UserID, updates)
}

// SearchUsers matches usernames and full names, most-followed first.
func (s *UserService) SearchUsers(ctx context.Context, query string, limit, offset int) ([]*models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	return s.userRepo.Search(ctx, query, limit, offset)
}
