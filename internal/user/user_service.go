package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"gochat/internal/common"
	"gochat/internal/dbmongo"
	"gochat/internal/logger"
	"gochat/internal/metrics"
)

type RegisterInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type UserService interface {
	RegisterUser(ctx context.Context, in RegisterInput) (*dbmongo.User, string, error)
	LoginUser(ctx context.Context, username, password string) (*dbmongo.User, string, error)
	GetUser(ctx context.Context, userID string) (*dbmongo.User, error)
	ListFriends(ctx context.Context, userID string) ([]*dbmongo.User, error)
	ListNonFriends(ctx context.Context, userID string) ([]*dbmongo.User, error)
	GetProfile(ctx context.Context, userID string) (*ProfileDetails, error)
	UpdateProfile(ctx context.Context, in ProfileUpdate) (*ProfileDetails, error)
	UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

type userService struct {
	userRepo UserRepository
	tokens   *common.TokenManager
}

func NewUserService(userRepo UserRepository, tokens *common.TokenManager) UserService {
	return &userService{userRepo: userRepo, tokens: tokens}
}

func (s *userService) RegisterUser(ctx context.Context, in RegisterInput) (*dbmongo.User, string, error) {
	if err := common.ValidateUsername(in.Username); err != nil {
		return nil, "", err
	}
	if err := common.ValidateEmail(in.Email); err != nil {
		return nil, "", err
	}
	if err := common.ValidatePassword(in.Password); err != nil {
		return nil, "", err
	}

	hashed, err := common.HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}

	user := &dbmongo.User{
		ID:           dbmongo.NewID(),
		Username:     in.Username,
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hashed,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		FriendIDs:    []string{},
		CreatedAt:    time.Now().UTC(),
	}

	// the unique username index decides races between concurrent registrations
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, common.ErrDuplicateKey) {
			return nil, "", common.ConflictError("Username already exists")
		}
		return nil, "", err
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, "", err
	}

	metrics.UsersRegistered.Inc()
	logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, token, nil
}

func (s *userService) LoginUser(ctx context.Context, username, password string) (*dbmongo.User, string, error) {
	if username == "" || password == "" {
		return nil, "", common.ValidationError("Username and password required")
	}

	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrRecordNotFound) {
			return nil, "", common.ValidationError("Invalid username or password")
		}
		return nil, "", err
	}

	if err := common.CheckPassword(password, user.PasswordHash); err != nil {
		return nil, "", common.ValidationError("Invalid username or password")
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *userService) GetUser(ctx context.Context, userID string) (*dbmongo.User, error) {
	if userID == "" {
		return nil, common.ValidationError("userId is required")
	}
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrRecordNotFound) {
			return nil, common.NotFoundError("User not found")
		}
		return nil, err
	}
	return user, nil
}

// ListFriends resolves the user's friend-id set into user records.
func (s *userService) ListFriends(ctx context.Context, userID string) ([]*dbmongo.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.userRepo.GetUsersByIDs(ctx, user.FriendIDs)
}

// ListNonFriends returns every other user that is not yet a friend.
func (s *userService) ListNonFriends(ctx context.Context, userID string) ([]*dbmongo.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	all, err := s.userRepo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*dbmongo.User, 0, len(all))
	for _, u := range all {
		if u.ID == user.ID || common.ContainsID(user.FriendIDs, u.ID) {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*ProfileDetails, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	details := ToProfileDetails(user)
	return &details, nil
}

// UpdateProfile applies the non-nil fields of in. Group messages keep the
// username their sender had when they were sent.
func (s *userService) UpdateProfile(ctx context.Context, in ProfileUpdate) (*ProfileDetails, error) {
	user, err := s.GetUser(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Username != nil && *in.Username != user.Username {
		if err := common.ValidateUsername(*in.Username); err != nil {
			return nil, err
		}
		if err := s.ensureUnclaimed(user.ID, "Username already taken", func() (*dbmongo.User, error) {
			return s.userRepo.GetUserByUsername(ctx, *in.Username)
		}); err != nil {
			return nil, err
		}
		user.Username = *in.Username
	}

	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email != user.Email {
			if err := common.ValidateEmail(email); err != nil {
				return nil, err
			}
			if err := s.ensureUnclaimed(user.ID, "Email already taken", func() (*dbmongo.User, error) {
				return s.userRepo.GetUserByEmail(ctx, email)
			}); err != nil {
				return nil, err
			}
			user.Email = email
		}
	}

	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}

	// a concurrent rename can still claim the username first; the index decides
	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		switch {
		case errors.Is(err, common.ErrDuplicateKey):
			return nil, common.ConflictError("Username already taken")
		case errors.Is(err, common.ErrRecordNotFound):
			return nil, common.NotFoundError("User not found")
		}
		return nil, err
	}

	logger.Info("profile updated", "user_id", user.ID, "username", user.Username)
	details := ToProfileDetails(user)
	return &details, nil
}

func (s *userService) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if userID == "" || currentPassword == "" || newPassword == "" {
		return common.ValidationError("Missing required fields")
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := common.CheckPassword(currentPassword, user.PasswordHash); err != nil {
		return common.ValidationError("Current password is incorrect")
	}
	if err := common.ValidatePassword(newPassword); err != nil {
		return err
	}

	hashed, err := common.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePasswordHash(ctx, user.ID, hashed); err != nil {
		if errors.Is(err, common.ErrRecordNotFound) {
			return common.NotFoundError("User not found")
		}
		return err
	}

	logger.Info("password updated", "user_id", user.ID)
	return nil
}

// ensureUnclaimed fails with a ConflictError when lookup finds a user other
// than userID.
func (s *userService) ensureUnclaimed(userID, msg string, lookup func() (*dbmongo.User, error)) error {
	other, err := lookup()
	switch {
	case errors.Is(err, common.ErrRecordNotFound):
		return nil
	case err != nil:
		return err
	case other.ID != userID:
		return common.ConflictError(msg)
	}
	return nil
}
