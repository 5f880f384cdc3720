package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"clinic-booking/internal/converter"
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository"
	"clinic-booking/pkg/jwt"
	"clinic-booking/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SessionStore tracks issued token ids so they can be revoked
type SessionStore interface {
	SavePair(ctx context.Context, userID uuid.UUID, accessID string, accessTTL time.Duration, refreshID string, refreshTTL time.Duration) error
	RevokeRefreshToken(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error)
	RevokePair(ctx context.Context, userID uuid.UUID, accessID, refreshID string) error
	RevokeAll(ctx context.Context, userID uuid.UUID) error
}

type CredentialUsecase interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Authenticate(ctx context.Context, email, password string) (*dto.AuthResult, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, userID uuid.UUID, accessTokenID, refreshToken string) error
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, req *dto.ChangePasswordRequest) error
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	SecurityQuestions(ctx context.Context, req *dto.RecoveryQuestionsRequest) (*dto.SecurityQuestionsResponse, error)
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
}

type credentialUsecase struct {
	db            *gorm.DB
	log           *logrus.Logger
	validate      *validator.CustomValidator
	userRepo      repository.UserRepository
	specialtyRepo repository.SpecialtyRepository
	physicianRepo repository.PhysicianRepository
	jwtService    *jwt.JWTService
	sessions      SessionStore
	bcryptCost    int
}

func NewCredentialUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	validate *validator.CustomValidator,
	userRepo repository.UserRepository,
	specialtyRepo repository.SpecialtyRepository,
	physicianRepo repository.PhysicianRepository,
	jwtService *jwt.JWTService,
	sessions SessionStore,
	bcryptCost int,
) CredentialUsecase {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &credentialUsecase{
		db:            db,
		log:           log,
		validate:      validate,
		userRepo:      userRepo,
		specialtyRepo: specialtyRepo,
		physicianRepo: physicianRepo,
		jwtService:    jwtService,
		sessions:      sessions,
		bcryptCost:    bcryptCost,
	}
}

// normalizeAnswer makes security answers case and whitespace insensitive
func normalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *credentialUsecase) hash(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), u.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (u *credentialUsecase) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	if err := u.validate.Validate(req); err != nil {
		return nil, ErrValidation.Wrap(err)
	}

	role := entity.UserRole(req.Role)
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}

	var questions, answerHashes [entity.SecurityQuestionCount]string
	seen := make(map[string]struct{}, entity.SecurityQuestionCount)
	for i, qa := range req.SecurityQuestions {
		key := normalizeAnswer(qa.Question)
		if _, dup := seen[key]; dup {
			return nil, ErrDuplicateQuestions
		}
		seen[key] = struct{}{}

		hashed, err := u.hash(normalizeAnswer(qa.Answer))
		if err != nil {
			u.log.Warnf("Failed to hash security answer: %+v", err)
			return nil, storageError(err)
		}
		questions[i] = strings.TrimSpace(qa.Question)
		answerHashes[i] = hashed
	}

	hashedPassword, err := u.hash(req.Password)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, storageError(err)
	}

	user := &entity.User{
		ID:           uuid.New(),
		Role:         role,
		GivenNames:   strings.TrimSpace(req.GivenNames),
		FamilyNames:  strings.TrimSpace(req.FamilyNames),
		Email:        normalizeEmail(req.Email),
		Phone:        req.Phone,
		NationalID:   req.NationalID,
		PasswordHash: hashedPassword,
		Photo:        req.Photo,
	}
	user.SetSecurityPairs(questions, answerHashes)

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	var specialty *entity.Specialty
	if role == entity.RoleAdministrator && req.SpecialtyID != nil {
		specialty, err = u.specialtyRepo.FindByID(ctx, tx, *req.SpecialtyID)
		if err != nil {
			u.log.Warnf("Failed to find specialty: %+v", err)
			return nil, storageError(err)
		}
		if specialty == nil {
			return nil, ErrSpecialtyNotFound
		}
	}

	if err := u.userRepo.Create(ctx, tx, user); err != nil {
		if isDuplicateKeyError(err, "uq_users_email") {
			return nil, ErrDuplicateEmail
		}
		if isDuplicateKeyError(err, "uq_users_national_id") {
			return nil, ErrDuplicateNationalID
		}
		u.log.Warnf("Failed to create user: %+v", err)
		return nil, storageError(err)
	}

	var physician *entity.Physician
	if specialty != nil {
		physician = &entity.Physician{
			GivenNames:   user.GivenNames,
			FamilyNames:  user.FamilyNames,
			SpecialtyID:  specialty.ID,
			Phone:        user.Phone,
			Email:        user.Email,
			LinkedUserID: &user.ID,
		}
		if err := u.physicianRepo.Create(ctx, tx, physician); err != nil {
			if isDuplicateKeyError(err, "uq_physicians_email") {
				return nil, ErrDuplicatePhysicianEmail
			}
			u.log.Warnf("Failed to create physician: %+v", err)
			return nil, storageError(err)
		}
		physician.Specialty = *specialty
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, storageError(err)
	}

	u.log.Infof("Registered %s %s", user.Role, user.ID)
	return converter.UserToResponse(user, physician), nil
}

func (u *credentialUsecase) Authenticate(ctx context.Context, email, password string) (*dto.AuthResult, error) {
	user, err := u.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResult{UserID: user.ID, Role: string(user.Role)}, nil
}

func (u *credentialUsecase) authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := u.userRepo.FindByEmail(ctx, u.db, normalizeEmail(email))
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, storageError(err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrBadPassword
	}
	return user, nil
}

func (u *credentialUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	if err := u.validate.Validate(req); err != nil {
		return nil, ErrValidation.Wrap(err)
	}

	user, err := u.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return u.issueTokens(ctx, user)
}

func (u *credentialUsecase) issueTokens(ctx context.Context, user *entity.User) (*dto.TokenResponse, error) {
	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, storageError(err)
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, storageError(err)
	}

	if err := u.sessions.SavePair(ctx, user.ID,
		accessTokenID, u.jwtService.GetAccessExpiry(),
		refreshTokenID, u.jwtService.GetRefreshExpiry()); err != nil {
		u.log.Warnf("Failed to store tokens: %+v", err)
		return nil, storageError(err)
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
		UserID:       user.ID,
		Role:         string(user.Role),
	}, nil
}

func (u *credentialUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	if err := u.validate.Validate(req); err != nil {
		return nil, ErrValidation.Wrap(err)
	}

	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil || claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	// Refresh tokens are single use
	removed, err := u.sessions.RevokeRefreshToken(ctx, claims.UserID, claims.TokenID)
	if err != nil {
		u.log.Warnf("Failed to revoke refresh token: %+v", err)
		return nil, storageError(err)
	}
	if !removed {
		return nil, ErrTokenRevoked
	}

	user, err := u.userRepo.FindByID(ctx, u.db, claims.UserID)
	if err != nil {
		u.log.Warnf("Failed to find user: %+v", err)
		return nil, storageError(err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return u.issueTokens(ctx, user)
}

// Logout revokes the current access token and, when supplied, its refresh token
func (u *credentialUsecase) Logout(ctx context.Context, userID uuid.UUID, accessTokenID, refreshToken string) error {
	var refreshTokenID string
	if refreshToken != "" {
		claims, err := u.jwtService.ValidateToken(refreshToken)
		if err == nil && claims.TokenType == jwt.RefreshToken && claims.UserID == userID {
			refreshTokenID = claims.TokenID
		}
	}

	if err := u.sessions.RevokePair(ctx, userID, accessTokenID, refreshTokenID); err != nil {
		u.log.Warnf("Failed to revoke tokens: %+v", err)
		return storageError(err)
	}
	return nil
}

func (u *credentialUsecase) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := u.userRepo.FindByID(ctx, u.db, userID)
	if err != nil {
		u.log.Warnf("Failed to find user: %+v", err)
		return nil, storageError(err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	var physician *entity.Physician
	if user.IsAdministrator() {
		physician, err = u.physicianRepo.FindByLinkedUserID(ctx, u.db, user.ID)
		if err != nil {
			u.log.Warnf("Failed to find linked physician: %+v", err)
			return nil, storageError(err)
		}
	}

	return converter.UserToResponse(user, physician), nil
}

func (u *credentialUsecase) ChangePassword(ctx context.Context, userID uuid.UUID, req *dto.ChangePasswordRequest) error {
	if err := u.validate.Validate(req); err != nil {
		return ErrValidation.Wrap(err)
	}

	user, err := u.userRepo.FindByID(ctx, u.db, userID)
	if err != nil {
		u.log.Warnf("Failed to find user: %+v", err)
		return storageError(err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrBadOldPassword
	}

	return u.setPassword(ctx, user.ID, req.NewPassword)
}

// setPassword stores a new hash and ends every session of the user
func (u *credentialUsecase) setPassword(ctx context.Context, userID uuid.UUID, password string) error {
	hashedPassword, err := u.hash(password)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return storageError(err)
	}

	rows, err := u.userRepo.UpdatePassword(ctx, u.db, userID, hashedPassword)
	if err != nil {
		u.log.Warnf("Failed to update password: %+v", err)
		return storageError(err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	if err := u.sessions.RevokeAll(ctx, userID); err != nil {
		u.log.Warnf("Failed to revoke sessions for user %s: %+v", userID, err)
		return storageError(err)
	}

	u.log.Infof("Password changed for user %s", userID)
	return nil
}

func (u *credentialUsecase) UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	if err := u.validate.Validate(req); err != nil {
		return nil, ErrValidation.Wrap(err)
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	user, err := u.userRepo.FindByID(ctx, tx, userID)
	if err != nil {
		u.log.Warnf("Failed to find user: %+v", err)
		return nil, storageError(err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	user.GivenNames = strings.TrimSpace(req.GivenNames)
	user.FamilyNames = strings.TrimSpace(req.FamilyNames)
	user.Email = normalizeEmail(req.Email)
	user.Phone = req.Phone

	if err := u.userRepo.UpdateProfile(ctx, tx, user); err != nil {
		if isDuplicateKeyError(err, "uq_users_email") {
			return nil, ErrDuplicateEmail
		}
		u.log.Warnf("Failed to update profile: %+v", err)
		return nil, storageError(err)
	}

	physician, err := u.physicianRepo.FindByLinkedUserID(ctx, tx, user.ID)
	if err != nil {
		u.log.Warnf("Failed to find linked physician: %+v", err)
		return nil, storageError(err)
	}
	if physician != nil {
		physician.GivenNames = user.GivenNames
		physician.FamilyNames = user.FamilyNames
		physician.Email = user.Email
		physician.Phone = user.Phone
		if err := u.physicianRepo.UpdateContact(ctx, tx, physician); err != nil {
			if isDuplicateKeyError(err, "uq_physicians_email") {
				return nil, ErrDuplicatePhysicianEmail
			}
			u.log.Warnf("Failed to update physician contact: %+v", err)
			return nil, storageError(err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, storageError(err)
	}

	return converter.UserToResponse(user, physician), nil
}

// findForRecovery returns the user only when email and national id belong to the same account
func (u *credentialUsecase) findForRecovery(ctx context.Context, email, nationalID string) (*entity.User, error) {
	user, err := u.userRepo.FindByEmail(ctx, u.db, normalizeEmail(email))
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, storageError(err)
	}
	if user == nil || user.NationalID != nationalID {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (u *credentialUsecase) SecurityQuestions(ctx context.Context, req *dto.RecoveryQuestionsRequest) (*dto.SecurityQuestionsResponse, error) {
	if err := u.validate.Validate(req); err != nil {
		return nil, ErrValidation.Wrap(err)
	}

	user, err := u.findForRecovery(ctx, req.Email, req.NationalID)
	if err != nil {
		return nil, err
	}
	return &dto.SecurityQuestionsResponse{Questions: user.SecurityQuestions()}, nil
}

func (u *credentialUsecase) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	if err := u.validate.Validate(req); err != nil {
		return ErrValidation.Wrap(err)
	}

	user, err := u.findForRecovery(ctx, req.Email, req.NationalID)
	if err != nil {
		return err
	}

	for i, hashed := range user.SecurityAnswerHashes() {
		err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(normalizeAnswer(req.Answers[i])))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrSecurityAnswersMismatch
		}
		if err != nil {
			u.log.Warnf("Stored security answer for user %s is unusable: %+v", user.ID, err)
			return ErrSecurityAnswersMismatch
		}
	}

	return u.setPassword(ctx, user.ID, req.NewPassword)
}
