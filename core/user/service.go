package user

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		QueryAllUsers(ctx context.Context) ([]User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		// UpdateUser only saves set fields.
		UpdateUser(ctx context.Context, usr User) (User, error)
		UpdateOrCreateUser(ctx context.Context, usr User) (User, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, conf: conf}
}

func (svc *Service) CheckEmailUniqueness(email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, exclUsers...); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Name:      nu.Name,
		Email:     nu.Email,
		Role:      nu.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}

	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "creating user")
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Welcome to " + svc.conf.AppName,
		TemplateName: "welcome",
		TemplateData: struct{ Name string }{usr.Name},
	})
	return usr, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

// RequestPasswordReset emails a password reset link to the owner of `email`.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return errors.Wrap(err, "finding user by email")
	}

	resetURL := svc.conf.FrontendBaseURL + "/password-reset/" + EncodeUID(usr) + "/" + MakeToken(usr)
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Password Reset",
		TemplateName: "password-reset",
		TemplateData: struct{ Name, ResetURL string }{usr.Name, resetURL},
	})
	return nil
}

func (svc *Service) ResetPassword(ctx context.Context, rp ResetUserPassword) error {
	fail := func(err error) error {
		return core.NewValidationError(err, core.FieldError{Field: "token", Error: err.Error()})
	}

	uid, err := decodeUID(rp.UID)
	if err != nil {
		return fail(errInvalidToken)
	}
	usr, err := svc.repo.GetUserByID(ctx, uid)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return fail(errInvalidToken)
		}
		return errors.Wrap(err, "finding user by ID")
	}
	if err = verifyToken(usr, rp.Token); err != nil {
		return fail(err)
	}

	if err = usr.SetPassword(rp.Password); err != nil {
		return errors.Wrap(err, "setting password")
	}
	usr.UpdatedAt = time.Now().UTC()
	if _, err = svc.repo.UpdateUser(ctx, usr); err != nil {
		return errors.Wrap(err, "updating user")
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Password Reset Successful",
		TemplateName: "password-reset-done",
		TemplateData: struct{ Name string }{usr.Name},
	})
	return nil
}
