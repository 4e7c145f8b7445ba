package portal

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/golang/glog"

	"campuslink/internal/model"
	"campuslink/internal/remote"
	"campuslink/internal/session"
)

// Registration is the sign-up form.
type Registration struct {
	Name            string `json:"name" validate:"notblank"`
	Email           string `json:"email" validate:"notblank,simplemail"`
	Mobile          string `json:"mobile" validate:"notblank,mobile10"`
	CollegeID       string `json:"collegeId" validate:"notblank"`
	Password        string `json:"password" validate:"notblank,min=6"`
	// eqfield runs first so a mismatch outranks a blank confirmation.
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password,notblank"`
}

var registrationMessages = messages{
	"name.*":                   "Name is required",
	"email.*":                  "Valid email required",
	"mobile.*":                 "Enter 10-digit mobile number",
	"collegeId.*":              "College ID is required",
	"password.notblank":        "Password is required",
	"password.min":             "At least 6 characters",
	"confirmPassword.notblank": "Confirm your password",
	"confirmPassword.eqfield":  "Passwords do not match",
}

// Credentials is the login form for both students and admins.
type Credentials struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

// Accounts handles sign-up and the two logins. It only ever flips session
// flags; there is no token or server-side check.
type Accounts struct {
	client        *remote.Client
	session       *session.Store
	adminUsername string
	adminPassword string
	now           func() time.Time
}

// NewAccounts uses the configured admin pair.
func NewAccounts(c *remote.Client, s *session.Store, adminUsername, adminPassword string) *Accounts {
	return &Accounts{
		client:        c,
		session:       s,
		adminUsername: strings.ToLower(strings.TrimSpace(adminUsername)),
		adminPassword: strings.TrimSpace(adminPassword),
		now:           time.Now,
	}
}

// Register validates the form, rejects a known email, stores the user and
// sets the registered flag.
func (a *Accounts) Register(ctx context.Context, in Registration) (model.User, error) {
	if err := check(in, registrationMessages); err != nil {
		return model.User{}, err
	}

	existing, err := remote.ListOf[model.User](ctx, a.client, model.CollectionUsers, url.Values{"email": {in.Email}})
	if err != nil {
		return model.User{}, err
	}
	if len(existing) > 0 {
		return model.User{}, &DuplicateError{Message: "This email is already registered."}
	}

	user, err := remote.CreateOf(ctx, a.client, model.CollectionUsers, model.User{
		Name:      in.Name,
		Email:     in.Email,
		Mobile:    in.Mobile,
		CollegeID: in.CollegeID,
		Password:  in.Password,
		CreatedAt: a.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return model.User{}, err
	}
	if err := a.session.Set(ctx, session.Registered, true); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// Login sets the registered flag for an existing user. Users stored without
// a password are let in.
func (a *Accounts) Login(ctx context.Context, in Credentials) error {
	email := strings.TrimSpace(in.Email)
	password := strings.TrimSpace(in.Password)
	if email == "" || password == "" {
		return invalid("Please fill in all fields")
	}

	users, err := remote.ListOf[model.User](ctx, a.client, model.CollectionUsers, url.Values{"email": {email}})
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return ErrAccountNotFound
	}
	if users[0].Password != "" && users[0].Password != password {
		return invalid("Incorrect password")
	}
	return a.session.Set(ctx, session.Registered, true)
}

// Logout clears the registered flag.
func (a *Accounts) Logout(ctx context.Context) error {
	return a.session.Clear(ctx, session.Registered)
}

// AdminLogin checks the configured pair, records an audit row and sets the
// admin flag. A failed audit write does not block the login.
func (a *Accounts) AdminLogin(ctx context.Context, in Credentials) error {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	password := strings.TrimSpace(in.Password)
	if username != a.adminUsername || password != a.adminPassword {
		return invalid("Invalid admin credentials")
	}

	audit := model.AdminLogin{Username: username, LoggedInAt: a.now().UTC().Format(time.RFC3339)}
	if err := a.client.Create(ctx, model.CollectionAdmins, audit, nil); err != nil {
		glog.Warningf("admin login audit not saved: %v", err)
	}
	return a.session.Set(ctx, session.AdminAuthed, true)
}

// AdminLogout clears the admin flag.
func (a *Accounts) AdminLogout(ctx context.Context) error {
	return a.session.Clear(ctx, session.AdminAuthed)
}
