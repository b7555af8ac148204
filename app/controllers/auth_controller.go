package controllers

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/sujit-baniya/flash"
	"gorm.io/gorm"

	"github.com/yatube/yatube/app/models"
	"github.com/yatube/yatube/app/repository"
	"github.com/yatube/yatube/internal/pkg/cache"
	"github.com/yatube/yatube/internal/pkg/database"
	"github.com/yatube/yatube/internal/pkg/forms"
	"github.com/yatube/yatube/internal/pkg/session"
	"github.com/yatube/yatube/internal/pkg/statistics"
	"github.com/yatube/yatube/internal/pkg/usercontext"
)

const (
	loginURL         = "/auth/login/"
	minPasswordChars = 8

	msgInvalidLogin     = "Please enter a correct username and password. Note that both fields may be case-sensitive."
	msgPasswordMismatch = "The two password fields didn't match."
	msgPasswordShort    = "This password is too short. It must contain at least 8 characters."
	msgPasswordNumeric  = "This password is entirely numeric."
)

// HandleAuthLogin shows the login form and starts a session on success.
func HandleAuthLogin(c *fiber.Ctx) error {
	next := c.Query("next")
	data := fiber.Map{"Next": next}

	if c.Method() == fiber.MethodPost {
		username := strings.TrimSpace(c.FormValue("username"))
		data["Username"] = username

		user, err := authenticate(username, c.FormValue("password"))
		if err != nil {
			if !errors.Is(err, errBadCredentials) {
				return err
			}
			data["Error"] = msgInvalidLogin
			return render(c, "auth/login", "Log in", data)
		}

		if err := login(c, user); err != nil {
			return err
		}
		return c.Redirect(safeNext(next), fiber.StatusFound)
	}

	return render(c, "auth/login", "Log in", data)
}

var errBadCredentials = errors.New("bad credentials")

// authenticate checks a username/password pair. Accounts without a usable
// password never match.
func authenticate(username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, errBadCredentials
	}
	user, err := repository.GetGlobalRepositories().User.GetByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errBadCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !user.CheckPassword(password) {
		return nil, errBadCredentials
	}
	return user, nil
}

// login rotates the session and stores the user id in it.
func login(c *fiber.Ctx, user *models.User) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if err := sess.Regenerate(); err != nil {
		return fmt.Errorf("regenerate session: %w", err)
	}
	sess.Set(usercontext.KeyUserID, user.ID)
	if err := sess.Save(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// HandleAuthLogout ends the session and returns to the feed.
func HandleAuthLogout(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err == nil {
		if err := sess.Destroy(); err != nil {
			fiberlog.Warnf("[Auth] failed to destroy session: %v", err)
		}
	}

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": "You have been logged out.",
	}).Redirect("/", fiber.StatusFound)
}

// HandleAuthSignup registers a new account.
func HandleAuthSignup(c *fiber.Ctx) error {
	values := map[string]string{}
	errs := forms.Errors{}

	if c.Method() == fiber.MethodPost {
		for _, field := range []string{"first_name", "last_name", "username", "email"} {
			values[field] = strings.TrimSpace(c.FormValue(field))
		}
		password1, password2 := c.FormValue("password1"), c.FormValue("password2")

		user, err := validateSignup(values, password1, password2, errs)
		if err != nil {
			return err
		}
		if user != nil {
			if err := repository.GetGlobalRepositories().User.Create(user); err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			go refreshStatistics()

			return flash.WithSuccess(c, fiber.Map{
				"type":    "success",
				"message": "Your account has been created. You can log in now.",
			}).Redirect(loginURL, fiber.StatusFound)
		}
	}

	return render(c, "auth/signup", "Sign up", fiber.Map{
		"Values": values,
		"Errors": errs,
	})
}

// validateSignup fills errs and returns the unsaved user when the input is
// acceptable.
func validateSignup(values map[string]string, password1, password2 string, errs forms.Errors) (*models.User, error) {
	username := values["username"]
	if username == "" {
		errs.Add("username", forms.MsgRequired)
	} else {
		taken, err := repository.GetGlobalRepositories().User.UsernameExists(username, 0)
		if err != nil {
			return nil, fmt.Errorf("check username: %w", err)
		}
		if taken {
			errs.Add("username", forms.MsgUsernameTaken)
		}
	}

	switch {
	case password1 == "":
		errs.Add("password1", forms.MsgRequired)
	case password2 == "":
		errs.Add("password2", forms.MsgRequired)
	case password1 != password2:
		errs.Add("password2", msgPasswordMismatch)
	default:
		for _, msg := range passwordProblems(password1) {
			errs.Add("password2", msg)
		}
	}

	user := &models.User{
		Username:  username,
		Email:     values["email"],
		FirstName: values["first_name"],
		LastName:  values["last_name"],
		Role:      models.ROLE_USER,
	}
	if username != "" {
		forms.ValidateUser(user, errs)
	}

	if len(errs) > 0 {
		return nil, nil
	}
	if err := user.SetPassword(password1); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return user, nil
}

func passwordProblems(password string) []string {
	var problems []string
	if len([]rune(password)) < minPasswordChars {
		problems = append(problems, msgPasswordShort)
	}
	numeric := true
	for _, r := range password {
		if !unicode.IsDigit(r) {
			numeric = false
			break
		}
	}
	if numeric {
		problems = append(problems, msgPasswordNumeric)
	}
	return problems
}

func refreshStatistics() {
	db := database.GetDB()
	if db == nil {
		return
	}
	if err := statistics.UpdateStatisticsCache(db); err != nil && !errors.Is(err, cache.ErrUnavailable) {
		fiberlog.Warnf("[Statistics] refresh after signup failed: %v", err)
	}
}
