package controllers

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/markbates/goth"
	gothfiber "github.com/shareed2k/goth_fiber"
	"github.com/sujit-baniya/flash"
	"gorm.io/gorm"

	"github.com/yatube/yatube/app/models"
	"github.com/yatube/yatube/app/repository"
	"github.com/yatube/yatube/internal/pkg/oauth"
	"github.com/yatube/yatube/internal/pkg/session"
)

const oauthNextKey = "oauth_next"

// HandleOAuthBegin redirects to the provider's consent page.
func HandleOAuthBegin(c *fiber.Ctx) error {
	if !oauth.IsEnabled(c.Params("provider")) {
		return fiber.ErrNotFound
	}
	if next := c.Query("next"); next != "" {
		if err := session.SetSessionValue(c, oauthNextKey, safeNext(next)); err != nil {
			fiberlog.Warnf("[OAuth] could not remember next: %v", err)
		}
	}
	return gothfiber.BeginAuthHandler(c)
}

// HandleOAuthCallback completes the provider flow and logs the user in,
// creating a local account on first sign-in.
func HandleOAuthCallback(c *fiber.Ctx) error {
	if !oauth.IsEnabled(c.Params("provider")) {
		return fiber.ErrNotFound
	}

	u, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		fiberlog.Warnf("[OAuth] %s sign-in failed: %v", c.Params("provider"), err)
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "Sign-in with " + c.Params("provider") + " failed.",
		}).Redirect(loginURL, fiber.StatusFound)
	}

	user, err := userForProvider(u)
	if err != nil {
		return err
	}
	next := safeNext(session.GetSessionValue(c, oauthNextKey))
	if err := login(c, user); err != nil {
		return err
	}

	return c.Redirect(next, fiber.StatusFound)
}

// userForProvider resolves the linked account, creating user and link when
// the identity is new.
func userForProvider(u goth.User) (*models.User, error) {
	repos := repository.GetGlobalRepositories()

	account, err := repos.ProviderAccount.Get(u.Provider, u.UserID)
	if err == nil {
		return &account.User, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load provider account: %w", err)
	}

	username, err := uniqueUsername(firstNonEmpty(u.NickName, emailLocalPart(u.Email), u.Provider+"-user"))
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:  username,
		Email:     u.Email,
		FirstName: truncateField(u.FirstName),
		LastName:  truncateField(u.LastName),
		Role:      models.ROLE_USER,
	}
	if err := repos.User.Create(user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	link := &models.ProviderAccount{
		UserID:         user.ID,
		Provider:       u.Provider,
		ProviderUserID: u.UserID,
	}
	if err := repos.ProviderAccount.Create(link); err != nil {
		return nil, fmt.Errorf("link provider account: %w", err)
	}
	fiberlog.Infof("[OAuth] created user %s for %s identity %s", user.Username, u.Provider, u.UserID)

	go refreshStatistics()
	return user, nil
}

var usernameDisallowed = regexp.MustCompile(`[^\w.@+-]+`)

// uniqueUsername cleans base into a valid username and appends a counter
// until it is free.
func uniqueUsername(base string) (string, error) {
	base = usernameDisallowed.ReplaceAllString(base, "")
	if base == "" || models.ReservedUsernames[strings.ToLower(base)] {
		base = "user-" + base
	}
	if len(base) > 140 {
		base = base[:140]
	}

	repo := repository.GetGlobalRepositories().User
	candidate := base
	for i := 2; ; i++ {
		taken, err := repo.UsernameExists(candidate, 0)
		if err != nil {
			return "", fmt.Errorf("check username: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
}

func emailLocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

func truncateField(s string) string {
	if r := []rune(s); len(r) > 150 {
		return string(r[:150])
	}
	return s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
