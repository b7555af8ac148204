package apiv1

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/yatube/yatube/app/models"
	"github.com/yatube/yatube/app/repository"
	"github.com/yatube/yatube/internal/pkg/forms"
	"github.com/yatube/yatube/internal/pkg/usercontext"
)

const (
	msgBadCredentials = "Unable to log in with provided credentials."
	msgForbidden      = "You do not have permission to perform this action."
)

// APIServer implements the ServerInterface
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

var _ ServerInterface = (*APIServer)(nil)

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.ErrNotFound
	}
	return err
}

func badRequest(c *fiber.Ctx, errs forms.Errors) error {
	return c.Status(fiber.StatusBadRequest).JSON(errs)
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Malformed request body.")
	}
	return nil
}

// ListUsers handles GET /users/
func (s *APIServer) ListUsers(c *fiber.Ctx) error {
	users, err := repository.GetGlobalRepositories().User.List(0, 0)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	out := make([]User, 0, len(users))
	for i := range users {
		out = append(out, NewUser(&users[i]))
	}
	return c.JSON(out)
}

// CreateUser handles POST /users/
func (s *APIServer) CreateUser(c *fiber.Ctx) error {
	var in UserInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	user := &models.User{Role: models.ROLE_USER}
	errs, err := applyUser(user, in, true)
	if err != nil {
		return err
	}
	if len(errs) > 0 {
		return badRequest(c, errs)
	}
	if err := repository.GetGlobalRepositories().User.Create(user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return c.Status(fiber.StatusCreated).JSON(NewUser(user))
}

// GetUser handles GET /users/{id}/
func (s *APIServer) GetUser(c *fiber.Ctx, id uint) error {
	user, err := repository.GetGlobalRepositories().User.GetByID(id)
	if err != nil {
		return notFound(err)
	}
	return c.JSON(NewUser(user))
}

// ReplaceUser handles PUT /users/{id}/
func (s *APIServer) ReplaceUser(c *fiber.Ctx, id uint) error {
	return s.updateUser(c, id, true)
}

// PatchUser handles PATCH /users/{id}/
func (s *APIServer) PatchUser(c *fiber.Ctx, id uint) error {
	return s.updateUser(c, id, false)
}

func (s *APIServer) updateUser(c *fiber.Ctx, id uint, full bool) error {
	repo := repository.GetGlobalRepositories().User
	user, err := repo.GetByID(id)
	if err != nil {
		return notFound(err)
	}

	var in UserInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	errs, err := applyUser(user, in, full)
	if err != nil {
		return err
	}
	if len(errs) > 0 {
		return badRequest(c, errs)
	}
	if err := repo.Update(user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return c.JSON(NewUser(user))
}

// applyUser copies the sent fields onto user and validates the result. With
// full set the username is mandatory.
func applyUser(user *models.User, in UserInput, full bool) (forms.Errors, error) {
	errs := forms.Errors{}

	if in.Username != nil {
		user.Username = strings.TrimSpace(*in.Username)
	} else if full {
		errs.Add("username", forms.MsgRequired)
	}
	if in.Email != nil {
		user.Email = strings.TrimSpace(*in.Email)
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if errs.Has("username") {
		return errs, nil
	}

	forms.ValidateUser(user, errs)
	if !errs.Has("username") {
		taken, err := repository.GetGlobalRepositories().User.UsernameExists(user.Username, user.ID)
		if err != nil {
			return nil, fmt.Errorf("check username: %w", err)
		}
		if taken {
			errs.Add("username", forms.MsgUsernameTaken)
		}
	}
	if len(errs) > 0 {
		return errs, nil
	}

	if in.Password != nil && *in.Password != "" {
		if err := user.SetPassword(*in.Password); err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}
	return errs, nil
}

// DeleteUser handles DELETE /users/{id}/
func (s *APIServer) DeleteUser(c *fiber.Ctx, id uint) error {
	if err := repository.GetGlobalRepositories().User.Delete(id); err != nil {
		return notFound(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListGroups handles GET /groups/
func (s *APIServer) ListGroups(c *fiber.Ctx) error {
	groups, err := repository.GetGlobalRepositories().Group.List()
	if err != nil {
		return fmt.Errorf("list groups: %w", err)
	}
	out := make([]Group, 0, len(groups))
	for i := range groups {
		out = append(out, NewGroup(&groups[i]))
	}
	return c.JSON(out)
}

// CreateGroup handles POST /groups/. Only admins may create groups.
func (s *APIServer) CreateGroup(c *fiber.Ctx) error {
	if !usercontext.IsAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(Detail{Detail: msgForbidden})
	}

	var in GroupInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	repo := repository.GetGlobalRepositories().Group
	group := &models.Group{
		Title:       strings.TrimSpace(in.Title),
		Slug:        strings.TrimSpace(in.Slug),
		Description: in.Description,
	}
	if group.Slug == "" && group.Title != "" {
		group.Slug = models.Slugify(group.Title)
	}

	errs := forms.Errors{}
	forms.ValidateGroup(group, errs)
	if !errs.Has("slug") {
		exists, err := repo.SlugExists(group.Slug)
		if err != nil {
			return fmt.Errorf("check slug: %w", err)
		}
		if exists {
			errs.Add("slug", "Group with this slug already exists.")
		}
	}
	if len(errs) > 0 {
		return badRequest(c, errs)
	}

	if err := repo.Create(group); err != nil {
		return fmt.Errorf("create group: %w", err)
	}
	return c.Status(fiber.StatusCreated).JSON(NewGroup(group))
}

// GetGroup handles GET /groups/{id}/
func (s *APIServer) GetGroup(c *fiber.Ctx, id uint) error {
	group, err := repository.GetGlobalRepositories().Group.GetByID(id)
	if err != nil {
		return notFound(err)
	}
	return c.JSON(NewGroup(group))
}

// ListPosts handles GET /posts/
func (s *APIServer) ListPosts(c *fiber.Ctx) error {
	posts, err := repository.GetGlobalRepositories().Post.List(0, -1)
	if err != nil {
		return fmt.Errorf("list posts: %w", err)
	}
	out := make([]Post, 0, len(posts))
	for i := range posts {
		out = append(out, NewPost(&posts[i], c.BaseURL()))
	}
	return c.JSON(out)
}

// GetPost handles GET /posts/{id}/
func (s *APIServer) GetPost(c *fiber.Ctx, id uint) error {
	post, err := repository.GetGlobalRepositories().Post.GetByID(id)
	if err != nil {
		return notFound(err)
	}
	return c.JSON(NewPost(post, c.BaseURL()))
}

// ObtainToken issues a fresh token for valid credentials, replacing the
// previous one. It is mounted outside the authenticated group.
func ObtainToken(c *fiber.Ctx) error {
	var in TokenRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}

	errs := forms.Errors{}
	if in.Username == "" {
		errs.Add("username", forms.MsgRequired)
	}
	if in.Password == "" {
		errs.Add("password", forms.MsgRequired)
	}
	if len(errs) > 0 {
		return badRequest(c, errs)
	}

	repos := repository.GetGlobalRepositories()
	user, err := repos.User.GetByUsername(in.Username)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("load user: %w", err)
	}
	if user == nil || !user.CheckPassword(in.Password) {
		errs.Add("non_field_errors", msgBadCredentials)
		return badRequest(c, errs)
	}

	token := &models.APIToken{UserID: user.ID}
	raw, err := token.Issue()
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	if err := repos.Token.Save(token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return c.JSON(TokenResponse{Token: raw})
}
