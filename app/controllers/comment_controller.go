package controllers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/yatube/yatube/app/models"
	"github.com/yatube/yatube/app/repository"
	"github.com/yatube/yatube/internal/pkg/forms"
	"github.com/yatube/yatube/internal/pkg/usercontext"
)

// HandleAddComment stores a comment and always returns to the post. Invalid
// input is dropped without a message.
func HandleAddComment(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	username := c.Params("username")

	postID, err := paramID(c, "post_id")
	if err != nil {
		return err
	}
	post, err := repos.Post.GetByID(postID)
	if err != nil {
		return notFoundOr(err, "load post")
	}

	form := &forms.CommentForm{Text: c.FormValue("text")}
	if form.Validate() {
		comment := &models.Comment{
			PostID:   post.ID,
			AuthorID: usercontext.GetUserID(c),
			Text:     form.Text,
		}
		if err := repos.Comment.Create(comment); err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
	}

	return c.Redirect(postURL(username, post.ID), fiber.StatusFound)
}
