package controllers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/yatube/yatube/app/repository"
	"github.com/yatube/yatube/internal/pkg/pagination"
	"github.com/yatube/yatube/internal/pkg/usercontext"
	"github.com/yatube/yatube/internal/pkg/viewmodel"
)

const followFeedURL = "/follow/"

// HandleFollowIndex renders posts of the authors the user follows.
func HandleFollowIndex(c *fiber.Ctx) error {
	repo := repository.GetGlobalRepositories().Post
	userID := usercontext.GetUserID(c)

	total, err := repo.CountFollowed(userID)
	if err != nil {
		return fmt.Errorf("count followed posts: %w", err)
	}
	page := pagination.Resolve(c.Query("page"), total, FollowPageSize)
	posts, err := repo.ListFollowed(userID, page.Offset(), page.Limit())
	if err != nil {
		return fmt.Errorf("list followed posts: %w", err)
	}

	return render(c, "posts/follow", "Following", fiber.Map{
		"Posts":     posts,
		"Paginator": viewmodel.NewPaginator(page, followFeedURL),
	})
}

// HandleProfileFollow subscribes the user to an author. Following yourself
// is ignored.
func HandleProfileFollow(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	userID := usercontext.GetUserID(c)

	author, err := repos.User.GetByUsername(c.Params("username"))
	if err != nil {
		return notFoundOr(err, "load author")
	}
	if author.ID != userID {
		if _, err := repos.Follow.GetOrCreate(userID, author.ID); err != nil {
			return fmt.Errorf("follow author: %w", err)
		}
	}

	return c.Redirect(followFeedURL, fiber.StatusFound)
}

// HandleProfileUnfollow removes the edge if there is one.
func HandleProfileUnfollow(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	author, err := repos.User.GetByUsername(c.Params("username"))
	if err != nil {
		return notFoundOr(err, "load author")
	}
	if _, err := repos.Follow.Delete(usercontext.GetUserID(c), author.ID); err != nil {
		return fmt.Errorf("unfollow author: %w", err)
	}

	return c.Redirect(followFeedURL, fiber.StatusFound)
}
