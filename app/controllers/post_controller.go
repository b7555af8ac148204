package controllers

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/yatube/yatube/app/models"
	"github.com/yatube/yatube/app/repository"
	"github.com/yatube/yatube/internal/pkg/forms"
	"github.com/yatube/yatube/internal/pkg/imageprocessor"
	"github.com/yatube/yatube/internal/pkg/pagination"
	"github.com/yatube/yatube/internal/pkg/storage"
	"github.com/yatube/yatube/internal/pkg/usercontext"
	"github.com/yatube/yatube/internal/pkg/viewmodel"
)

// HandleIndex renders the global feed.
func HandleIndex(c *fiber.Ctx) error {
	repo := repository.GetGlobalRepositories().Post

	total, err := repo.Count()
	if err != nil {
		return fmt.Errorf("count posts: %w", err)
	}
	page := pagination.Resolve(c.Query("page"), total, IndexPageSize)
	posts, err := repo.List(page.Offset(), page.Limit())
	if err != nil {
		return fmt.Errorf("list posts: %w", err)
	}

	return render(c, "posts/index", "Latest posts", fiber.Map{
		"Posts":     posts,
		"Paginator": viewmodel.NewPaginator(page, "/"),
	})
}

// HandleGroupPosts renders the feed of one group.
func HandleGroupPosts(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	group, err := repos.Group.GetBySlug(c.Params("slug"))
	if err != nil {
		return notFoundOr(err, "load group")
	}

	total, err := repos.Post.CountByGroup(group.ID)
	if err != nil {
		return fmt.Errorf("count group posts: %w", err)
	}
	page := pagination.Resolve(c.Query("page"), total, GroupPageSize)
	posts, err := repos.Post.ListByGroup(group.ID, page.Offset(), page.Limit())
	if err != nil {
		return fmt.Errorf("list group posts: %w", err)
	}

	return render(c, "posts/group", group.Title, fiber.Map{
		"Group":     group,
		"Posts":     posts,
		"Paginator": viewmodel.NewPaginator(page, "/group/"+group.Slug+"/"),
	})
}

// HandleProfile renders an author's posts and follow controls.
func HandleProfile(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	author, err := repos.User.GetByUsername(c.Params("username"))
	if err != nil {
		return notFoundOr(err, "load author")
	}

	card, err := authorCard(c, repos, author)
	if err != nil {
		return err
	}
	page := pagination.Resolve(c.Query("page"), card.PostCount, ProfilePageSize)
	posts, err := repos.Post.ListByAuthor(author.ID, page.Offset(), page.Limit())
	if err != nil {
		return fmt.Errorf("list author posts: %w", err)
	}

	return render(c, "posts/profile", author.FullName(), fiber.Map{
		"Card":      card,
		"Posts":     posts,
		"Paginator": viewmodel.NewPaginator(page, "/"+author.Username+"/"),
	})
}

// HandlePostView renders a single post with its comments. The username in
// the URL is not checked against the author.
func HandlePostView(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	postID, err := paramID(c, "post_id")
	if err != nil {
		return err
	}
	post, err := repos.Post.GetByID(postID)
	if err != nil {
		return notFoundOr(err, "load post")
	}

	comments, err := repos.Comment.ListByPost(post.ID)
	if err != nil {
		return fmt.Errorf("list comments: %w", err)
	}
	card, err := authorCard(c, repos, &post.Author)
	if err != nil {
		return err
	}

	return render(c, "posts/post", "Post by "+post.Author.Username, fiber.Map{
		"Post":       post,
		"Card":       card,
		"Comments":   comments,
		"Processing": post.HasImage() && post.Thumbnail == "" && imageprocessor.IsPostImageProcessing(post.ID),
	})
}

func authorCard(c *fiber.Ctx, repos *repository.Repositories, author *models.User) (viewmodel.AuthorCard, error) {
	userCtx := usercontext.GetUserContext(c)
	card := viewmodel.AuthorCard{
		Author:    author,
		CanFollow: userCtx.IsLoggedIn && userCtx.UserID != author.ID,
	}

	var err error
	if card.PostCount, err = repos.Post.CountByAuthor(author.ID); err != nil {
		return card, fmt.Errorf("count author posts: %w", err)
	}
	if card.Followers, err = repos.Follow.CountFollowers(author.ID); err != nil {
		return card, fmt.Errorf("count followers: %w", err)
	}
	if card.Following, err = repos.Follow.CountFollowing(author.ID); err != nil {
		return card, fmt.Errorf("count following: %w", err)
	}
	if card.IsFollowing, err = repos.Follow.Exists(userCtx.UserID, author.ID); err != nil {
		return card, fmt.Errorf("check follow: %w", err)
	}
	return card, nil
}

// HandleNewPost shows and processes the create form.
func HandleNewPost(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	userCtx := usercontext.GetUserContext(c)
	form := &forms.PostForm{}

	if c.Method() == fiber.MethodPost {
		if err := bindPostForm(c, form); err != nil {
			return err
		}
		if form.Validate(repos.Group, maxImageBytes()) {
			post := &models.Post{
				Text:     form.Text,
				AuthorID: userCtx.UserID,
				GroupID:  form.GroupID,
			}
			if form.Upload != nil {
				if err := attachImage(c.UserContext(), post, form); err != nil {
					return err
				}
			}
			if err := repos.Post.Create(post); err != nil {
				removeMedia(c.UserContext(), post.Image)
				return fmt.Errorf("create post: %w", err)
			}
			if post.HasImage() {
				imageprocessor.ProcessPostImage(post.ID, post.Image)
			}

			return c.Redirect("/", fiber.StatusFound)
		}
	}

	return renderPostForm(c, repos, form, nil)
}

// HandlePostEdit lets the author change text, group and image of a post.
// Everybody else is sent back to the post without a word.
func HandlePostEdit(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	userCtx := usercontext.GetUserContext(c)
	username := c.Params("username")

	postID, err := paramID(c, "post_id")
	if err != nil {
		return err
	}
	post, err := repos.Post.GetByIDAndAuthor(postID, username)
	if err != nil {
		return notFoundOr(err, "load post")
	}
	if !post.IsAuthoredBy(userCtx.UserID) {
		return c.Redirect(postURL(username, postID), fiber.StatusFound)
	}

	form := &forms.PostForm{Text: post.Text}
	if post.GroupID != nil {
		form.Group = fmt.Sprint(*post.GroupID)
	}

	if c.Method() == fiber.MethodPost {
		if err := bindPostForm(c, form); err != nil {
			return err
		}
		if form.Validate(repos.Group, maxImageBytes()) {
			oldImage, oldThumb := post.Image, post.Thumbnail

			post.Text = form.Text
			post.GroupID = form.GroupID
			switch {
			case form.Upload != nil:
				if err := attachImage(c.UserContext(), post, form); err != nil {
					return err
				}
			case form.ClearImage:
				clearImage(post)
			}

			if err := repos.Post.Update(post); err != nil {
				if post.Image != oldImage {
					removeMedia(c.UserContext(), post.Image)
				}
				return fmt.Errorf("update post: %w", err)
			}
			if post.Image != oldImage {
				removeMedia(c.UserContext(), oldImage, oldThumb)
				if post.HasImage() {
					imageprocessor.ProcessPostImage(post.ID, post.Image)
				}
			}

			return c.Redirect(postURL(username, postID), fiber.StatusFound)
		}
	}

	return renderPostForm(c, repos, form, post)
}

func bindPostForm(c *fiber.Ctx, form *forms.PostForm) error {
	form.Text = c.FormValue("text")
	form.Group = c.FormValue("group")
	form.ClearImage = c.FormValue("image-clear") != ""

	file, err := readFormFile(c, "image", maxImageBytes())
	if err != nil {
		return err
	}
	form.Image = file
	return nil
}

func renderPostForm(c *fiber.Ctx, repos *repository.Repositories, form *forms.PostForm, post *models.Post) error {
	groups, err := repos.Group.List()
	if err != nil {
		return fmt.Errorf("list groups: %w", err)
	}

	title := "New post"
	if post != nil {
		title = "Edit post"
	}
	return render(c, "posts/new", title, fiber.Map{
		"Form":   form,
		"Groups": groups,
		"Post":   post,
		"IsEdit": post != nil,
	})
}

// attachImage stores the validated upload and points the post at it.
func attachImage(ctx context.Context, post *models.Post, form *forms.PostForm) error {
	store := storage.GetDefault()
	if store == nil {
		return fmt.Errorf("media storage not configured")
	}

	img := form.Upload
	key := storage.NewKey("posts", img.Ext, time.Now())
	if err := store.Save(ctx, key, img.Data, storage.ContentType(key)); err != nil {
		return fmt.Errorf("store image: %w", err)
	}

	post.Image = key
	post.ImageWidth = img.Width
	post.ImageHeight = img.Height
	post.ImageTakenAt = imageprocessor.TakenAt(img.Data)
	post.Thumbnail = ""
	return nil
}

func clearImage(post *models.Post) {
	post.Image = ""
	post.ImageWidth = 0
	post.ImageHeight = 0
	post.ImageTakenAt = nil
	post.Thumbnail = ""
}

// removeMedia deletes replaced files; failures only leave orphans behind.
func removeMedia(ctx context.Context, keys ...string) {
	store := storage.GetDefault()
	if store == nil {
		return
	}
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := store.Delete(ctx, key); err != nil {
			fiberlog.Warnf("[Storage] failed to delete %s: %v", key, err)
		}
	}
}
