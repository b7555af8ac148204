package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yatube/yatube/app/models"
	"github.com/yatube/yatube/internal/pkg/database"
)

func newTestRepos(t *testing.T) *Repositories {
	t.Helper()
	return NewRepositories(database.SetupTestDatabase(t))
}

func mustUser(t *testing.T, repos *Repositories, username string) *models.User {
	t.Helper()
	user, err := models.CreateUser(username, username+"@example.com", "secret-pass-1")
	require.NoError(t, err)
	require.NoError(t, repos.User.Create(user))
	return user
}

func mustPost(t *testing.T, repos *Repositories, author *models.User, text string, group *models.Group) *models.Post {
	t.Helper()
	post := &models.Post{Text: text, AuthorID: author.ID}
	if group != nil {
		post.GroupID = &group.ID
	}
	require.NoError(t, repos.Post.Create(post))
	return post
}

func TestUserRepository(t *testing.T) {
	repos := newTestRepos(t)
	leo := mustUser(t, repos, "leo")

	got, err := repos.User.GetByUsername("leo")
	require.NoError(t, err)
	assert.Equal(t, leo.ID, got.ID)

	_, err = repos.User.GetByUsername("nobody")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	exists, err := repos.User.UsernameExists("leo", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repos.User.UsernameExists("leo", leo.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	count, err := repos.User.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, repos.User.Delete(leo.ID))
	assert.ErrorIs(t, repos.User.Delete(leo.ID), gorm.ErrRecordNotFound)
}

func TestPostRepositoryListings(t *testing.T) {
	repos := newTestRepos(t)
	leo := mustUser(t, repos, "leo")
	ann := mustUser(t, repos, "ann")
	group := &models.Group{Title: "Cats", Slug: "cats"}
	require.NoError(t, repos.Group.Create(group))

	first := mustPost(t, repos, leo, "first", group)
	second := mustPost(t, repos, ann, "second", nil)
	third := mustPost(t, repos, leo, "third", nil)

	posts, err := repos.Post.List(0, 10)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	// newest first
	assert.Equal(t, []uint{third.ID, second.ID, first.ID}, []uint{posts[0].ID, posts[1].ID, posts[2].ID})
	assert.Equal(t, "leo", posts[0].Author.Username)

	byGroup, err := repos.Post.ListByGroup(group.ID, 0, 5)
	require.NoError(t, err)
	require.Len(t, byGroup, 1)
	assert.Equal(t, first.ID, byGroup[0].ID)
	require.NotNil(t, byGroup[0].Group)
	assert.Equal(t, "cats", byGroup[0].Group.Slug)

	count, err := repos.Post.CountByAuthor(leo.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	page, err := repos.Post.ListByAuthor(leo.ID, 1, 5)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, first.ID, page[0].ID)
}

func TestPostRepositoryGetByIDAndAuthor(t *testing.T) {
	repos := newTestRepos(t)
	leo := mustUser(t, repos, "leo")
	mustUser(t, repos, "ann")
	post := mustPost(t, repos, leo, "mine", nil)

	got, err := repos.Post.GetByIDAndAuthor(post.ID, "leo")
	require.NoError(t, err)
	assert.Equal(t, "mine", got.Text)

	_, err = repos.Post.GetByIDAndAuthor(post.ID, "ann")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	got.Text = "edited"
	got.GroupID = nil
	require.NoError(t, repos.Post.Update(got))

	reloaded, err := repos.Post.GetByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", reloaded.Text)
	assert.Equal(t, post.PubDate.Unix(), reloaded.PubDate.Unix())
}

func TestPostRepositorySetThumbnailMatchesImage(t *testing.T) {
	repos := newTestRepos(t)
	leo := mustUser(t, repos, "leo")
	post := mustPost(t, repos, leo, "pic", nil)
	post.Image = "posts/new.png"
	require.NoError(t, repos.Post.Update(post))

	applied, err := repos.Post.SetThumbnail(post.ID, "posts/old.png", "thumbs/posts/old.webp")
	require.NoError(t, err)
	assert.False(t, applied)

	applied, err = repos.Post.SetThumbnail(post.ID, "posts/new.png", "thumbs/posts/new.webp")
	require.NoError(t, err)
	assert.True(t, applied)

	reloaded, err := repos.Post.GetByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "thumbs/posts/new.webp", reloaded.Thumbnail)
}

func TestFollowRepositoryAndFeed(t *testing.T) {
	repos := newTestRepos(t)
	leo := mustUser(t, repos, "leo")
	ann := mustUser(t, repos, "ann")
	bob := mustUser(t, repos, "bob")
	post := mustPost(t, repos, ann, "from ann", nil)

	created, err := repos.Follow.GetOrCreate(leo.ID, ann.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repos.Follow.GetOrCreate(leo.ID, ann.ID)
	require.NoError(t, err)
	assert.False(t, created)

	followers, err := repos.Follow.CountFollowers(ann.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), followers)

	feed, err := repos.Post.ListFollowed(leo.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, post.ID, feed[0].ID)

	empty, err := repos.Post.CountFollowed(bob.ID)
	require.NoError(t, err)
	assert.Zero(t, empty)

	removed, err := repos.Follow.Delete(leo.ID, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	removed, err = repos.Follow.Delete(leo.ID, ann.ID)
	require.NoError(t, err)
	assert.Zero(t, removed)

	exists, err := repos.Follow.Exists(0, ann.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCommentRepository(t *testing.T) {
	repos := newTestRepos(t)
	leo := mustUser(t, repos, "leo")
	post := mustPost(t, repos, leo, "post", nil)

	require.NoError(t, repos.Comment.Create(&models.Comment{PostID: post.ID, AuthorID: leo.ID, Text: "one"}))
	require.NoError(t, repos.Comment.Create(&models.Comment{PostID: post.ID, AuthorID: leo.ID, Text: "two"}))

	comments, err := repos.Comment.ListByPost(post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "one", comments[0].Text)
	assert.Equal(t, "leo", comments[1].Author.Username)
}

func TestTokenRepositoryRotates(t *testing.T) {
	repos := newTestRepos(t)
	leo := mustUser(t, repos, "leo")

	token := &models.APIToken{UserID: leo.ID}
	oldKey, err := token.Issue()
	require.NoError(t, err)
	require.NoError(t, repos.Token.Save(token))

	rotated := &models.APIToken{UserID: leo.ID}
	newKey, err := rotated.Issue()
	require.NoError(t, err)
	require.NoError(t, repos.Token.Save(rotated))

	_, err = repos.Token.GetByHash(models.HashToken(oldKey))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	got, err := repos.Token.GetByHash(models.HashToken(newKey))
	require.NoError(t, err)
	assert.Equal(t, "leo", got.User.Username)

	require.NoError(t, repos.Token.Touch(got))
	stored, err := repos.Token.GetByUserID(leo.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastUsedAt)
}
