package forms

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/yatube/yatube/app/models"
	"github.com/yatube/yatube/internal/pkg/upload"
)

const (
	MsgRequired      = "This field is required."
	MsgInvalidChoice = "Select a valid choice. That choice is not one of the available choices."
	MsgUsernameTaken = "A user with that username already exists."
)

// Errors maps a field name to its messages; "__all__" holds form-wide ones.
type Errors map[string][]string

func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// First returns the first message for field, or "".
func (e Errors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// GroupLookup resolves the optional group choice.
type GroupLookup interface {
	GetByID(id uint) (*models.Group, error)
}

// File is an uploaded file as read from the multipart body.
type File struct {
	Filename string
	Data     []byte
}

// PostForm validates the create and edit post pages.
type PostForm struct {
	Text       string `validate:"required"`
	Group      string
	Image      *File
	ClearImage bool

	Errors Errors

	// populated by Validate
	GroupID *uint
	Upload  *upload.Image
}

// Validate trims the text, resolves the group and checks the image. It
// returns false and fills Errors when the form must be re-rendered.
func (f *PostForm) Validate(groups GroupLookup, maxImageBytes int64) bool {
	f.Errors = Errors{}
	f.Text = strings.TrimSpace(f.Text)
	f.GroupID = nil
	f.Upload = nil

	collectStructErrors(f, f.Errors, map[string]string{"Text": "text"})

	if raw := strings.TrimSpace(f.Group); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			f.Errors.Add("group", MsgInvalidChoice)
		} else if group, err := groups.GetByID(uint(id)); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				f.Errors.Add("group", MsgInvalidChoice)
			} else {
				f.Errors.Add("__all__", "Could not load groups, please try again.")
			}
		} else {
			f.GroupID = &group.ID
		}
	}

	if f.Image != nil && f.Image.Filename != "" {
		img, err := upload.ValidateImage(f.Image.Filename, f.Image.Data, maxImageBytes)
		if err != nil {
			f.Errors.Add("image", err.Error())
		} else {
			f.Upload = img
		}
	}

	return len(f.Errors) == 0
}

// CommentForm validates a single comment body.
type CommentForm struct {
	Text   string `validate:"required"`
	Errors Errors
}

func (f *CommentForm) Validate() bool {
	f.Errors = Errors{}
	f.Text = strings.TrimSpace(f.Text)
	collectStructErrors(f, f.Errors, map[string]string{"Text": "text"})
	return len(f.Errors) == 0
}

var userFields = map[string]string{
	"Username":  "username",
	"Email":     "email",
	"FirstName": "first_name",
	"LastName":  "last_name",
}

// ValidateUser checks u against the model rules, keyed by form field name.
func ValidateUser(u *models.User, errs Errors) {
	collectStructErrors(u, errs, userFields)
}

// ValidateGroup checks g against the model rules, keyed by form field name.
func ValidateGroup(g *models.Group, errs Errors) {
	collectStructErrors(g, errs, nil)
}

// collectStructErrors runs the shared validator and translates tag failures
// into form messages keyed by the html field name.
func collectStructErrors(s interface{}, errs Errors, fields map[string]string) {
	err := models.Validator().Struct(s)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add("__all__", err.Error())
		return
	}
	for _, fe := range verrs {
		name, ok := fields[fe.Field()]
		if !ok {
			name = strings.ToLower(fe.Field())
		}
		errs.Add(name, Message(fe))
	}
}

// Message renders a validator failure the way the web forms phrase it.
func Message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "max":
		return "Ensure this value has at most " + fe.Param() + " characters."
	case "email":
		return "Enter a valid email address."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "slug":
		return "Enter a valid “slug” consisting of letters, numbers, underscores or hyphens."
	case "oneof":
		return MsgInvalidChoice
	default:
		return "Enter a valid value."
	}
}
