package util

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	MinUsernameLength = 3
	MinPasswordLength = 6
	MinAge            = 13
	MaxMessageLength  = 200
	BirthdayLayout    = "2006-01-02"
)

var validate = validator.New()

var emailMessages = map[string]string{
	"required": "Please enter an email",
	"email":    "Please enter a valid email address",
	"fqdn":     "Please enter a valid email address",
}

func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return errors.New("Please enter a username")
	}
	if len([]rune(username)) < MinUsernameLength {
		return fmt.Errorf("Username must be at least %d characters", MinUsernameLength)
	}
	return nil
}

// ValidateEmail also wants a dotted domain, which the plain email rule lets
// through ("a@localhost").
func ValidateEmail(email string) error {
	err := validate.Var(strings.TrimSpace(email), "required")
	if err == nil {
		err = validate.Var(email, "email")
	}
	if err == nil {
		err = validate.Var(email[strings.LastIndex(email, "@")+1:], "fqdn")
	}
	return fieldError(err, emailMessages)
}

// fieldError turns a validator failure into the message for its tag.
func fieldError(err error, messages map[string]string) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if msg, ok := messages[verrs[0].Tag()]; ok {
			return errors.New(msg)
		}
	}
	return err
}

func ValidatePassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return errors.New("Please enter a password")
	}
	if len(password) < MinPasswordLength {
		return fmt.Errorf("Password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// ValidateBirthday compares calendar years only, as the sign-up flow always has.
func ValidateBirthday(birthday, now time.Time) error {
	if now.Year()-birthday.Year() < MinAge {
		return fmt.Errorf("You must be at least %d years old to sign up", MinAge)
	}
	return nil
}

func ParseBirthday(s string) (time.Time, error) {
	t, err := time.Parse(BirthdayLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, errors.New("Please enter your birthday as YYYY-MM-DD")
	}
	return t, nil
}

func ValidateStreamTitle(title string, max int) error {
	if strings.TrimSpace(title) == "" {
		return errors.New("Please enter a stream title")
	}
	if len([]rune(title)) > max {
		return fmt.Errorf("Stream title must be at most %d characters", max)
	}
	return nil
}

func ValidateMessage(text string) error {
	if len([]rune(text)) > MaxMessageLength {
		return fmt.Errorf("Message must be at most %d characters", MaxMessageLength)
	}
	return nil
}
