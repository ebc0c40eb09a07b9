package validator

import (
	"errors"
	"regexp"
	"time"
)

var (
	ErrInvalidEmail         = errors.New("invalid email")
	ErrInvalidNickname      = errors.New("invalid nickname")
	ErrInvalidPassword      = errors.New("password must be at least 8 characters")
	ErrInvalidName          = errors.New("name is required")
	ErrInvalidCurrency      = errors.New("currency must be GBP, EUR or USD")
	ErrInvalidPaymentMethod = errors.New("unknown payment method")
	ErrInvalidDuration      = errors.New("duration must be positive")
	ErrInvalidDate          = errors.New("date must be YYYY-MM-DD")
	ErrInvalidDay           = errors.New("day must be between 1 and 7")
)

var (
	emailRegex    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	nicknameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,50}$`)
)

var Currencies = []string{"GBP", "EUR", "USD"}

var PaymentMethods = []string{"Cash", "Revolut", "PayPal", "Wise", "AIB", "Crypto"}

func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

func ValidateNickname(nickname string) error {
	if !nicknameRegex.MatchString(nickname) {
		return ErrInvalidNickname
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrInvalidPassword
	}
	return nil
}

func ValidateName(name string) error {
	if name == "" {
		return ErrInvalidName
	}
	return nil
}

func ValidateCurrency(currency string) error {
	for _, known := range Currencies {
		if currency == known {
			return nil
		}
	}
	return ErrInvalidCurrency
}

func ValidatePaymentMethod(method string) error {
	for _, known := range PaymentMethods {
		if method == known {
			return nil
		}
	}
	return ErrInvalidPaymentMethod
}

func ValidateDuration(minutes int) error {
	if minutes <= 0 {
		return ErrInvalidDuration
	}
	return nil
}

func ValidateDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return ErrInvalidDate
	}
	return nil
}

func ValidateDay(day int) error {
	if day < 1 || day > 7 {
		return ErrInvalidDay
	}
	return nil
}
