package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Константы валидации
const (
	MinUsernameLength        = 3
	MaxUsernameLength        = 30
	MinDisplayNameLength     = 2
	MaxDisplayNameLength     = 100
	MinBusinessNameLength    = 2
	MaxBusinessNameLength    = 200
	MinDescriptionLength     = 10
	MaxDescriptionLength     = 5000
	MaxIndustryLength        = 100
	MaxLocationLength        = 100
	MaxBioLength             = 1000
	MinCommentLength         = 1
	MaxCommentLength         = 2000
	MinMessageLength         = 1
	MaxMessageLength         = 5000
	MaxRejectionReasonLength = 1000
	MaxDocumentTitleLength   = 200
	MaxCategoryLength        = 100
	MinPrice                 = 0.0
	MaxPrice                 = 10000000000.0 // 10 миллиардов
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.TrimSpace(email)
	email = strings.ToLower(email)

	if !strings.Contains(email, "@") {
		return fmt.Errorf("email должен содержать символ @")
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart := parts[0]
	domainPart := parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}

	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}

	if !strings.Contains(domainPart, ".") {
		return fmt.Errorf("доменная часть email должна содержать точку")
	}

	emailRegex := regexp.MustCompile(`^[a-z0-9._+-]+$`)
	if !emailRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}

	domainRegex := regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	if !domainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidatePassword проверяет пароль.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("пароль обязателен")
	}
	if len(password) < 8 {
		return fmt.Errorf("пароль должен содержать не менее 8 символов")
	}
	if len(password) > 128 {
		return fmt.Errorf("пароль слишком длинный")
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая и не состоит из пробелов.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateUsername проверяет имя пользователя.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("имя пользователя обязательно")
	}

	username = strings.TrimSpace(username)

	if err := ValidateLength("имя пользователя", username, MinUsernameLength, MaxUsernameLength); err != nil {
		return err
	}

	usernameRegex := regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("имя пользователя может содержать только буквы, цифры и подчеркивание")
	}

	if len(username) > 0 && unicode.IsDigit(rune(username[0])) {
		return fmt.Errorf("имя пользователя не может начинаться с цифры")
	}

	return nil
}

// ValidateBusinessName проверяет название бизнеса.
func ValidateBusinessName(name string) error {
	if name == "" {
		return fmt.Errorf("название бизнеса обязательно")
	}

	name = strings.TrimSpace(name)

	return ValidateLength("название бизнеса", name, MinBusinessNameLength, MaxBusinessNameLength)
}

// ValidateBusinessDescription проверяет описание бизнеса.
func ValidateBusinessDescription(description string) error {
	if description == "" {
		return fmt.Errorf("описание бизнеса обязательно")
	}

	description = strings.TrimSpace(description)

	return ValidateLength("описание бизнеса", description, MinDescriptionLength, MaxDescriptionLength)
}

// ValidatePrice проверяет денежное значение (выручка, оценка, цена).
func ValidatePrice(fieldName string, value *float64) error {
	if value == nil {
		return nil
	}
	if *value < MinPrice {
		return fmt.Errorf("%s не может быть отрицательным", fieldName)
	}
	if *value > MaxPrice {
		return fmt.Errorf("%s не может превышать %.0f", fieldName, MaxPrice)
	}
	return nil
}

// ValidateCommentContent проверяет содержимое комментария этапа.
func ValidateCommentContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("комментарий не может быть пустым")
	}

	return ValidateLength("комментарий", strings.TrimSpace(content), MinCommentLength, MaxCommentLength)
}

// ValidateMessageContent проверяет содержимое сообщения.
func ValidateMessageContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("сообщение не может быть пустым")
	}

	return ValidateLength("сообщение", strings.TrimSpace(content), MinMessageLength, MaxMessageLength)
}

// ValidateRejectionReason проверяет причину отклонения согласования.
func ValidateRejectionReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("причина отклонения обязательна")
	}

	return ValidateLength("причина отклонения", strings.TrimSpace(reason), 1, MaxRejectionReasonLength)
}

// ValidateDocumentTitle проверяет название документа.
func ValidateDocumentTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("название документа обязательно")
	}

	return ValidateLength("название документа", strings.TrimSpace(title), 1, MaxDocumentTitleLength)
}
