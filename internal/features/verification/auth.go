// Package verification — auth.go содержит аутентификацию администратора
// для HTTP-гейта: проверку пароля Argon2id и выдачу сессионных токенов.
package verification

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/argon2"

	"droplab.ru/points-bot/internal/common"
)

// Auth управляет входом администратора и проверкой сессий.
type Auth struct {
	repo         *Repository
	passwordHash string
}

// NewAuth создаёт сервис аутентификации администратора.
func NewAuth(repo *Repository, passwordHash string) *Auth {
	return &Auth{repo: repo, passwordHash: passwordHash}
}

// Login проверяет пароль администратора и выдаёт сессионный токен на 24 часа.
// Защита от brute-force: 3 неудачные попытки с адреса = блокировка на 1 час.
func (a *Auth) Login(ctx context.Context, ip, password string) (string, error) {
	attempts, err := a.repo.CountRecentAttempts(ctx, ip, 1*time.Hour)
	if err != nil {
		return "", err
	}
	if attempts >= 3 {
		return "", common.ErrTooManyAttempts
	}

	match := verifyArgon2id(password, a.passwordHash)

	if err := a.repo.LogAttempt(ctx, ip, match); err != nil {
		log.WithError(err).Error("Ошибка записи попытки входа")
	}

	if !match {
		return "", common.ErrWrongPassword
	}

	token := generateSecureToken()
	if err := a.repo.CreateSession(ctx, token, time.Now().Add(24*time.Hour)); err != nil {
		return "", err
	}
	return token, nil
}

// SessionActive проверяет действительность сессионного токена.
func (a *Auth) SessionActive(ctx context.Context, token string) bool {
	active, err := a.repo.SessionActive(ctx, token)
	if err != nil {
		log.WithError(err).Error("Ошибка проверки сессии")
		return false
	}
	return active
}

// --- Криптографические утилиты ---

// verifyArgon2id проверяет пароль по хешу Argon2id.
// Формат хеша: $argon2id$v=19$m=65536,t=3,p=2$<salt_base64>$<hash_base64>
func verifyArgon2id(password, encodedHash string) bool {
	// Парсим хеш
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		log.Error("Некорректный формат хеша Argon2id")
		return false
	}

	// Извлекаем параметры
	var memory uint32
	var iterations uint32
	var parallelism uint8
	_, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism)
	if err != nil {
		log.WithError(err).Error("Ошибка парсинга параметров Argon2id")
		return false
	}

	// Декодируем соль
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования соли")
		return false
	}

	// Декодируем хеш
	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования хеша")
		return false
	}

	// Вычисляем хеш введённого пароля
	computedHash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(expectedHash)))

	// Сравниваем в постоянном времени (защита от timing attack)
	return subtle.ConstantTimeCompare(computedHash, expectedHash) == 1
}

// generateSecureToken генерирует криптографически безопасный токен сессии.
func generateSecureToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return base64.URLEncoding.EncodeToString(b)
}
