package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bizbridge/acquisition-backend/internal/models"
	"github.com/bizbridge/acquisition-backend/internal/repository"
)

type mockAuthRepository struct {
	usersByEmail map[string]*models.User
	usersByID    map[uuid.UUID]*models.User
	profiles     map[uuid.UUID]*models.Profile
	sessions     map[string]*models.Session
}

func newMockAuthRepository() *mockAuthRepository {
	return &mockAuthRepository{
		usersByEmail: make(map[string]*models.User),
		usersByID:    make(map[uuid.UUID]*models.User),
		profiles:     make(map[uuid.UUID]*models.Profile),
		sessions:     make(map[string]*models.Session),
	}
}

func (m *mockAuthRepository) Create(_ context.Context, user *models.User) error {
	user.ID = uuid.New()
	user.IsActive = true
	user.CreatedAt = time.Now()
	m.usersByEmail[user.Email] = user
	m.usersByID[user.ID] = user
	return nil
}

func (m *mockAuthRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := m.usersByEmail[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockAuthRepository) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := m.usersByID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockAuthRepository) GetProfile(_ context.Context, userID uuid.UUID) (*models.Profile, error) {
	profile, ok := m.profiles[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return profile, nil
}

func (m *mockAuthRepository) UpsertProfile(_ context.Context, profile *models.Profile) error {
	stored := *profile
	stored.UpdatedAt = time.Now()
	m.profiles[profile.UserID] = &stored
	return nil
}

func (m *mockAuthRepository) CreateSession(_ context.Context, session *models.Session) error {
	session.ID = uuid.New()
	m.sessions[session.RefreshToken] = session
	return nil
}

func (m *mockAuthRepository) DeleteSession(_ context.Context, refreshToken string) error {
	delete(m.sessions, refreshToken)
	return nil
}

func (m *mockAuthRepository) UpdateLastLoginAt(_ context.Context, userID uuid.UUID) error {
	if user, ok := m.usersByID[userID]; ok {
		now := time.Now()
		user.LastLoginAt = &now
	}
	return nil
}

func (m *mockAuthRepository) ListSessions(_ context.Context, userID uuid.UUID) ([]models.Session, error) {
	var out []models.Session
	for _, s := range m.sessions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockAuthRepository) DeleteSessionByID(_ context.Context, sessionID uuid.UUID, userID uuid.UUID) error {
	for token, s := range m.sessions {
		if s.ID == sessionID && s.UserID == userID {
			delete(m.sessions, token)
		}
	}
	return nil
}

func (m *mockAuthRepository) DeleteAllSessionsExcept(_ context.Context, userID uuid.UUID, exceptRefreshToken string) error {
	for token, s := range m.sessions {
		if s.UserID == userID && token != exceptRefreshToken {
			delete(m.sessions, token)
		}
	}
	return nil
}

func newTestTokenManager() *TokenManager {
	return NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 720*time.Hour)
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	repo := newMockAuthRepository()
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{
		Email:    "Buyer@Example.com",
		Password: "Passw0rd!",
		Role:     models.RoleBuyer,
	}, map[string]string{"user_agent": "go-test", "ip": "127.0.0.1"})
	if err != nil {
		t.Fatalf("регистрация не удалась: %v", err)
	}
	if result.User.Email != "buyer@example.com" {
		t.Errorf("email должен приводиться к нижнему регистру, получили %q", result.User.Email)
	}
	if result.User.Username != "buyer" {
		t.Errorf("ожидался username buyer из email, получили %q", result.User.Username)
	}
	if result.Profile == nil || result.Profile.DisplayName != "buyer" {
		t.Error("профиль должен создаваться с display name из username")
	}
	if result.TokenPair.AccessToken == "" || result.TokenPair.RefreshToken == "" {
		t.Fatal("ожидалась пара токенов")
	}

	sessions, _ := repo.ListSessions(ctx, result.User.ID)
	if len(sessions) != 1 {
		t.Fatalf("ожидалась одна сессия после регистрации, получили %d", len(sessions))
	}
	if sessions[0].UserAgent == nil || *sessions[0].UserAgent != "go-test" {
		t.Error("в сессии должен сохраняться user agent")
	}

	if _, err := svc.Register(ctx, RegisterInput{Email: "buyer@example.com", Password: "Passw0rd!"}, nil); err == nil {
		t.Fatal("повторная регистрация на тот же email должна завершаться ошибкой")
	}

	if _, err := svc.Register(ctx, RegisterInput{Email: "admin@example.com", Password: "Passw0rd!", Role: "admin"}, nil); err == nil {
		t.Fatal("регистрация с недопустимой ролью должна завершаться ошибкой")
	}

	loginRes, err := svc.Login(ctx, LoginInput{Email: "buyer@example.com", Password: "Passw0rd!"}, nil)
	if err != nil {
		t.Fatalf("вход не удался: %v", err)
	}
	if loginRes.User.ID != result.User.ID {
		t.Error("вход вернул другого пользователя")
	}
	if loginRes.User.LastLoginAt == nil {
		t.Error("после входа должна обновляться дата последнего входа")
	}

	sessions, _ = repo.ListSessions(ctx, result.User.ID)
	if len(sessions) != 2 {
		t.Fatalf("ожидались две сессии после входа, получили %d", len(sessions))
	}

	if _, err := svc.Login(ctx, LoginInput{Email: "buyer@example.com", Password: "wrong"}, nil); err == nil {
		t.Fatal("вход с неверным паролем должен завершаться ошибкой")
	}

	result.User.IsActive = false
	if _, err := svc.Login(ctx, LoginInput{Email: "buyer@example.com", Password: "Passw0rd!"}, nil); err == nil {
		t.Fatal("вход в заблокированный аккаунт должен завершаться ошибкой")
	}
}

func TestAuthService_Refresh(t *testing.T) {
	repo := newMockAuthRepository()
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{
		Email:    "seller@example.com",
		Password: "Passw0rd!",
		Role:     models.RoleSeller,
	}, nil)
	if err != nil {
		t.Fatalf("регистрация не удалась: %v", err)
	}

	oldToken := result.TokenPair.RefreshToken
	pair, err := svc.Refresh(ctx, oldToken, nil)
	if err != nil {
		t.Fatalf("обновление токенов не удалось: %v", err)
	}
	if pair.RefreshToken == oldToken {
		t.Error("новый refresh токен не должен совпадать со старым")
	}

	if _, ok := repo.sessions[oldToken]; ok {
		t.Error("старая сессия должна удаляться при обновлении")
	}
	sessions, _ := repo.ListSessions(ctx, result.User.ID)
	if len(sessions) != 1 {
		t.Fatalf("ожидалась одна сессия после обновления, получили %d", len(sessions))
	}

	if _, err := svc.Refresh(ctx, "not-a-token", nil); err == nil {
		t.Fatal("обновление по невалидному токену должно завершаться ошибкой")
	}
}

func TestAuthService_Sessions(t *testing.T) {
	repo := newMockAuthRepository()
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{Email: "multi@example.com", Password: "Passw0rd!"}, nil)
	if err != nil {
		t.Fatalf("регистрация не удалась: %v", err)
	}
	current := result.TokenPair.RefreshToken

	for i := 0; i < 2; i++ {
		if _, err := svc.Login(ctx, LoginInput{Email: "multi@example.com", Password: "Passw0rd!"}, nil); err != nil {
			t.Fatalf("вход не удался: %v", err)
		}
	}

	sessions, err := svc.ListSessions(ctx, result.User.ID)
	if err != nil {
		t.Fatalf("не удалось получить сессии: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("ожидались три сессии, получили %d", len(sessions))
	}

	if err := svc.DeleteAllSessionsExcept(ctx, result.User.ID, current); err != nil {
		t.Fatalf("не удалось удалить сессии: %v", err)
	}
	sessions, _ = svc.ListSessions(ctx, result.User.ID)
	if len(sessions) != 1 {
		t.Fatalf("ожидалась одна оставшаяся сессия, получили %d", len(sessions))
	}
	if sessions[0].RefreshToken != current {
		t.Error("текущая сессия не должна удаляться")
	}
}

func TestAuthService_ProfileFallback(t *testing.T) {
	repo := newMockAuthRepository()
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{Email: "profile@example.com", Password: "Passw0rd!"}, nil)
	if err != nil {
		t.Fatalf("регистрация не удалась: %v", err)
	}

	// Даже при потерянном профиле GetMe возвращает заглушку из username.
	delete(repo.profiles, result.User.ID)
	user, profile, err := svc.GetMe(ctx, result.User.ID)
	if err != nil {
		t.Fatalf("GetMe не удался: %v", err)
	}
	if user.ID != result.User.ID {
		t.Error("GetMe вернул другого пользователя")
	}
	if profile == nil || profile.DisplayName != user.Username {
		t.Error("при отсутствии профиля ожидалась заглушка с display name из username")
	}

	company := "Bridge Capital"
	updated, err := svc.UpdateProfile(ctx, &models.Profile{
		UserID:      result.User.ID,
		DisplayName: "Анна",
		CompanyName: &company,
	})
	if err != nil {
		t.Fatalf("обновление профиля не удалось: %v", err)
	}
	if updated.DisplayName != "Анна" || updated.CompanyName == nil || *updated.CompanyName != company {
		t.Error("обновлённый профиль вернулся с неполными данными")
	}

	if _, err := svc.UpdateProfile(ctx, &models.Profile{UserID: result.User.ID}); err == nil {
		t.Fatal("пустой display name должен отклоняться")
	}
}
