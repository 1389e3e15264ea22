// Package session хранит сессию целиком в подписанной cookie.
//
// Сервер не держит состояния: cookie и есть сессия, а её подлинность
// гарантирует общий секрет подписи. Повреждённая или чужая cookie
// неотличима от отсутствующей.
package session

import (
	"net/http"
	"time"

	"github.com/magabrotheeeer/admin-panel/internal/config"
	"github.com/magabrotheeeer/admin-panel/internal/lib/jwt"
)

// UserIDKey единственный распознаваемый ключ сессии.
const UserIDKey = "userId"

// Имена cookie по режиму развёртывания.
const (
	DevCookieName        = "_session"
	ProductionCookieName = "__Host-session"
)

// Session набор значений одной сессии.
type Session struct {
	data  map[string]string
	isNew bool
}

// Get возвращает значение ключа и признак его наличия.
func (s *Session) Get(key string) (string, bool) {
	v, ok := s.data[key]
	return v, ok
}

// Set сохраняет значение. Нераспознанные ключи игнорируются при Commit.
func (s *Session) Set(key, value string) {
	s.data[key] = value
}

// Unset удаляет ключ.
func (s *Session) Unset(key string) {
	delete(s.data, key)
}

// IsNew сообщает, что сессия не была прочитана из действительной cookie.
func (s *Session) IsNew() bool {
	return s.isNew
}

// Options параметры хранилища сессий.
type Options struct {
	Env    string
	Secret string
	MaxAge time.Duration // 0: cookie живёт до закрытия браузера
}

// Store выпускает и проверяет cookie-сессии.
type Store struct {
	maker  jwt.Maker
	name   string
	secure bool
	maxAge time.Duration
}

// NewStore создаёт хранилище. Имя cookie и флаг secure зависят от режима.
func NewStore(opts Options) *Store {
	name, secure := CookieName(opts.Env)
	return &Store{
		maker:  jwt.NewJWTMaker(opts.Secret, opts.MaxAge),
		name:   name,
		secure: secure,
		maxAge: opts.MaxAge,
	}
}

// CookieName возвращает имя cookie и флаг secure для режима развёртывания.
// Префикс __Host- браузеры принимают только с Secure и Path=/.
func CookieName(env string) (string, bool) {
	if env == config.EnvProduction {
		return ProductionCookieName, true
	}
	return DevCookieName, false
}

// New создаёт пустую сессию.
func (st *Store) New() *Session {
	return &Session{data: make(map[string]string), isNew: true}
}

// Load разбирает значение заголовка Cookie. Никогда не возвращает ошибку:
// при отсутствии, порче или неверной подписи возвращается пустая сессия.
func (st *Store) Load(cookieHeader string) *Session {
	if cookieHeader == "" {
		return st.New()
	}
	r := http.Request{Header: http.Header{"Cookie": []string{cookieHeader}}}
	return st.LoadRequest(&r)
}

// LoadRequest читает сессию из cookie запроса.
func (st *Store) LoadRequest(r *http.Request) *Session {
	c, err := r.Cookie(st.name)
	if err != nil || c.Value == "" {
		return st.New()
	}

	claims, err := st.maker.ParseToken(c.Value)
	if err != nil {
		return st.New()
	}

	s := &Session{data: make(map[string]string)}
	if claims.UserID != "" {
		s.data[UserIDKey] = claims.UserID
	}
	return s
}

// Commit подписывает сессию и возвращает значение заголовка Set-Cookie.
func (st *Store) Commit(s *Session) (string, error) {
	userID, _ := s.Get(UserIDKey)
	token, err := st.maker.GenerateToken(userID)
	if err != nil {
		return "", err
	}

	c := st.cookie(token)
	if st.maxAge > 0 {
		c.MaxAge = int(st.maxAge.Seconds())
		c.Expires = time.Now().Add(st.maxAge).UTC()
	}
	return c.String(), nil
}

// Destroy возвращает значение Set-Cookie, немедленно удаляющее сессию.
func (st *Store) Destroy(s *Session) string {
	for k := range s.data {
		delete(s.data, k)
	}
	c := st.cookie("")
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0).UTC()
	return c.String()
}

func (st *Store) cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     st.name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   st.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
