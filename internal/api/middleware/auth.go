package middleware

import (
	"net/http"
	"strings"

	"bondmonitor/pkg/crypto"
)

// Auth - middleware для аутентификации API запросов
//
// Назначение:
// Сверяет токен из заголовка Authorization: Bearer <token> с bcrypt-хэшем
// из конфигурации. Монитор однопользовательский, поэтому токен один.
//
// Пустой хэш отключает проверку - режим локального развертывания,
// когда API доступен только с машины оператора.
func Auth(tokenHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenHash == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				w.Header().Set("WWW-Authenticate", "Bearer")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if err := crypto.CheckToken(token, tokenHash); err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken извлекает токен из заголовка Authorization
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
