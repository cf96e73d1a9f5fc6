package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/palemoky/card-battle-arena/internal/server/auth"
	"github.com/palemoky/card-battle-arena/internal/server/storage"
)

// credentials 注册/登录请求体
type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handleRegister 处理用户注册
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "仅支持 POST")
		return
	}

	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "无效的请求体")
		return
	}

	user, err := s.authService.Register(r.Context(), creds.Username, creds.Password)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrUserExists):
			writeError(w, http.StatusConflict, "用户名已存在")
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeError(w, http.StatusBadRequest, "用户名和密码不能为空")
		default:
			log.Printf("注册失败: %v", err)
			writeError(w, http.StatusInternalServerError, "注册失败，请稍后重试")
		}
		return
	}

	log.Printf("📝 新用户注册: %s (%s)", user.Username, user.ID)

	writeJSON(w, http.StatusCreated, map[string]string{
		"id":       user.ID,
		"username": user.Username,
	})
}

// handleLogin 处理用户登录，成功时签发 JWT
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "仅支持 POST")
		return
	}

	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "无效的请求体")
		return
	}

	token, user, err := s.authService.Login(r.Context(), creds.Username, creds.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "用户名或密码错误")
			return
		}
		log.Printf("登录失败: %v", err)
		writeError(w, http.StatusInternalServerError, "登录失败，请稍后重试")
		return
	}

	log.Printf("🔑 用户登录: %s (%s)", user.Username, user.ID)

	writeJSON(w, http.StatusOK, map[string]string{
		"token":    token,
		"id":       user.ID,
		"username": user.Username,
	})
}
