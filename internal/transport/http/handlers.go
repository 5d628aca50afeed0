package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"memeclash/internal/domain"
)

// qrSize is the edge length of invite QR codes in pixels
const qrSize = 320

// Response is a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo contains error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RoomInfoResponse is the response for the pre-join room lookup
type RoomInfoResponse struct {
	domain.RoomInfo
	InviteLink string `json:"inviteLink,omitempty"`
}

// HealthResponse is the response for health check
type HealthResponse struct {
	Status string `json:"status"`
}

// StatsResponse is the response for stats endpoint
type StatsResponse struct {
	ActiveRooms  int `json:"activeRooms"`
	TotalPlayers int `json:"totalPlayers"`
	Connections  int `json:"connections"`
}

// handleGetRoom handles GET /api/rooms/{roomCode}. Unknown rooms are not an
// error; they report exists=false.
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	roomCode := domain.NormalizeRoomCode(chi.URLParam(r, "roomCode"))
	if roomCode == "" {
		s.sendError(w, http.StatusBadRequest, "MISSING_ROOM_CODE", "Room code is required")
		return
	}

	resp := &RoomInfoResponse{RoomInfo: s.hub.RoomInfo(roomCode)}
	if resp.Exists {
		resp.InviteLink = s.inviteLink(r, roomCode)
	}
	s.sendSuccess(w, resp)
}

// handleRoomQR handles GET /api/rooms/{roomCode}/qr
func (s *Server) handleRoomQR(w http.ResponseWriter, r *http.Request) {
	roomCode := domain.NormalizeRoomCode(chi.URLParam(r, "roomCode"))
	if !s.hub.RoomInfo(roomCode).Exists {
		s.sendError(w, http.StatusNotFound, string(domain.CodeRoomNotFound), "Room not found")
		return
	}

	png, err := qrcode.Encode(s.inviteLink(r, roomCode), qrcode.Medium, qrSize)
	if err != nil {
		s.logger.Error("qr generation failed", zap.String("roomCode", roomCode), zap.Error(err))
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "QR generation failed")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

// handleHealth handles GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &HealthResponse{
		Status: "ok",
	})
}

// handleStats handles GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &StatsResponse{
		ActiveRooms:  s.hub.GetSessionCount(),
		TotalPlayers: s.hub.GetTotalPlayerCount(),
		Connections:  s.hub.GetConnectionCount(),
	})
}

// inviteLink builds the join URL for a room, preferring the configured public URL
func (s *Server) inviteLink(r *http.Request, roomCode string) string {
	base := strings.TrimRight(s.config.Server.PublicURL, "/")
	if base == "" {
		scheme := "http"
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			scheme = "https"
		}
		base = scheme + "://" + r.Host
	}
	return base + "/join/" + roomCode
}

// sendSuccess sends a successful JSON response
func (s *Server) sendSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(&Response{
		Success: true,
		Data:    data,
	})
}

// sendError sends an error JSON response
func (s *Server) sendError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(&Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	})
}
