package service

import (
	"kizuki-server/internal/domain"
	"kizuki-server/internal/websocket"

	"github.com/rs/zerolog"
)

// LiveService pushes memo and case changes to every websocket the user has
// open, so a second tab refreshes its memo list and case form.
type LiveService struct {
	wsManager *websocket.Manager
	log       zerolog.Logger
}

func NewLiveService(wsManager *websocket.Manager, log zerolog.Logger) *LiveService {
	return &LiveService{
		wsManager: wsManager,
		log:       log.With().Str("component", "live_service").Logger(),
	}
}

func (s *LiveService) MemoCreated(userID string, memo *domain.MemoSummary) {
	s.broadcast(userID, websocket.TypeMemoCreated, memo)
}

func (s *LiveService) CaseUpdated(userID string, c *domain.Case) {
	s.broadcast(userID, websocket.TypeCaseUpdated, c)
}

func (s *LiveService) broadcast(userID string, msgType websocket.MessageType, payload interface{}) {
	msg, err := websocket.NewMessage(msgType, payload)
	if err != nil {
		s.log.Error().Err(err).Str("type", string(msgType)).Msg("failed to encode live event")
		return
	}

	if err := s.wsManager.BroadcastToUser(userID, msg); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("failed to broadcast live event")
	}
}
