package bot

import "errors"

var (
	// ErrInvalidMessage входящее сообщение без номера или с неразбираемым номером
	ErrInvalidMessage = errors.New("bot: invalid inbound message")

	// ErrConversationConflict диалог изменился параллельно (например, закрыт очисткой)
	ErrConversationConflict = errors.New("bot: conversation changed concurrently")

	// ErrInternal возвращается при внутренних ошибках шага
	ErrInternal = errors.New("bot: internal error")
)
