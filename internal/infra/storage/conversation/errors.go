package conversation

import "errors"

var (
	// ErrConversationNotFound возвращается, когда у номера нет активного диалога
	ErrConversationNotFound = errors.New("conversation.repository: active conversation not found")

	// ErrActiveConversationExists возвращается, когда активный диалог для номера уже создан параллельно
	ErrActiveConversationExists = errors.New("conversation.repository: active conversation already exists")

	// ErrVersionConflict возвращается, когда строка изменилась после чтения (шаг бота или очистка)
	ErrVersionConflict = errors.New("conversation.repository: version conflict")

	ErrBuildQuery    = errors.New("conversation.repository: failed to build query")
	ErrExecQuery     = errors.New("conversation.repository: failed to execute query")
	ErrScanRow       = errors.New("conversation.repository: failed to scan row")
	ErrEncodeContext = errors.New("conversation.repository: failed to encode context")
)
